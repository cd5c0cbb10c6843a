package version

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cnserrors "github.com/NVIDIA/vlm-launcher/pkg/errors"
)

const (
	registryPath = "/orgs/NVIDIA-AI-IOT/packages/container/live-vlm-webui/versions"
	releasesPath = "/repos/NVIDIA-AI-IOT/live-vlm-webui/releases"
)

func TestClassifyError(t *testing.T) {
	apiErr := func(status int, msg string) error {
		return &github.ErrorResponse{Response: &http.Response{StatusCode: status}, Message: msg}
	}

	tests := []struct {
		name string
		err  error
		want Outcome
	}{
		{"no error", nil, OutcomeOK},
		{"primary rate limit", &github.RateLimitError{Message: "API rate limit exceeded"}, OutcomeRateLimited},
		{"secondary rate limit", &github.AbuseRateLimitError{Message: "slow down"}, OutcomeRateLimited},
		{"wrapped rate limit", fmt.Errorf("list: %w", &github.RateLimitError{}), OutcomeRateLimited},
		{"rate limit 403 without headers", apiErr(403, "API rate limit exceeded for 1.2.3.4"), OutcomeRateLimited},
		{"rate limit 401", apiErr(401, "API Rate Limit exceeded"), OutcomeRateLimited},
		{"bad credentials", apiErr(401, "Bad credentials"), OutcomeAuthFailed},
		{"requires auth", apiErr(401, "Requires authentication"), OutcomeAuthFailed},
		{"missing scope", apiErr(403, "You must have the read:packages scope"), OutcomeAuthFailed},
		{"permission in details", &github.ErrorResponse{
			Response: &http.Response{StatusCode: 403},
			Message:  "Forbidden",
			Errors:   []github.Error{{Message: "Resource not accessible, permission denied"}},
		}, OutcomeAuthFailed},
		{"403 other", apiErr(403, "forbidden"), OutcomeUnreachable},
		{"too many requests", apiErr(429, ""), OutcomeRateLimited},
		{"not found", apiErr(404, "Not Found"), OutcomeUnreachable},
		{"server error", apiErr(502, ""), OutcomeUnreachable},
		{"no response", &github.ErrorResponse{Message: "Bad credentials"}, OutcomeUnreachable},
		{"transport", errors.New("dial tcp: connection refused"), OutcomeUnreachable},
		{"deadline", context.DeadlineExceeded, OutcomeUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyError(tt.err))
		})
	}
}

func newAPIServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestRegistrySource_Fetch(t *testing.T) {
	var gotAuth, gotAccept, gotUA string
	srv := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, registryPath, r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`[
			{"metadata":{"container":{"tags":["0.2.0","0.2.0-jetson-orin"]}}},
			{"metadata":{"container":{"tags":["latest","0.2.1",null]}}},
			{"metadata":{"container":{"tags":[]}}},
			{"metadata":{}},
			null,
			{"metadata":{"container":{"tags":["main","sha-1a2b3c","0.2.1"]}}}
		]`))
	})

	res := NewRegistrySource(WithBaseURL(srv.URL)).Fetch(context.Background(), "tok", false)

	require.Equal(t, OutcomeOK, res.Outcome)
	require.NoError(t, res.Err)
	assert.Equal(t, []string{"latest", "0.2.1", "0.2.0", "0.2.0-jetson-orin"}, tagsOf(res.Candidates))
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "application/vnd.github.v3+json", gotAccept)
	assert.Equal(t, "vlmctl", gotUA)
	for _, c := range res.Candidates {
		assert.Equal(t, SourceRegistry, c.Source)
	}
}

func TestRegistrySource_NoTokenSkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := newAPIServer(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`[]`))
	})
	src := NewRegistrySource(WithBaseURL(srv.URL))

	for _, tc := range []struct {
		token  string
		public bool
	}{{"", false}, {"tok", true}, {"", true}} {
		res := src.Fetch(context.Background(), tc.token, tc.public)
		assert.Equal(t, OutcomeAuthFailed, res.Outcome)
		assert.Equal(t, cnserrors.ErrCodeUnauthorized, cnserrors.CodeOf(res.Err))
	}
	assert.Zero(t, hits.Load())
}

func TestRegistrySource_Outcomes(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   Outcome
	}{
		{"only dev builds", 200, `[{"metadata":{"container":{"tags":["main","pr-4"]}}}]`, OutcomeEmpty},
		{"empty array", 200, `[]`, OutcomeEmpty},
		{"bad credentials", 401, `{"message":"Bad credentials"}`, OutcomeAuthFailed},
		{"rate limited", 403, `{"message":"API rate limit exceeded"}`, OutcomeRateLimited},
		{"not an array", 200, `{"message":"oops"}`, OutcomeUnreachable},
		{"too many requests", 429, ``, OutcomeRateLimited},
		{"server error", 502, `{"message":"Bad gateway"}`, OutcomeUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newAPIServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			res := NewRegistrySource(WithBaseURL(srv.URL)).Fetch(context.Background(), "tok", false)
			assert.Equal(t, tt.want, res.Outcome)
			assert.Empty(t, res.Candidates)
			assert.Error(t, res.Err)
			assert.Equal(t, tt.want.ErrorCode(), cnserrors.CodeOf(res.Err))
		})
	}
}

func TestReleaseSource_Fetch(t *testing.T) {
	var gotAuth string
	srv := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, releasesPath, r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[
			{"tag_name":"v0.2.0"},
			{"tag_name":"v0.2.1"},
			{"tag_name":"0.1.9"},
			{"tag_name":"v0.3.0","draft":true},
			{"tag_name":null},
			{"tag_name":"v0.2.1"}
		]`))
	})
	src := NewReleaseSource(WithBaseURL(srv.URL))

	res := src.Fetch(context.Background(), "tok", false)
	require.Equal(t, OutcomeOK, res.Outcome)
	assert.Equal(t, []string{"0.2.1", "0.2.0", "0.1.9"}, tagsOf(res.Candidates))
	assert.Equal(t, "Bearer tok", gotAuth)

	res = src.Fetch(context.Background(), "tok", true)
	require.Equal(t, OutcomeOK, res.Outcome)
	assert.Empty(t, gotAuth, "simulated public access must not send the token")
}

func TestReleaseSource_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := srv.URL
	srv.Close()

	res := NewReleaseSource(WithBaseURL(url)).Fetch(context.Background(), "", false)
	assert.Equal(t, OutcomeUnreachable, res.Outcome)
	assert.Equal(t, cnserrors.ErrCodeUnavailable, cnserrors.CodeOf(res.Err))
}

func TestReleaseSource_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	start := time.Now()
	res := NewReleaseSource(WithBaseURL(srv.URL), WithTimeout(50*time.Millisecond)).
		Fetch(context.Background(), "", false)
	assert.Equal(t, OutcomeUnreachable, res.Outcome)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestWithProject(t *testing.T) {
	srv := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widget/releases", r.URL.Path)
		_, _ = w.Write([]byte(`[{"tag_name":"v1.0.0"}]`))
	})
	res := NewReleaseSource(WithBaseURL(srv.URL+"/"), WithProject("acme", "widget")).
		Fetch(context.Background(), "", false)
	assert.Equal(t, OutcomeOK, res.Outcome)
}

func TestRegistrySource_RateLimitHeaders(t *testing.T) {
	srv := newAPIServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", fmt.Sprint(time.Now().Add(time.Hour).Unix()))
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"quota exhausted"}`))
	})

	res := NewRegistrySource(WithBaseURL(srv.URL)).Fetch(context.Background(), "tok", false)
	assert.Equal(t, OutcomeRateLimited, res.Outcome)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestWithUserAgent(t *testing.T) {
	var gotUA string
	srv := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`[{"tag_name":"v1.0.0"}]`))
	})

	res := NewReleaseSource(WithBaseURL(srv.URL), WithUserAgent("vlmctl/1.2.3")).
		Fetch(context.Background(), "", false)
	require.Equal(t, OutcomeOK, res.Outcome)
	assert.Equal(t, "vlmctl/1.2.3", gotUA)
}
