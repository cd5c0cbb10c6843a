package version

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v75/github"
	"golang.org/x/oauth2"

	"github.com/NVIDIA/vlm-launcher/pkg/defaults"
)

const (
	// DefaultAPIBaseURL is the GitHub REST endpoint.
	DefaultAPIBaseURL = "https://api.github.com"
	// DefaultOwner is the organization publishing the image and releases.
	DefaultOwner = "NVIDIA-AI-IOT"
	// DefaultProject is both the container package and repository name.
	DefaultProject = "live-vlm-webui"
	// DefaultTimeout bounds a single source query.
	DefaultTimeout = defaults.VersionSourceTimeout
	// DefaultUserAgent identifies the tool to the API.
	DefaultUserAgent = "vlmctl"

	// perPage is the largest page GitHub serves; one page is enough.
	perPage = 100
)

var (
	rateLimitMarkers  = []string{"rate limit", "ratelimit"}
	credentialMarkers = []string{"bad credentials", "requires authentication", "must have", "permission"}
)

// Option configures a GitHub-backed source.
type Option func(*client)

// WithBaseURL points the source at a different API host.
func WithBaseURL(u string) Option {
	return func(c *client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithProject overrides the owner and project names.
func WithProject(owner, name string) Option {
	return func(c *client) {
		c.owner = owner
		c.name = name
	}
}

// WithTimeout sets the per-query timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client the API client is built on.
func WithHTTPClient(h *http.Client) Option {
	return func(c *client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

type client struct {
	http      *http.Client
	baseURL   string
	owner     string
	name      string
	timeout   time.Duration
	userAgent string
}

func newClient(opts ...Option) *client {
	c := &client{
		http:      &http.Client{},
		baseURL:   DefaultAPIBaseURL,
		owner:     DefaultOwner,
		name:      DefaultProject,
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiClient builds an API client for one query. A token is sent as a bearer
// token through oauth2; an empty token queries anonymously.
func (c *client) apiClient(ctx context.Context, token string) (*github.Client, error) {
	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return nil, fmt.Errorf("failed to parse api url %q: %w", c.baseURL, err)
	}

	hc := c.http
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, c.http), ts)
	}

	gh := github.NewClient(hc)
	gh.BaseURL = base
	gh.UserAgent = c.userAgent
	return gh, nil
}

// listFunc runs one API call and returns the raw tags it found.
type listFunc func(ctx context.Context, gh *github.Client) ([]string, *github.Response, error)

// classifyError maps an API client error to an outcome.
func classifyError(err error) Outcome {
	var (
		rateErr  *github.RateLimitError
		abuseErr *github.AbuseRateLimitError
		respErr  *github.ErrorResponse
	)
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &rateErr), errors.As(err, &abuseErr):
		return OutcomeRateLimited
	case errors.As(err, &respErr):
		return classifyErrorResponse(respErr)
	default:
		// transport failures, timeouts and bodies that are not a JSON array
		return OutcomeUnreachable
	}
}

func classifyErrorResponse(e *github.ErrorResponse) Outcome {
	if e.Response == nil {
		return OutcomeUnreachable
	}

	switch e.Response.StatusCode {
	case http.StatusTooManyRequests:
		return OutcomeRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		msg := e.Message
		for _, detail := range e.Errors {
			msg += " " + detail.Message
		}
		lower := strings.ToLower(msg)
		if containsAny(lower, rateLimitMarkers) {
			return OutcomeRateLimited
		}
		if containsAny(lower, credentialMarkers) {
			return OutcomeAuthFailed
		}
		return OutcomeUnreachable
	default:
		return OutcomeUnreachable
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func statusOf(resp *github.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}

// fetch runs list within the per-query timeout and turns its tags into candidates.
func (c *client) fetch(ctx context.Context, source SourceName, token string, list listFunc) FetchResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	gh, err := c.apiClient(ctx, token)
	if err != nil {
		return failed(source, OutcomeUnreachable, 0, err)
	}

	tags, resp, err := list(ctx, gh)
	status := statusOf(resp)
	if err != nil {
		return failed(source, classifyError(err), status, err)
	}

	candidates := buildCandidates(tags, source)
	if len(candidates) == 0 {
		return failed(source, OutcomeEmpty, status, nil)
	}
	return FetchResult{Outcome: OutcomeOK, Candidates: candidates, StatusCode: status}
}

// buildCandidates drops blank and dev tags, then ranks and dedupes.
func buildCandidates(tags []string, source SourceName) []Candidate {
	kept := make([]Candidate, 0, len(tags))
	for _, t := range FilterOut(tags, DevBuildPatterns) {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		kept = append(kept, NewCandidate(t, source))
	}
	return Dedupe(Rank(kept))
}
