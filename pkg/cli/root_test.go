/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cnserrors "github.com/NVIDIA/vlm-launcher/pkg/errors"
	"github.com/NVIDIA/vlm-launcher/pkg/platform"
	"github.com/NVIDIA/vlm-launcher/pkg/resolver"
)

type stubProber struct {
	profile platform.Profile
	err     error
}

func (s stubProber) Probe(context.Context) (platform.Profile, error) {
	return s.profile, s.err
}

var thor = platform.NewProfile(platform.OSLinux, platform.ArchAarch64, platform.AcceleratorJetsonThor)

// setupAPI points version discovery at a fake GitHub serving two releases.
// It returns the User-Agent of the last request.
func setupAPI(t *testing.T) func() string {
	t.Helper()
	var ua atomic.Value
	ua.Store("")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua.Store(r.Header.Get("User-Agent"))
		if strings.HasSuffix(r.URL.Path, "/releases") {
			_, _ = w.Write([]byte(`[{"tag_name":"v0.2.1"},{"tag_name":"v0.2.0"}]`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	for _, k := range []string{"GITHUB_TOKEN", "SIMULATE_PUBLIC", "LOG_LEVEL"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	t.Setenv("VLM_API_URL", srv.URL)
	return func() string { return ua.Load().(string) }
}

func runApp(t *testing.T, p stubProber, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp(resolver.WithProber(p))
	app.Reader = strings.NewReader("")
	app.Writer = &out
	app.ErrWriter = io.Discard

	err := app.Run(context.Background(), append([]string{name}, args...))
	return out.String(), err
}

func TestApp_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantTag  string
		wantSel  string
		wantVers bool
	}{
		{"skip version pick", []string{"--skip-version-pick"}, "latest-jetson-thor", "latest", true},
		{"explicit version", []string{"--version", "0.2.0"}, "0.2.0-jetson-thor", "0.2.0", false},
		{"non-interactive defaults to latest", nil, "latest-jetson-thor", "latest", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupAPI(t)
			out, err := runApp(t, stubProber{profile: thor}, append(tt.args, "--format", "json")...)
			require.NoError(t, err)

			var res resolver.Resolution
			require.NoError(t, json.Unmarshal([]byte(out), &res))
			assert.Equal(t, resolver.KindResolution, res.Kind)
			assert.Equal(t, tt.wantTag, res.Reference.Tag)
			assert.Equal(t, tt.wantSel, res.Selected)
			assert.Equal(t, tt.wantVers, len(res.Versions) > 0)
			assert.Equal(t, []string{"--gpus", "all"}, res.RuntimeArgs)
			assert.NotEmpty(t, res.Metadata["invocation-id"])
		})
	}
}

func TestApp_ListVersions(t *testing.T) {
	setupAPI(t)
	out, err := runApp(t, stubProber{profile: thor}, "--list-versions", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "kind: VersionList")
	assert.Contains(t, out, "0.2.1")
	assert.Contains(t, out, "outcome: ok")
}

func TestApp_TableToFile(t *testing.T) {
	setupAPI(t)
	path := filepath.Join(t.TempDir(), "resolution.txt")

	out, err := runApp(t, stubProber{profile: thor}, "--skip-version-pick", "--output", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "FIELD")
	assert.Contains(t, string(content), "reference.tag")
	assert.Contains(t, string(content), "latest-jetson-thor")
}

func TestApp_Errors(t *testing.T) {
	tests := []struct {
		name   string
		prober stubProber
		args   []string
	}{
		{"unknown format", stubProber{profile: thor}, []string{"--format", "xml"}},
		{"unknown flag", stubProber{profile: thor}, []string{"--bogus"}},
		{"positional argument", stubProber{profile: thor}, []string{"extra"}},
		{"unsupported platform", stubProber{err: cnserrors.New(cnserrors.ErrCodeUnsupportedPlatform, "no GPU")}, []string{"--skip-version-pick"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupAPI(t)
			_, err := runApp(t, tt.prober, tt.args...)
			require.Error(t, err)
			assert.Equal(t, 1, ExitCode(err))
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
	assert.Equal(t, 2, ExitCode(context.Canceled))
	assert.Equal(t, 2, ExitCode(cnserrors.New(cnserrors.ErrCodeTimeout, "slow")))
}

func TestNewApp_Flags(t *testing.T) {
	cmd := NewApp()
	names := map[string]bool{}
	for _, f := range cmd.Flags {
		for _, n := range f.Names() {
			names[n] = true
		}
	}
	for _, want := range []string{"version", "list-versions", "skip-version-pick", "simulate-public", "format", "t", "output", "o", "config", "debug", "log-json"} {
		assert.True(t, names[want], "flag %q missing", want)
	}
	assert.NotNil(t, cmd.Action)
}

func TestApp_UserAgentCarriesVersion(t *testing.T) {
	lastUA := setupAPI(t)

	_, err := runApp(t, stubProber{profile: thor}, "--list-versions")
	require.NoError(t, err)
	assert.Equal(t, name+"/"+version, lastUA())
}
