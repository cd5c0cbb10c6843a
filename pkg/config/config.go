// Package config loads vlmctl settings from defaults, an optional TOML file
// and the environment, in that order of precedence.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/NVIDIA/vlm-launcher/pkg/defaults"
	cnserrors "github.com/NVIDIA/vlm-launcher/pkg/errors"
	"github.com/NVIDIA/vlm-launcher/pkg/image"
	"github.com/NVIDIA/vlm-launcher/pkg/platform"
	"github.com/NVIDIA/vlm-launcher/pkg/selector"
	"github.com/NVIDIA/vlm-launcher/pkg/version"
)

// EnvPrefix marks environment overrides: VLM_API_URL -> api-url.
const EnvPrefix = "VLM_"

// bareEnv are the unprefixed variables vlmctl has always honored.
var bareEnv = map[string]string{
	"GITHUB_TOKEN":    "token",
	"SIMULATE_PUBLIC": "simulate-public",
	"LOG_LEVEL":       "log-level",
}

// Config holds every tunable of a resolution run.
type Config struct {
	Registry   string `json:"registry" koanf:"registry"`
	Repository string `json:"repository" koanf:"repository"`

	APIURL  string `json:"api-url" koanf:"api-url"`
	Owner   string `json:"owner" koanf:"owner"`
	Project string `json:"project" koanf:"project"`

	// UserAgent is sent with every API request.
	UserAgent string `json:"user-agent" koanf:"user-agent"`

	// HTTPTimeout bounds each version source query ("5s").
	HTTPTimeout string `json:"http-timeout" koanf:"http-timeout"`

	// FallbackVersions replaces the embedded static version list when set.
	FallbackVersions []string `json:"fallback-versions,omitempty" koanf:"fallback-versions"`

	ProbeAttempts   int    `json:"probe-attempts" koanf:"probe-attempts"`
	ProbeRetryDelay string `json:"probe-retry-delay" koanf:"probe-retry-delay"`

	LocalInferenceURL string `json:"local-inference-url" koanf:"local-inference-url"`

	PromptAttempts int `json:"prompt-attempts" koanf:"prompt-attempts"`

	Token          string `json:"-" koanf:"token"`
	SimulatePublic bool   `json:"simulate-public" koanf:"simulate-public"`
	LogLevel       string `json:"log-level" koanf:"log-level"`

	// ConfigFile is the file the config was loaded from, if any.
	ConfigFile string `json:"-" koanf:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Registry:          image.DefaultRegistry,
		Repository:        image.DefaultRepository,
		APIURL:            version.DefaultAPIBaseURL,
		Owner:             version.DefaultOwner,
		Project:           version.DefaultProject,
		UserAgent:         version.DefaultUserAgent,
		HTTPTimeout:       version.DefaultTimeout.String(),
		ProbeAttempts:     defaults.ProbeRetryAttempts,
		ProbeRetryDelay:   defaults.ProbeRetryDelay.String(),
		LocalInferenceURL: platform.DefaultLocalInferenceURL,
		PromptAttempts:    selector.DefaultMaxAttempts,
		LogLevel:          "info",
	}
}

// Load merges defaults, the TOML file at configPath (when non-empty) and
// the environment, then validates the result.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest,
				fmt.Sprintf("failed to load config file %q", configPath), err)
		}
	}

	// 3. GITHUB_TOKEN, SIMULATE_PUBLIC, LOG_LEVEL
	if err := k.Load(env.Provider(".", env.Opt{TransformFunc: bareEnvTransform}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	// 4. VLM_* overrides
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKeyTransform,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "failed to decode config", err)
	}
	cfg.ConfigFile = configPath

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKeyTransform converts VLM_HTTP_TIMEOUT to http-timeout.
func envKeyTransform(k, v string) (string, any) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, EnvPrefix)), "_", "-")
	if key == "fallback-versions" {
		return key, splitList(v)
	}
	return key, v
}

func bareEnvTransform(k, v string) (string, any) {
	key, ok := bareEnv[k]
	if !ok {
		return "", nil
	}
	return key, v
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks durations, URLs and bounds.
func (c *Config) Validate() error {
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if _, err := c.RetryDelay(); err != nil {
		return err
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest, fmt.Sprintf("invalid api-url %q", c.APIURL))
	}
	if c.Registry == "" || c.Repository == "" {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest, "registry and repository must be set")
	}
	if c.ProbeAttempts < 1 {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest, "probe-attempts must be at least 1")
	}
	if c.PromptAttempts < 1 {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest, "prompt-attempts must be at least 1")
	}
	return nil
}

// Timeout returns the parsed per-query HTTP timeout.
func (c *Config) Timeout() (time.Duration, error) {
	return parseDuration("http-timeout", c.HTTPTimeout)
}

// RetryDelay returns the parsed delay between probe attempts.
func (c *Config) RetryDelay() (time.Duration, error) {
	return parseDuration("probe-retry-delay", c.ProbeRetryDelay)
}

func parseDuration(name, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, fmt.Sprintf("invalid %s %q", name, s), err)
	}
	if d <= 0 {
		return 0, cnserrors.New(cnserrors.ErrCodeInvalidRequest, fmt.Sprintf("%s must be positive", name))
	}
	return d, nil
}
