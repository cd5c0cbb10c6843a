package resolver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/NVIDIA/vlm-launcher/pkg/config"
	"github.com/NVIDIA/vlm-launcher/pkg/header"
	"github.com/NVIDIA/vlm-launcher/pkg/hostexec"
	"github.com/NVIDIA/vlm-launcher/pkg/image"
	"github.com/NVIDIA/vlm-launcher/pkg/platform"
	"github.com/NVIDIA/vlm-launcher/pkg/retry"
	"github.com/NVIDIA/vlm-launcher/pkg/selector"
	"github.com/NVIDIA/vlm-launcher/pkg/version"
)

// Prober fingerprints the host.
type Prober interface {
	Probe(ctx context.Context) (platform.Profile, error)
}

// VersionResolver produces the ranked candidate list.
type VersionResolver interface {
	Resolve(ctx context.Context, token string, simulatePublic bool) version.Result
}

// Resolver runs probe, version discovery, selection and tag composition.
type Resolver struct {
	prober      Prober
	versions    VersionResolver
	selector    *selector.Selector
	registry    string
	repository  string
	interactive bool
	metadata    map[string]string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithProber sets the host prober.
func WithProber(p Prober) Option {
	return func(r *Resolver) {
		r.prober = p
	}
}

// WithVersionResolver sets the version source aggregator.
func WithVersionResolver(v VersionResolver) Option {
	return func(r *Resolver) {
		r.versions = v
	}
}

// WithSelector sets the interactive selector.
func WithSelector(s *selector.Selector) Option {
	return func(r *Resolver) {
		r.selector = s
	}
}

// WithImage overrides the registry and repository.
func WithImage(registry, repository string) Option {
	return func(r *Resolver) {
		r.registry = registry
		r.repository = repository
	}
}

// WithInteractive reports whether a user can answer the version prompt.
// When false the prompt is skipped and "latest" is used.
func WithInteractive(v bool) Option {
	return func(r *Resolver) {
		r.interactive = v
	}
}

// WithMetadata adds a key to the header of emitted documents.
func WithMetadata(key, value string) Option {
	return func(r *Resolver) {
		r.metadata[key] = value
	}
}

// New creates a Resolver. Without options it probes the local host,
// queries GitHub and reads the prompt from stdin.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		interactive: true,
		metadata:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.prober == nil {
		r.prober = platform.NewProber()
	}
	if r.versions == nil {
		r.versions = version.NewAggregator(version.NewRegistrySource(), version.NewReleaseSource())
	}
	if r.selector == nil {
		r.selector = selector.New(os.Stdin, os.Stderr)
	}
	return r
}

// NewFromConfig wires real collaborators from cfg. The prompt reads in and
// writes to out.
func NewFromConfig(cfg *config.Config, in io.Reader, out io.Writer, opts ...Option) (*Resolver, error) {
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}
	delay, err := cfg.RetryDelay()
	if err != nil {
		return nil, err
	}

	prober := platform.NewProber(
		platform.WithRunner(hostexec.NewOSRunner()),
		platform.WithRetryPolicy(retry.Policy{MaxAttempts: cfg.ProbeAttempts, Delay: delay}),
		platform.WithLocalInferenceURL(cfg.LocalInferenceURL),
	)

	httpClient := &http.Client{Timeout: timeout}
	sourceOpts := []version.Option{
		version.WithBaseURL(cfg.APIURL),
		version.WithProject(cfg.Owner, cfg.Project),
		version.WithTimeout(timeout),
		version.WithUserAgent(cfg.UserAgent),
		version.WithHTTPClient(httpClient),
	}
	agg := version.NewAggregator(
		version.NewRegistrySource(sourceOpts...),
		version.NewReleaseSource(sourceOpts...),
	)
	if len(cfg.FallbackVersions) > 0 {
		agg.Fallback = version.StaticCandidates(cfg.FallbackVersions)
	}

	sel := selector.New(in, out)
	sel.MaxAttempts = cfg.PromptAttempts

	all := append([]Option{
		WithProber(prober),
		WithVersionResolver(agg),
		WithSelector(sel),
		WithImage(cfg.Registry, cfg.Repository),
	}, opts...)
	return New(all...), nil
}

// Resolve returns the image reference to run on this host.
// Version source failures are absorbed; only probe failures (unsupported
// hosts) and prompt read errors are returned.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Resolution, error) {
	start := time.Now()
	defer func() {
		resolutionDuration.Observe(time.Since(start).Seconds())
	}()

	profile, err := r.prober.Probe(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to detect platform: %w", err)
	}
	slog.Info("platform detected",
		slog.String("accelerator", string(profile.Accelerator)),
		slog.String("suffix", profile.TagSuffix),
		slog.String("platform", profile.Platform.OS+"/"+profile.Platform.Architecture))

	res := &Resolution{
		Header:   *r.header(KindResolution),
		Profile:  profile,
		Outcome:  version.OutcomeSkipped,
		Selected: req.Version,
	}

	var candidates []version.Candidate
	if req.Version == "" {
		vr := r.discover(ctx, req)
		candidates = vr.Candidates
		res.Versions = vr.Candidates
		res.Outcome = vr.Outcome
		res.Fallback = vr.Fallback
	}

	skip := req.SkipVersionPick
	if !skip && req.Version == "" && !r.interactive {
		slog.Info("input is not a terminal, using latest version")
		skip = true
	}

	selected, err := r.selector.Select(candidates, profile, req.Version, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to select version: %w", err)
	}
	res.Selected = selected

	res.Reference = image.NewReference(r.registry, r.repository, image.Compose(selected, profile))
	res.Reference.WarnIfInvalid()
	res.Image = res.Reference.String()
	res.RuntimeArgs = profile.RuntimeArgs()

	resolutionTotal.WithLabelValues(string(profile.Accelerator), string(res.Outcome)).Inc()
	slog.Info("image resolved",
		slog.String("image", res.Image),
		slog.String("selected", selected),
		slog.Bool("fallback", res.Fallback))
	return res, nil
}

// ListVersions returns the ranked candidates for this host without prompting.
func (r *Resolver) ListVersions(ctx context.Context, req Request) (*VersionList, error) {
	profile, err := r.prober.Probe(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to detect platform: %w", err)
	}

	vr := r.discover(ctx, req)
	return &VersionList{
		Header:       *r.header(KindVersionList),
		Profile:      profile,
		Versions:     vr.Candidates,
		BaseVersions: vr.BaseVersions(),
		Outcome:      vr.Outcome,
		Fallback:     vr.Fallback,
	}, nil
}

func (r *Resolver) discover(ctx context.Context, req Request) version.Result {
	vr := r.versions.Resolve(ctx, req.Token, req.SimulatePublic)

	switch {
	case vr.Outcome == version.OutcomeRateLimited:
		slog.Warn("GitHub API rate limit reached, set GITHUB_TOKEN to raise the limit",
			slog.Bool("fallback", vr.Fallback))
	case vr.Fallback:
		slog.Warn("version sources unavailable, offering built-in versions",
			slog.String("outcome", string(vr.Outcome)))
	}
	if req.SimulatePublic && req.Token != "" {
		slog.Info("simulating public access, token ignored")
	}
	return vr
}

func (r *Resolver) header(kind string) *header.Header {
	opts := []header.Option{header.WithKind(kind)}
	for k, v := range r.metadata {
		opts = append(opts, header.WithMetadata(k, v))
	}
	return header.New(opts...)
}
