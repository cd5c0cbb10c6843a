package version

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/go-github/v75/github"

	cnserrors "github.com/NVIDIA/vlm-launcher/pkg/errors"
)

// packageType is the GitHub package type of the published image.
const packageType = "container"

// Source is a remote feed of version candidates.
type Source interface {
	Name() SourceName
	Fetch(ctx context.Context, token string, simulatePublic bool) FetchResult
}

// RegistrySource lists tags from the container package registry.
// The registry endpoint always requires a token.
type RegistrySource struct {
	c *client
}

// NewRegistrySource creates a RegistrySource.
func NewRegistrySource(opts ...Option) *RegistrySource {
	return &RegistrySource{c: newClient(opts...)}
}

// Name implements Source.
func (s *RegistrySource) Name() SourceName {
	return SourceRegistry
}

// Fetch implements Source. Without a token, or when simulating public
// access, it reports auth failure without any network I/O.
func (s *RegistrySource) Fetch(ctx context.Context, token string, simulatePublic bool) FetchResult {
	if token == "" || simulatePublic {
		return FetchResult{
			Outcome: OutcomeAuthFailed,
			Err:     cnserrors.New(cnserrors.ErrCodeUnauthorized, "registry: token required"),
		}
	}
	return s.c.fetch(ctx, SourceRegistry, token, s.list)
}

func (s *RegistrySource) list(ctx context.Context, gh *github.Client) ([]string, *github.Response, error) {
	opts := &github.PackageListOptions{ListOptions: github.ListOptions{PerPage: perPage}}
	versions, resp, err := gh.Organizations.PackageGetAllVersions(ctx, s.c.owner, packageType, s.c.name, opts)
	if err != nil {
		return nil, resp, err
	}
	return packageTags(versions), resp, nil
}

// packageTags collects the container tags of every package version.
// Versions without container metadata (untagged layers) contribute nothing.
func packageTags(versions []*github.PackageVersion) []string {
	var tags []string
	for _, v := range versions {
		if v == nil || len(v.Metadata) == 0 {
			continue
		}
		var meta github.PackageMetadata
		if err := json.Unmarshal(v.Metadata, &meta); err != nil {
			slog.Debug("skipping package version with unreadable metadata",
				slog.Int64("id", v.GetID()), slog.String("error", err.Error()))
			continue
		}
		if meta.Container == nil {
			continue
		}
		tags = append(tags, meta.Container.Tags...)
	}
	return tags
}
