package version

import (
	"context"
	"strings"

	"github.com/google/go-github/v75/github"
)

// ReleaseSource lists published releases of the project repository.
// It works anonymously; a token only raises the rate limit.
type ReleaseSource struct {
	c *client
}

// NewReleaseSource creates a ReleaseSource.
func NewReleaseSource(opts ...Option) *ReleaseSource {
	return &ReleaseSource{c: newClient(opts...)}
}

// Name implements Source.
func (s *ReleaseSource) Name() SourceName {
	return SourceReleases
}

// Fetch implements Source. The token is omitted when simulating public access.
func (s *ReleaseSource) Fetch(ctx context.Context, token string, simulatePublic bool) FetchResult {
	if simulatePublic {
		token = ""
	}
	return s.c.fetch(ctx, SourceReleases, token, s.list)
}

func (s *ReleaseSource) list(ctx context.Context, gh *github.Client) ([]string, *github.Response, error) {
	releases, resp, err := gh.Repositories.ListReleases(ctx, s.c.owner, s.c.name, &github.ListOptions{PerPage: perPage})
	if err != nil {
		return nil, resp, err
	}
	return releaseTags(releases), resp, nil
}

// releaseTags returns the tag of every published release, without the
// leading "v". Drafts are skipped.
func releaseTags(releases []*github.RepositoryRelease) []string {
	tags := make([]string, 0, len(releases))
	for _, r := range releases {
		if r == nil || r.GetDraft() || r.GetTagName() == "" {
			continue
		}
		tags = append(tags, strings.TrimPrefix(r.GetTagName(), "v"))
	}
	return tags
}
