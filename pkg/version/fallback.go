package version

import (
	_ "embed"
	"sync"

	cnserrors "github.com/NVIDIA/vlm-launcher/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	//go:embed data/fallback.yaml
	fallbackData []byte

	fallbackOnce   sync.Once
	cachedFallback []string
	cachedErr      error
)

type fallbackFile struct {
	Versions []string `yaml:"versions"`
}

// loadFallback parses the embedded static version list once.
func loadFallback() ([]string, error) {
	fallbackOnce.Do(func() {
		var f fallbackFile
		if err := yaml.Unmarshal(fallbackData, &f); err != nil {
			cachedErr = cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to parse fallback versions", err)
			return
		}
		if len(f.Versions) == 0 {
			cachedErr = cnserrors.New(cnserrors.ErrCodeInternal, "fallback version list is empty")
			return
		}
		cachedFallback = f.Versions
	})
	return cachedFallback, cachedErr
}

// DefaultFallback returns the static candidates shipped with the binary.
// It never returns an empty list: a broken embed degrades to "latest".
func DefaultFallback() []Candidate {
	tags, err := loadFallback()
	if err != nil {
		tags = []string{latestTag}
	}
	return StaticCandidates(tags)
}

// StaticCandidates wraps tags as candidates from the static source,
// preserving their order.
func StaticCandidates(tags []string) []Candidate {
	out := make([]Candidate, 0, len(tags))
	for _, t := range tags {
		out = append(out, NewCandidate(t, SourceStatic))
	}
	return out
}
