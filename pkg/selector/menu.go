package selector

import (
	"github.com/NVIDIA/vlm-launcher/pkg/image"
	"github.com/NVIDIA/vlm-launcher/pkg/platform"
	"github.com/NVIDIA/vlm-launcher/pkg/version"
)

// MaxMenuEntries caps the number of versions offered.
const MaxMenuEntries = 10

// DefaultVersion is what an empty answer or a skipped prompt selects.
const DefaultVersion = "latest"

// Entry is one menu line.
type Entry struct {
	// Version is returned when the entry is picked.
	Version string `json:"version" yaml:"version"`
	// Tag is the image tag the version resolves to on this platform.
	Tag string `json:"tag" yaml:"tag"`
}

// BuildMenu turns ranked candidates into at most MaxMenuEntries entries.
// The first entry is always "latest". Suffixed platforms prefer tags
// published for their suffix and only synthesize entries from base
// versions when none exist; multi-arch platforms list unsuffixed tags.
func BuildMenu(candidates []version.Candidate, profile platform.Profile) []Entry {
	if len(candidates) == 0 {
		candidates = version.DefaultFallback()
	}

	entries := []Entry{{Version: DefaultVersion, Tag: image.Compose(DefaultVersion, profile)}}
	seen := map[string]struct{}{DefaultVersion: {}}
	add := func(v string) {
		if len(entries) >= MaxMenuEntries {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		entries = append(entries, Entry{Version: v, Tag: image.Compose(v, profile)})
	}

	if profile.IsMultiArch() {
		for _, c := range candidates {
			if _, suffix := version.SplitSuffix(c.Raw); suffix != "" {
				continue
			}
			if c.Kind == version.KindBaseSemver || c.Kind == version.KindOther {
				add(c.Raw)
			}
		}
		return entries
	}

	direct := false
	for _, c := range candidates {
		if c.Kind != version.KindPlatformQualified {
			continue
		}
		base, suffix := version.SplitSuffix(c.Raw)
		if suffix == profile.TagSuffix {
			direct = true
			add(base)
		}
	}
	if direct {
		return entries
	}

	for _, c := range candidates {
		if c.Kind == version.KindBaseSemver {
			add(c.Raw)
		}
	}
	return entries
}
