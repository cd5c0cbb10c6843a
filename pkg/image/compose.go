package image

import (
	"strings"

	"github.com/NVIDIA/vlm-launcher/pkg/platform"
	"github.com/NVIDIA/vlm-launcher/pkg/version"
)

// Compose returns the tag to pull for selected on the given profile.
//
// Tags that already carry a platform suffix are returned unchanged.
// "latest" and plain MAJOR.MINOR[.PATCH] versions get the profile suffix.
// Anything else is treated as a custom tag and returned unchanged.
// Compose is idempotent: Compose(Compose(t, p), p) == Compose(t, p).
func Compose(selected string, profile platform.Profile) string {
	for _, s := range platform.KnownSuffixes() {
		if strings.HasSuffix(selected, s) {
			return selected
		}
	}
	if profile.TagSuffix == "" {
		return selected
	}
	switch version.Classify(selected) {
	case version.KindLatestAlias, version.KindBaseSemver:
		return selected + profile.TagSuffix
	default:
		return selected
	}
}
