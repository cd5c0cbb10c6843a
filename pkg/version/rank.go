package version

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	"github.com/woozymasta/rats"
	"github.com/woozymasta/semver"

	"github.com/NVIDIA/vlm-launcher/pkg/platform"
)

const latestTag = "latest"

var baseSemverPattern = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)?$`)

// Classify returns the kind of a raw tag.
func Classify(raw string) Kind {
	if raw == latestTag {
		return KindLatestAlias
	}
	if baseSemverPattern.MatchString(raw) {
		return KindBaseSemver
	}
	base, suffix := SplitSuffix(raw)
	if suffix == "" {
		return KindOther
	}
	switch {
	case base == latestTag:
		return KindLatestAlias
	case baseSemverPattern.MatchString(base):
		return KindPlatformQualified
	default:
		return KindOther
	}
}

// SplitSuffix separates a known platform suffix from tag.
// The suffix is empty when tag carries none.
func SplitSuffix(tag string) (base, suffix string) {
	for _, s := range platform.KnownSuffixes() {
		if b, ok := strings.CutSuffix(tag, s); ok && b != "" {
			return b, s
		}
	}
	return tag, ""
}

// Rank orders candidates for display: latest aliases first, then versions
// newest first with the unsuffixed build ahead of its platform variants,
// then everything else in reverse natural order. The sort is stable.
func Rank(in []Candidate) []Candidate {
	out := slices.Clone(in)
	slices.SortStableFunc(out, compareCandidates)
	return out
}

// Dedupe drops repeated tags, keeping the first occurrence.
func Dedupe(in []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(in))
	out := make([]Candidate, 0, len(in))
	for _, c := range in {
		if _, ok := seen[c.Raw]; ok {
			continue
		}
		seen[c.Raw] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Merge concatenates the lists, ranks them and removes duplicates.
// When a tag appears in both lists the entry from the first one wins.
func Merge(lists ...[]Candidate) []Candidate {
	var all []Candidate
	for _, l := range lists {
		all = append(all, l...)
	}
	return Dedupe(Rank(all))
}

// StableReleases returns the distinct stable base versions found in tags,
// newest first.
func StableReleases(tags []string) []string {
	bases := make([]string, 0, len(tags))
	for _, t := range tags {
		if Classify(t) == KindBaseSemver {
			bases = append(bases, t)
		}
	}
	if len(bases) == 0 {
		return nil
	}
	return rats.Select(bases, rats.Options{
		FilterSemver: true,
		Deduplicate:  true,
		Depth:        rats.DepthPatch,
		Sort:         rats.SortDesc,
		Format:       rats.FormatAll,
	})
}

func group(k Kind) int {
	switch k {
	case KindLatestAlias:
		return 0
	case KindBaseSemver, KindPlatformQualified:
		return 1
	default:
		return 2
	}
}

func compareCandidates(a, b Candidate) int {
	if c := cmp.Compare(group(a.Kind), group(b.Kind)); c != 0 {
		return c
	}
	switch group(a.Kind) {
	case 0, 1:
		aBase, aSuffix := SplitSuffix(a.Raw)
		bBase, bSuffix := SplitSuffix(b.Raw)
		if c := compareVersionsDesc(aBase, bBase); c != 0 {
			return c
		}
		// Unsuffixed first, then suffixes alphabetically.
		if (aSuffix == "") != (bSuffix == "") {
			if aSuffix == "" {
				return -1
			}
			return 1
		}
		return strings.Compare(aSuffix, bSuffix)
	default:
		return -naturalCompare(a.Raw, b.Raw)
	}
}

func compareVersionsDesc(a, b string) int {
	if a == b {
		return 0
	}
	av, aok := semver.Parse(a)
	bv, bok := semver.Parse(b)
	if aok && bok && av.Valid && bv.Valid {
		if c := av.Compare(bv); c != 0 {
			return -c
		}
		return 0
	}
	return -naturalCompare(a, b)
}

// naturalCompare compares strings treating digit runs as numbers.
func naturalCompare(a, b string) int {
	for a != "" && b != "" {
		ac, arest := nextChunk(a)
		bc, brest := nextChunk(b)
		if isDigit(ac[0]) && isDigit(bc[0]) {
			an := strings.TrimLeft(ac, "0")
			bn := strings.TrimLeft(bc, "0")
			if c := cmp.Compare(len(an), len(bn)); c != 0 {
				return c
			}
			if c := strings.Compare(an, bn); c != 0 {
				return c
			}
		} else if c := strings.Compare(ac, bc); c != 0 {
			return c
		}
		a, b = arest, brest
	}
	return cmp.Compare(len(a), len(b))
}

func nextChunk(s string) (chunk, rest string) {
	digit := isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == digit {
		i++
	}
	return s[:i], s[i:]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
