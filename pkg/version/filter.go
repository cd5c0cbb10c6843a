package version

import "strings"

// DevBuildPatterns match tags that are never offered as versions:
// branch builds, commit builds and signatures.
var DevBuildPatterns = []string{
	"main",
	"main-*",
	"master*",
	"dev*",
	"nightly*",
	"pr-*",
	"sha-*",
	"sha256-*",
	"buildcache*",
}

// FilterOut returns the tags that match none of the patterns.
// Supports wildcard patterns:
//   - "prefix*" matches tags starting with "prefix"
//   - "*suffix" matches tags ending with "suffix"
//   - "*contains*" matches tags containing "contains"
//   - "exact" matches tags exactly
func FilterOut(tags []string, patterns []string) []string {
	result := make([]string, 0, len(tags))

	for _, tag := range tags {
		omit := false
		for _, pattern := range patterns {
			if matchesPattern(tag, pattern) {
				omit = true
				break
			}
		}
		if !omit {
			result = append(result, tag)
		}
	}

	return result
}

// matchesPattern checks if a tag matches a wildcard pattern.
func matchesPattern(key, pattern string) bool {
	// No wildcard - exact match
	if !strings.Contains(pattern, "*") {
		return key == pattern
	}

	// *contains* - contains match
	if strings.HasPrefix(pattern, "*") && strings.HasSuffix(pattern, "*") {
		substr := strings.Trim(pattern, "*")
		return strings.Contains(key, substr)
	}

	// *suffix - ends with match
	if strings.HasPrefix(pattern, "*") {
		suffix := strings.TrimPrefix(pattern, "*")
		return strings.HasSuffix(key, suffix)
	}

	// prefix* - starts with match
	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		return strings.HasPrefix(key, prefix)
	}

	return false
}
