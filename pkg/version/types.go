package version

import (
	"fmt"

	cnserrors "github.com/NVIDIA/vlm-launcher/pkg/errors"
)

// Kind classifies a tag string.
type Kind string

const (
	// KindBaseSemver is an unsuffixed MAJOR.MINOR[.PATCH] version.
	KindBaseSemver Kind = "base"
	// KindLatestAlias is "latest", optionally with a platform suffix.
	KindLatestAlias Kind = "latest"
	// KindPlatformQualified is a semver with a platform suffix ("0.2.0-jetson-orin").
	KindPlatformQualified Kind = "platform"
	// KindOther is any other tag (pre-releases, custom names).
	KindOther Kind = "other"
)

// SourceName identifies where a candidate came from.
type SourceName string

const (
	SourceRegistry SourceName = "registry"
	SourceReleases SourceName = "releases"
	SourceStatic   SourceName = "static"
)

// Candidate is one version a user can pick.
type Candidate struct {
	Raw    string     `json:"tag" yaml:"tag"`
	Kind   Kind       `json:"kind" yaml:"kind"`
	Source SourceName `json:"source" yaml:"source"`
}

// NewCandidate classifies raw and returns a candidate from source.
func NewCandidate(raw string, source SourceName) Candidate {
	return Candidate{Raw: raw, Kind: Classify(raw), Source: source}
}

// String returns the raw tag.
func (c Candidate) String() string {
	return c.Raw
}

// Outcome is the tagged result of querying a source.
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeRateLimited Outcome = "rate-limited"
	OutcomeAuthFailed  Outcome = "auth-failed"
	OutcomeUnreachable Outcome = "unreachable"
	OutcomeEmpty       Outcome = "empty"
	// OutcomeSkipped marks a source that was not queried.
	OutcomeSkipped Outcome = "skipped"
)

// severity orders failures by how actionable they are for the user.
// Rate limiting ranks first since a token fixes it.
func (o Outcome) severity() int {
	switch o {
	case OutcomeRateLimited:
		return 4
	case OutcomeAuthFailed:
		return 3
	case OutcomeUnreachable:
		return 2
	case OutcomeEmpty:
		return 1
	default:
		return 0
	}
}

// IsFailure reports whether o means no candidates were obtained.
func (o Outcome) IsFailure() bool {
	return o.severity() > 0
}

// ErrorCode maps a failed outcome to the error taxonomy.
func (o Outcome) ErrorCode() cnserrors.ErrorCode {
	switch o {
	case OutcomeRateLimited:
		return cnserrors.ErrCodeRateLimitExceeded
	case OutcomeAuthFailed:
		return cnserrors.ErrCodeUnauthorized
	case OutcomeUnreachable:
		return cnserrors.ErrCodeUnavailable
	case OutcomeEmpty:
		return cnserrors.ErrCodeNotFound
	default:
		return ""
	}
}

// moreSpecific returns whichever failure is more actionable.
func moreSpecific(a, b Outcome) Outcome {
	if b.severity() > a.severity() {
		return b
	}
	return a
}

// FetchResult is what a Source returns for one query.
type FetchResult struct {
	Outcome    Outcome
	Candidates []Candidate
	StatusCode int
	Err        error
}

func failed(source SourceName, o Outcome, status int, cause error) FetchResult {
	msg := fmt.Sprintf("%s: %s", source, o)
	if status != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, status)
	}
	return FetchResult{
		Outcome:    o,
		StatusCode: status,
		Err:        cnserrors.Wrap(o.ErrorCode(), msg, cause),
	}
}
