package header

import (
	"fmt"
	"strings"
	"time"
)

const (
	// APIGroup is the domain every document kind belongs to.
	APIGroup = "vlm.nvidia.com"
	// APIVersionV1 is the current document schema version.
	APIVersionV1 = "v1"

	// MetadataTimestamp records when the document was produced.
	MetadataTimestamp = "timestamp"
	// MetadataInvocationID correlates a document with the log lines of its run.
	MetadataInvocationID = "invocation-id"
	// MetadataToolVersion is the vlmctl build version.
	MetadataToolVersion = "tool-version"
)

// Option configures a Header.
type Option func(*Header)

// WithMetadata adds a metadata key-value pair.
func WithMetadata(key, value string) Option {
	return func(h *Header) {
		if value == "" {
			return
		}
		if h.Metadata == nil {
			h.Metadata = make(map[string]string)
		}
		h.Metadata[key] = value
	}
}

// WithKind sets the kind and derives the API version from it.
func WithKind(kind string) Option {
	return func(h *Header) {
		h.Kind = kind
		h.APIVersion = APIVersionFor(kind)
	}
}

// WithTimestamp records t in UTC.
func WithTimestamp(t time.Time) Option {
	return WithMetadata(MetadataTimestamp, t.UTC().Format(time.RFC3339))
}

// New creates a Header. Without WithTimestamp the current time is recorded.
func New(opts ...Option) *Header {
	h := &Header{Metadata: make(map[string]string)}
	for _, opt := range opts {
		opt(h)
	}
	if _, ok := h.Metadata[MetadataTimestamp]; !ok {
		WithTimestamp(time.Now())(h)
	}
	return h
}

// Header identifies the kind and schema of a document emitted by vlmctl.
type Header struct {
	// Kind is the document type ("Resolution", "VersionList").
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`

	// APIVersion is "<kind>.vlm.nvidia.com/v1".
	APIVersion string `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`

	// Metadata holds the timestamp, invocation id and tool version.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// APIVersionFor returns the API version for kind.
func APIVersionFor(kind string) string {
	return fmt.Sprintf("%s.%s/%s", strings.ToLower(kind), APIGroup, APIVersionV1)
}
