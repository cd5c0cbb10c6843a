package image

import (
	"fmt"
	"log/slog"

	"github.com/distribution/reference"

	cnserrors "github.com/NVIDIA/vlm-launcher/pkg/errors"
)

const (
	// DefaultRegistry hosts the published images.
	DefaultRegistry = "ghcr.io"
	// DefaultRepository is the image path under the registry.
	DefaultRepository = "nvidia-ai-iot/live-vlm-webui"
)

// Reference is a fully qualified, pullable image reference.
type Reference struct {
	Registry   string `json:"registry" yaml:"registry"`
	Repository string `json:"repository" yaml:"repository"`
	Tag        string `json:"tag" yaml:"tag"`
}

// NewReference builds a Reference, filling in the defaults for empty parts.
func NewReference(registry, repository, tag string) Reference {
	if registry == "" {
		registry = DefaultRegistry
	}
	if repository == "" {
		repository = DefaultRepository
	}
	return Reference{Registry: registry, Repository: repository, Tag: tag}
}

// Name returns the reference without the tag.
func (r Reference) Name() string {
	return r.Registry + "/" + r.Repository
}

// String returns registry/repository:tag.
func (r Reference) String() string {
	return fmt.Sprintf("%s:%s", r.Name(), r.Tag)
}

// Validate checks the reference against the distribution grammar.
func (r Reference) Validate() error {
	if r.Tag == "" {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest, "image tag is empty")
	}
	named, err := reference.ParseNormalizedNamed(r.String())
	if err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid image reference %q", r.String()), err)
	}
	if _, ok := named.(reference.Tagged); !ok {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("image reference %q has no tag", r.String()))
	}
	return nil
}

// WarnIfInvalid logs a warning when the reference is malformed.
// Custom tags are passed through to the launcher regardless.
func (r Reference) WarnIfInvalid() bool {
	if err := r.Validate(); err != nil {
		slog.Warn("image reference may not be pullable",
			slog.String("reference", r.String()),
			slog.String("error", err.Error()))
		return false
	}
	return true
}
