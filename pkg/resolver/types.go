package resolver

import (
	"github.com/NVIDIA/vlm-launcher/pkg/header"
	"github.com/NVIDIA/vlm-launcher/pkg/image"
	"github.com/NVIDIA/vlm-launcher/pkg/platform"
	"github.com/NVIDIA/vlm-launcher/pkg/version"
)

const (
	KindResolution  = "Resolution"
	KindVersionList = "VersionList"
)

// Request carries the user's choices for one run.
type Request struct {
	// Version is an explicit version or tag; empty means ask.
	Version string
	// SkipVersionPick selects "latest" without prompting.
	SkipVersionPick bool
	// Token authenticates GitHub API calls; may be empty.
	Token string
	// SimulatePublic ignores Token to reproduce anonymous behavior.
	SimulatePublic bool
}

// Resolution is the document handed to the launcher.
type Resolution struct {
	header.Header `json:",inline" yaml:",inline"`

	Profile   platform.Profile `json:"profile" yaml:"profile"`
	Selected  string           `json:"selected" yaml:"selected"`
	Reference image.Reference  `json:"reference" yaml:"reference"`
	Image     string           `json:"image" yaml:"image"`

	// RuntimeArgs are the docker run arguments for flags and mounts.
	RuntimeArgs []string `json:"runtimeArgs,omitempty" yaml:"runtimeArgs,omitempty"`

	// Versions are the candidates that were offered, empty when a version was requested.
	Versions []version.Candidate `json:"versions,omitempty" yaml:"versions,omitempty"`
	Outcome  version.Outcome     `json:"outcome" yaml:"outcome"`
	Fallback bool                `json:"fallback" yaml:"fallback"`
}

// VersionList is the output of --list-versions.
type VersionList struct {
	header.Header `json:",inline" yaml:",inline"`

	Profile      platform.Profile    `json:"profile" yaml:"profile"`
	Versions     []version.Candidate `json:"versions" yaml:"versions"`
	BaseVersions []string            `json:"baseVersions,omitempty" yaml:"baseVersions,omitempty"`
	Outcome      version.Outcome     `json:"outcome" yaml:"outcome"`
	Fallback     bool                `json:"fallback" yaml:"fallback"`
}
