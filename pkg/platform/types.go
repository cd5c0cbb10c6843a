package platform

import (
	"fmt"
	"slices"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// OS is the host operating system family.
type OS string

const (
	OSLinux  OS = "Linux"
	OSDarwin OS = "Darwin"
)

// Arch is the host CPU architecture as reported by uname -m.
type Arch string

const (
	ArchX86_64  Arch = "x86_64"
	ArchAarch64 Arch = "aarch64"
)

// Accelerator is the class of GPU hardware available to containers.
type Accelerator string

const (
	AcceleratorNone         Accelerator = "none"
	AcceleratorConsumerGPU  Accelerator = "consumer-gpu"
	AcceleratorJetsonOrin   Accelerator = "jetson-orin"
	AcceleratorJetsonThor   Accelerator = "jetson-thor"
	AcceleratorArm64SbsaGpu Accelerator = "arm64-sbsa-gpu"
)

// Image tag suffixes for platform-specific builds. Multi-arch images
// (x86_64 and arm64 SBSA) carry no suffix.
const (
	SuffixMac        = "-mac"
	SuffixJetsonOrin = "-jetson-orin"
	SuffixJetsonThor = "-jetson-thor"
)

// ThorL4TMajor is the first L4T major release shipped for Jetson Thor.
const ThorL4TMajor = 38

// KnownSuffixes returns every platform suffix a tag can carry.
func KnownSuffixes() []string {
	return []string{SuffixMac, SuffixJetsonOrin, SuffixJetsonThor}
}

// IsValid reports whether a is one of the supported accelerator classes.
func (a Accelerator) IsValid() bool {
	return slices.Contains(SupportedAccelerators(), a)
}

// SupportedAccelerators lists all accelerator classes.
func SupportedAccelerators() []Accelerator {
	return []Accelerator{
		AcceleratorNone,
		AcceleratorConsumerGPU,
		AcceleratorJetsonOrin,
		AcceleratorJetsonThor,
		AcceleratorArm64SbsaGpu,
	}
}

// Flag is a container runtime capability the launcher has to request.
type Flag string

const (
	// FlagGPUs exposes all GPUs through the container toolkit.
	FlagGPUs Flag = "gpus"
	// FlagNvidiaRuntime selects the nvidia runtime (Jetson Orin / L4T < 38).
	FlagNvidiaRuntime Flag = "nvidia-runtime"
)

// Args returns the docker run arguments for the flag.
func (f Flag) Args() []string {
	switch f {
	case FlagGPUs:
		return []string{"--gpus", "all"}
	case FlagNvidiaRuntime:
		return []string{"--runtime", "nvidia"}
	default:
		return nil
	}
}

// Mount is a host path the launcher should bind into the container.
type Mount struct {
	Source   string `json:"source" yaml:"source"`
	Target   string `json:"target" yaml:"target"`
	ReadOnly bool   `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
}

// String renders the mount in docker -v syntax.
func (m Mount) String() string {
	if m.ReadOnly {
		return fmt.Sprintf("%s:%s:ro", m.Source, m.Target)
	}
	return fmt.Sprintf("%s:%s", m.Source, m.Target)
}

// Profile describes what kind of image the host can run.
// Profiles are built once by Prober.Probe and passed by value; consumers
// must not modify them.
type Profile struct {
	OS          OS          `json:"os" yaml:"os"`
	Arch        Arch        `json:"arch" yaml:"arch"`
	Accelerator Accelerator `json:"accelerator" yaml:"accelerator"`
	TagSuffix   string      `json:"tagSuffix" yaml:"tagSuffix"`
	Flags       []Flag      `json:"runtimeFlags,omitempty" yaml:"runtimeFlags,omitempty"`
	Mounts      []Mount     `json:"mounts,omitempty" yaml:"mounts,omitempty"`

	// Platform is the OCI platform of the image to pull.
	Platform ocispec.Platform `json:"platform" yaml:"platform"`

	// L4TMajor is the Jetson Linux major release, zero elsewhere.
	L4TMajor int `json:"l4tMajor,omitempty" yaml:"l4tMajor,omitempty"`

	// DetectedBy names the signal that decided the Jetson generation.
	DetectedBy string `json:"detectedBy,omitempty" yaml:"detectedBy,omitempty"`

	// Subtype is a display-only hardware name (e.g. "DGX Spark").
	Subtype string `json:"subtype,omitempty" yaml:"subtype,omitempty"`

	// LocalInference reports whether a local inference service answered (macOS only).
	LocalInference bool `json:"localInference,omitempty" yaml:"localInference,omitempty"`
}

// NewProfile builds a profile whose suffix and runtime flags follow from
// the accelerator class. GPU and runtime flags are never both set.
func NewProfile(os OS, arch Arch, acc Accelerator) Profile {
	p := Profile{
		OS:          os,
		Arch:        arch,
		Accelerator: acc,
		Platform:    ociPlatform(arch),
	}

	switch {
	case os == OSDarwin:
		p.Accelerator = AcceleratorNone
		p.TagSuffix = SuffixMac
	case acc == AcceleratorJetsonOrin:
		p.TagSuffix = SuffixJetsonOrin
		p.Flags = []Flag{FlagNvidiaRuntime}
	case acc == AcceleratorJetsonThor:
		p.TagSuffix = SuffixJetsonThor
		p.Flags = []Flag{FlagGPUs}
	case acc == AcceleratorConsumerGPU, acc == AcceleratorArm64SbsaGpu:
		p.Flags = []Flag{FlagGPUs}
	}

	return p
}

// AcceleratorForL4T maps a Jetson Linux major release to its hardware generation.
func AcceleratorForL4T(major int) Accelerator {
	if major >= ThorL4TMajor {
		return AcceleratorJetsonThor
	}
	return AcceleratorJetsonOrin
}

// IsMultiArch reports whether the profile pulls the unsuffixed multi-arch image.
func (p Profile) IsMultiArch() bool {
	return p.TagSuffix == ""
}

// HasFlag reports whether f is requested.
func (p Profile) HasFlag(f Flag) bool {
	return slices.Contains(p.Flags, f)
}

// RuntimeArgs returns the docker run arguments for all flags and mounts.
func (p Profile) RuntimeArgs() []string {
	var args []string
	for _, f := range p.Flags {
		args = append(args, f.Args()...)
	}
	for _, m := range p.Mounts {
		args = append(args, "-v", m.String())
	}
	return args
}

// String returns a short human readable description.
func (p Profile) String() string {
	name := string(p.Accelerator)
	if p.Subtype != "" {
		name = fmt.Sprintf("%s (%s)", name, p.Subtype)
	}
	return fmt.Sprintf("%s/%s %s", p.OS, p.Arch, name)
}
