package image

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NVIDIA/vlm-launcher/pkg/platform"
)

func profiles() map[string]platform.Profile {
	return map[string]platform.Profile{
		"mac":  platform.NewProfile(platform.OSDarwin, platform.ArchAarch64, platform.AcceleratorNone),
		"x86":  platform.NewProfile(platform.OSLinux, platform.ArchX86_64, platform.AcceleratorConsumerGPU),
		"orin": platform.NewProfile(platform.OSLinux, platform.ArchAarch64, platform.AcceleratorJetsonOrin),
		"thor": platform.NewProfile(platform.OSLinux, platform.ArchAarch64, platform.AcceleratorJetsonThor),
		"sbsa": platform.NewProfile(platform.OSLinux, platform.ArchAarch64, platform.AcceleratorArm64SbsaGpu),
	}
}

func TestCompose(t *testing.T) {
	p := profiles()
	tests := []struct {
		name     string
		selected string
		profile  platform.Profile
		want     string
	}{
		{"orin version", "0.2.1", p["orin"], "0.2.1-jetson-orin"},
		{"orin latest", "latest", p["orin"], "latest-jetson-orin"},
		{"thor short version", "1.0", p["thor"], "1.0-jetson-thor"},
		{"mac version", "0.2.0", p["mac"], "0.2.0-mac"},
		{"x86 version", "0.2.1", p["x86"], "0.2.1"},
		{"x86 latest", "latest", p["x86"], "latest"},
		{"sbsa version", "0.2.1", p["sbsa"], "0.2.1"},
		{"already suffixed", "0.2.1-jetson-thor", p["orin"], "0.2.1-jetson-thor"},
		{"suffixed latest", "latest-mac", p["x86"], "latest-mac"},
		{"custom tag", "my-build", p["orin"], "my-build"},
		{"prerelease", "0.3.0-rc1", p["orin"], "0.3.0-rc1"},
		{"v prefix is custom", "v0.2.1", p["orin"], "v0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compose(tt.selected, tt.profile))
		})
	}
}

func TestCompose_Idempotent(t *testing.T) {
	inputs := []string{"latest", "0.2.1", "1.0", "0.2.1-jetson-orin", "latest-mac", "custom", "", "0.3.0-rc1"}
	for name, p := range profiles() {
		for _, in := range inputs {
			once := Compose(in, p)
			assert.Equal(t, once, Compose(once, p), "profile %s, input %q", name, in)
		}
	}
}

func TestReference(t *testing.T) {
	ref := NewReference("", "", Compose("0.2.1", profiles()["orin"]))
	assert.Equal(t, "ghcr.io/nvidia-ai-iot/live-vlm-webui:0.2.1-jetson-orin", ref.String())
	assert.Equal(t, "ghcr.io/nvidia-ai-iot/live-vlm-webui", ref.Name())
	assert.NoError(t, ref.Validate())
	assert.True(t, ref.WarnIfInvalid())
}

func TestReference_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ref     Reference
		wantErr bool
	}{
		{"default", NewReference("", "", "latest"), false},
		{"custom registry", NewReference("registry.local:5000", "team/vlm", "dev-1"), false},
		{"empty tag", NewReference("", "", ""), true},
		{"bad tag chars", NewReference("", "", "has space"), true},
		{"uppercase repository", NewReference("", "NVIDIA/VLM", "latest"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ref.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, tt.ref.WarnIfInvalid())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
