package selector

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/vlm-launcher/pkg/platform"
	"github.com/NVIDIA/vlm-launcher/pkg/version"
)

var (
	orin = platform.NewProfile(platform.OSLinux, platform.ArchAarch64, platform.AcceleratorJetsonOrin)
	x86  = platform.NewProfile(platform.OSLinux, platform.ArchX86_64, platform.AcceleratorConsumerGPU)
)

func cands(tags ...string) []version.Candidate {
	out := make([]version.Candidate, 0, len(tags))
	for _, t := range tags {
		out = append(out, version.NewCandidate(t, version.SourceRegistry))
	}
	return out
}

func versions(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Version)
	}
	return out
}

func TestBuildMenu(t *testing.T) {
	tests := []struct {
		name     string
		cands    []version.Candidate
		profile  platform.Profile
		want     []string
		wantTags []string
	}{
		{
			name:     "direct platform matches preferred",
			cands:    cands("latest", "0.2.1", "0.2.1-jetson-orin", "0.2.0", "0.2.0-jetson-thor", "0.1.0-jetson-orin"),
			profile:  orin,
			want:     []string{"latest", "0.2.1", "0.1.0"},
			wantTags: []string{"latest-jetson-orin", "0.2.1-jetson-orin", "0.1.0-jetson-orin"},
		},
		{
			name:     "synthesized from base versions",
			cands:    cands("latest", "0.2.1", "0.2.0"),
			profile:  orin,
			want:     []string{"latest", "0.2.1", "0.2.0"},
			wantTags: []string{"latest-jetson-orin", "0.2.1-jetson-orin", "0.2.0-jetson-orin"},
		},
		{
			name:     "multi-arch lists unsuffixed only",
			cands:    cands("latest", "latest-mac", "0.2.1", "0.2.1-jetson-orin", "0.2.0-mac", "0.2.0", "nightly-custom"),
			profile:  x86,
			want:     []string{"latest", "0.2.1", "0.2.0", "nightly-custom"},
			wantTags: []string{"latest", "0.2.1", "0.2.0", "nightly-custom"},
		},
		{
			name:     "empty uses static list",
			profile:  x86,
			want:     []string{"latest", "0.2.1", "0.2.0"},
			wantTags: []string{"latest", "0.2.1", "0.2.0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildMenu(tt.cands, tt.profile)
			assert.Equal(t, tt.want, versions(got))
			tags := make([]string, 0, len(got))
			for _, e := range got {
				tags = append(tags, e.Tag)
			}
			assert.Equal(t, tt.wantTags, tags)
		})
	}
}

func TestBuildMenu_Capped(t *testing.T) {
	var tags []string
	for i := 30; i > 0; i-- {
		tags = append(tags, fmt.Sprintf("0.1.%d", i))
	}
	got := BuildMenu(cands(tags...), x86)
	assert.Len(t, got, MaxMenuEntries)
	assert.Equal(t, "latest", got[0].Version)
}

func TestSelect(t *testing.T) {
	menu := cands("latest", "0.2.1", "0.2.0")

	tests := []struct {
		name      string
		input     string
		requested string
		skip      bool
		want      string
		wantOut   string
	}{
		{name: "requested wins", input: "2\n", requested: "0.1.0", want: "0.1.0"},
		{name: "skip returns latest", input: "2\n", skip: true, want: "latest"},
		{name: "empty input selects latest", input: "\n", want: "latest"},
		{name: "eof selects latest", input: "", want: "latest"},
		{name: "numeric choice", input: "2\n", want: "0.2.1"},
		{name: "numeric choice without newline", input: "3", want: "0.2.0"},
		{name: "out of range re-prompts", input: "9\n3\n", want: "0.2.0", wantOut: "Invalid choice 9"},
		{name: "zero re-prompts", input: "0\n\n", want: "latest", wantOut: "Invalid choice 0"},
		{name: "custom tag verbatim", input: "my-build\n", want: "my-build"},
		{name: "typo accepted with hint", input: "0.2.2\n", want: "0.2.2", wantOut: "did you mean"},
		{name: "exhausted attempts", input: "9\n9\n9\n9\n9\n9\n", want: "latest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			s := New(strings.NewReader(tt.input), &out)

			got, err := s.Select(menu, orin, tt.requested, tt.skip)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.wantOut != "" {
				assert.Contains(t, out.String(), tt.wantOut)
			}
		})
	}
}

func TestSelect_DefaultIsLatest(t *testing.T) {
	for _, p := range []platform.Profile{orin, x86} {
		s := New(strings.NewReader("\n"), &bytes.Buffer{})
		got, err := s.Select(cands("0.2.1-jetson-orin", "0.2.1"), p, "", false)
		require.NoError(t, err)
		assert.Equal(t, "latest", got)
	}
}

func TestSelect_PrintsMenu(t *testing.T) {
	var out bytes.Buffer
	_, err := New(strings.NewReader("\n"), &out).Select(cands("0.2.1"), orin, "", false)
	require.NoError(t, err)
	assert.Contains(t, out.String(), " 1) latest")
	assert.Contains(t, out.String(), "(0.2.1-jetson-orin)")
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(strings.NewReader("")))
}
