package platform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/containerd/platforms"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/NVIDIA/vlm-launcher/pkg/defaults"
	cnserrors "github.com/NVIDIA/vlm-launcher/pkg/errors"
	"github.com/NVIDIA/vlm-launcher/pkg/hostexec"
	"github.com/NVIDIA/vlm-launcher/pkg/retry"
)

// Host paths consulted by the prober.
const (
	TegraReleasePath    = "/etc/nv_tegra_release"
	DeviceTreeModelPath = "/proc/device-tree/model"
	JtopSocketPath      = "/run/jtop.sock"

	// DefaultLocalInferenceURL is the Ollama endpoint probed on macOS.
	DefaultLocalInferenceURL = "http://localhost:11434/api/tags"

	nvidiaSMI = "nvidia-smi"
)

// Detection sources recorded in Profile.DetectedBy.
const (
	DetectedByMarker     = "l4t-marker"
	DetectedByDeviceTree = "device-tree"
	DetectedByGPUName    = "gpu-name"
	DetectedByDefault    = "default"
)

// defaultJetsonL4T is assumed when the host is a Jetson but no signal names
// the generation. Orin is by far the more common device.
const defaultJetsonL4T = 36

// Prober inspects the host and produces a Profile.
type Prober struct {
	fsys              fs.FS
	runner            hostexec.Runner
	client            *http.Client
	goos              string
	goarch            string
	retry             retry.Policy
	localInferenceURL string
}

// Option is a functional option for configuring Prober instances.
type Option func(*Prober)

// WithFS sets the filesystem host paths are read from. It is rooted at "/".
func WithFS(fsys fs.FS) Option {
	return func(p *Prober) {
		p.fsys = fsys
	}
}

// WithRunner sets the command runner used for GPU enumeration.
func WithRunner(r hostexec.Runner) Option {
	return func(p *Prober) {
		p.runner = r
	}
}

// WithHTTPClient sets the client used for the local inference probe.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Prober) {
		p.client = c
	}
}

// WithHost overrides the detected GOOS/GOARCH (or uname -m style) values.
func WithHost(goos, goarch string) Option {
	return func(p *Prober) {
		p.goos = goos
		p.goarch = goarch
	}
}

// WithRetryPolicy sets the policy for flaky host commands.
func WithRetryPolicy(rp retry.Policy) Option {
	return func(p *Prober) {
		p.retry = rp
	}
}

// WithLocalInferenceURL sets the endpoint probed on macOS.
func WithLocalInferenceURL(u string) Option {
	return func(p *Prober) {
		p.localInferenceURL = u
	}
}

// NewProber creates a Prober for the current host with the provided options.
func NewProber(opts ...Option) *Prober {
	p := &Prober{
		fsys:              os.DirFS("/"),
		runner:            hostexec.NewOSRunner(),
		client:            &http.Client{Timeout: defaults.LocalInferenceTimeout},
		goos:              runtime.GOOS,
		goarch:            runtime.GOARCH,
		retry:             retry.DefaultPolicy(),
		localInferenceURL: DefaultLocalInferenceURL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe fingerprints the host. It only fails for hosts that cannot run any
// published image: an unknown CPU architecture, or an aarch64 machine with
// neither Jetson signals nor an NVIDIA GPU.
func (p *Prober) Probe(ctx context.Context) (Profile, error) {
	start := time.Now()
	defer func() {
		probeDuration.Observe(time.Since(start).Seconds())
	}()

	arch := normalizeArch(p.goarch)
	slog.Debug("probing host platform", slog.String("os", p.goos), slog.String("arch", string(arch)))

	var (
		prof Profile
		err  error
	)
	switch {
	case p.goos == "darwin":
		prof = p.probeDarwin(ctx, arch)
	case arch == ArchX86_64:
		prof = NewProfile(OSLinux, arch, AcceleratorConsumerGPU)
	case arch == ArchAarch64:
		prof, err = p.probeARM64(ctx)
	default:
		err = cnserrors.New(cnserrors.ErrCodeUnsupportedPlatform,
			fmt.Sprintf("unsupported architecture %q: only x86_64 and aarch64 (arm64) hosts are supported", p.goarch))
	}
	if err != nil {
		probeTotal.WithLabelValues("unsupported").Inc()
		return Profile{}, err
	}

	probeTotal.WithLabelValues(string(prof.Accelerator)).Inc()
	slog.Debug("host platform resolved",
		slog.String("profile", prof.String()),
		slog.String("suffix", prof.TagSuffix),
		slog.String("platform", platforms.Format(prof.Platform)))

	return prof, nil
}

func (p *Prober) probeDarwin(ctx context.Context, arch Arch) Profile {
	prof := NewProfile(OSDarwin, arch, AcceleratorNone)
	prof.LocalInference = p.localInferenceReachable(ctx)
	return prof
}

// localInferenceReachable checks whether a local inference service answers.
// The result is informational only.
func (p *Prober) localInferenceReachable(ctx context.Context) bool {
	if p.localInferenceURL == "" || p.client == nil {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.localInferenceURL, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		slog.Debug("local inference service not reachable", slog.String("url", p.localInferenceURL), slog.String("error", err.Error()))
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

func (p *Prober) probeARM64(ctx context.Context) (Profile, error) {
	if major, by, ok := p.jetsonGeneration(ctx); ok {
		prof := NewProfile(OSLinux, ArchAarch64, AcceleratorForL4T(major))
		prof.L4TMajor = major
		prof.DetectedBy = by
		if p.exists(JtopSocketPath) {
			prof.Mounts = []Mount{{Source: JtopSocketPath, Target: JtopSocketPath}}
		}
		slog.Debug("detected jetson platform", slog.Int("l4t_major", major), slog.String("detected_by", by))
		return prof, nil
	}

	name, ok := p.serverGPU(ctx)
	if !ok {
		return Profile{}, cnserrors.New(cnserrors.ErrCodeUnsupportedPlatform,
			"unsupported aarch64 host: no Jetson platform and no NVIDIA GPU detected (nvidia-smi failed)")
	}

	prof := NewProfile(OSLinux, ArchAarch64, AcceleratorArm64SbsaGpu)
	prof.Subtype = serverSubtype(name)
	return prof, nil
}

// jetsonGeneration resolves the L4T major release from, in order, the
// release marker, the device-tree model and the GPU name. It reports false
// only when no signal says the host is a Jetson at all.
func (p *Prober) jetsonGeneration(ctx context.Context) (int, string, bool) {
	jetson := false

	if content, err := p.readFile(TegraReleasePath); err == nil {
		jetson = true
		line, _, _ := strings.Cut(string(content), "\n")
		if r := ParseL4TMajor(line); r.OK {
			return r.Value, DetectedByMarker, true
		}
		slog.Warn("could not parse L4T release marker, trying other signals", slog.String("line", line))
	} else if !errors.Is(err, fs.ErrNotExist) {
		jetson = true
		slog.Warn("L4T release marker present but not readable, trying other signals",
			slog.String("path", TegraReleasePath), slog.String("error", err.Error()))
	}

	if content, err := p.readFile(DeviceTreeModelPath); err == nil {
		model := strings.ToLower(strings.Trim(string(content), "\x00 \n"))
		switch {
		case strings.Contains(model, "thor"):
			return ThorL4TMajor, DetectedByDeviceTree, true
		case strings.Contains(model, "orin"):
			return defaultJetsonL4T, DetectedByDeviceTree, true
		case strings.Contains(model, "jetson"):
			jetson = true
		}
	}

	if name, ok := p.gpuName(ctx); ok {
		name = strings.ToLower(name)
		switch {
		case strings.Contains(name, "thor"):
			return ThorL4TMajor, DetectedByGPUName, true
		case strings.Contains(name, "orin"):
			return defaultJetsonL4T, DetectedByGPUName, true
		case strings.Contains(name, "tegra"), strings.Contains(name, "nvgpu"), strings.Contains(name, "jetson"):
			jetson = true
		}
	}

	if jetson {
		return defaultJetsonL4T, DetectedByDefault, true
	}
	return 0, "", false
}

// gpuName returns the first GPU name reported by nvidia-smi.
func (p *Prober) gpuName(ctx context.Context) (string, bool) {
	out, ok := p.runSMI(ctx, "--query-gpu=name", "--format=csv,noheader")
	if !ok {
		return "", false
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	line = strings.TrimSpace(line)
	return line, line != ""
}

// serverGPU enumerates GPUs with nvidia-smi -L and returns the first name.
func (p *Prober) serverGPU(ctx context.Context) (string, bool) {
	out, ok := p.runSMI(ctx, "-L")
	if !ok {
		return "", false
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	if !strings.HasPrefix(line, "GPU") {
		return "", false
	}
	// GPU 0: NVIDIA GB10 (UUID: GPU-...)
	_, name, _ := strings.Cut(line, ":")
	name, _, _ = strings.Cut(name, "(UUID")
	return strings.TrimSpace(name), true
}

func (p *Prober) runSMI(ctx context.Context, args ...string) ([]byte, bool) {
	if p.runner == nil {
		return nil, false
	}
	if _, err := p.runner.LookPath(nvidiaSMI); err != nil {
		return nil, false
	}
	out, err := retry.Do(ctx, p.retry, func(ctx context.Context) ([]byte, error) {
		b, err := p.runner.Output(ctx, nvidiaSMI, args...)
		if err != nil {
			return nil, err
		}
		if len(bytes.TrimSpace(b)) == 0 {
			return nil, fmt.Errorf("%s %s: empty output", nvidiaSMI, strings.Join(args, " "))
		}
		return b, nil
	})
	if err != nil {
		slog.Debug("GPU enumeration failed", slog.String("args", strings.Join(args, " ")), slog.String("error", err.Error()))
		return nil, false
	}
	return out, true
}

// serverSubtype names well-known SBSA systems for display.
func serverSubtype(gpuName string) string {
	n := strings.ToUpper(gpuName)
	switch {
	case strings.Contains(n, "GB10"):
		return "DGX Spark"
	case strings.Contains(n, "GB200"), strings.Contains(n, "GB300"):
		return "Grace Blackwell"
	case strings.Contains(n, "GH200"):
		return "Grace Hopper"
	default:
		return ""
	}
}

func (p *Prober) readFile(path string) ([]byte, error) {
	if p.fsys == nil {
		return nil, fs.ErrNotExist
	}
	return fs.ReadFile(p.fsys, strings.TrimPrefix(path, "/"))
}

func (p *Prober) exists(path string) bool {
	if p.fsys == nil {
		return false
	}
	_, err := fs.Stat(p.fsys, strings.TrimPrefix(path, "/"))
	return err == nil
}

// normalizeArch maps GOARCH and uname -m spellings to Arch.
func normalizeArch(goarch string) Arch {
	switch strings.ToLower(goarch) {
	case "amd64", "x86_64", "x86-64":
		return ArchX86_64
	case "arm64", "aarch64":
		return ArchAarch64
	default:
		return Arch(goarch)
	}
}

// ociPlatform returns the normalized OCI platform of the image to run.
// Images are always Linux, also on macOS where they run in a VM.
func ociPlatform(arch Arch) ocispec.Platform {
	return platforms.Normalize(ocispec.Platform{OS: "linux", Architecture: string(arch)})
}
