// Package defaults provides centralized timeout and retry constants for vlmctl.
//
// # Timeout Categories
//
//   - Version source timeouts: per GitHub API query, never retried
//   - Probe timeouts: local inference endpoint check on macOS
//   - Retry parameters: host command probes (nvidia-smi)
//   - Prompt bounds: interactive version selection
//
// # Usage
//
//	import "github.com/NVIDIA/vlm-launcher/pkg/defaults"
//
//	client := &http.Client{Timeout: defaults.LocalInferenceTimeout}
//
// Every value can be overridden through pkg/config.
package defaults
