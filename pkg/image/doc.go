// Package image composes the platform-qualified image reference.
//
// Multi-arch images (x86_64, arm64 SBSA) are published without a suffix;
// macOS and Jetson builds carry -mac, -jetson-orin or -jetson-thor:
//
//	Compose("0.2.1", orin)   // "0.2.1-jetson-orin"
//	Compose("latest", x86)   // "latest"
//	Compose("my-build", orin) // "my-build"
package image
