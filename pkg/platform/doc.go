// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package platform fingerprints the host and decides which image flavor it runs.
//
// # Profiles
//
// Probe returns a Profile with the OS, CPU architecture and accelerator class,
// the image tag suffix, and the runtime flags the launcher must pass:
//
//	macOS            -mac           no GPU flags
//	x86_64           (multi-arch)   --gpus all
//	Jetson Orin      -jetson-orin   --runtime nvidia
//	Jetson Thor      -jetson-thor   --gpus all
//	arm64 SBSA GPU   (multi-arch)   --gpus all
//
// # Jetson Detection
//
// The Jetson generation is derived from the L4T major release:
//
//  1. /etc/nv_tegra_release, first line, parsed by an ordered chain of
//     strategies (R<major> pattern, delimiter split, first digit run)
//  2. /proc/device-tree/model
//  3. GPU name from nvidia-smi --query-gpu=name
//
// L4T 38 and newer is Thor, anything older is Orin. A host that looks like a
// Jetson but names no generation is treated as Orin.
//
// # Usage
//
//	prober := platform.NewProber()
//	profile, err := prober.Probe(ctx)
//	if err != nil {
//	    // unsupported host, not retried
//	}
//
// # Error Handling
//
// Only two conditions fail: an architecture other than x86_64/aarch64 on
// Linux, and an aarch64 host with neither Jetson signals nor a working
// nvidia-smi. Both return an errors.ErrCodeUnsupportedPlatform error.
// nvidia-smi invocations are retried with a short fixed delay since the
// driver can be slow to come up after boot.
package platform
