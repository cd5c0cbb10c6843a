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

// Package cli implements the command-line interface for vlmctl.
//
// # Overview
//
// vlmctl decides which live-vlm-webui container image to run on the current
// host. It detects the platform, discovers published versions, lets the user
// pick one and prints the image reference together with the container
// runtime flags the launcher must pass.
//
//	vlmctl [--version VERSION] [--list-versions] [--skip-version-pick]
//	       [--simulate-public] [--format yaml|json|table] [--output FILE]
//
// # Flags
//
//	--version VERSION     Use VERSION (or a custom tag) without prompting
//	--list-versions       Print the ranked versions and exit
//	--skip-version-pick   Use "latest" without prompting
//	--simulate-public     Ignore GITHUB_TOKEN to reproduce anonymous access
//	--config, -c          TOML config file
//	--output, -o          Output file path (default: stdout)
//	--format, -t          Output format: yaml, json, table (default: table)
//	--debug               Enable debug logging
//	--log-json            Output logs in JSON format
//	--help, -h            Show help
//
// When stdin is not a terminal the version prompt is skipped and "latest"
// is used. The prompt itself is written to stderr so stdout only carries
// the emitted document.
//
// # Output
//
// The Resolution document:
//
//	kind: Resolution
//	apiVersion: resolution.vlm.nvidia.com/v1
//	profile:
//	  accelerator: jetson-orin
//	  tagSuffix: -jetson-orin
//	selected: 0.2.1
//	image: ghcr.io/nvidia-ai-iot/live-vlm-webui:0.2.1-jetson-orin
//	runtimeArgs: [--runtime, nvidia]
//	outcome: ok
//
// # Environment Variables
//
//	GITHUB_TOKEN      Token for the GitHub API (enables the package registry)
//	SIMULATE_PUBLIC   Same as --simulate-public when set to 1 or true
//	LOG_LEVEL         Set logging verbosity (debug, info, warn, error)
//	VLM_*             Config overrides, e.g. VLM_HTTP_TIMEOUT=10s
//
// # Exit Codes
//
//	0  Success
//	1  Unsupported platform, invalid arguments, execution failure
//	2  Context canceled or timeout
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/vlm-launcher/pkg/cli.version=1.0.0'"
package cli
