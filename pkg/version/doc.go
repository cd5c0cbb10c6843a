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

// Package version discovers which image versions are published.
//
// Two sources are consulted, one after the other:
//
//   - RegistrySource lists container package tags. It needs a token.
//   - ReleaseSource lists repository releases. It works anonymously.
//
// Each query yields a FetchResult tagged with an Outcome (ok, rate-limited,
// auth-failed, unreachable, empty). Remote failures are never returned as
// errors; the Aggregator absorbs them and falls back to a static list
// embedded in the binary, so Resolve always returns at least one candidate.
//
// Candidates are ranked with "latest" first, then versions newest first,
// then any other tags. Branch and commit builds (main, sha-*, pr-*) are
// dropped before ranking.
//
// Usage:
//
//	agg := version.NewAggregator(
//	    version.NewRegistrySource(),
//	    version.NewReleaseSource(),
//	)
//	res := agg.Resolve(ctx, os.Getenv("GITHUB_TOKEN"), false)
//	if res.Outcome == version.OutcomeRateLimited {
//	    // suggest setting GITHUB_TOKEN
//	}
package version
