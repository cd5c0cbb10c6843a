package defaults

import "time"

// Version discovery.
const (
	// VersionSourceTimeout bounds one query to the package registry or release feed.
	VersionSourceTimeout = 5 * time.Second
)

// Host probing.
const (
	// LocalInferenceTimeout bounds the macOS local inference check.
	LocalInferenceTimeout = 2 * time.Second

	// ProbeRetryAttempts is the total number of tries for host commands.
	ProbeRetryAttempts = 3

	// ProbeRetryDelay is the fixed pause between host command tries.
	ProbeRetryDelay = 500 * time.Millisecond
)

// Interactive selection.
const (
	// PromptAttempts bounds how often an invalid menu answer re-prompts.
	PromptAttempts = 5
)
