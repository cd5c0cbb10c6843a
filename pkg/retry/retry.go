// Package retry provides a bounded, fixed-delay retry policy for local host
// introspection commands that can fail transiently (e.g. nvidia-smi while the
// driver is still initializing). Network calls are never retried.
package retry

import (
	"context"
	"log/slog"
	"time"

	backoff "github.com/cenkalti/backoff/v5"

	"github.com/NVIDIA/vlm-launcher/pkg/defaults"
)

const (
	// DefaultMaxAttempts is the total number of tries (1 original + 2 retries).
	DefaultMaxAttempts = defaults.ProbeRetryAttempts

	// DefaultDelay is the fixed pause between tries.
	DefaultDelay = defaults.ProbeRetryDelay
)

// Policy describes how often and how fast an operation is retried.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultPolicy returns the policy used for host command probes.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, Delay: DefaultDelay}
}

// Permanent wraps err so Do stops retrying and returns err immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs fn until it succeeds, returns a permanent error, maxAttempts is
// reached, or ctx is done. The last error is returned on failure.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	try := 0
	return backoff.Retry(ctx, func() (T, error) {
		try++
		return fn(ctx)
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(p.Delay)),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithMaxElapsedTime(0), // bounded by attempts and ctx
		backoff.WithNotify(func(err error, next time.Duration) {
			slog.Debug("retrying after failure",
				slog.Int("attempt", try),
				slog.Int("max_attempts", attempts),
				slog.Duration("next", next),
				slog.String("error", err.Error()))
		}),
	)
}
