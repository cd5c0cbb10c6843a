package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func fastPolicy(n int) Policy {
	return Policy{MaxAttempts: n, Delay: time.Millisecond}
}

func TestDo(t *testing.T) {
	tests := []struct {
		name         string
		policy       Policy
		failures     int
		permanent    bool
		wantErr      bool
		wantAttempts int
	}{
		{name: "first try succeeds", policy: fastPolicy(3), failures: 0, wantAttempts: 1},
		{name: "succeeds after retries", policy: fastPolicy(3), failures: 2, wantAttempts: 3},
		{name: "exhausts attempts", policy: fastPolicy(3), failures: 5, wantErr: true, wantAttempts: 3},
		{name: "permanent error stops early", policy: fastPolicy(3), failures: 5, permanent: true, wantErr: true, wantAttempts: 1},
		{name: "zero attempts means one", policy: fastPolicy(0), failures: 5, wantErr: true, wantAttempts: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			got, err := Do(context.Background(), tt.policy, func(_ context.Context) (string, error) {
				calls++
				if calls <= tt.failures {
					if tt.permanent {
						return "", Permanent(errTransient)
					}
					return "", errTransient
				}
				return "ok", nil
			})

			assert.Equal(t, tt.wantAttempts, calls)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errTransient)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ok", got)
		})
	}
}

func TestDo_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	_, err := Do(ctx, Policy{MaxAttempts: 10, Delay: time.Hour}, func(_ context.Context) (int, error) {
		calls++
		cancel()
		return 0, errTransient
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, DefaultMaxAttempts, p.MaxAttempts)
	assert.Equal(t, DefaultDelay, p.Delay)
}
