// Package hostexec runs host introspection commands behind a small interface
// so probes can be exercised in tests without the real binaries.
package hostexec

import (
	"context"
	"fmt"

	utilexec "k8s.io/utils/exec"
)

// Runner executes commands on the host.
type Runner interface {
	// LookPath reports where the named binary is, or an error if it is not on PATH.
	LookPath(name string) (string, error)

	// Output runs the command and returns its stdout.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// OSRunner runs real commands through k8s.io/utils/exec.
type OSRunner struct {
	exec utilexec.Interface
}

// NewOSRunner returns a Runner backed by the host's process table.
func NewOSRunner() *OSRunner {
	return &OSRunner{exec: utilexec.New()}
}

// LookPath implements Runner.
func (r *OSRunner) LookPath(name string) (string, error) {
	return r.exec.LookPath(name)
}

// Output implements Runner.
func (r *OSRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := r.exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return out, fmt.Errorf("failed to run %s: %w", name, err)
	}
	return out, nil
}
