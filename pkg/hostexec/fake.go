package hostexec

import (
	"context"
	"fmt"
	"strings"
)

// FakeResponse is the scripted result of one command line.
type FakeResponse struct {
	Output []byte
	Err    error
}

// FakeRunner is a scripted Runner for tests. Commands are keyed by their
// full command line ("nvidia-smi -L"). Responses for a key are consumed in
// order; the last one repeats.
type FakeRunner struct {
	Paths     map[string]string
	Responses map[string][]FakeResponse
	Calls     []string
}

// LookPath implements Runner.
func (f *FakeRunner) LookPath(name string) (string, error) {
	if p, ok := f.Paths[name]; ok {
		return p, nil
	}
	return "", fmt.Errorf("executable file not found in $PATH: %s", name)
}

// Output implements Runner.
func (f *FakeRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := strings.TrimSpace(name + " " + strings.Join(args, " "))
	f.Calls = append(f.Calls, key)

	rs, ok := f.Responses[key]
	if !ok || len(rs) == 0 {
		return nil, fmt.Errorf("failed to run %s: not scripted", name)
	}
	r := rs[0]
	if len(rs) > 1 {
		f.Responses[key] = rs[1:]
	}
	return r.Output, r.Err
}

// CallCount returns how many times the given command line ran.
func (f *FakeRunner) CallCount(key string) int {
	n := 0
	for _, c := range f.Calls {
		if c == key {
			n++
		}
	}
	return n
}
