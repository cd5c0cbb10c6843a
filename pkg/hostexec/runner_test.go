package hostexec

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeRunner_Output(t *testing.T) {
	f := &FakeRunner{
		Paths: map[string]string{"nvidia-smi": "/usr/bin/nvidia-smi"},
		Responses: map[string][]FakeResponse{
			"nvidia-smi -L": {
				{Err: errors.New("driver not loaded")},
				{Output: []byte("GPU 0: NVIDIA GB10")},
			},
		},
	}

	p, err := f.LookPath("nvidia-smi")
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/nvidia-smi", p)

	_, err = f.LookPath("tegrastats")
	assert.Error(t, err)

	_, err = f.Output(context.Background(), "nvidia-smi", "-L")
	assert.Error(t, err)

	out, err := f.Output(context.Background(), "nvidia-smi", "-L")
	require.NoError(t, err)
	assert.Equal(t, "GPU 0: NVIDIA GB10", string(out))

	// last response repeats
	out, err = f.Output(context.Background(), "nvidia-smi", "-L")
	require.NoError(t, err)
	assert.Equal(t, "GPU 0: NVIDIA GB10", string(out))
	assert.Equal(t, 3, f.CallCount("nvidia-smi -L"))

	_, err = f.Output(context.Background(), "uname", "-m")
	assert.Error(t, err)
}

func TestFakeRunner_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &FakeRunner{}
	_, err := f.Output(ctx, "nvidia-smi")
	assert.Equal(t, context.Canceled, err)
	assert.Empty(t, f.Calls)
}

func TestOSRunner_LookPathMissing(t *testing.T) {
	r := NewOSRunner()
	_, err := r.LookPath("definitely-not-a-real-binary-vlmctl")
	assert.Error(t, err)
}
