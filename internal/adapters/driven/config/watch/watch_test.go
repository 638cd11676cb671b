package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nntpidx.ini")
	require.NoError(t, os.WriteFile(path, []byte("[scheduler]\nenabled = true\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reloads atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, path, func(context.Context) error {
			reloads.Add(1)
			return nil
		})
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("[scheduler]\nenabled = false\n"), 0644))

	require.Eventually(t, func() bool {
		return reloads.Load() > 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestRun_MissingFileReturnsError(t *testing.T) {
	err := Run(context.Background(), "/nonexistent/path/nntpidx.ini", func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestRun_ReloadErrorDoesNotStopLoop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nntpidx.ini")
	require.NoError(t, os.WriteFile(path, []byte("[scheduler]\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, path, func(context.Context) error {
			calls.Add(1)
			return assert.AnError
		})
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("[scheduler]\nenabled = true\n"), 0644))

	require.Eventually(t, func() bool {
		return calls.Load() > 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
