package commands

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlgrain/internal/logging"
)

// changeRecorder collects the batches passed to the watch callback.
type changeRecorder struct {
	mu      sync.Mutex
	batches [][]string
}

func (r *changeRecorder) record(_ context.Context, files []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, files)
}

func (r *changeRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, b := range r.batches {
		out = append(out, b...)
	}
	return out
}

func startWatch(t *testing.T, paths ...string) *changeRecorder {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	rec := &changeRecorder{}
	done := make(chan error, 1)
	go func() { done <- watchPaths(ctx, logging.Discard(), paths, rec.record) }()
	t.Cleanup(func() {
		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})
	// Let the watcher register its directories.
	time.Sleep(50 * time.Millisecond)
	return rec
}

func TestWatchPathsDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "models"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".hidden"), 0o750))

	rec := startWatch(t, dir)

	sqlFile := filepath.Join(dir, "models", "a.sql")
	require.NoError(t, os.WriteFile(sqlFile, []byte("select 1\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden", "b.sql"), []byte("select 2\n"), 0o600))

	require.Eventually(t, func() bool {
		return len(rec.all()) > 0
	}, 2*time.Second, 20*time.Millisecond)
	time.Sleep(2 * watchDebounce)

	assert.Equal(t, []string{sqlFile}, rec.all())
}

func TestWatchPathsSingleFile(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "a.sql")
	other := filepath.Join(dir, "b.sql")
	require.NoError(t, os.WriteFile(watched, []byte("select 1\n"), 0o600))

	rec := startWatch(t, watched)

	require.NoError(t, os.WriteFile(other, []byte("select 2\n"), 0o600))
	require.NoError(t, os.WriteFile(watched, []byte("select 3\n"), 0o600))

	require.Eventually(t, func() bool {
		return len(rec.all()) > 0
	}, 2*time.Second, 20*time.Millisecond)
	time.Sleep(2 * watchDebounce)

	assert.Equal(t, []string{watched}, rec.all())
}

func TestWatchPathsDebounce(t *testing.T) {
	dir := t.TempDir()
	rec := startWatch(t, dir)

	f := filepath.Join(dir, "a.sql")
	for i := range 5 {
		require.NoError(t, os.WriteFile(f, []byte{byte('0' + i)}, 0o600))
	}

	require.Eventually(t, func() bool {
		return len(rec.all()) > 0
	}, 2*time.Second, 20*time.Millisecond)
	time.Sleep(2 * watchDebounce)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Len(t, rec.batches, 1, "rapid writes collapse into one batch")
	assert.Equal(t, []string{f}, rec.batches[0])
}

func TestWatchPathsMissing(t *testing.T) {
	err := watchPaths(context.Background(), logging.Discard(), []string{filepath.Join(t.TempDir(), "nope")}, func(context.Context, []string) {})
	require.Error(t, err)
}

func TestIsHidden(t *testing.T) {
	assert.True(t, isHidden("/a/.git"))
	assert.False(t, isHidden("/a/models"))
	assert.False(t, isHidden("."))
}
