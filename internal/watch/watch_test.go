package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 30 * time.Millisecond

func newTestWatcher(t *testing.T) (*Watcher, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "experience.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: a\n"), 0o644))

	w, err := New(path, testDebounce, nil)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w, path
}

func received(ch <-chan struct{}, within time.Duration) bool {
	select {
	case <-ch:
		return true
	case <-time.After(within):
		return false
	}
}

func TestBurstOfWritesSignalsOnce(t *testing.T) {
	w, path := newTestWatcher(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("title: b\n"), 0o644))
	}

	assert.True(t, received(w.Changes(), 2*time.Second), "expected a change")
	assert.False(t, received(w.Changes(), 10*testDebounce), "burst should coalesce")
}

func TestRenameOverFileSignals(t *testing.T) {
	w, path := newTestWatcher(t)

	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte("title: c\n"), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	assert.True(t, received(w.Changes(), 2*time.Second))
}

func TestSiblingFilesIgnored(t *testing.T) {
	w, path := newTestWatcher(t)

	other := filepath.Join(filepath.Dir(path), "notes.txt")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))

	assert.False(t, received(w.Changes(), 10*testDebounce))
}

func TestCloseIsIdempotent(t *testing.T) {
	w, _ := newTestWatcher(t)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestPathIsAbsolute(t *testing.T) {
	w, path := newTestWatcher(t)
	assert.True(t, filepath.IsAbs(w.Path()))
	assert.Equal(t, filepath.Clean(path), w.Path())
}

func TestMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "x.yaml"), 0, nil)
	assert.Error(t, err)
}
