package listener

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submitRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *submitRecorder) submit(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return nil
}

func (r *submitRecorder) submitted() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := make([]string, len(r.paths))
	copy(snapshot, r.paths)
	return snapshot
}

func startListener(t *testing.T, dir string, rec *submitRecorder) *Listener {
	t.Helper()
	l, err := New(dir, rec.submit)
	require.NoError(t, err)
	require.NoError(t, l.Start(context.Background()))
	t.Cleanup(l.Stop)
	return l
}

func TestListenerSubmitsDroppedDefinition(t *testing.T) {
	dir := t.TempDir()
	rec := &submitRecorder{}
	startListener(t, dir, rec)

	dropped := filepath.Join(dir, "run.xml")
	require.NoError(t, os.WriteFile(dropped, []byte("<pipelines/>"), 0o644))

	treated := filepath.Join(dir, TreatedDirName, "run.xml")
	require.Eventually(t, func() bool {
		return len(rec.submitted()) == 1
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, []string{treated}, rec.submitted())
	assert.FileExists(t, treated)
	assert.NoFileExists(t, dropped)
}

func TestListenerPicksUpExistingFiles(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "pending.xml")
	require.NoError(t, os.WriteFile(existing, []byte("<pipelines/>"), 0o644))

	rec := &submitRecorder{}
	startListener(t, dir, rec)

	require.Eventually(t, func() bool {
		return len(rec.submitted()) == 1
	}, 5*time.Second, 20*time.Millisecond)
	assert.NoFileExists(t, existing)
}

func TestListenerIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	rec := &submitRecorder{}
	startListener(t, dir, rec)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	time.Sleep(200 * time.Millisecond)
	assert.Empty(t, rec.submitted())
}

func TestListenerStopIsIdempotentBeforeStart(t *testing.T) {
	l, err := New(t.TempDir(), func(string) error { return nil })
	require.NoError(t, err)
	l.Stop()
}
