package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherFsnotify(t *testing.T) {
	tempDir := t.TempDir()

	w, err := New()
	require.NoError(t, err, "New watcher creation failed")

	require.NoError(t, w.AddDirectory(tempDir), "Failed to add directory to watcher")
	require.NoError(t, w.AddDirectory(tempDir), "Adding twice is harmless")
	assert.Equal(t, []string{tempDir}, w.Directories())

	require.NoError(t, w.Start(), "Failed to start watcher")
	defer w.Stop()
	assert.True(t, w.IsRunning())
	assert.Error(t, w.Start(), "second start is rejected")

	evChan := w.Events()

	// Allow a brief moment for fsnotify to initialize watches
	time.Sleep(100 * time.Millisecond)

	// A new directory produces no event
	require.NoError(t, os.Mkdir(filepath.Join(tempDir, "Images"), 0o755))

	testFilePath := filepath.Join(tempDir, "testfile.txt")
	require.NoError(t, os.WriteFile(testFilePath, []byte("hello"), 0o644))

	select {
	case event, ok := <-evChan:
		require.True(t, ok, "Event channel closed unexpectedly")
		assert.Equal(t, testFilePath, event.Path, "Event path mismatch")
		assert.Equal(t, "testfile.txt", event.Name)
		assert.True(t, event.Op.Has(fsnotify.Create), "Expected Create operation")
		assert.False(t, event.Time.IsZero())
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout waiting for CREATE event")
	}

	w.Stop()
	assert.False(t, w.IsRunning())

	// Drain buffered events; the channel must end up closed
	timeout := time.After(time.Second)
	for {
		select {
		case _, ok := <-evChan:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("Timeout waiting for event channel to close after stop")
		}
	}
}

func TestStopWithoutStartClosesEvents(t *testing.T) {
	w, err := New()
	require.NoError(t, err)

	w.Stop()
	w.Stop()

	_, ok := <-w.Events()
	assert.False(t, ok)
	assert.Error(t, w.Start())
}

func TestAddDirectoryRejectsFiles(t *testing.T) {
	w, err := New()
	require.NoError(t, err)
	defer w.Stop()

	file := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	assert.Error(t, w.AddDirectory(file))
	assert.Error(t, w.AddDirectory(filepath.Join(t.TempDir(), "missing")))
	assert.Empty(t, w.Directories())
}

func TestToEventFiltersOperations(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, ok := toEvent(fsnotify.Event{Name: file, Op: fsnotify.Remove})
	assert.False(t, ok, "removals are ignored")

	_, ok = toEvent(fsnotify.Event{Name: filepath.Join(dir, "gone.txt"), Op: fsnotify.Create})
	assert.False(t, ok, "vanished files are ignored")

	_, ok = toEvent(fsnotify.Event{Name: dir, Op: fsnotify.Create})
	assert.False(t, ok, "directories are ignored")

	ev, ok := toEvent(fsnotify.Event{Name: file, Op: fsnotify.Write})
	require.True(t, ok)
	assert.Equal(t, "a.txt", ev.Name)
}
