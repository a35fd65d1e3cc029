package watch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lazy/internal/organize"
	"lazy/internal/watch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaemonOrganizesNewFiles(t *testing.T) {
	watchDir := t.TempDir()

	passes := make(chan organize.MoveStats, 4)
	daemon := watch.NewDaemon(watchDir, func(ctx context.Context) error {
		result, err := organize.Scan(watchDir, false)
		if err != nil {
			return err
		}
		stats, err := organize.New(nil).Execute(ctx, watchDir, result, false)
		passes <- stats
		return err
	})
	daemon.SetQuietPeriod(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- daemon.Run(ctx) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	require.Eventually(t, func() bool { return daemon.Status().Running }, 2*time.Second, 10*time.Millisecond)
	// Give fsnotify a moment to register the watch
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(watchDir, "photo.jpg"), []byte("x"), 0o644))

	select {
	case stats := <-passes:
		assert.Equal(t, 1, stats.Moved)
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout waiting for organize pass")
	}

	assert.FileExists(t, filepath.Join(watchDir, "Images", "photo.jpg"))
	assert.NoFileExists(t, filepath.Join(watchDir, "photo.jpg"))

	status := daemon.Status()
	assert.Equal(t, watchDir, status.Directory)
	assert.GreaterOrEqual(t, status.Passes, 1)
	assert.False(t, status.LastActivity.IsZero())
}

func TestDaemonFilterDropsEvents(t *testing.T) {
	watchDir := t.TempDir()

	ran := make(chan struct{}, 4)
	daemon := watch.NewDaemon(watchDir, func(context.Context) error {
		ran <- struct{}{}
		return errors.New("pass errors are logged, not fatal")
	})
	daemon.SetQuietPeriod(20 * time.Millisecond)
	daemon.SetFilter(func(e watch.Event) bool { return !strings.HasPrefix(e.Name, ".") })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- daemon.Run(ctx) }()

	require.Eventually(t, func() bool { return daemon.Status().Running }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(watchDir, ".partial"), nil, 0o644))
	select {
	case <-ran:
		t.Fatal("filtered event triggered a pass")
	case <-time.After(300 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(filepath.Join(watchDir, "visible.txt"), nil, 0o644))
	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout waiting for pass")
	}

	cancel()
	assert.NoError(t, <-done, "a failing pass does not stop the daemon")
	assert.False(t, daemon.Status().Running)
}

func TestDaemonMissingDirectory(t *testing.T) {
	daemon := watch.NewDaemon(filepath.Join(t.TempDir(), "missing"), func(context.Context) error { return nil })
	err := daemon.Run(context.Background())
	assert.Error(t, err)
}
