package watch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"lazy/internal/log"
)

// DefaultQuietPeriod is how long a directory must stay unchanged before a pass runs
const DefaultQuietPeriod = 500 * time.Millisecond

// Pass processes the watched directory once
type Pass func(ctx context.Context) error

// DaemonStatus represents the current status of the daemon
type DaemonStatus struct {
	Running      bool      // Whether the daemon is currently active
	Directory    string    // Directory being watched
	LastActivity time.Time // Time of the last accepted event
	Passes       int       // Passes run so far
}

// Daemon runs a pass over one directory every time new files have settled
// in it. Passes run on the daemon's goroutine, one at a time; events that
// arrive during a pass schedule the next one.
type Daemon struct {
	dir    string
	pass   Pass
	quiet  time.Duration
	filter func(Event) bool

	mutex        sync.RWMutex
	running      bool
	passes       int
	lastActivity time.Time
}

// NewDaemon creates a daemon that calls pass for dir
func NewDaemon(dir string, pass Pass) *Daemon {
	return &Daemon{
		dir:   dir,
		pass:  pass,
		quiet: DefaultQuietPeriod,
	}
}

// SetQuietPeriod changes how long events are collected before a pass
func (d *Daemon) SetQuietPeriod(quiet time.Duration) {
	d.quiet = quiet
}

// SetFilter drops events for which keep returns false
func (d *Daemon) SetFilter(keep func(Event) bool) {
	d.filter = keep
}

// Run watches the directory until ctx is done. A failing pass is logged and
// the daemon keeps watching; only setup failures are returned.
func (d *Daemon) Run(ctx context.Context) error {
	d.mutex.Lock()
	if d.running {
		d.mutex.Unlock()
		return fmt.Errorf("daemon is already running")
	}
	d.running = true
	d.mutex.Unlock()
	defer func() {
		d.mutex.Lock()
		d.running = false
		d.mutex.Unlock()
	}()

	watcher, err := New()
	if err != nil {
		return err
	}
	defer watcher.Stop()

	if err := watcher.AddDirectory(d.dir); err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("error starting watcher: %w", err)
	}

	timer := time.NewTimer(d.quiet)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			if d.filter != nil && !d.filter(event) {
				continue
			}
			log.WithFields(log.F("file", event.Name)).Debug("File event")
			d.mutex.Lock()
			d.lastActivity = event.Time
			d.mutex.Unlock()
			timer.Reset(d.quiet)

		case <-timer.C:
			err := d.pass(ctx)
			d.mutex.Lock()
			d.passes++
			d.mutex.Unlock()
			if err != nil {
				if errors.Is(err, context.Canceled) && ctx.Err() != nil {
					return nil
				}
				log.WithFields(log.F("directory", d.dir)).Errorf("Pass failed: %v", err)
			}
		}
	}
}

// Status returns the current status of the daemon
func (d *Daemon) Status() DaemonStatus {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	return DaemonStatus{
		Running:      d.running,
		Directory:    d.dir,
		LastActivity: d.lastActivity,
		Passes:       d.passes,
	}
}
