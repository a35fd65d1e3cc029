package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	apperrors "lazy/internal/errors"
	"lazy/internal/log"

	"github.com/fsnotify/fsnotify"
)

// Event is a regular file that appeared or changed in a watched directory
type Event struct {
	Path string
	Name string
	Op   fsnotify.Op
	Time time.Time
}

// Watcher reports new and changed files in a set of directories. Only the
// direct children of a directory are watched.
type Watcher struct {
	directories []string
	events      chan Event
	stopChan    chan struct{}
	done        chan struct{}
	fsWatcher   *fsnotify.Watcher

	mutex    sync.RWMutex
	running  bool
	stopped  bool
	stopOnce sync.Once
}

// New creates a watcher with no directories
func New() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		events:    make(chan Event, 64),
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
		fsWatcher: fsWatcher,
	}, nil
}

// AddDirectory starts watching dir
func (w *Watcher) AddDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return apperrors.NewFileError("error accessing directory", dir, apperrors.FileNotFound, err)
	}
	if !info.IsDir() {
		return apperrors.NewFileError("not a directory", dir, apperrors.NotADirectory, nil)
	}

	if err := w.fsWatcher.Add(dir); err != nil {
		return apperrors.NewFileError("failed to watch directory", dir, apperrors.FileAccessDenied, err)
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()
	for _, existing := range w.directories {
		if existing == dir {
			return nil
		}
	}
	w.directories = append(w.directories, dir)
	log.WithFields(log.F("directory", dir)).Debug("Watching directory")
	return nil
}

// Events delivers file events until Stop is called, then it is closed
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start runs the event loop in the background
func (w *Watcher) Start() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.running {
		return fmt.Errorf("watcher already running")
	}
	if w.stopped {
		return fmt.Errorf("watcher stopped")
	}
	w.running = true

	go w.loop()
	return nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	defer close(w.events)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if ev, ok := toEvent(event); ok {
				select {
				case w.events <- ev:
				case <-w.stopChan:
					return
				default:
					log.WithFields(log.F("file", event.Name)).Warn("Event channel is full, dropped event")
				}
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.WithFields(log.F("error", err)).Error("fsnotify watcher error")

		case <-w.stopChan:
			return
		}
	}
}

// toEvent keeps creations, renames into the directory and writes of
// regular files; anything that is gone or is a directory is dropped.
func toEvent(event fsnotify.Event) (Event, bool) {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return Event{}, false
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		if !os.IsNotExist(err) {
			log.WithFields(log.Fields{"file": event.Name, "error": err}).Debug("Error stating file")
		}
		return Event{}, false
	}
	if info.IsDir() {
		return Event{}, false
	}

	return Event{
		Path: event.Name,
		Name: filepath.Base(event.Name),
		Op:   event.Op,
		Time: time.Now(),
	}, true
}

// Stop ends the event loop and closes the event channel. It waits for the
// loop to exit, so no event is sent after Stop returns. A stopped watcher
// cannot be restarted.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.mutex.Lock()
		wasRunning := w.running
		w.running = false
		w.stopped = true
		close(w.stopChan)
		w.mutex.Unlock()

		if err := w.fsWatcher.Close(); err != nil {
			log.WithFields(log.F("error", err)).Error("Error closing fsnotify watcher")
		}
		if wasRunning {
			<-w.done
			return
		}
		close(w.events)
	})
}

// IsRunning returns whether the watcher is currently active
func (w *Watcher) IsRunning() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.running
}

// Directories returns the watched directories
func (w *Watcher) Directories() []string {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	dirs := make([]string, len(w.directories))
	copy(dirs, w.directories)
	return dirs
}
