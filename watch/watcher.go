// Package watch reports external on-disk changes to open documents so the
// host can reload them. Rapid bursts of writes to the same file are
// debounced into one notification.
package watch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/modforge/core/logging"
	"github.com/modforge/core/util/pathutil"
	"github.com/sirupsen/logrus"
)

// Watcher watches the directories of tracked files and invokes the
// onChange callback with the file path after the debounce window closes.
// The callback runs on the watcher's goroutine; hosts whose command stack
// is single-threaded must hand the reload off to their own event loop.
type Watcher struct {
	fsw      *fsnotify.Watcher
	onChange func(path string)
	debounce time.Duration

	mu       sync.Mutex
	tracked  map[string]bool
	watched  map[string]int // watched directory -> tracked file count
	timers   map[string]*time.Timer
	closed   bool

	logger *logrus.Entry
	done   chan struct{}
}

// New creates a watcher. The debounce window controls how long to wait
// after the last write before reporting a change.
func New(debounce time.Duration, onChange func(path string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		onChange: onChange,
		debounce: debounce,
		tracked:  make(map[string]bool),
		watched:  make(map[string]int),
		timers:   make(map[string]*time.Timer),
		logger:   logging.NewLogger("doc-watcher"),
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Add starts tracking the file at path. fsnotify watches directories more
// reliably than files across editors that replace-on-save, so the file's
// directory is watched and events are filtered to tracked paths. Paths are
// normalized so that events arriving under a different spelling of the same
// location still match.
func (w *Watcher) Add(path string) error {
	abs, err := pathutil.NormalizeForLookup(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.tracked[abs] {
		return nil
	}
	if w.watched[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
	}
	w.watched[dir]++
	w.tracked[abs] = true
	w.logger.WithField("path", abs).Debug("Tracking document file")
	return nil
}

// Remove stops tracking the file at path.
func (w *Watcher) Remove(path string) {
	abs, err := pathutil.NormalizeForLookup(path)
	if err != nil {
		return
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.tracked[abs] {
		return
	}
	delete(w.tracked, abs)
	if timer, ok := w.timers[abs]; ok {
		timer.Stop()
		delete(w.timers, abs)
	}
	w.watched[dir]--
	if w.watched[dir] <= 0 {
		delete(w.watched, dir)
		if err := w.fsw.Remove(dir); err != nil {
			w.logger.WithField("dir", dir).WithError(err).Debug("Failed to unwatch directory")
		}
	}
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for _, timer := range w.timers {
		timer.Stop()
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	<-w.done
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.handleEvent(event.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Warn("Filesystem watcher error")
		}
	}
}

func (w *Watcher) handleEvent(name string) {
	abs, err := pathutil.NormalizeForLookup(name)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || !w.tracked[abs] {
		return
	}

	// Restart the debounce window for this file
	if timer, ok := w.timers[abs]; ok {
		timer.Stop()
	}
	w.timers[abs] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, abs)
		stillTracked := !w.closed && w.tracked[abs]
		w.mu.Unlock()
		if stillTracked {
			w.logger.WithField("path", abs).Debug("Document changed on disk")
			w.onChange(abs)
		}
	})
}
