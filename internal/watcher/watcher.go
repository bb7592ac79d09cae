// Package watcher reports debounced changes to individual files using
// fsnotify, with a polling fallback where fsnotify is unavailable.
//
// Files are watched through their parent directory so that editors which save
// by writing a temporary file and renaming it over the original keep being
// tracked.
package watcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrClosed is returned when operations are called on a closed Watcher.
var ErrClosed = errors.New("watcher: watcher is closed")

// DefaultPollInterval is used when falling back to polling.
const DefaultPollInterval = time.Second

// EventType is a bit set of file changes.
type EventType uint32

const (
	Create EventType = 1 << iota
	Write
	Remove
	Rename
	Chmod
)

func eventTypeFromFsnotify(op fsnotify.Op) EventType {
	var t EventType
	if op.Has(fsnotify.Create) {
		t |= Create
	}
	if op.Has(fsnotify.Write) {
		t |= Write
	}
	if op.Has(fsnotify.Remove) {
		t |= Remove
	}
	if op.Has(fsnotify.Rename) {
		t |= Rename
	}
	if op.Has(fsnotify.Chmod) {
		t |= Chmod
	}
	return t
}

// Event is one change to a watched file.
type Event struct {
	Path string
	Type EventType
}

// Handler receives the events coalesced during one debounce window.
type Handler func(events []Event)

// ErrorHandler is called when watching fails after setup.
type ErrorHandler func(err error)

type fileState struct {
	exists  bool
	modTime time.Time
	size    int64
}

// Watcher watches a set of files.
type Watcher struct {
	fs           *fsnotify.Watcher
	debouncer    *Debouncer
	handler      Handler
	errorHandler ErrorHandler

	forcePoll    bool
	pollInterval time.Duration
	closeCh      chan struct{}

	mu      sync.Mutex
	files   map[string]fileState // absolute path -> last polled state
	dirs    map[string]int       // watched directory -> number of files in it
	pending []Event
	closed  bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets the window used to coalesce events.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debouncer = NewDebouncer(d)
		}
	}
}

// WithErrorHandler sets the error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(w *Watcher) {
		w.errorHandler = h
	}
}

// WithPolling forces polling at the given interval instead of fsnotify.
func WithPolling(interval time.Duration) Option {
	return func(w *Watcher) {
		w.forcePoll = true
		if interval > 0 {
			w.pollInterval = interval
		}
	}
}

// New creates a Watcher that calls handler after changes settle.
func New(handler Handler, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		debouncer:    NewDebouncer(DefaultDebounceDuration),
		handler:      handler,
		pollInterval: DefaultPollInterval,
		closeCh:      make(chan struct{}),
		files:        make(map[string]fileState),
		dirs:         make(map[string]int),
	}
	for _, opt := range opts {
		opt(w)
	}

	if !w.forcePoll {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			w.fs = fsw
			go w.run()
			return w, nil
		}
		w.reportError(fmt.Errorf("fsnotify unavailable, using polling fallback: %w", err))
	}
	go w.runPoll()
	return w, nil
}

// Polling reports whether the watcher fell back to polling.
func (w *Watcher) Polling() bool {
	return w.fs == nil
}

// Add starts watching the file at path. The file does not need to exist yet
// but its directory does.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if info, err := os.Stat(dir); err != nil {
		return err
	} else if !info.IsDir() {
		return fmt.Errorf("watcher: %s is not a directory", dir)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if _, ok := w.files[abs]; ok {
		return nil
	}

	if w.fs != nil && w.dirs[dir] == 0 {
		if err := w.fs.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[abs] = stat(abs)
	return nil
}

// Remove stops watching path.
func (w *Watcher) Remove(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if _, ok := w.files[abs]; !ok {
		return nil
	}
	delete(w.files, abs)

	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] > 0 {
		return nil
	}
	delete(w.dirs, dir)
	if w.fs != nil {
		return w.fs.Remove(dir)
	}
	return nil
}

// Files returns the watched paths.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	paths := make([]string, 0, len(w.files))
	for p := range w.files {
		paths = append(paths, p)
	}
	return paths
}

// Close stops the watcher. Pending events are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	w.debouncer.Cancel()
	close(w.closeCh)
	if w.fs != nil {
		return w.fs.Close()
	}
	return nil
}

func (w *Watcher) reportError(err error) {
	if w.errorHandler != nil {
		w.errorHandler(err)
	}
}

func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.reportError(err)
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)

	w.mu.Lock()
	_, watched := w.files[path]
	w.mu.Unlock()
	if !watched {
		return
	}
	w.queue([]Event{{Path: path, Type: eventTypeFromFsnotify(ev.Op)}})
}

func (w *Watcher) runPoll() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.pollOnce()
		case <-w.closeCh:
			return
		}
	}
}

// pollOnce compares each watched file with its last known state.
func (w *Watcher) pollOnce() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.files))
	for p := range w.files {
		paths = append(paths, p)
	}
	w.mu.Unlock()

	var events []Event
	for _, p := range paths {
		cur := stat(p)

		w.mu.Lock()
		prev, ok := w.files[p]
		if ok {
			w.files[p] = cur
		}
		w.mu.Unlock()
		if !ok {
			continue
		}

		switch {
		case !prev.exists && cur.exists:
			events = append(events, Event{Path: p, Type: Create})
		case prev.exists && !cur.exists:
			events = append(events, Event{Path: p, Type: Remove})
		case cur.exists && (!cur.modTime.Equal(prev.modTime) || cur.size != prev.size):
			events = append(events, Event{Path: p, Type: Write})
		}
	}
	if len(events) > 0 {
		w.queue(events)
	}
}

func stat(path string) fileState {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}
	}
	return fileState{exists: true, modTime: info.ModTime(), size: info.Size()}
}

// queue buffers events and arms the debouncer to deliver them together.
func (w *Watcher) queue(events []Event) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.pending = append(w.pending, events...)
	w.mu.Unlock()

	w.debouncer.Trigger(func() {
		w.mu.Lock()
		if w.closed {
			w.mu.Unlock()
			return
		}
		batch := w.pending
		w.pending = nil
		w.mu.Unlock()

		if len(batch) > 0 && w.handler != nil {
			w.handler(batch)
		}
	})
}
