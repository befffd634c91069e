// Package watcher provides file watching for settings live reload.
//
// Files are watched through their parent directory so that editors which
// replace a file on save (write to temp, rename over) keep being observed.
// Bursts of events are coalesced into one callback.
package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/veco/internal/debounce"
	"github.com/dshills/veco/internal/log"
)

// ErrWatcherClosed is returned when operating on a closed watcher.
var ErrWatcherClosed = errors.New("watcher is closed")

// Event reports the watched files that changed during one quiet window.
type Event struct {
	// Paths are absolute, sorted and unique.
	Paths []string
	Time  time.Time
}

// Handler is called when watched files change.
type Handler func(event Event)

// Watcher monitors a set of files for changes.
type Watcher struct {
	mu sync.Mutex

	fsw     *fsnotify.Watcher
	files   map[string]bool
	dirs    map[string]int
	pending map[string]bool

	handler   Handler
	debouncer *debounce.Debouncer
	logger    *log.Logger

	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*options)

type options struct {
	debounce time.Duration
	logger   *log.Logger
}

// WithDebounce sets the quiet period before the handler runs.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// New creates a watcher that calls handler for changed files.
func New(handler Handler, opts ...Option) (*Watcher, error) {
	o := options{
		debounce: 100 * time.Millisecond,
		logger:   log.NullLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		files:   make(map[string]bool),
		dirs:    make(map[string]int),
		pending: make(map[string]bool),
		handler: handler,
		logger:  o.logger.WithComponent("watcher"),
		closeCh: make(chan struct{}),
	}
	w.debouncer = debounce.New(o.debounce, w.flush)

	w.wg.Add(1)
	go w.loop()

	return w, nil
}

// Watch adds a file to the watch list. The file need not exist yet, but its
// directory must.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if w.files[abs] {
		return nil
	}

	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if _, err := os.Stat(dir); err != nil {
			return err
		}
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[abs] = true
	return nil
}

// Unwatch removes a file from the watch list.
func (w *Watcher) Unwatch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if !w.files[abs] {
		return nil
	}
	delete(w.files, abs)

	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		return w.fsw.Remove(dir)
	}
	return nil
}

// Files returns the watched files, sorted.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	files := make([]string, 0, len(w.files))
	for f := range w.files {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Close stops the watcher and drops pending events.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.debouncer.Cancel()
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) &&
		!ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
		return
	}

	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return
	}

	w.mu.Lock()
	if w.closed || !w.files[abs] {
		w.mu.Unlock()
		return
	}
	w.pending[abs] = true
	w.mu.Unlock()

	w.logger.Debug("%s %s", ev.Op, abs)
	w.debouncer.Call()
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if w.closed || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]bool)
	w.mu.Unlock()

	sort.Strings(paths)
	if w.handler != nil {
		w.handler(Event{Paths: paths, Time: time.Now()})
	}
}
