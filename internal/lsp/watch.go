package lsp

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const lockFile = "composer.lock"

// lockWatcher re-runs analysis for open documents when the composer.lock
// next to them changes, for example after composer ran in a terminal.
type lockWatcher struct {
	fs       *fsnotify.Watcher
	delay    time.Duration
	onChange func(docURI string)
	logger   *log.Logger

	mu     sync.Mutex
	dirs   map[string]map[string]bool // directory -> open document URIs
	timers map[string]*time.Timer
}

func newLockWatcher(delay time.Duration, logger *log.Logger, onChange func(string)) (*lockWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &lockWatcher{
		fs:       fw,
		delay:    delay,
		onChange: onChange,
		logger:   logger,
		dirs:     make(map[string]map[string]bool),
		timers:   make(map[string]*time.Timer),
	}, nil
}

func (w *lockWatcher) watch(dir, docURI string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	docs, ok := w.dirs[dir]
	if !ok {
		if err := w.fs.Add(dir); err != nil {
			w.logger.Warn("cannot watch lock file", "dir", dir, "err", err)
			return
		}
		docs = make(map[string]bool)
		w.dirs[dir] = docs
	}
	docs[docURI] = true
}

func (w *lockWatcher) unwatch(dir, docURI string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	docs, ok := w.dirs[dir]
	if !ok {
		return
	}
	delete(docs, docURI)
	if len(docs) > 0 {
		return
	}
	delete(w.dirs, dir)
	if t, ok := w.timers[dir]; ok {
		t.Stop()
		delete(w.timers, dir)
	}
	if err := w.fs.Remove(dir); err != nil {
		w.logger.Debug("unwatch failed", "dir", dir, "err", err)
	}
}

func (w *lockWatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != lockFile {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				w.schedule(filepath.Dir(ev.Name))
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("lock watcher error", "err", err)
		}
	}
}

// schedule coalesces the burst of events a single composer run produces
// into one refresh per document.
func (w *lockWatcher) schedule(dir string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.dirs[dir]; !ok {
		return
	}
	if t, ok := w.timers[dir]; ok {
		t.Reset(w.delay)
		return
	}
	w.timers[dir] = time.AfterFunc(w.delay, func() { w.fire(dir) })
}

func (w *lockWatcher) fire(dir string) {
	w.mu.Lock()
	delete(w.timers, dir)
	uris := make([]string, 0, len(w.dirs[dir]))
	for u := range w.dirs[dir] {
		uris = append(uris, u)
	}
	w.mu.Unlock()

	w.logger.Debug("lock file changed", "dir", dir, "documents", len(uris))
	for _, u := range uris {
		w.onChange(u)
	}
}

func (w *lockWatcher) close() error {
	w.mu.Lock()
	for dir, t := range w.timers {
		t.Stop()
		delete(w.timers, dir)
	}
	w.mu.Unlock()
	return w.fs.Close()
}
