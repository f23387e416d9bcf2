// Package watch re-runs an export whenever files under the export root
// change.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hugo-vanthournhout/hv-cli/internal/exporter"
	"go.uber.org/zap"
)

const DefaultDebounce = 500 * time.Millisecond

type Options struct {
	Root  string
	Rules *exporter.Rules
	// Ignore lists absolute paths whose events never trigger a run, such as
	// the export's own output file.
	Ignore   []string
	Debounce time.Duration
	Logger   *zap.Logger
}

// Watcher watches every non-pruned directory below a root.
type Watcher struct {
	root     string
	rules    *exporter.Rules
	ignore   map[string]struct{}
	debounce time.Duration
	logger   *zap.Logger
	watcher  *fsnotify.Watcher

	mu      sync.Mutex
	watched map[string]struct{}
}

func New(opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:     filepath.Clean(opts.Root),
		rules:    opts.Rules,
		ignore:   make(map[string]struct{}, len(opts.Ignore)),
		debounce: opts.Debounce,
		logger:   opts.Logger,
		watcher:  fsw,
		watched:  make(map[string]struct{}),
	}
	for _, p := range opts.Ignore {
		w.ignore[filepath.Clean(p)] = struct{}{}
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}
	if w.rules == nil {
		if w.rules, err = exporter.NewRules(nil, nil, nil); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	if err := w.addRecursive(w.root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Watching reports whether dir is currently watched.
func (w *Watcher) Watching(dir string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.watched[filepath.Clean(dir)]
	return ok
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root && w.rules.PruneDir(w.rel(p)) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			w.logger.Warn("failed to watch directory", zap.String("path", p), zap.Error(err))
			return nil
		}
		w.mu.Lock()
		w.watched[p] = struct{}{}
		w.mu.Unlock()
		return nil
	})
}

func (w *Watcher) rel(p string) string {
	rel, err := filepath.Rel(w.root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

// relevant decides whether ev should trigger a run, watching new
// directories as a side effect.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Clean(ev.Name)
	if _, ok := w.ignore[name]; ok {
		return false
	}
	if strings.HasPrefix(filepath.Base(name), exporter.TempPrefix) {
		return false
	}

	rel := w.rel(name)
	if ev.Has(fsnotify.Create) {
		if info, err := os.Lstat(name); err == nil && info.IsDir() {
			if w.rules.PruneDir(rel) {
				return false
			}
			if err := w.addRecursive(name); err != nil {
				w.logger.Warn("failed to watch new directory", zap.String("path", name), zap.Error(err))
			}
			return true
		}
	}

	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		w.mu.Lock()
		_, wasDir := w.watched[name]
		delete(w.watched, name)
		w.mu.Unlock()
		if wasDir {
			return true
		}
	}

	return w.rules.Qualifies(rel)
}

// Run blocks until ctx is done, calling onChange once the tree has been
// quiet for the debounce period after a relevant change. Calls never
// overlap. Errors from onChange are logged and watching continues.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context) error) error {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("change detected", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-fire:
			fire = nil
			if err := onChange(ctx); err != nil {
				w.logger.Warn("re-export failed", zap.Error(err))
			}
		}
	}
}
