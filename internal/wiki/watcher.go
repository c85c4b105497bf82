package wiki

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"defectscope/internal/config"
	"defectscope/internal/logging"
)

// Watcher regenerates documentation when a matching source file changes.
// Events are debounced so a burst of editor saves triggers one run.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	cfg      *config.Config
	root     string
	onChange func(ctx context.Context)

	debounce time.Duration
	pending  *time.Timer
	running  bool
	log      *logging.Logger
}

// NewWatcher creates a watcher over root. onChange is invoked after the
// debounce window closes on a relevant change.
func NewWatcher(cfg *config.Config, root string, onChange func(ctx context.Context)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:  fsw,
		cfg:      cfg,
		root:     root,
		onChange: onChange,
		debounce: 750 * time.Millisecond,
		log:      logging.Get(logging.CategoryWiki),
	}, nil
}

// Start watches every non-ignored directory under root and blocks until
// ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()
	defer w.watcher.Close()

	scanner := NewScanner(w.root, w.cfg.IgnorePatterns)
	if err := w.addDirs(scanner); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, scanner, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error: %v", err)
		}
	}
}

// addDirs registers root and every non-ignored subdirectory.
func (w *Watcher) addDirs(scanner *Scanner) error {
	return filepath.Walk(w.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		name := info.Name()
		if rel != "." {
			if strings.HasPrefix(name, ".") {
				if allow, exists := allowedHiddenDirs[name]; !exists || !allow {
					return filepath.SkipDir
				}
			}
			if scanner.ignored(rel, name) {
				return filepath.SkipDir
			}
			// The wiki output directory would retrigger on every run.
			if rel == filepath.ToSlash(w.cfg.WikiDir) {
				return filepath.SkipDir
			}
		}
		if err := w.watcher.Add(path); err != nil {
			w.log.Warn("failed to watch %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) handleEvent(ctx context.Context, scanner *Scanner, event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	// A new directory needs watching; its files may match later.
	if event.Op&fsnotify.Create != 0 {
		if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
			if !scanner.ignored(rel, info.Name()) {
				_ = w.watcher.Add(event.Name)
			}
			return
		}
	}

	matched := false
	for _, t := range w.cfg.Targets {
		if MatchesPattern(t.Pattern, rel) {
			matched = true
			break
		}
	}
	if !matched {
		return
	}

	w.log.Debug("change detected: %s (%s)", rel, event.Op)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounce, func() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		w.onChange(ctx)
	})
}
