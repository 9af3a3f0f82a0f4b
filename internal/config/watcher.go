package config

import (
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc receives the previous and the newly loaded config.
type ReloadFunc func(old, cur *Config)

// Watcher watches a config file for changes and reloads it
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	log      *slog.Logger
	mu       sync.RWMutex
	config   *Config
	handlers []ReloadFunc
	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a new config file watcher. The directory is watched
// so that editors saving through a rename are seen too.
func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	cw := &Watcher{
		path:    filepath.Clean(path),
		watcher: w,
		log:     logger,
		config:  cfg,
		done:    make(chan struct{}),
	}

	if err := w.Add(filepath.Dir(cw.path)); err != nil {
		w.Close()
		return nil, err
	}

	return cw, nil
}

// Start starts watching for config file changes
func (w *Watcher) Start() {
	go w.watch()
}

// Stop stops the config watcher
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
}

// OnReload registers a handler to be called when config is reloaded
func (w *Watcher) OnReload(handler ReloadFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// Get returns the current config
func (w *Watcher) Get() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

func (w *Watcher) watch() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			// Reload on write or create (some editors do atomic saves via rename)
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.log.Warn("failed to reload config", "path", w.path, "error", err)
		return
	}

	w.mu.Lock()
	old := w.config
	w.config = cfg
	handlers := make([]ReloadFunc, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.Unlock()

	w.log.Info("config reloaded", "path", w.path)
	if fields := RestartFields(old, cfg); len(fields) > 0 {
		w.log.Warn("config changes need a restart", "fields", fields)
	}

	for _, handler := range handlers {
		handler(old, cfg)
	}
}
