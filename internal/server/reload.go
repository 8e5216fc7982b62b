package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// reloadDebounce is how long the watcher waits after the last change to a
// source before reloading it.
var reloadDebounce = 500 * time.Millisecond

// Source names a hot-reloadable configuration file.
type Source string

const (
	SourceRules    Source = "rules"
	SourcePatterns Source = "patterns"
)

// Reloader watches the directories holding the server's rule and pattern
// files and reloads only the source that changed. A deleted file reverts
// that source to its built-in defaults.
type Reloader struct {
	watcher *fsnotify.Watcher
	server  *Server
	sources map[string]Source

	mu      sync.Mutex
	pending map[Source]*time.Timer

	// onReload, when set, observes every reload attempt.
	onReload func(Source, error)
}

// NewReloader watches the rule and pattern paths from the server's Config.
// A path whose directory does not exist is not watched.
func NewReloader(server *Server) (*Reloader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	r := &Reloader{
		watcher: watcher,
		server:  server,
		sources: make(map[string]Source, 2),
		pending: make(map[Source]*time.Timer, 2),
	}

	dirs := make(map[string]bool, 2)
	for src, path := range map[Source]string{
		SourceRules:    server.cfg.RulesPath,
		SourcePatterns: server.cfg.PatternsPath,
	} {
		if path == "" {
			continue
		}
		path = filepath.Clean(path)
		dir := filepath.Dir(path)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if !dirs[dir] {
			if err := watcher.Add(dir); err != nil {
				watcher.Close()
				return nil, fmt.Errorf("failed to watch %q: %w", dir, err)
			}
			dirs[dir] = true
		}
		r.sources[path] = src
	}
	return r, nil
}

// Paths returns the watched files, sorted.
func (r *Reloader) Paths() []string {
	out := make([]string, 0, len(r.sources))
	for p := range r.sources {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Run reloads sources as their files change. Blocks until ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()
	defer r.stopPending()

	logger := r.server.logger
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			src, watched := r.sources[filepath.Clean(ev.Name)]
			if !watched || ev.Op == fsnotify.Chmod {
				continue
			}
			logger.Debug("config file changed",
				zap.String("source", string(src)),
				zap.String("file", ev.Name),
				zap.String("op", ev.Op.String()))
			r.schedule(src)

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

// schedule debounces reloads per source.
func (r *Reloader) schedule(src Source) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.pending[src]; ok {
		t.Stop()
	}
	r.pending[src] = time.AfterFunc(reloadDebounce, func() {
		err := r.server.ReloadSource(src)
		if err != nil {
			r.server.logger.Error("hot-reload failed", zap.String("source", string(src)), zap.Error(err))
		}
		if r.onReload != nil {
			r.onReload(src, err)
		}
	})
}

func (r *Reloader) stopPending() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for src, t := range r.pending {
		t.Stop()
		delete(r.pending, src)
	}
}
