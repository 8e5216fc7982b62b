// Package state persists the active industry set between CLI runs.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pauljbernard/headelf/internal/event"
	"github.com/pauljbernard/headelf/internal/model"
)

// Document is the on-disk activation state.
type Document struct {
	Active    []model.IndustryVertical `json:"active"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// Store reads and writes one state file.
type Store struct {
	path string
	mu   sync.Mutex
}

// DefaultPath returns ~/.headelf/state.json.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "headelf-state.json")
	}
	return filepath.Join(home, ".headelf", "state.json")
}

// NewStore returns a store for path. Empty path uses DefaultPath.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{path: path}
}

// Path returns the file the store writes.
func (s *Store) Path() string { return s.path }

// Load returns the saved active set. found is false when no state file
// exists yet. Unknown industry names are rejected.
func (s *Store) Load() (active []model.IndustryVertical, found bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read state: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false, fmt.Errorf("failed to parse state %s: %w", s.path, err)
	}
	for _, ind := range doc.Active {
		if !ind.Valid() {
			return nil, false, fmt.Errorf("state %s: unknown industry %q", s.path, ind)
		}
	}
	return doc.Active, true, nil
}

// Save writes the active set atomically.
func (s *Store) Save(active []model.IndustryVertical) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("cannot create state directory: %w", err)
	}

	doc := Document{Active: active, UpdatedAt: time.Now().UTC()}
	if doc.Active == nil {
		doc.Active = []model.IndustryVertical{}
	}
	return writeAtomic(s.path, doc)
}

// Track saves the active set whenever bus reports a change. Failures are
// logged. The returned function stops tracking.
func (s *Store) Track(bus *event.Bus, logger *zap.Logger) func() {
	if logger == nil {
		logger = zap.NewNop()
	}
	return bus.Subscribe(func(e event.Event) {
		if e.Type != event.ActiveIndustriesUpdated {
			return
		}
		if err := s.Save(e.Industries); err != nil {
			logger.Error("failed to persist active industries", zap.String("path", s.path), zap.Error(err))
		}
	})
}

func writeAtomic(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}
