// Package tempstore holds freshly generated user copies for a short window
// so the submitter can download them. Entries are keyed by exact filename,
// survive repeated downloads, and are evicted only by the periodic sweep.
package tempstore

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrNotFound   = errors.New("entry not found")
	ErrUnsafeName = errors.New("unsafe filename")
)

type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create temp download dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Put stores bytes under filename, stamped with the current time. Filenames
// are unique per submission; an overwrite just resets the entry's clock.
func (s *Store) Put(filename string, data []byte) error {
	if unsafeName(filename) {
		return ErrUnsafeName
	}
	return os.WriteFile(filepath.Join(s.dir, filename), data, 0644)
}

// Get returns the stored bytes. The name is checked for traversal before
// any filesystem access; reads never delete the entry.
func (s *Store) Get(filename string) ([]byte, error) {
	if unsafeName(filename) {
		return nil, ErrUnsafeName
	}
	data, err := os.ReadFile(filepath.Join(s.dir, filename))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Sweep removes entries strictly older than maxAge. An entry exactly at the
// boundary survives until the next pass. Errors on individual entries are
// logged and do not stop the sweep.
func (s *Store) Sweep(maxAge time.Duration) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		slog.Error("sweep: read temp download dir", "error", err)
		return
	}
	now := time.Now()
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := os.Stat(filepath.Join(s.dir, e.Name()))
		if err != nil {
			slog.Warn("sweep: stat entry", "name", e.Name(), "error", err)
			continue
		}
		if now.Sub(info.ModTime()) <= maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			slog.Warn("sweep: remove entry", "name", e.Name(), "error", err)
			continue
		}
		slog.Info("sweep: removed expired entry", "name", e.Name())
	}
}

func unsafeName(name string) bool {
	return name == "" ||
		strings.Contains(name, "..") ||
		strings.ContainsAny(name, `/\`)
}
