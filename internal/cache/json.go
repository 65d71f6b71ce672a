// Package cache persists per-directory odometer results so re-runs skip
// re-parsing. Both backends implement odometer.Store; the key is always
// the log file's directory.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hilodev/csuodo/internal/odometer"
)

// artifactName matches the artifact the original tool wrote, so existing
// caches next to historical logs keep working.
const artifactName = "odometer.json"

// JSONStore writes one odometer.json artifact into each log directory.
type JSONStore struct{}

// NewJSONStore creates a filesystem-backed Store.
func NewJSONStore() *JSONStore { return &JSONStore{} }

func (s *JSONStore) artifactPath(dir string) string {
	return filepath.Join(dir, artifactName)
}

// Get loads the cached result for dir, if the artifact exists.
func (s *JSONStore) Get(_ context.Context, dir string) (*odometer.FileResult, bool, error) {
	p := s.artifactPath(dir)
	raw, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache artifact %q: %w", p, err)
	}
	var res odometer.FileResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, false, fmt.Errorf("parse cache artifact %q: %w", p, err)
	}
	return &res, true, nil
}

// Put writes the result artifact for dir.
func (s *JSONStore) Put(_ context.Context, dir string, res *odometer.FileResult) error {
	b, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode cache artifact: %w", err)
	}
	p := s.artifactPath(dir)
	if err := os.WriteFile(p, b, 0o644); err != nil {
		return fmt.Errorf("write cache artifact %q: %w", p, err)
	}
	return nil
}

// Delete removes dir's artifact. A missing artifact is not an error.
func (s *JSONStore) Delete(_ context.Context, dir string) error {
	err := os.Remove(s.artifactPath(dir))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete cache artifact for %q: %w", dir, err)
	}
	return nil
}
