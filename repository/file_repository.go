package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileSiteDataRepository keeps the site document in a single JSON file
type FileSiteDataRepository struct {
	path string
}

// NewFileSiteDataRepository creates a repository writing to path.
// The parent directory is created when missing.
func NewFileSiteDataRepository(path string) (*FileSiteDataRepository, error) {
	if path == "" {
		return nil, fmt.Errorf("site data file path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory '%s': %w", filepath.Dir(path), err)
	}
	return &FileSiteDataRepository{path: path}, nil
}

// Ensure FileSiteDataRepository implements SiteDataRepositoryInterface
var _ SiteDataRepositoryInterface = (*FileSiteDataRepository)(nil)

// Path returns the file backing the repository
func (r *FileSiteDataRepository) Path() string {
	return r.path
}

// Load reads the file; a missing file is not an error
func (r *FileSiteDataRepository) Load(_ context.Context) ([]byte, bool, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read site data file %s: %w", r.path, err)
	}
	return data, true, nil
}

// Save writes raw to a temp file next to the target and renames it into place,
// so readers never see a partial document
func (r *FileSiteDataRepository) Save(_ context.Context, raw []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".site_data-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write site data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace site data file %s: %w", r.path, err)
	}
	return nil
}
