package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

// CacheStore keeps research records as JSON files per company.
type CacheStore struct {
	artefacts Artefacts
}

// NewCacheStore creates a store rooted at baseDir.
// If baseDir is empty, defaults to ~/.dossier/cache.
func NewCacheStore(baseDir string) (*CacheStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".dossier", "cache")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &CacheStore{artefacts: Artefacts{Base: baseDir}}, nil
}

// Base returns the cache root directory.
func (s *CacheStore) Base() string {
	return s.artefacts.Base
}

// Get decodes the record into dst.
func (s *CacheStore) Get(_ context.Context, company, key string, dst any) (bool, error) {
	path, err := s.artefacts.PathFor(company, key+".json")
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// Put writes the record atomically.
func (s *CacheStore) Put(_ context.Context, company, key string, v any) error {
	path, err := s.artefacts.PathFor(company, key+".json")
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", key, err)
	}
	return nil
}

// PathFor returns a file path inside the company directory.
func (s *CacheStore) PathFor(company, filename string) (string, error) {
	return s.artefacts.PathFor(company, filename)
}

// LastModified returns the newest file modification time for the company.
func (s *CacheStore) LastModified(_ context.Context, company string) (time.Time, error) {
	return s.artefacts.LatestModTime(company)
}

// Prune deletes records and artefacts last modified before olderThan.
func (s *CacheStore) Prune(_ context.Context, company string, olderThan time.Time) (int, error) {
	return s.artefacts.PruneFiles(company, olderThan)
}
