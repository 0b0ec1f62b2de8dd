package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/custodia-labs/dossier/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

type record struct {
	data     []byte
	modified time.Time
}

// CacheStore keeps records in a map. Values are stored JSON-encoded so
// callers get copies, never shared references.
type CacheStore struct {
	mu        sync.RWMutex
	records   map[string]map[string]record
	artefacts file.Artefacts
	now       func() time.Time
}

// NewCacheStore creates an empty store. Artefacts go under artefactDir, or
// a fresh temporary directory when it is empty.
func NewCacheStore(artefactDir string) (*CacheStore, error) {
	if artefactDir == "" {
		dir, err := os.MkdirTemp("", "dossier-cache-*")
		if err != nil {
			return nil, fmt.Errorf("creating artefact directory: %w", err)
		}
		artefactDir = dir
	}
	return &CacheStore{
		records:   make(map[string]map[string]record),
		artefacts: file.Artefacts{Base: artefactDir},
		now:       time.Now,
	}, nil
}

// Get decodes the record into dst.
func (s *CacheStore) Get(_ context.Context, company, key string, dst any) (bool, error) {
	s.mu.RLock()
	rec, ok := s.records[domain.CompanySlug(company)][key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(rec.data, dst); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// Put stores a copy of v.
func (s *CacheStore) Put(_ context.Context, company, key string, v any) error {
	slug := domain.CompanySlug(company)
	if slug == "" {
		return fmt.Errorf("%w: company %q has no usable characters", domain.ErrInvalidInput, company)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records[slug] == nil {
		s.records[slug] = make(map[string]record)
	}
	s.records[slug][key] = record{data: data, modified: s.now()}
	return nil
}

// PathFor returns a file path inside the company's artefact directory.
func (s *CacheStore) PathFor(company, filename string) (string, error) {
	return s.artefacts.PathFor(company, filename)
}

// LastModified returns the newest record or artefact time.
func (s *CacheStore) LastModified(_ context.Context, company string) (time.Time, error) {
	latest, err := s.artefacts.LatestModTime(company)
	if err != nil {
		return time.Time{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records[domain.CompanySlug(company)] {
		if rec.modified.After(latest) {
			latest = rec.modified
		}
	}
	return latest, nil
}

// Prune deletes records and artefacts last modified before olderThan.
func (s *CacheStore) Prune(_ context.Context, company string, olderThan time.Time) (int, error) {
	removed := 0

	s.mu.Lock()
	recs := s.records[domain.CompanySlug(company)]
	for key, rec := range recs {
		if rec.modified.Before(olderThan) {
			delete(recs, key)
			removed++
		}
	}
	s.mu.Unlock()

	files, err := s.artefacts.PruneFiles(company, olderThan)
	return removed + files, err
}
