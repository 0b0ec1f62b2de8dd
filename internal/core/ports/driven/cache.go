package driven

import (
	"context"
	"time"
)

// CacheStore persists research records per company.
// Records are JSON-serialisable values addressed by (company, key);
// companies are normalised with domain.CompanySlug by implementations.
// There are no transactional guarantees.
type CacheStore interface {
	// Get decodes the record into dst. It returns false when the record does not exist.
	Get(ctx context.Context, company, key string, dst any) (bool, error)

	// Put stores v as the record, replacing any previous value.
	Put(ctx context.Context, company, key string, v any) error

	// PathFor returns a file path inside the company's storage area for
	// downloaded artefacts. Parent directories exist on return.
	PathFor(company, filename string) (string, error)

	// LastModified returns the newest modification time across the company's
	// records and artefacts. The zero time means nothing is cached.
	LastModified(ctx context.Context, company string) (time.Time, error)

	// Prune deletes records and artefacts last modified before olderThan.
	// It returns the number of entries removed.
	Prune(ctx context.Context, company string, olderThan time.Time) (int, error)
}
