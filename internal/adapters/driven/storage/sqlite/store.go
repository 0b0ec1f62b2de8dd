package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/dossier/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/dossier/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.CacheStore = (*Store)(nil)

// Store keeps research records in SQLite and artefacts on disk.
type Store struct {
	db        *sql.DB
	path      string
	artefacts file.Artefacts
	now       func() time.Time
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.dossier/cache.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".dossier", "cache")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "cache.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:        db,
		path:      dbPath,
		artefacts: file.Artefacts{Base: dataDir},
		now:       time.Now,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Get decodes the record into dst.
func (s *Store) Get(ctx context.Context, company, key string, dst any) (bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM cache_records WHERE company = ? AND key = ?`,
		domain.CompanySlug(company), key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(value), dst); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// Put stores or replaces the record.
func (s *Store) Put(ctx context.Context, company, key string, v any) error {
	slug := domain.CompanySlug(company)
	if slug == "" {
		return fmt.Errorf("%w: company %q has no usable characters", domain.ErrInvalidInput, company)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cache_records (company, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(company, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, slug, key, string(data), s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

// PathFor returns a file path inside the company's artefact directory.
func (s *Store) PathFor(company, filename string) (string, error) {
	return s.artefacts.PathFor(company, filename)
}

// LastModified returns the newest record or artefact time for the company.
func (s *Store) LastModified(ctx context.Context, company string) (time.Time, error) {
	var nanos sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(updated_at) FROM cache_records WHERE company = ?`,
		domain.CompanySlug(company),
	).Scan(&nanos)
	if err != nil {
		return time.Time{}, fmt.Errorf("reading cache age: %w", err)
	}

	var latest time.Time
	if nanos.Valid {
		latest = time.Unix(0, nanos.Int64)
	}

	files, err := s.artefacts.LatestModTime(company)
	if err != nil {
		return time.Time{}, err
	}
	if files.After(latest) {
		latest = files
	}
	return latest, nil
}

// Prune deletes records and artefacts last modified before olderThan.
func (s *Store) Prune(ctx context.Context, company string, olderThan time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cache_records WHERE company = ? AND updated_at < ?`,
		domain.CompanySlug(company), olderThan.UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("pruning records: %w", err)
	}
	records, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned records: %w", err)
	}

	files, err := s.artefacts.PruneFiles(company, olderThan)
	if err != nil {
		return int(records), err
	}
	return int(records) + files, nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_cache.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
