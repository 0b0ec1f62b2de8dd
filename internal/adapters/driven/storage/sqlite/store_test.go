package sqlite

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func TestNewStore_MigratesOnce(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	var versions int
	require.NoError(t, second.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, 1, versions)
	assert.FileExists(t, second.Path())
}

func TestStore_PutGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	var missing domain.DeepCollection
	found, err := store.Get(ctx, "Acme", domain.CacheKeyDeepCollect, &missing)
	require.NoError(t, err)
	assert.False(t, found)

	in := domain.DeepCollection{
		PDFLinks:   []string{"https://acme.example/ar.pdf"},
		Downloaded: []domain.DownloadedDocument{{Path: "/tmp/doc_1.pdf", URL: "https://acme.example/ar.pdf"}},
	}
	require.NoError(t, store.Put(ctx, "Acme", domain.CacheKeyDeepCollect, in))
	require.NoError(t, store.Put(ctx, "ACME", domain.CacheKeyDeepCollect, in))

	var out domain.DeepCollection
	found, err = store.Get(ctx, "acme", domain.CacheKeyDeepCollect, &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)
}

func TestStore_PutRejectsEmptySlug(t *testing.T) {
	store := setupTestStore(t)
	err := store.Put(context.Background(), "???", domain.CacheKeyOverview, domain.Overview{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_LastModifiedAndPrune(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	latest, err := store.LastModified(ctx, "Acme")
	require.NoError(t, err)
	assert.True(t, latest.IsZero())

	old := time.Now().Add(-72 * time.Hour)
	store.now = func() time.Time { return old }
	require.NoError(t, store.Put(ctx, "Acme", domain.CacheKeyOverview, domain.Overview{Summary: "old"}))

	latest, err = store.LastModified(ctx, "Acme")
	require.NoError(t, err)
	assert.WithinDuration(t, old, latest, time.Second)

	store.now = time.Now
	require.NoError(t, store.Put(ctx, "Acme", domain.CacheKeyFinancials, domain.FinancialSeries{}))

	pdf, err := store.PathFor("Acme", "doc_1.pdf")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF"), 0o600))
	require.NoError(t, os.Chtimes(pdf, old, old))

	removed, err := store.Prune(ctx, "Acme", time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	var ov domain.Overview
	found, err := store.Get(ctx, "Acme", domain.CacheKeyOverview, &ov)
	require.NoError(t, err)
	assert.False(t, found)

	var fin domain.FinancialSeries
	found, err = store.Get(ctx, "Acme", domain.CacheKeyFinancials, &fin)
	require.NoError(t, err)
	assert.True(t, found)
}
