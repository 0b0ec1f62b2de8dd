package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

func axisEmbedder() *stubEmbedder {
	return &stubEmbedder{vector: func(text string) []float32 {
		switch text {
		case "revenue", "revenue table":
			return []float32{1, 0, 0}
		case "products":
			return []float32{0, 1, 0}
		case "mixed":
			return []float32{0.7, 0.7, 0}
		default:
			return []float32{0, 0, 1}
		}
	}}
}

func metas(sources ...string) []domain.EvidenceMetadata {
	out := make([]domain.EvidenceMetadata, 0, len(sources))
	for _, s := range sources {
		out = append(out, domain.EvidenceMetadata{Source: s, Path: "/tmp/" + s})
	}
	return out
}

func TestEvidenceIndex_EmptySearch(t *testing.T) {
	index := NewEvidenceIndex(nil)
	for _, k := range []int{-1, 0, 1, 10} {
		hits := index.Search(context.Background(), "anything", k)
		assert.NotNil(t, hits)
		assert.Empty(t, hits)
	}
}

func TestEvidenceIndex_AddNothing(t *testing.T) {
	index := NewEvidenceIndex(nil)
	index.Add(context.Background(), nil, nil)
	assert.Equal(t, 0, index.Len())
}

func TestEvidenceIndex_SearchOrdersByCosine(t *testing.T) {
	ctx := context.Background()
	index := NewEvidenceIndex(axisEmbedder())
	index.Add(ctx, []string{"products", "mixed", "revenue table", "other"}, metas("p", "m", "r", "o"))
	require.Equal(t, 4, index.Len())

	hits := index.Search(ctx, "revenue", 3)

	require.Len(t, hits, 3)
	assert.Equal(t, "r", hits[0].Metadata.Source)
	assert.Equal(t, "m", hits[1].Metadata.Source)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
}

func TestEvidenceIndex_KDefaultsAndBounds(t *testing.T) {
	ctx := context.Background()
	index := NewEvidenceIndex(axisEmbedder())
	index.Add(ctx, []string{"a", "b", "c", "d", "e", "f", "g"}, nil)

	assert.Len(t, index.Search(ctx, "revenue", 0), 5)
	assert.Len(t, index.Search(ctx, "revenue", 100), 7)
}

func TestEvidenceIndex_TiesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	index := NewEvidenceIndex(axisEmbedder())
	index.Add(ctx, []string{"x", "y", "z"}, metas("first", "second", "third"))

	hits := index.Search(ctx, "w", 3)
	assert.Equal(t, []string{"first", "second", "third"}, domain.HitSources(hits))
}

func TestEvidenceIndex_FallbackIsDeterministic(t *testing.T) {
	ctx := context.Background()
	texts := []string{"alpha", "beta", "gamma"}

	a := NewEvidenceIndex(nil)
	a.Add(ctx, texts, metas("1", "2", "3"))
	b := NewEvidenceIndex(&stubEmbedder{err: errors.New("embedder down")})
	b.Add(ctx, texts, metas("1", "2", "3"))

	ha := a.Search(ctx, "query", 3)
	hb := b.Search(ctx, "query", 3)
	assert.Equal(t, ha, hb)

	rows := fallbackEmbeddings(2)
	require.Len(t, rows, 2)
	assert.Len(t, rows[0], fallbackDimensions)
	assert.Equal(t, rows[0], fallbackEmbeddings(1)[0])
	for _, v := range rows[1] {
		assert.True(t, v >= 0 && v < 1)
	}
}

func TestEvidenceIndex_WrongRowCountFallsBack(t *testing.T) {
	emb := axisEmbedder()
	emb.short = true
	index := NewEvidenceIndex(emb)
	index.Add(context.Background(), []string{"revenue", "products"}, nil)

	require.Equal(t, 2, index.Len())
	assert.Len(t, index.chunks[0].Embedding, fallbackDimensions)
	assert.NotEmpty(t, index.chunks[0].ID)
	assert.NotEqual(t, index.chunks[0].ID, index.chunks[1].ID)
}

func TestEvidenceIndex_DimensionMismatchScoresZero(t *testing.T) {
	assert.Zero(t, cosine([]float32{1, 0}, []float32{1, 0, 0}))
	assert.Zero(t, cosine(nil, nil))
	assert.InDelta(t, 1.0, cosine([]float32{2, 0}, []float32{5, 0}), 1e-6)
}

func TestEvidenceIndex_ConcurrentUse(t *testing.T) {
	ctx := context.Background()
	index := NewEvidenceIndex(axisEmbedder())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			index.Add(ctx, []string{"revenue"}, metas("r"))
		}()
		go func() {
			defer wg.Done()
			_ = index.Search(ctx, "revenue", 3)
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, index.Len())
}
