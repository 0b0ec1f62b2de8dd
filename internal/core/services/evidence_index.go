package services

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/logger"
)

const (
	// fallbackSeed seeds the pseudo-random embeddings used without an embedder.
	fallbackSeed = 42

	// fallbackDimensions is the vector size of fallback embeddings.
	fallbackDimensions = 512

	// defaultSearchK is used when Search is called with k <= 0.
	defaultSearchK = 5

	cosineEpsilon = 1e-8
)

// EvidenceIndex is an append-only, in-memory nearest-neighbour store of
// embedded text chunks. Lookup is a linear cosine-similarity scan.
type EvidenceIndex struct {
	mu       sync.RWMutex
	embedder driven.EmbeddingService
	chunks   []domain.EvidenceChunk
}

// NewEvidenceIndex creates an empty index. The embedder is optional.
func NewEvidenceIndex(embedder driven.EmbeddingService) *EvidenceIndex {
	return &EvidenceIndex{embedder: embedder}
}

// Add embeds texts and appends them with their metadata.
// metas is paired with texts by position; missing entries get empty metadata.
func (x *EvidenceIndex) Add(ctx context.Context, texts []string, metas []domain.EvidenceMetadata) {
	if len(texts) == 0 {
		logger.Warn("Evidence index: nothing to add")
		return
	}

	rows := x.embed(ctx, texts)

	x.mu.Lock()
	defer x.mu.Unlock()

	for i, text := range texts {
		var meta domain.EvidenceMetadata
		if i < len(metas) {
			meta = metas[i]
		}
		x.chunks = append(x.chunks, domain.EvidenceChunk{
			ID:        uuid.New().String(),
			Text:      text,
			Metadata:  meta,
			Embedding: rows[i],
		})
	}
	logger.Debug("Evidence index: added %d chunks (total %d)", len(texts), len(x.chunks))
}

// Search returns up to k hits ordered by descending cosine similarity.
// Ties keep insertion order.
func (x *EvidenceIndex) Search(ctx context.Context, query string, k int) []domain.EvidenceHit {
	if k <= 0 {
		k = defaultSearchK
	}

	if x.Len() == 0 {
		return []domain.EvidenceHit{}
	}

	q := x.embed(ctx, []string{query})[0]

	x.mu.RLock()
	hits := make([]domain.EvidenceHit, len(x.chunks))
	for i, c := range x.chunks {
		hits[i] = domain.EvidenceHit{
			Score:    cosine(q, c.Embedding),
			Metadata: c.Metadata,
		}
	}
	x.mu.RUnlock()

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k]
}

// Len returns the number of indexed chunks.
func (x *EvidenceIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.chunks)
}

// embed returns one row per text, falling back to deterministic vectors
// when the embedder is missing, fails, or returns the wrong row count.
func (x *EvidenceIndex) embed(ctx context.Context, texts []string) [][]float32 {
	if x.embedder != nil {
		rows, err := x.embedder.EmbedBatch(ctx, texts)
		switch {
		case err != nil:
			logger.Warn("Embedding failed, using fallback vectors: %v", err)
		case len(rows) != len(texts):
			logger.Warn("Embedder returned %d rows for %d texts, using fallback vectors", len(rows), len(texts))
		default:
			return rows
		}
	}
	return fallbackEmbeddings(len(texts))
}

// fallbackEmbeddings draws uniform [0,1) vectors from a generator seeded
// afresh on every call.
func fallbackEmbeddings(n int) [][]float32 {
	rng := rand.New(rand.NewSource(fallbackSeed)) //nolint:gosec // determinism, not security
	rows := make([][]float32, n)
	for i := range rows {
		row := make([]float32, fallbackDimensions)
		for j := range row {
			row[j] = float32(rng.Float64())
		}
		rows[i] = row
	}
	return rows
}

// cosine scores vectors of different length as 0.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		ai, bi := float64(a[i]), float64(b[i])
		dot += ai * bi
		na += ai * ai
		nb += bi * bi
	}
	return dot / (math.Sqrt(na)*math.Sqrt(nb) + cosineEpsilon)
}
