package domain

// EvidenceMetadata identifies where an indexed chunk came from.
type EvidenceMetadata struct {
	// Source is the origin URL or document identifier.
	Source string `json:"source"`

	// Path is the local file the text was extracted from, if any.
	Path string `json:"path,omitempty"`
}

// EvidenceChunk is an embedded piece of text held by the evidence index.
// Chunks are never mutated after insertion.
type EvidenceChunk struct {
	ID        string
	Text      string
	Metadata  EvidenceMetadata
	Embedding []float32
}

// EvidenceHit pairs a cosine similarity score with the chunk's metadata.
type EvidenceHit struct {
	Score    float64          `json:"score"`
	Metadata EvidenceMetadata `json:"metadata"`
}

// HitSources returns the source identifiers of hits in rank order.
func HitSources(hits []EvidenceHit) []string {
	sources := make([]string, 0, len(hits))
	for _, h := range hits {
		sources = append(sources, h.Metadata.Source)
	}
	return sources
}
