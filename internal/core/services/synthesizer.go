package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/logger"
)

const (
	synthesisEvidenceK = 5
	maxAnswerSources   = 6
)

// SynthesizerAgent composes answers and report sections from overview
// snippets, indexed PDF evidence and fresh web snippets.
type SynthesizerAgent struct {
	gen   *Generator
	index *EvidenceIndex
}

// NewSynthesizerAgent creates a synthesizer reading evidence from index.
func NewSynthesizerAgent(gen *Generator, index *EvidenceIndex) *SynthesizerAgent {
	return &SynthesizerAgent{gen: gen, index: index}
}

// Answer composes an answer to question. A model failure yields an empty
// answer so the critic can trigger a retry.
func (s *SynthesizerAgent) Answer(
	ctx context.Context, company, question string, overview, fresh []domain.SearchHit,
) domain.SynthesisResult {
	hits := []domain.EvidenceHit{}
	if s.index != nil && s.index.Len() > 0 {
		hits = s.index.Search(ctx, question, synthesisEvidenceK)
	}
	pdfSources := firstUnique(domain.HitSources(hits), 0)

	text, err := s.gen.Generate(ctx, driven.PromptSynthesizeAnswer, driven.GenerateOptions{},
		company, question, overviewSnippets(overview), strings.Join(pdfSources, "\n"), bulletLines(fresh))
	if err != nil {
		logger.Warn("Synthesizer: answer generation failed: %v", err)
		text = ""
	}

	sources := append(append([]string{}, pdfSources...), domain.SearchURLs(fresh)...)
	return domain.SynthesisResult{
		Answer:  normalizeAnswer(text),
		Sources: firstUnique(sources, maxAnswerSources),
		Hits:    hits,
	}
}

// BuildReportSections asks for the full account plan in one pass and returns
// it under the Structured Insights section.
func (s *SynthesizerAgent) BuildReportSections(
	ctx context.Context, company, directive, overviewText string, fresh []domain.SearchHit,
) domain.ReportSections {
	text, err := s.gen.Generate(ctx, driven.PromptReportSections, driven.GenerateOptions{},
		company, directive, overviewText, bulletLines(fresh))
	if err != nil {
		logger.Warn("Synthesizer: report generation failed: %v", err)
		text = ""
	}
	return domain.ReportSections{domain.SectionStructuredInsights: normalizeAnswer(text)}
}

// overviewSnippets joins the non-empty snippets of hits with newlines.
func overviewSnippets(hits []domain.SearchHit) string {
	parts := make([]string, 0, len(hits))
	for _, h := range hits {
		if h.Snippet != "" {
			parts = append(parts, h.Snippet)
		}
	}
	return strings.Join(parts, "\n")
}

// bulletLines renders hits as "- name: snippet (url)" lines.
func bulletLines(hits []domain.SearchHit) string {
	lines := make([]string, 0, len(hits))
	for _, h := range hits {
		lines = append(lines, h.FormatBullet())
	}
	return strings.Join(lines, "\n")
}

// firstUnique removes duplicates keeping first occurrences, then caps at limit.
func firstUnique(items []string, limit int) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
