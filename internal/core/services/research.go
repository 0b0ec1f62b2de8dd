package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
	"github.com/custodia-labs/dossier/internal/logger"
)

// Ensure ResearchAgent implements the interface.
var _ driving.ResearchAgent = (*ResearchAgent)(nil)

const (
	overviewSearchCount = 5
	quickAnswerSources  = 3
	hybridAnswerSources = 3
	noOverviewAnswer    = "(No overview data available. Run overview first.)"
	noEvidenceClaim     = "(No evidence found — please run deep research)"
)

// ResearchDeps bundles the driven collaborators of a research agent.
// Cache is required; every other collaborator is optional and degrades
// to empty results when nil.
type ResearchDeps struct {
	LLM       driven.LLMService
	Embedder  driven.EmbeddingService
	Search    driven.SearchProvider
	Cache     driven.CacheStore
	Fetcher   driven.DocumentFetcher
	Extractor driven.TextExtractor
	Splitter  driven.TextSplitter
	Renderer  driven.ReportRenderer
	Feed      driven.CompanyFeed
	Prompts   driven.PromptStore
}

// ResearchAgent orchestrates planner, retriever, synthesizer and critic for
// one company and owns that company's evidence index.
type ResearchAgent struct {
	profile  domain.CompanyProfile
	deps     ResearchDeps
	settings domain.AppSettings

	gen         *Generator
	index       *EvidenceIndex
	planner     *PlannerAgent
	retriever   *RetrieverAgent
	synthesizer *SynthesizerAgent
	critic      *CriticAgent

	// indexMu serialises index loads so concurrent askers build it once.
	indexMu sync.Mutex

	refMu      sync.Mutex
	references []string

	now func() time.Time
}

// NewResearchAgent creates an agent with an empty evidence index.
func NewResearchAgent(
	profile domain.CompanyProfile, deps ResearchDeps, settings domain.AppSettings,
) (*ResearchAgent, error) {
	profile = profile.WithDefaults()
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if deps.Cache == nil {
		return nil, errors.New("research agent requires a cache store")
	}

	gen := NewGenerator(deps.LLM, deps.Prompts, settings.LLM.Temperature)
	index := NewEvidenceIndex(deps.Embedder)

	return &ResearchAgent{
		profile:     profile,
		deps:        deps,
		settings:    settings,
		gen:         gen,
		index:       index,
		planner:     NewPlannerAgent(gen),
		retriever:   NewRetrieverAgent(deps.Search),
		synthesizer: NewSynthesizerAgent(gen, index),
		critic:      NewCriticAgent(),
		now:         time.Now,
	}, nil
}

// Profile returns the company this agent researches.
func (a *ResearchAgent) Profile() domain.CompanyProfile {
	return a.profile
}

// Index exposes the agent's evidence index.
func (a *ResearchAgent) Index() *EvidenceIndex {
	return a.index
}

// Plan derives search queries and follow-ups for a user prompt.
func (a *ResearchAgent) Plan(ctx context.Context, userPrompt string, kbReady bool) domain.Plan {
	return a.planner.Plan(ctx, a.profile.Name, userPrompt, kbReady)
}

// Clarify asks the model for clarifying questions about the research scope.
func (a *ResearchAgent) Clarify(ctx context.Context) string {
	text, err := a.gen.Generate(ctx, driven.PromptClarify, driven.GenerateOptions{},
		a.profile.Name, a.profile.Years, a.profile.DepartmentOrDefault())
	if err != nil {
		logger.Warn("Clarify failed: %v", err)
		return ""
	}
	return cleanText(text)
}

// Overview runs broad searches, summarises the results and caches both.
func (a *ResearchAgent) Overview(ctx context.Context) (*domain.Overview, error) {
	logger.Section("Overview")
	c := a.profile.Name
	queries := []string{
		c + " finances overview",
		c + " annual report",
		fmt.Sprintf("%s revenue %d years", c, a.profile.Years),
	}

	results := []domain.SearchHit{}
	if a.deps.Search != nil {
		for _, q := range queries {
			hits, err := a.deps.Search.Search(ctx, q, overviewSearchCount)
			if err != nil {
				logger.Warn("Overview search %q failed: %v", q, err)
				continue
			}
			results = append(results, hits...)
		}
	}

	lines := make([]string, 0, len(results))
	for _, r := range results {
		if r.URL != "" {
			lines = append(lines, r.FormatBullet())
		}
	}

	summary, err := a.gen.Generate(ctx, driven.PromptOverviewSummary, driven.GenerateOptions{}, strings.Join(lines, "\n"))
	if err != nil {
		logger.Warn("Overview summary failed: %v", err)
	}

	ov := &domain.Overview{Summary: cleanText(summary), Results: results}
	if err := a.deps.Cache.Put(ctx, c, domain.CacheKeyOverview, ov); err != nil {
		return nil, fmt.Errorf("write overview cache: %w", err)
	}
	logger.Info("Overview cached: %d results", len(results))
	return ov, nil
}

// QuickAnswer answers from cached overview snippets only.
func (a *ResearchAgent) QuickAnswer(ctx context.Context, question string) domain.QuickAnswer {
	ov := a.cachedOverview(ctx)
	if len(ov.Results) == 0 {
		return domain.QuickAnswer{Answer: noOverviewAnswer, Sources: []string{}}
	}

	text, err := a.gen.Generate(ctx, driven.PromptQuickAnswer, driven.GenerateOptions{},
		overviewSnippets(ov.Results), question)
	if err != nil {
		logger.Warn("Quick answer failed: %v", err)
	}

	head := ov.Results
	if len(head) > quickAnswerSources {
		head = head[:quickAnswerSources]
	}
	sources := domain.SearchURLs(head)
	a.recordSources(sources)
	return domain.QuickAnswer{Answer: cleanText(text), Sources: sources}
}

// AnswerWithEvidence answers from indexed PDF evidence, rebuilding the
// index from the deep collection cache when it is empty.
func (a *ResearchAgent) AnswerWithEvidence(ctx context.Context, question string, k int) domain.EvidenceAnswer {
	a.EnsureIndexLoaded(ctx)

	hits := a.index.Search(ctx, question, k)
	sources := firstUnique(domain.HitSources(hits), 0)
	if len(sources) == 0 {
		return domain.EvidenceAnswer{Claim: noEvidenceClaim, Sources: []string{}, Hits: []domain.EvidenceHit{}}
	}

	srcList := "[" + strings.Join(sources, ", ") + "]"
	claim, err := a.gen.Generate(ctx, driven.PromptEvidenceClaim, driven.GenerateOptions{}, question, srcList)
	if err != nil {
		logger.Warn("Evidence claim failed: %v", err)
	}
	card, err := a.gen.Generate(ctx, driven.PromptEvidenceCard, driven.GenerateOptions{}, claim, srcList)
	if err != nil {
		logger.Warn("Evidence card failed: %v", err)
	}
	a.recordSources(sources)

	return domain.EvidenceAnswer{
		Claim:   cleanText(claim),
		Sources: sources,
		Card:    cleanText(card),
		Hits:    hits,
	}
}

// AnswerHybrid answers from overview snippets together with PDF evidence.
func (a *ResearchAgent) AnswerHybrid(ctx context.Context, question string, k int) domain.SynthesisResult {
	ov := a.cachedOverview(ctx)
	a.EnsureIndexLoaded(ctx)

	hits := a.index.Search(ctx, question, k)
	pdfSources := firstUnique(domain.HitSources(hits), 0)
	combined := fmt.Sprintf("Overview:\n%s\n\nPDF sources:\n[%s]",
		overviewSnippets(ov.Results), strings.Join(pdfSources, ", "))

	text, err := a.gen.Generate(ctx, driven.PromptHybridAnswer, driven.GenerateOptions{}, question, combined)
	if err != nil {
		logger.Warn("Hybrid answer failed: %v", err)
	}

	sources := firstUnique(pdfSources, hybridAnswerSources)
	a.recordSources(sources)
	return domain.SynthesisResult{
		Answer:  cleanText(text),
		Sources: sources,
		Hits:    hits,
	}
}

// AnswerMulti runs plan, retrieve, synthesize and critique. A weak answer is
// retried exactly once with broadened queries. It never fails.
func (a *ResearchAgent) AnswerMulti(ctx context.Context, userPrompt string, kbReady bool) domain.MultiAnswer {
	logger.Section("Multi-agent Answer")
	overview := a.cachedOverview(ctx).Results

	plan := a.Plan(ctx, userPrompt, kbReady)

	var fresh []domain.SearchHit
	if plan.NeedFreshSearch {
		fresh = a.retriever.GatherSnippets(ctx, plan.SearchQueries, 0)
	}

	resp := a.synthesizer.Answer(ctx, a.profile.Name, userPrompt, overview, fresh)
	if a.critic.NeedsRetry(resp.Answer) {
		logger.Info("Critic flagged answer, retrying with broadened queries")
		c := a.profile.Name
		refine := []string{
			c + " " + userPrompt + " latest report",
			fmt.Sprintf("%s product revenue table FY %d", c, a.profile.Years),
			c + " segment revenue by product",
		}
		fresh = a.retriever.GatherSnippets(ctx, refine, 0)
		resp = a.synthesizer.Answer(ctx, c, userPrompt, overview, fresh)
	}
	a.recordSources(resp.Sources)

	return domain.MultiAnswer{SynthesisResult: resp, Followups: plan.Followups}
}

// Competitors extracts competitor names from report text.
func (a *ResearchAgent) Competitors(text string) []domain.Competitor {
	return ExtractCompetitors(text)
}

// SWOT extracts SWOT bullets from report text.
func (a *ResearchAgent) SWOT(text string) domain.SWOT {
	return ExtractSWOT(text)
}

// Updates returns recent social updates about the company.
func (a *ResearchAgent) Updates(ctx context.Context) ([]domain.CompanyUpdate, error) {
	if a.deps.Feed == nil {
		return nil, domain.ErrFeedUnavailable
	}
	updates, err := a.deps.Feed.Updates(ctx, a.profile.Name)
	if err != nil {
		return nil, fmt.Errorf("company updates: %w", err)
	}
	return updates, nil
}

// recordSources remembers answer sources for the report's reference list.
func (a *ResearchAgent) recordSources(sources []string) {
	a.refMu.Lock()
	defer a.refMu.Unlock()
	a.references = firstUnique(append(a.references, sources...), 0)
}

// AnswerSources returns the distinct sources cited by answers so far.
func (a *ResearchAgent) AnswerSources() []string {
	a.refMu.Lock()
	defer a.refMu.Unlock()
	return append([]string{}, a.references...)
}

// cachedOverview reads the overview record; a missing or unreadable record is empty.
func (a *ResearchAgent) cachedOverview(ctx context.Context) domain.Overview {
	var ov domain.Overview
	if _, err := a.deps.Cache.Get(ctx, a.profile.Name, domain.CacheKeyOverview, &ov); err != nil {
		logger.Warn("Reading overview cache: %v", err)
		return domain.Overview{}
	}
	return ov
}

// Ask dispatches question to the pipeline selected by mode and returns a
// uniform answer. k bounds evidence hits for the evidence and hybrid modes.
func (a *ResearchAgent) Ask(ctx context.Context, mode domain.AskMode, question string, k int, kbReady bool) domain.Answer {
	switch mode {
	case domain.AskModeQuick:
		qa := a.QuickAnswer(ctx, question)
		return domain.Answer{Mode: mode, Answer: qa.Answer, Sources: qa.Sources}
	case domain.AskModeEvidence:
		ea := a.AnswerWithEvidence(ctx, question, k)
		return domain.Answer{Mode: mode, Answer: ea.Claim, Card: ea.Card, Sources: ea.Sources, Hits: ea.Hits}
	case domain.AskModeHybrid:
		hr := a.AnswerHybrid(ctx, question, k)
		return domain.Answer{Mode: mode, Answer: hr.Answer, Sources: hr.Sources, Hits: hr.Hits}
	default:
		ma := a.AnswerMulti(ctx, question, kbReady)
		return domain.Answer{
			Mode:      domain.AskModeMulti,
			Answer:    ma.Answer,
			Sources:   ma.Sources,
			Hits:      ma.Hits,
			Followups: ma.Followups,
		}
	}
}
