package driving

import (
	"context"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

// ResearchAgent is the research orchestrator for one company.
// Each agent owns its evidence index; agents are never shared across companies.
// Question-answering operations never fail: collaborator errors degrade to
// fallback values. Operations that persist or render return errors.
type ResearchAgent interface {
	// Profile returns the company this agent researches.
	Profile() domain.CompanyProfile

	// Plan derives search queries and follow-ups for a user prompt.
	Plan(ctx context.Context, userPrompt string, kbReady bool) domain.Plan

	// Overview runs broad searches, summarises them and caches the result.
	Overview(ctx context.Context) (*domain.Overview, error)

	// Clarify asks the model for clarifying questions about the research scope.
	Clarify(ctx context.Context) string

	// QuickAnswer answers from cached overview snippets only.
	QuickAnswer(ctx context.Context, question string) domain.QuickAnswer

	// DeepCollect discovers, downloads and indexes PDFs, reusing cache younger than ttlDays.
	DeepCollect(ctx context.Context, ttlDays int) (*domain.DeepCollection, error)

	// AnswerWithEvidence answers from indexed PDF evidence.
	AnswerWithEvidence(ctx context.Context, question string, k int) domain.EvidenceAnswer

	// AnswerHybrid answers from overview snippets plus PDF evidence.
	AnswerHybrid(ctx context.Context, question string, k int) domain.SynthesisResult

	// AnswerMulti runs plan, retrieve, synthesize and critique with one bounded retry.
	AnswerMulti(ctx context.Context, userPrompt string, kbReady bool) domain.MultiAnswer

	// Ask dispatches a question to the pipeline selected by mode.
	Ask(ctx context.Context, mode domain.AskMode, question string, k int, kbReady bool) domain.Answer

	// GenerateReport builds directive-aware report sections.
	GenerateReport(ctx context.Context, directive string) domain.ReportSections

	// RenderReport writes sections to a document and returns its path.
	RenderReport(ctx context.Context, sections domain.ReportSections) (string, error)

	// ExtractFinancials mines a revenue series from collected PDFs.
	ExtractFinancials(ctx context.Context, maxDocs int) domain.FinancialSeries

	// Competitors extracts competitor names from report text.
	Competitors(text string) []domain.Competitor

	// SWOT extracts SWOT bullets from report text.
	SWOT(text string) domain.SWOT

	// Updates returns recent social updates about the company.
	Updates(ctx context.Context) ([]domain.CompanyUpdate, error)
}

// AgentFactory creates research agents.
type AgentFactory interface {
	// NewAgent creates a fresh agent with an empty evidence index.
	NewAgent(profile domain.CompanyProfile) (ResearchAgent, error)
}

// SessionPool hands out one long-lived agent per company for driving
// adapters that serve many requests.
type SessionPool interface {
	// Agent returns the agent for profile, creating it on first use.
	Agent(profile domain.CompanyProfile) (ResearchAgent, error)

	// Reset drops the agent for a company so the next call starts fresh.
	Reset(company string)
}

// Guard screens user input before it reaches an agent.
type Guard interface {
	// Screen sanitises input. It returns domain.ErrInputBlocked or
	// domain.ErrOffTopic together with the user-facing message when rejected.
	Screen(input string) (string, error)
}
