package mcp

import (
	"context"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
)

// mockAgent is a mock implementation of driving.ResearchAgent.
type mockAgent struct {
	profile   domain.CompanyProfile
	overview  *domain.Overview
	answer    domain.Answer
	deep      *domain.DeepCollection
	sections  domain.ReportSections
	plan      domain.Plan
	financial domain.FinancialSeries
	updates   []domain.CompanyUpdate
	path      string
	err       error

	askMode     domain.AskMode
	askQuestion string
	askK        int
	deepTTL     int
	rendered    bool
}

func (m *mockAgent) Profile() domain.CompanyProfile { return m.profile }

func (m *mockAgent) Plan(_ context.Context, _ string, _ bool) domain.Plan { return m.plan }

func (m *mockAgent) Overview(_ context.Context) (*domain.Overview, error) { return m.overview, m.err }

func (m *mockAgent) Clarify(_ context.Context) string { return "" }

func (m *mockAgent) QuickAnswer(_ context.Context, _ string) domain.QuickAnswer {
	return domain.QuickAnswer{}
}

func (m *mockAgent) DeepCollect(_ context.Context, ttlDays int) (*domain.DeepCollection, error) {
	m.deepTTL = ttlDays
	return m.deep, m.err
}

func (m *mockAgent) AnswerWithEvidence(_ context.Context, _ string, _ int) domain.EvidenceAnswer {
	return domain.EvidenceAnswer{}
}

func (m *mockAgent) AnswerHybrid(_ context.Context, _ string, _ int) domain.SynthesisResult {
	return domain.SynthesisResult{}
}

func (m *mockAgent) AnswerMulti(_ context.Context, _ string, _ bool) domain.MultiAnswer {
	return domain.MultiAnswer{}
}

func (m *mockAgent) Ask(_ context.Context, mode domain.AskMode, q string, k int, _ bool) domain.Answer {
	m.askMode, m.askQuestion, m.askK = mode, q, k
	return m.answer
}

func (m *mockAgent) GenerateReport(_ context.Context, _ string) domain.ReportSections { return m.sections }

func (m *mockAgent) RenderReport(_ context.Context, _ domain.ReportSections) (string, error) {
	m.rendered = true
	return m.path, m.err
}

func (m *mockAgent) ExtractFinancials(_ context.Context, _ int) domain.FinancialSeries {
	return m.financial
}

func (m *mockAgent) Competitors(_ string) []domain.Competitor {
	return []domain.Competitor{{Name: "Globex"}}
}

func (m *mockAgent) SWOT(_ string) domain.SWOT {
	return domain.SWOT{Strengths: []string{"brand"}}
}

func (m *mockAgent) Updates(_ context.Context) ([]domain.CompanyUpdate, error) {
	return m.updates, m.err
}

// mockPool hands out a single agent and records the requested profiles.
type mockPool struct {
	agent    *mockAgent
	err      error
	profiles []domain.CompanyProfile
}

func (p *mockPool) Agent(profile domain.CompanyProfile) (driving.ResearchAgent, error) {
	p.profiles = append(p.profiles, profile)
	if p.err != nil {
		return nil, p.err
	}
	return p.agent, nil
}

func (p *mockPool) Reset(_ string) {}

// mockGuard rejects one fixed input.
type mockGuard struct {
	reject string
}

func (g mockGuard) Screen(input string) (string, error) {
	if input == g.reject {
		return "(Your question seems unrelated to account planning. Please ask relevant questions.)", domain.ErrOffTopic
	}
	return input, nil
}
