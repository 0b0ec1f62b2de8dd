package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
)

// mockAgent implements driving.ResearchAgent for testing.
type mockAgent struct {
	profile  domain.CompanyProfile
	overview *domain.Overview
	deep     *domain.DeepCollection
	answer   domain.Answer
	sections domain.ReportSections
	err      error

	askMode     domain.AskMode
	askQuestion string
	askKBReady  bool
	deepTTL     int
	directive   string
}

func (m *mockAgent) Profile() domain.CompanyProfile { return m.profile }

func (m *mockAgent) Plan(_ context.Context, _ string, _ bool) domain.Plan { return domain.Plan{} }

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

func (m *mockAgent) Ask(_ context.Context, mode domain.AskMode, q string, _ int, kbReady bool) domain.Answer {
	m.askMode, m.askQuestion, m.askKBReady = mode, q, kbReady
	return m.answer
}

func (m *mockAgent) GenerateReport(_ context.Context, directive string) domain.ReportSections {
	m.directive = directive
	return m.sections
}

func (m *mockAgent) RenderReport(_ context.Context, _ domain.ReportSections) (string, error) {
	return "", nil
}

func (m *mockAgent) ExtractFinancials(_ context.Context, _ int) domain.FinancialSeries {
	return domain.FinancialSeries{}
}

func (m *mockAgent) Competitors(_ string) []domain.Competitor { return nil }

func (m *mockAgent) SWOT(_ string) domain.SWOT { return domain.SWOT{} }

func (m *mockAgent) Updates(_ context.Context) ([]domain.CompanyUpdate, error) { return nil, nil }

// mockPool hands out a single agent.
type mockPool struct {
	agent *mockAgent
	err   error
}

func (p *mockPool) Agent(profile domain.CompanyProfile) (driving.ResearchAgent, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.agent.profile = profile.WithDefaults()
	return p.agent, nil
}

func (p *mockPool) Reset(_ string) {}

// mockGuard rejects one fixed input.
type mockGuard struct {
	reject string
}

func (g mockGuard) Screen(input string) (string, error) {
	if input == g.reject {
		return "(Your question seems unrelated to account planning.)", domain.ErrOffTopic
	}
	return input, nil
}

func TestPorts_Validate(t *testing.T) {
	var nilPorts *Ports
	assert.ErrorIs(t, nilPorts.Validate(), ErrMissingSessionPool)
	assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingSessionPool)
	assert.NoError(t, (&Ports{Sessions: &mockPool{agent: &mockAgent{}}}).Validate())
}

func TestErrMissingSessionPool_Message(t *testing.T) {
	assert.Contains(t, ErrMissingSessionPool.Error(), "session pool")
}
