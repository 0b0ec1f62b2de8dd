package api

import (
	"context"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
)

type mockAgent struct {
	err error

	askMode  domain.AskMode
	askK     int
	qaK      int
	deepTTL  int
	rendered bool
}

func (m *mockAgent) Profile() domain.CompanyProfile { return domain.CompanyProfile{} }

func (m *mockAgent) Plan(_ context.Context, _ string, _ bool) domain.Plan { return domain.Plan{} }

func (m *mockAgent) Overview(_ context.Context) (*domain.Overview, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Overview{Summary: "- Acme makes widgets"}, nil
}

func (m *mockAgent) Clarify(_ context.Context) string { return "1. Which region?" }

func (m *mockAgent) QuickAnswer(_ context.Context, _ string) domain.QuickAnswer {
	return domain.QuickAnswer{}
}

func (m *mockAgent) DeepCollect(_ context.Context, ttlDays int) (*domain.DeepCollection, error) {
	m.deepTTL = ttlDays
	if m.err != nil {
		return nil, m.err
	}
	return &domain.DeepCollection{PDFLinks: []string{"https://acme.example/ar.pdf"}}, nil
}

func (m *mockAgent) AnswerWithEvidence(_ context.Context, _ string, k int) domain.EvidenceAnswer {
	m.qaK = k
	return domain.EvidenceAnswer{Claim: "Revenue was 20.8B", Sources: []string{"doc_1.pdf"}}
}

func (m *mockAgent) AnswerHybrid(_ context.Context, _ string, _ int) domain.SynthesisResult {
	return domain.SynthesisResult{}
}

func (m *mockAgent) AnswerMulti(_ context.Context, _ string, _ bool) domain.MultiAnswer {
	return domain.MultiAnswer{}
}

func (m *mockAgent) Ask(_ context.Context, mode domain.AskMode, _ string, k int, _ bool) domain.Answer {
	m.askMode, m.askK = mode, k
	return domain.Answer{Mode: mode, Answer: "Revenue grew in 2023", Sources: []string{}}
}

func (m *mockAgent) GenerateReport(_ context.Context, _ string) domain.ReportSections {
	return domain.ReportSections{domain.SectionOverview: "Acme overview"}
}

func (m *mockAgent) RenderReport(_ context.Context, _ domain.ReportSections) (string, error) {
	m.rendered = true
	if m.err != nil {
		return "", m.err
	}
	return "/cache/acme/account_plan.html", nil
}

func (m *mockAgent) ExtractFinancials(_ context.Context, _ int) domain.FinancialSeries {
	return domain.FinancialSeries{}
}

func (m *mockAgent) Competitors(_ string) []domain.Competitor {
	return []domain.Competitor{{Name: "Globex"}}
}

func (m *mockAgent) SWOT(_ string) domain.SWOT { return domain.SWOT{} }

func (m *mockAgent) Updates(_ context.Context) ([]domain.CompanyUpdate, error) { return nil, nil }

type mockPool struct {
	agent    *mockAgent
	profiles []domain.CompanyProfile
}

func (p *mockPool) Agent(profile domain.CompanyProfile) (driving.ResearchAgent, error) {
	p.profiles = append(p.profiles, profile)
	return p.agent, nil
}

func (p *mockPool) Reset(_ string) {}

type mockGuard struct{}

func (mockGuard) Screen(input string) (string, error) {
	switch input {
	case "":
		return "", domain.ErrInvalidInput
	case "what is the weather":
		return "(Your question seems unrelated to account planning. Please ask relevant questions.)", domain.ErrOffTopic
	}
	return input, nil
}
