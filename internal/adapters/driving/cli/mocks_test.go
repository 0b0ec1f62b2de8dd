package cli

import (
	"context"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
)

// mockAgent is a mock implementation of driving.ResearchAgent.
type mockAgent struct {
	profile domain.CompanyProfile
	err     error

	askMode     domain.AskMode
	askQuestion string
	askK        int
	deepTTL     int
	directive   string
	rendered    bool
}

func (m *mockAgent) Profile() domain.CompanyProfile { return m.profile }

func (m *mockAgent) Plan(_ context.Context, prompt string, _ bool) domain.Plan {
	return domain.Plan{
		NeedFreshSearch: true,
		SearchQueries:   []string{m.profile.Name + " " + prompt},
		Followups:       []string{"What are the main risks?"},
	}
}

func (m *mockAgent) Overview(_ context.Context) (*domain.Overview, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Overview{
		Summary: "- " + m.profile.Name + " makes widgets",
		Results: []domain.SearchHit{{Title: "Annual report", URL: "https://acme.example/ar"}},
	}, nil
}

func (m *mockAgent) Clarify(_ context.Context) string {
	return "1. Which region matters most?"
}

func (m *mockAgent) QuickAnswer(_ context.Context, _ string) domain.QuickAnswer {
	return domain.QuickAnswer{}
}

func (m *mockAgent) DeepCollect(_ context.Context, ttlDays int) (*domain.DeepCollection, error) {
	m.deepTTL = ttlDays
	if m.err != nil {
		return nil, m.err
	}
	return &domain.DeepCollection{
		PDFLinks:   []string{"https://acme.example/ar.pdf", "https://acme.example/q3.pdf"},
		Downloaded: []domain.DownloadedDocument{{Path: "/cache/acme/doc_1.pdf", URL: "https://acme.example/ar.pdf"}},
	}, nil
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
	ans := domain.Answer{
		Mode:      mode,
		Answer:    "Revenue was USD 20.8B in 2023.",
		Sources:   []string{"https://acme.example/ar.pdf"},
		Followups: []string{"How did margins develop?"},
	}
	if mode == domain.AskModeEvidence {
		ans.Card = "Evidence card"
	}
	return ans
}

func (m *mockAgent) GenerateReport(_ context.Context, directive string) domain.ReportSections {
	m.directive = directive
	return domain.ReportSections{
		domain.SectionDirectiveResponse: "Focus noted.",
		domain.SectionOverview:          "Acme overview",
		domain.SectionSWOT:              "",
	}
}

func (m *mockAgent) RenderReport(_ context.Context, _ domain.ReportSections) (string, error) {
	m.rendered = true
	return "/cache/acme/account_plan.html", m.err
}

func (m *mockAgent) ExtractFinancials(_ context.Context, _ int) domain.FinancialSeries {
	return domain.FinancialSeries{Series: []domain.RevenuePoint{
		{Year: 2022, ValueBilUSD: 19.5, Source: "doc_1.pdf"},
		{Year: 2023, ValueBilUSD: 20.8, Source: "doc_1.pdf"},
	}}
}

func (m *mockAgent) Competitors(_ string) []domain.Competitor { return nil }

func (m *mockAgent) SWOT(_ string) domain.SWOT { return domain.SWOT{} }

func (m *mockAgent) Updates(_ context.Context) ([]domain.CompanyUpdate, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []domain.CompanyUpdate{{ID: "1", Text: "Acme opens new plant", Impressions: 1200, Engagement: 0.05}}, nil
}

// mockPool returns one shared agent per test.
type mockPool struct {
	agent    *mockAgent
	profiles []domain.CompanyProfile
}

func (p *mockPool) Agent(profile domain.CompanyProfile) (driving.ResearchAgent, error) {
	p.profiles = append(p.profiles, profile)
	p.agent.profile = profile
	return p.agent, nil
}

func (p *mockPool) Reset(_ string) {}

// mockGuard rejects questions containing "weather".
type mockGuard struct{}

func (mockGuard) Screen(input string) (string, error) {
	if input == "what is the weather" {
		return "(Your question seems unrelated to account planning. Please ask relevant questions.)", domain.ErrOffTopic
	}
	return input, nil
}

// mockSettingsService implements driving.SettingsService.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	linkedIn    [4]string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding = domain.EmbeddingSettings{Provider: p, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.LLM.Provider, m.settings.LLM.Model, m.settings.LLM.APIKey = p, model, apiKey
	return nil
}

func (m *mockSettingsService) SetSearchProvider(p domain.SearchProviderType, apiKey, cx string) error {
	m.settings.Search.Provider, m.settings.Search.APIKey, m.settings.Search.CX = p, apiKey, cx
	return nil
}

func (m *mockSettingsService) SetLinkedIn(clientID, clientSecret, redirectURL, accessToken string) error {
	m.linkedIn = [4]string{clientID, clientSecret, redirectURL, accessToken}
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return nil }

func (m *mockSettingsService) ValidateLLMConfig() error { return nil }

func (m *mockSettingsService) ValidateSearchConfig() error { return nil }

// testServices holds the mocks injected by setupTestServices.
type testServices struct {
	agent    *mockAgent
	pool     *mockPool
	settings *mockSettingsService
}

// setupTestServices injects mocks and returns a cleanup function that
// restores the previous services and resets command flags.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		agent:    &mockAgent{},
		settings: newMockSettingsService(),
	}
	ts.pool = &mockPool{agent: ts.agent}

	oldPool, oldSettings, oldGuard, oldAuth := sessionPool, settingsService, guard, feedAuthorizer
	sessionPool = ts.pool
	settingsService = ts.settings
	guard = mockGuard{}
	feedAuthorizer = nil

	return ts, func() {
		sessionPool, settingsService, guard, feedAuthorizer = oldPool, oldSettings, oldGuard, oldAuth
		companyName, department, researchYears = "", "", domain.DefaultResearchYears
		askMode, askK, askKBReady, askJSON = string(domain.AskModeMulti), 5, false, false
		deepTTL = -1
		reportDirective, reportRender, reportJSON = "", false, false
		updatesJSON = false
		rootCmd.SetArgs(nil)
	}
}
