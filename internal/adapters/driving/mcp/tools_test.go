package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

func newTestServer(t *testing.T, agent *mockAgent, ttl int) (*Server, *mockPool) {
	t.Helper()
	pool := &mockPool{agent: agent}
	server, err := NewServer(&Ports{Sessions: pool, Guard: mockGuard{reject: "what is the weather"}, TTLDays: ttl})
	require.NoError(t, err)
	return server, pool
}

func TestServer_handleOverview(t *testing.T) {
	ctx := context.Background()
	agent := &mockAgent{overview: &domain.Overview{
		Summary: "- Acme makes widgets",
		Results: []domain.SearchHit{{Title: "Acme", URL: "https://acme.example"}},
	}}
	server, pool := newTestServer(t, agent, 30)

	_, out, err := server.handleOverview(ctx, nil, OverviewInput{Company: "Acme", Years: 5, Department: "Sales"})
	require.NoError(t, err)
	assert.Equal(t, "- Acme makes widgets", out.Summary)
	assert.Len(t, out.Results, 1)
	require.Len(t, pool.profiles, 1)
	assert.Equal(t, domain.CompanyProfile{Name: "Acme", Years: 5, Department: "Sales"}, pool.profiles[0])

	agent.err = errors.New("cache down")
	_, _, err = server.handleOverview(ctx, nil, OverviewInput{Company: "Acme"})
	assert.Error(t, err)
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("dispatches with defaults", func(t *testing.T) {
		agent := &mockAgent{answer: domain.Answer{Mode: domain.AskModeMulti, Answer: "Revenue was USD 2B"}}
		server, _ := newTestServer(t, agent, 30)

		_, out, err := server.handleAsk(ctx, nil, AskInput{Company: "Acme", Question: "revenue 2023?"})
		require.NoError(t, err)
		assert.Equal(t, "Revenue was USD 2B", out.Answer)
		assert.Equal(t, domain.AskModeMulti, agent.askMode)
		assert.Equal(t, defaultEvidenceK, agent.askK)
		assert.Equal(t, "revenue 2023?", agent.askQuestion)
	})

	t.Run("explicit mode and k", func(t *testing.T) {
		agent := &mockAgent{}
		server, _ := newTestServer(t, agent, 30)

		_, _, err := server.handleAsk(ctx, nil, AskInput{Company: "Acme", Question: "q", Mode: "evidence", K: 8})
		require.NoError(t, err)
		assert.Equal(t, domain.AskModeEvidence, agent.askMode)
		assert.Equal(t, 8, agent.askK)
	})

	t.Run("unknown mode", func(t *testing.T) {
		server, _ := newTestServer(t, &mockAgent{}, 30)
		_, _, err := server.handleAsk(ctx, nil, AskInput{Company: "Acme", Question: "q", Mode: "psychic"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("guard rejection answers without the agent", func(t *testing.T) {
		agent := &mockAgent{}
		server, pool := newTestServer(t, agent, 30)

		_, out, err := server.handleAsk(ctx, nil, AskInput{Company: "Acme", Question: "what is the weather"})
		require.NoError(t, err)
		assert.Contains(t, out.Answer, "unrelated to account planning")
		assert.Empty(t, pool.profiles)
	})
}

func TestServer_handleDeepCollect(t *testing.T) {
	ctx := context.Background()
	agent := &mockAgent{deep: &domain.DeepCollection{
		PDFLinks:   []string{"https://acme.example/ar.pdf"},
		Downloaded: []domain.DownloadedDocument{{Path: "/tmp/doc_1.pdf", URL: "https://acme.example/ar.pdf"}},
	}}
	server, _ := newTestServer(t, agent, 30)

	_, out, err := server.handleDeepCollect(ctx, nil, DeepCollectInput{Company: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, 30, agent.deepTTL)

	zero := 0
	_, _, err = server.handleDeepCollect(ctx, nil, DeepCollectInput{Company: "Acme", TTLDays: &zero})
	require.NoError(t, err)
	assert.Equal(t, 0, agent.deepTTL)
}

func TestServer_handleReport(t *testing.T) {
	ctx := context.Background()
	agent := &mockAgent{
		sections: domain.ReportSections{domain.SectionOverview: "Acme overview"},
		path:     "/cache/acme/account_plan.html",
	}
	server, _ := newTestServer(t, agent, 30)

	_, out, err := server.handleReport(ctx, nil, ReportInput{Company: "Acme", Directive: "focus on EMEA"})
	require.NoError(t, err)
	assert.Equal(t, "Acme overview", out.Sections[domain.SectionOverview])
	assert.Equal(t, "Globex", out.Competitors[0].Name)
	assert.Empty(t, out.Path)
	assert.False(t, agent.rendered)

	_, out, err = server.handleReport(ctx, nil, ReportInput{Company: "Acme", Render: true})
	require.NoError(t, err)
	assert.True(t, agent.rendered)
	assert.Equal(t, "/cache/acme/account_plan.html", out.Path)
}

func TestServer_handlePlan(t *testing.T) {
	agent := &mockAgent{plan: domain.Plan{NeedFreshSearch: true, SearchQueries: []string{"acme revenue"}}}
	server, _ := newTestServer(t, agent, 30)

	_, out, err := server.handlePlan(context.Background(), nil, PlanInput{Company: "Acme", Prompt: "revenue"})
	require.NoError(t, err)
	assert.True(t, out.NeedFreshSearch)
	assert.Equal(t, []string{"acme revenue"}, out.SearchQueries)
}

func TestServer_PoolError(t *testing.T) {
	pool := &mockPool{err: domain.ErrInvalidInput}
	server, err := NewServer(&Ports{Sessions: pool})
	require.NoError(t, err)

	_, _, err = server.handlePlan(context.Background(), nil, PlanInput{Company: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
