package services

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

func TestResearchAgent_GenerateReport_Structured(t *testing.T) {
	ctx := context.Background()
	llm := &scriptedLLM{respond: func(user string) (string, error) {
		if strings.Contains(user, structuredMarker) {
			return "Here you go:\n```json\n" +
				`{"Directive Response": "EMEA is 40% of sales", "Overview": "Acme makes widgets",` +
				` "SWOT": ["brand", "scale"], "Unexpected": "dropped"}` + "\n```", nil
		}
		return "", nil
	}}
	cache := newMemoryCache(t)
	agent := newTestAgent(t, ResearchDeps{LLM: llm, Cache: cache})

	sections := agent.GenerateReport(ctx, "focus on EMEA")

	assert.Len(t, sections, len(domain.ExpectedSectionKeys()))
	assert.Equal(t, "EMEA is 40% of sales", sections[domain.SectionDirectiveResponse])
	assert.Equal(t, "- brand\n- scale", sections[domain.SectionSWOT])
	assert.Empty(t, sections[domain.SectionStrategy])
	assert.NotContains(t, sections, "Unexpected")
	assert.Equal(t, 0, llm.count(reportMarker))

	require.NotEmpty(t, llm.opts[0].ResponseSchema)
	assert.Equal(t, "report_sections", llm.opts[0].SchemaName)
	assert.InDelta(t, structuredTemperature, llm.opts[0].Temperature, 1e-9)

	var cached domain.ReportSections
	found, err := cache.Get(ctx, "Acme", domain.CacheKeyReport, &cached)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, sections, cached)
}

func TestResearchAgent_GenerateReport_FallsBack(t *testing.T) {
	llm := &scriptedLLM{respond: func(user string) (string, error) {
		switch {
		case strings.Contains(user, structuredMarker):
			return "", errors.New("quota")
		case strings.Contains(user, reportMarker):
			return "Company Overview\n- Acme", nil
		}
		return "", nil
	}}
	agent := newTestAgent(t, ResearchDeps{LLM: llm, Search: &stubSearch{}})

	sections := agent.GenerateReport(context.Background(), "top products")

	assert.Equal(t, "Company Overview\n- Acme", sections[domain.SectionStructuredInsights])
	assert.Contains(t, sections[domain.SectionDirectiveResponse], "Directive was: top products")
	for _, k := range domain.ExpectedSectionKeys() {
		assert.Contains(t, sections, k)
	}
	assert.Equal(t, 1, llm.count(reportMarker))
}

func TestResearchAgent_GenerateReport_BlankStructuredFallsBack(t *testing.T) {
	llm := &scriptedLLM{respond: func(user string) (string, error) {
		if strings.Contains(user, structuredMarker) {
			return `{"Overview": "  "}`, nil
		}
		return "", nil
	}}
	agent := newTestAgent(t, ResearchDeps{LLM: llm})
	agent.GenerateReport(context.Background(), "")
	assert.Equal(t, 1, llm.count(reportMarker))
}

func TestParseLenientJSON(t *testing.T) {
	assert.Equal(t, map[string]any{"a": "b"}, parseLenientJSON(`{"a":"b"}`))
	assert.Equal(t, map[string]any{"a": "b"}, parseLenientJSON("noise {\"a\":\"b\"} trailing"))
	assert.Empty(t, parseLenientJSON("no json here"))
	assert.Empty(t, parseLenientJSON("[1,2]"))
}

func TestReportSchema(t *testing.T) {
	var schema map[string]any
	require.NoError(t, json.Unmarshal(reportSchema(), &schema))

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	for _, k := range domain.ExpectedSectionKeys() {
		assert.Contains(t, props, k)
	}
	assert.Len(t, schema["required"], len(domain.ExpectedSectionKeys()))
}

func TestComposeMarkdown(t *testing.T) {
	md := ComposeMarkdown(domain.ReportSections{
		domain.SectionOverview:          "Acme makes widgets",
		domain.SectionDirectiveResponse: "Focus: EMEA",
		domain.SectionSWOT:              "  ",
		domain.SectionTopProductsTable:  `\| Product \|`,
	})

	assert.True(t, strings.HasPrefix(md, "## Directive Response\n\nFocus: EMEA"))
	assert.NotContains(t, md, "Structured")
	assert.Contains(t, md, "## Overview\n\nAcme makes widgets")
	assert.NotContains(t, md, "SWOT")
	assert.Less(t, strings.Index(md, "## Overview"), strings.Index(md, "## Top Products / Segments"))
	assert.Empty(t, ComposeMarkdown(domain.ReportSections{}))
}

func TestComposeMarkdown_StructuredInsightsSecond(t *testing.T) {
	md := ComposeMarkdown(domain.ReportSections{
		domain.SectionRevenueGraph:       "chart",
		domain.SectionOverview:           "Acme makes widgets",
		domain.SectionStructuredInsights: "plan",
		domain.SectionDirectiveResponse:  "Focus: EMEA",
	})

	var headings []string
	for _, line := range strings.Split(md, "\n") {
		if strings.HasPrefix(line, "## ") {
			headings = append(headings, strings.TrimPrefix(line, "## "))
		}
	}
	assert.Equal(t, []string{
		"Directive Response",
		"Overview & Strategy (Structured)",
		"Overview",
		"Revenue Graph",
	}, headings)
}

func TestResearchAgent_RenderReport(t *testing.T) {
	ctx := context.Background()
	sections := domain.ReportSections{domain.SectionOverview: "Acme makes widgets"}

	t.Run("no renderer", func(t *testing.T) {
		_, err := newTestAgent(t, ResearchDeps{}).RenderReport(ctx, sections)
		assert.ErrorIs(t, err, domain.ErrRendererUnavailable)
	})

	t.Run("empty sections", func(t *testing.T) {
		_, err := newTestAgent(t, ResearchDeps{Renderer: &stubRenderer{}}).RenderReport(ctx, domain.ReportSections{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("writes into the company cache", func(t *testing.T) {
		r := &stubRenderer{}
		path, err := newTestAgent(t, ResearchDeps{Renderer: r}).RenderReport(ctx, sections)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(path, "account_plan.html"))
		assert.Equal(t, path, r.dest)
		assert.Equal(t, "Acme Account Plan", r.title)
		assert.Contains(t, r.markdown, "## Overview")
	})

	t.Run("no chart for a single year", func(t *testing.T) {
		r := &stubRenderer{}
		agent := newTestAgent(t, ResearchDeps{Renderer: r})
		require.NoError(t, agent.deps.Cache.Put(ctx, "Acme", domain.CacheKeyFinancials, domain.FinancialSeries{
			Series: []domain.RevenuePoint{{Year: 2024, ValueBilUSD: 2.1}},
		}))

		_, err := agent.RenderReport(ctx, sections)
		require.NoError(t, err)
		assert.Empty(t, r.chartDest)
		assert.NotContains(t, r.markdown, "Revenue Graph")
	})

	t.Run("renderer failure", func(t *testing.T) {
		r := &stubRenderer{err: errors.New("disk full")}
		_, err := newTestAgent(t, ResearchDeps{Renderer: r}).RenderReport(ctx, sections)
		assert.Error(t, err)
	})
}

func TestResearchAgent_RenderReport_RevenueGraph(t *testing.T) {
	ctx := context.Background()
	r := &stubRenderer{}
	agent := newTestAgent(t, ResearchDeps{Renderer: r})
	series := []domain.RevenuePoint{{Year: 2023, ValueBilUSD: 1.8}, {Year: 2024, ValueBilUSD: 2.05}}
	require.NoError(t, agent.deps.Cache.Put(ctx, "Acme", domain.CacheKeyFinancials, domain.FinancialSeries{Series: series}))

	sections := domain.ReportSections{
		domain.SectionOverview:     "Acme makes widgets",
		domain.SectionRevenueGraph: "Revenue grew steadily.",
	}
	_, err := agent.RenderReport(ctx, sections)
	require.NoError(t, err)

	assert.Equal(t, series, r.chartPoints)
	assert.Equal(t, filepath.Dir(r.dest), filepath.Dir(r.chartDest))
	assert.Equal(t, "revenue_chart.png", filepath.Base(r.chartDest))
	assert.FileExists(t, r.chartDest)

	assert.Contains(t, r.markdown, "## Revenue Graph\n\n![Revenue (USD bn)](revenue_chart.png)\n\n"+
		"| Year | Revenue (USD bn) |\n|---|---|\n| 2023 | 1.80 |\n| 2024 | 2.05 |\n\nRevenue grew steadily.")
	assert.Equal(t, "Revenue grew steadily.", sections[domain.SectionRevenueGraph])
}

func TestResearchAgent_RenderReport_ChartFailureKeepsTable(t *testing.T) {
	ctx := context.Background()
	r := &stubRenderer{chartErr: errors.New("no fonts")}
	agent := newTestAgent(t, ResearchDeps{Renderer: r})
	require.NoError(t, agent.deps.Cache.Put(ctx, "Acme", domain.CacheKeyFinancials, domain.FinancialSeries{
		Series: []domain.RevenuePoint{{Year: 2023, ValueBilUSD: 1.8}, {Year: 2024, ValueBilUSD: 2.05}},
	}))

	_, err := agent.RenderReport(ctx, domain.ReportSections{domain.SectionOverview: "Acme makes widgets"})
	require.NoError(t, err)
	assert.NotContains(t, r.markdown, "revenue_chart.png")
	assert.Contains(t, r.markdown, "## Revenue Graph\n\n| Year | Revenue (USD bn) |")
}

func TestResearchAgent_RenderReport_References(t *testing.T) {
	ctx := context.Background()
	r := &stubRenderer{}
	llm := &scriptedLLM{respond: func(string) (string, error) { return "Revenue was USD 2B", nil }}
	agent := newTestAgent(t, ResearchDeps{Renderer: r, LLM: llm, Embedder: axisEmbedder()})
	seedOverview(t, agent,
		domain.SearchHit{URL: "https://acme.example/ir", Snippet: "IR"},
		domain.SearchHit{URL: "https://news.example/acme", Snippet: "news"},
	)
	require.NoError(t, agent.deps.Cache.Put(ctx, "Acme", domain.CacheKeyDeepCollect, &domain.DeepCollection{
		PDFLinks:   []string{"https://acme.example/ar.pdf"},
		Downloaded: []domain.DownloadedDocument{{Path: "/cache/doc_1.pdf", URL: "https://acme.example/ar.pdf"}},
	}))
	agent.Index().Add(ctx, []string{"revenue", "products"}, metas("https://acme.example/ar.pdf", "https://acme.example/p.pdf"))
	agent.AnswerWithEvidence(ctx, "revenue", 2)

	_, err := agent.RenderReport(ctx, domain.ReportSections{domain.SectionOverview: "Acme makes widgets"})
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(r.markdown, "## References\n\n"+
		"1. https://acme.example/ir\n"+
		"2. https://news.example/acme\n"+
		"3. https://acme.example/ar.pdf\n"+
		"4. https://acme.example/p.pdf"), r.markdown)
}
