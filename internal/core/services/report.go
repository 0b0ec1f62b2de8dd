package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/logger"
)

// structuredTemperature is used for the JSON sections request.
const structuredTemperature = 0.2

// reportSchemaDoc describes the JSON object requested from the model.
type reportSchemaDoc struct {
	DirectiveResponse  string `json:"Directive Response" jsonschema:"required,description=Answers the user's directive directly"`
	Overview           string `json:"Overview" jsonschema:"required"`
	Competitors        string `json:"Competitors" jsonschema:"required"`
	MarketPosition     string `json:"Market Position" jsonschema:"required"`
	FinancialSummary   string `json:"Financial Summary" jsonschema:"required"`
	SWOT               string `json:"SWOT" jsonschema:"required"`
	Strategy           string `json:"Strategy" jsonschema:"required"`
	TopProductsTable   string `json:"TOP PRODUCTS TABLE" jsonschema:"required"`
	RevenueGraph       string `json:"Revenue Graph" jsonschema:"required"`
	StructuredInsights string `json:"Structured Insights" jsonschema:"required"`
}

var (
	reportSchemaOnce sync.Once
	reportSchemaJSON json.RawMessage
)

// reportSchema returns the reflected JSON Schema for report sections.
func reportSchema() json.RawMessage {
	reportSchemaOnce.Do(func() {
		r := &jsonschema.Reflector{
			AllowAdditionalProperties:  false,
			DoNotReference:             true,
			RequiredFromJSONSchemaTags: true,
		}
		data, err := json.Marshal(r.Reflect(&reportSchemaDoc{}))
		if err != nil {
			logger.Warn("Reflecting report schema: %v", err)
			return
		}
		reportSchemaJSON = data
	})
	return reportSchemaJSON
}

// GenerateReport builds directive-aware report sections. It first requests a
// JSON object of all sections; when that fails or comes back blank it falls
// back to a planned, retrieved single-pass account plan.
func (a *ResearchAgent) GenerateReport(ctx context.Context, directive string) domain.ReportSections {
	logger.Section("Report")

	sections, err := a.structuredSections(ctx, directive)
	if err != nil {
		logger.Warn("Structured sections failed, falling back: %v", err)
	} else if sections.HasContent() {
		a.cacheReport(ctx, sections)
		return sections
	}

	summary := a.cachedOverview(ctx).Summary
	plan := a.Plan(ctx, directive, true)
	var fresh []domain.SearchHit
	if plan.NeedFreshSearch {
		fresh = a.retriever.GatherSnippets(ctx, plan.SearchQueries, 0)
	}
	sections = a.synthesizer.BuildReportSections(ctx, a.profile.Name, directive, summary, fresh)

	if _, ok := sections[domain.SectionDirectiveResponse]; !ok {
		sections[domain.SectionDirectiveResponse] = fmt.Sprintf(
			"(Directive was: %s. This build used the older 'Structured Insights' bucket. "+
				"Edit this section if you want to add directive-specific notes.)", directive)
	}
	for _, k := range domain.ExpectedSectionKeys() {
		if _, ok := sections[k]; !ok {
			sections[k] = ""
		}
	}

	a.cacheReport(ctx, sections)
	return sections
}

func (a *ResearchAgent) structuredSections(ctx context.Context, directive string) (domain.ReportSections, error) {
	keys, err := json.Marshal(domain.ExpectedSectionKeys())
	if err != nil {
		return nil, err
	}
	text, err := a.gen.Generate(ctx, driven.PromptStructuredSections, driven.GenerateOptions{
		Temperature:    structuredTemperature,
		SchemaName:     "report_sections",
		ResponseSchema: reportSchema(),
	}, string(keys), a.profile.Name, a.profile.Years, a.profile.DepartmentOrDefault(), directive)
	if err != nil {
		return nil, err
	}
	return coerceSections(parseLenientJSON(text)), nil
}

func (a *ResearchAgent) cacheReport(ctx context.Context, sections domain.ReportSections) {
	if err := a.deps.Cache.Put(ctx, a.profile.Name, domain.CacheKeyReport, sections); err != nil {
		logger.Warn("Writing report cache: %v", err)
	}
}

// parseLenientJSON decodes text as a JSON object, retrying on the span
// between the first '{' and the last '}'. Failure yields an empty map.
func parseLenientJSON(text string) map[string]any {
	var out map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &out); err == nil && out != nil {
		return out
	}
	start, end := strings.Index(text, "{"), strings.LastIndex(text, "}")
	if start != -1 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &out); err == nil && out != nil {
			return out
		}
	}
	return map[string]any{}
}

// coerceSections keeps exactly the expected keys as trimmed strings.
func coerceSections(raw map[string]any) domain.ReportSections {
	sections := make(domain.ReportSections, len(domain.ExpectedSectionKeys()))
	for _, k := range domain.ExpectedSectionKeys() {
		sections[k] = strings.TrimSpace(sectionText(raw[k]))
	}
	return sections
}

func sectionText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		lines := make([]string, 0, len(t))
		for _, item := range t {
			lines = append(lines, "- "+sectionText(item))
		}
		return strings.Join(lines, "\n")
	default:
		return fmt.Sprint(t)
	}
}

// reportHeadings orders report sections and names their document headings.
var reportHeadings = []struct {
	key     string
	heading string
}{
	{domain.SectionDirectiveResponse, "Directive Response"},
	{domain.SectionStructuredInsights, "Overview & Strategy (Structured)"},
	{domain.SectionOverview, "Overview"},
	{domain.SectionCompetitors, "Competitors"},
	{domain.SectionMarketPosition, "Market Position"},
	{domain.SectionFinancialSummary, "Financial Summary"},
	{domain.SectionSWOT, "SWOT Analysis"},
	{domain.SectionStrategy, "Strategy"},
	{domain.SectionTopProductsTable, "Top Products / Segments"},
	{domain.SectionRevenueGraph, "Revenue Graph"},
}

// ComposeMarkdown renders the non-empty sections as one Markdown document,
// Directive Response first and Structured Insights second.
func ComposeMarkdown(sections domain.ReportSections) string {
	var b strings.Builder
	for _, h := range reportHeadings {
		body := strings.TrimSpace(sections[h.key])
		if body == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("## ")
		b.WriteString(h.heading)
		b.WriteString("\n\n")
		b.WriteString(normalizeAnswer(body))
	}
	return b.String()
}

const (
	revenueChartFile = "revenue_chart.png"
	minChartPoints   = 2
)

// RenderReport writes the composed report into the company cache and returns
// its path. A revenue chart is drawn beside it when the financials hold at
// least two years, and every source seen so far is listed under References.
func (a *ResearchAgent) RenderReport(ctx context.Context, sections domain.ReportSections) (string, error) {
	if a.deps.Renderer == nil {
		return "", fmt.Errorf("render report: %w", domain.ErrRendererUnavailable)
	}
	if !sections.HasContent() {
		return "", fmt.Errorf("render report: %w: no section has content", domain.ErrInvalidInput)
	}

	dest, err := a.deps.Cache.PathFor(a.profile.Name, "account_plan"+a.deps.Renderer.Extension())
	if err != nil {
		return "", fmt.Errorf("resolve report path: %w", err)
	}

	out := make(domain.ReportSections, len(sections))
	for k, v := range sections {
		out[k] = v
	}
	if graph := a.revenueGraph(ctx); graph != "" {
		out[domain.SectionRevenueGraph] = strings.TrimSpace(graph + "\n\n" + strings.TrimSpace(out[domain.SectionRevenueGraph]))
	}

	md := ComposeMarkdown(out)
	if refs := a.reportReferences(ctx); len(refs) > 0 {
		var b strings.Builder
		b.WriteString("\n\n## References\n")
		for i, ref := range refs {
			fmt.Fprintf(&b, "\n%d. %s", i+1, ref)
		}
		md += b.String()
	}

	title := a.profile.Name + " Account Plan"
	if err := a.deps.Renderer.Render(ctx, title, md, dest); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	logger.Info("Report written to %s", dest)
	return dest, nil
}

// revenueGraph returns the chart image and yearly table for the Revenue Graph
// section, or "" when fewer than two years of revenue are known.
func (a *ResearchAgent) revenueGraph(ctx context.Context) string {
	var fin domain.FinancialSeries
	found, err := a.deps.Cache.Get(ctx, a.profile.Name, domain.CacheKeyFinancials, &fin)
	if err != nil {
		logger.Warn("Reading financials cache: %v", err)
		return ""
	}
	if !found {
		fin = a.ExtractFinancials(ctx, DefaultFinancialDocs)
	}
	if len(fin.Series) < minChartPoints {
		return ""
	}

	var b strings.Builder
	chart, err := a.deps.Cache.PathFor(a.profile.Name, revenueChartFile)
	if err == nil {
		err = a.deps.Renderer.RenderChart(ctx, a.profile.Name+" Annual Revenue (USD bn)", fin.Series, chart)
	}
	if err != nil {
		logger.Warn("Revenue chart skipped: %v", err)
	} else {
		fmt.Fprintf(&b, "![Revenue (USD bn)](%s)\n\n", revenueChartFile)
	}

	b.WriteString("| Year | Revenue (USD bn) |\n|---|---|")
	for _, p := range fin.Series {
		fmt.Fprintf(&b, "\n| %d | %.2f |", p.Year, p.ValueBilUSD)
	}
	return b.String()
}

// reportReferences lists overview results, downloaded documents and answer
// sources, each once and in that order.
func (a *ResearchAgent) reportReferences(ctx context.Context) []string {
	refs := domain.SearchURLs(a.cachedOverview(ctx).Results)

	var deep domain.DeepCollection
	if _, err := a.deps.Cache.Get(ctx, a.profile.Name, domain.CacheKeyDeepCollect, &deep); err != nil {
		logger.Warn("Reading deep collect cache: %v", err)
	}
	refs = append(refs, documentURLs(deep.Downloaded)...)
	refs = append(refs, a.AnswerSources()...)

	out := make([]string, 0, len(refs))
	for _, r := range firstUnique(refs, 0) {
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}
