package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
)

const defaultEvidenceK = 5

// OverviewInput identifies the research target. Every other tool input
// carries the same three fields.
type OverviewInput struct {
	Company    string `json:"company" jsonschema:"the company to research"`
	Years      int    `json:"years,omitempty" jsonschema:"look-back window in years (default 3)"`
	Department string `json:"department,omitempty" jsonschema:"department the account plan targets"`
}

func profile(company string, years int, department string) domain.CompanyProfile {
	return domain.CompanyProfile{Name: company, Years: years, Department: department}
}

// OverviewOutput is the output of the overview tool.
type OverviewOutput struct {
	Summary string             `json:"summary"`
	Results []domain.SearchHit `json:"results"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Company    string `json:"company" jsonschema:"the company to research"`
	Years      int    `json:"years,omitempty" jsonschema:"look-back window in years (default 3)"`
	Department string `json:"department,omitempty" jsonschema:"department the account plan targets"`
	Question   string `json:"question" jsonschema:"the question about the company"`
	Mode       string `json:"mode,omitempty" jsonschema:"multi (default), quick, evidence or hybrid"`
	K          int    `json:"k,omitempty" jsonschema:"number of evidence chunks to consult (default 5)"`
	KBReady    bool   `json:"kb_ready,omitempty" jsonschema:"true when deep collection has already run"`
}

// DeepCollectInput is the input schema for the deep_collect tool.
type DeepCollectInput struct {
	Company    string `json:"company" jsonschema:"the company to research"`
	Years      int    `json:"years,omitempty" jsonschema:"look-back window in years (default 3)"`
	Department string `json:"department,omitempty" jsonschema:"department the account plan targets"`
	TTLDays    *int   `json:"ttl_days,omitempty" jsonschema:"reuse cached documents younger than this; 0 forces a fresh crawl"`
}

// DeepCollectOutput is the output of the deep_collect tool.
type DeepCollectOutput struct {
	PDFLinks   []string                    `json:"pdf_links"`
	Downloaded []domain.DownloadedDocument `json:"downloaded"`
	Count      int                         `json:"count"`
}

// ReportInput is the input schema for the report tool.
type ReportInput struct {
	Company    string `json:"company" jsonschema:"the company to research"`
	Years      int    `json:"years,omitempty" jsonschema:"look-back window in years (default 3)"`
	Department string `json:"department,omitempty" jsonschema:"department the account plan targets"`
	Directive  string `json:"directive,omitempty" jsonschema:"what the account plan should focus on"`
	Render     bool   `json:"render,omitempty" jsonschema:"also write an HTML document into the cache"`
}

// ReportOutput is the output of the report tool.
type ReportOutput struct {
	Sections    domain.ReportSections `json:"sections"`
	Competitors []domain.Competitor   `json:"competitors"`
	SWOT        domain.SWOT           `json:"swot"`
	Path        string                `json:"path,omitempty"`
}

// PlanInput is the input schema for the plan tool.
type PlanInput struct {
	Company    string `json:"company" jsonschema:"the company to research"`
	Years      int    `json:"years,omitempty" jsonschema:"look-back window in years (default 3)"`
	Department string `json:"department,omitempty" jsonschema:"department the account plan targets"`
	Prompt     string `json:"prompt" jsonschema:"the user request to plan searches for"`
	KBReady    bool   `json:"kb_ready,omitempty" jsonschema:"true when deep collection has already run"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "overview",
		Description: "Search the web for a company overview and cache a summary",
	}, s.handleOverview)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question about a company from web, overview and PDF evidence",
	}, s.handleAsk)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "deep_collect",
		Description: "Download and index PDF reports linked from the company overview results",
	}, s.handleDeepCollect)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "report",
		Description: "Generate a structured account plan for a company",
	}, s.handleReport)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "plan",
		Description: "Show the search queries and follow-ups planned for a request",
	}, s.handlePlan)
}

func (s *Server) agent(p domain.CompanyProfile) (driving.ResearchAgent, error) {
	return s.ports.Sessions.Agent(p)
}

// screen returns the sanitised text, or the user-facing rejection message
// with ok=false when the guard blocks it.
func (s *Server) screen(text string) (string, bool, error) {
	if s.ports.Guard == nil {
		return text, true, nil
	}
	out, err := s.ports.Guard.Screen(text)
	switch {
	case err == nil:
		return out, true, nil
	case errors.Is(err, domain.ErrInputBlocked), errors.Is(err, domain.ErrOffTopic):
		return out, false, nil
	default:
		return "", false, err
	}
}

func (s *Server) handleOverview(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input OverviewInput,
) (*mcp.CallToolResult, OverviewOutput, error) {
	agent, err := s.agent(profile(input.Company, input.Years, input.Department))
	if err != nil {
		return nil, OverviewOutput{}, err
	}
	ov, err := agent.Overview(ctx)
	if err != nil {
		return nil, OverviewOutput{}, err
	}
	return nil, OverviewOutput{Summary: ov.Summary, Results: ov.Results}, nil
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, domain.Answer, error) {
	mode, err := domain.ParseAskMode(input.Mode)
	if err != nil {
		return nil, domain.Answer{}, err
	}
	question, ok, err := s.screen(input.Question)
	if err != nil {
		return nil, domain.Answer{}, err
	}
	if !ok {
		return nil, domain.Answer{Mode: mode, Answer: question, Sources: []string{}}, nil
	}

	agent, err := s.agent(profile(input.Company, input.Years, input.Department))
	if err != nil {
		return nil, domain.Answer{}, err
	}
	k := input.K
	if k <= 0 {
		k = defaultEvidenceK
	}
	return nil, agent.Ask(ctx, mode, question, k, input.KBReady), nil
}

func (s *Server) handleDeepCollect(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeepCollectInput,
) (*mcp.CallToolResult, DeepCollectOutput, error) {
	agent, err := s.agent(profile(input.Company, input.Years, input.Department))
	if err != nil {
		return nil, DeepCollectOutput{}, err
	}
	ttl := s.ports.TTLDays
	if input.TTLDays != nil {
		ttl = *input.TTLDays
	}
	rec, err := agent.DeepCollect(ctx, ttl)
	if err != nil {
		return nil, DeepCollectOutput{}, err
	}
	return nil, DeepCollectOutput{
		PDFLinks:   rec.PDFLinks,
		Downloaded: rec.Downloaded,
		Count:      len(rec.Downloaded),
	}, nil
}

func (s *Server) handleReport(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReportInput,
) (*mcp.CallToolResult, ReportOutput, error) {
	directive := input.Directive
	if strings.TrimSpace(directive) != "" {
		screened, ok, err := s.screen(directive)
		if err != nil {
			return nil, ReportOutput{}, err
		}
		if !ok {
			return nil, ReportOutput{Sections: domain.ReportSections{domain.SectionDirectiveResponse: screened}}, nil
		}
		directive = screened
	}

	agent, err := s.agent(profile(input.Company, input.Years, input.Department))
	if err != nil {
		return nil, ReportOutput{}, err
	}
	sections := agent.GenerateReport(ctx, directive)
	out := ReportOutput{Sections: sections}

	body := sections[domain.SectionStructuredInsights] + "\n" + sections[domain.SectionCompetitors] + "\n" + sections[domain.SectionSWOT]
	out.Competitors = agent.Competitors(body)
	out.SWOT = agent.SWOT(body)

	if input.Render {
		path, err := agent.RenderReport(ctx, sections)
		if err != nil {
			return nil, ReportOutput{}, err
		}
		out.Path = path
	}
	return nil, out, nil
}

func (s *Server) handlePlan(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PlanInput,
) (*mcp.CallToolResult, domain.Plan, error) {
	agent, err := s.agent(profile(input.Company, input.Years, input.Department))
	if err != nil {
		return nil, domain.Plan{}, err
	}
	return nil, agent.Plan(ctx, input.Prompt, input.KBReady), nil
}
