package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

const (
	uriScheme = "dossier://"

	// defaultFinancialDocs bounds the PDFs scanned for the financials resource.
	defaultFinancialDocs = 9
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "companies/{company}/financials",
		Name:        "company-financials",
		Description: "Yearly revenue series mined from a company's collected PDFs",
		MIMEType:    "application/json",
	}, s.handleFinancialsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "companies/{company}/updates",
		Name:        "company-updates",
		Description: "Recent LinkedIn share statistics for a company",
		MIMEType:    "application/json",
	}, s.handleUpdatesResource)
}

func (s *Server) handleFinancialsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	company := extractCompany(req.Params.URI, "financials")
	if company == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	agent, err := s.ports.Sessions.Agent(domain.CompanyProfile{Name: company})
	if err != nil {
		return nil, fmt.Errorf("creating agent: %w", err)
	}
	return jsonResource(req.Params.URI, agent.ExtractFinancials(ctx, defaultFinancialDocs))
}

func (s *Server) handleUpdatesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	company := extractCompany(req.Params.URI, "updates")
	if company == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	agent, err := s.ports.Sessions.Agent(domain.CompanyProfile{Name: company})
	if err != nil {
		return nil, fmt.Errorf("creating agent: %w", err)
	}
	updates, err := agent.Updates(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading updates: %w", err)
	}
	if updates == nil {
		updates = []domain.CompanyUpdate{}
	}
	return jsonResource(req.Params.URI, updates)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractCompany extracts the company from dossier://companies/{company}/{kind}.
// The company segment may be percent-encoded.
func extractCompany(uri, kind string) string {
	const prefix = uriScheme + "companies/"
	suffix := "/" + kind

	if !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return ""
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix)
	if raw == "" || strings.Contains(raw, "/") {
		return ""
	}
	company, err := url.PathUnescape(raw)
	if err != nil {
		return ""
	}
	return company
}
