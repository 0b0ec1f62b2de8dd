package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
)

const defaultEvidenceK = 5

// InitRequest identifies the research target. Every request embeds it.
type InitRequest struct {
	Company    string `json:"company"`
	Years      int    `json:"years"`
	Department string `json:"dept"`
}

func (r InitRequest) profile() domain.CompanyProfile {
	return domain.CompanyProfile{Name: r.Company, Years: r.Years, Department: r.Department}
}

// InitResponse carries clarifying questions and the company overview.
type InitResponse struct {
	Clarifications string           `json:"clarifications"`
	Overview       *domain.Overview `json:"overview"`
}

// DeepRequest starts a deep collection. A nil TTLDays uses the server default.
type DeepRequest struct {
	InitRequest
	TTLDays *int `json:"ttl_days"`
}

// QARequest asks a question against indexed PDF evidence.
type QARequest struct {
	InitRequest
	Question string `json:"question"`
	K        int    `json:"k"`
}

// AskRequest asks a question in any mode.
type AskRequest struct {
	InitRequest
	Question string `json:"question"`
	Mode     string `json:"mode"`
	K        int    `json:"k"`
	KBReady  bool   `json:"kb_ready"`
}

// ReportRequest generates an account plan.
type ReportRequest struct {
	InitRequest
	Directive string `json:"directive"`
	Render    bool   `json:"render"`
}

// ReportResponse is the generated plan plus extracted structure.
type ReportResponse struct {
	Sections    domain.ReportSections `json:"sections"`
	Competitors []domain.Competitor   `json:"competitors"`
	SWOT        domain.SWOT           `json:"swot"`
	Path        string                `json:"path,omitempty"`
}

// blockedResponse is returned with 200 when the guard rejects input, so
// clients show the message like an answer.
type blockedResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
	Blocked bool     `json:"blocked"`
}

func (s *Server) agent(p domain.CompanyProfile) (driving.ResearchAgent, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.ports.Sessions.Agent(p)
}

// screen returns the sanitised text, or ok=false and the rejection message.
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

func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
	}
	return nil
}

func (s *Server) handleInit(c echo.Context) error {
	var req InitRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	agent, err := s.agent(req.profile())
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	clarifications := agent.Clarify(ctx)
	ov, err := agent.Overview(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, InitResponse{Clarifications: clarifications, Overview: ov})
}

func (s *Server) handleDeep(c echo.Context) error {
	var req DeepRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	agent, err := s.agent(req.profile())
	if err != nil {
		return err
	}

	ttl := s.ports.TTLDays
	if req.TTLDays != nil {
		ttl = *req.TTLDays
	}
	rec, err := agent.DeepCollect(c.Request().Context(), ttl)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

func (s *Server) handleQA(c echo.Context) error {
	var req QARequest
	if err := bind(c, &req); err != nil {
		return err
	}
	question, ok, err := s.screen(req.Question)
	if err != nil {
		return err
	}
	if !ok {
		return c.JSON(http.StatusOK, blockedResponse{Answer: question, Sources: []string{}, Blocked: true})
	}

	agent, err := s.agent(req.profile())
	if err != nil {
		return err
	}
	k := req.K
	if k <= 0 {
		k = defaultEvidenceK
	}
	return c.JSON(http.StatusOK, agent.AnswerWithEvidence(c.Request().Context(), question, k))
}

func (s *Server) handleAsk(c echo.Context) error {
	var req AskRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	mode, err := domain.ParseAskMode(req.Mode)
	if err != nil {
		return err
	}
	question, ok, err := s.screen(req.Question)
	if err != nil {
		return err
	}
	if !ok {
		return c.JSON(http.StatusOK, domain.Answer{Mode: mode, Answer: question, Sources: []string{}})
	}

	agent, err := s.agent(req.profile())
	if err != nil {
		return err
	}
	k := req.K
	if k <= 0 {
		k = defaultEvidenceK
	}
	return c.JSON(http.StatusOK, agent.Ask(c.Request().Context(), mode, question, k, req.KBReady))
}

func (s *Server) handleReport(c echo.Context) error {
	var req ReportRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	directive := req.Directive
	if strings.TrimSpace(directive) != "" {
		screened, ok, err := s.screen(directive)
		if err != nil {
			return err
		}
		if !ok {
			return c.JSON(http.StatusOK, ReportResponse{
				Sections: domain.ReportSections{domain.SectionDirectiveResponse: screened},
			})
		}
		directive = screened
	}

	agent, err := s.agent(req.profile())
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	sections := agent.GenerateReport(ctx, directive)

	body := sections[domain.SectionStructuredInsights] + "\n" + sections[domain.SectionCompetitors] + "\n" + sections[domain.SectionSWOT]
	resp := ReportResponse{
		Sections:    sections,
		Competitors: agent.Competitors(body),
		SWOT:        agent.SWOT(body),
	}
	if req.Render {
		path, err := agent.RenderReport(ctx, sections)
		if err != nil {
			return err
		}
		resp.Path = path
	}
	return c.JSON(http.StatusOK, resp)
}
