package services

import (
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
	"github.com/custodia-labs/dossier/internal/logger"
)

// Ensure interfaces are implemented.
var (
	_ driving.AgentFactory = (*AgentFactory)(nil)
	_ driving.SessionPool  = (*SessionPool)(nil)
)

// AgentFactory creates research agents sharing one set of collaborators.
type AgentFactory struct {
	deps     ResearchDeps
	settings domain.AppSettings
}

// NewAgentFactory creates a factory.
func NewAgentFactory(deps ResearchDeps, settings domain.AppSettings) *AgentFactory {
	return &AgentFactory{deps: deps, settings: settings}
}

// NewAgent creates a fresh agent with an empty evidence index.
// Years falls back to the configured research default.
func (f *AgentFactory) NewAgent(profile domain.CompanyProfile) (driving.ResearchAgent, error) {
	if profile.Years == 0 {
		profile.Years = f.settings.Research.Years
	}
	return NewResearchAgent(profile, f.deps, f.settings)
}

type session struct {
	id    string
	agent driving.ResearchAgent
}

// SessionPool keeps one agent per company so that evidence indexed by one
// request is visible to the next.
type SessionPool struct {
	mu       sync.Mutex
	factory  driving.AgentFactory
	sessions map[string]session
}

// NewSessionPool creates an empty pool.
func NewSessionPool(factory driving.AgentFactory) *SessionPool {
	return &SessionPool{
		factory:  factory,
		sessions: make(map[string]session),
	}
}

// Agent returns the agent for the profile's company, creating it on first use.
// A later call with a different years or department replaces the session.
func (p *SessionPool) Agent(profile domain.CompanyProfile) (driving.ResearchAgent, error) {
	key := domain.CompanySlug(profile.Name)

	p.mu.Lock()
	defer p.mu.Unlock()

	if s, ok := p.sessions[key]; ok && sameScope(s.agent.Profile(), profile) {
		return s.agent, nil
	}

	agent, err := p.factory.NewAgent(profile)
	if err != nil {
		return nil, err
	}
	s := session{id: uuid.NewString(), agent: agent}
	p.sessions[key] = s
	logger.Debug("Session %s started for %q", s.id, profile.Name)
	return agent, nil
}

// Reset drops the agent for a company.
func (p *SessionPool) Reset(company string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.sessions, domain.CompanySlug(company))
}

// Len returns the number of live sessions.
func (p *SessionPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// sameScope treats zero years and empty department in the request as "keep".
func sameScope(have, want domain.CompanyProfile) bool {
	if want.Years != 0 && want.Years != have.Years {
		return false
	}
	if want.Department != "" && want.Department != have.Department {
		return false
	}
	return true
}
