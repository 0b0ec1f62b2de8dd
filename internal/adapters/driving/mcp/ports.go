package mcp

import (
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the MCP server.
type Ports struct {
	// Sessions hands out one research agent per company.
	Sessions driving.SessionPool

	// Guard screens questions and directives. Optional.
	Guard driving.Guard

	// TTLDays is the default cache freshness for deep collection.
	TTLDays int
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Sessions == nil {
		return ErrMissingSessionPool
	}
	return nil
}
