// Package tui provides an interactive terminal chat for dossier.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the TUI.
type Ports struct {
	// Sessions hands out the research agent for the chat's company.
	Sessions driving.SessionPool

	// Guard screens questions and directives. Optional.
	Guard driving.Guard

	// TTLDays is the cache freshness used by /deep.
	TTLDays int
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Sessions == nil {
		return ErrMissingSessionPool
	}
	return nil
}
