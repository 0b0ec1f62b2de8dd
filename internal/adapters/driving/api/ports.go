package api

import (
	"errors"

	"github.com/custodia-labs/dossier/internal/core/ports/driving"
)

// ErrMissingSessionPool is returned when the session pool port is not provided.
var ErrMissingSessionPool = errors.New("session pool is required")

// Ports aggregates the driving ports required by the HTTP API.
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
