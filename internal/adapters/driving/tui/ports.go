// Package tui provides an interactive terminal dashboard for nntpidx.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/usenet-tools/nntpidx/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Orchestrator runs the fetch and reports progress back to the dashboard.
	Orchestrator driving.FetchOrchestrator
}

// NewPorts creates a new Ports aggregate with the given orchestrator.
func NewPorts(orchestrator driving.FetchOrchestrator) *Ports {
	return &Ports{
		Orchestrator: orchestrator,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Orchestrator == nil {
		return ErrMissingOrchestrator
	}
	return nil
}
