package tui

import "errors"

// ErrMissingOrchestrator is returned when the fetch orchestrator is not provided.
var ErrMissingOrchestrator = errors.New("tui: fetch orchestrator is required")
