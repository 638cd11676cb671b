package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrMissingOrchestrator_Message(t *testing.T) {
	assert.Contains(t, ErrMissingOrchestrator.Error(), "fetch orchestrator")
}
