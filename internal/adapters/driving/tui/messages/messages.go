// Package messages defines Bubbletea message types for the fetch progress
// TUI. Messages represent events that flow through the Elm architecture as
// the orchestrator works through a fetch run.
package messages

import (
	"github.com/usenet-tools/nntpidx/internal/core/domain"
)

// ProgressUpdated carries one orchestrator progress callback into the model.
type ProgressUpdated struct {
	Progress domain.FetchProgress
}

// ChunkFailed signals that one chunk exhausted its retries.
type ChunkFailed struct {
	Range domain.ChunkRange
	Err   error
}

// FetchCompleted carries the final FetchRun once the orchestrator returns.
type FetchCompleted struct {
	Run domain.FetchRun
}

// ErrorOccurred signals a fatal error outside the normal chunk-failure path
// (e.g. the orchestrator itself returning an error before completion).
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
