package driving

import (
	"context"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
)

// ProgressFunc is called after each completed chunk.
type ProgressFunc func(domain.FetchProgress)

// FetchOrchestrator partitions a requested article-number range into fixed
// size chunks, dispatches them across a connection pool, and drains parsed
// rows into the index store through a single writer.
type FetchOrchestrator interface {
	FetchRange(ctx context.Context, opts domain.FetchOptions, onProgress ProgressFunc) (domain.FetchRun, error)
}
