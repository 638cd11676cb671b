package driven

import (
	"context"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
)

// ProgressPublisher broadcasts fetch progress snapshots to an external
// system for dashboards. A nil publisher is a no-op for the orchestrator.
type ProgressPublisher interface {
	Publish(ctx context.Context, run domain.FetchRun) error
	Close() error
}
