package driving

import (
	"context"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
)

// IndexQueryService exposes the Index Store's query operation to driving
// adapters (CLI, HTTP API), optionally fronted by a query cache.
type IndexQueryService interface {
	Query(ctx context.Context, filter domain.Filter) ([]domain.OverviewRow, error)
}
