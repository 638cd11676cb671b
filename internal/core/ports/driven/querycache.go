package driven

import (
	"context"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
)

// QueryCache is an optional result cache consulted by IndexQueryService
// before it queries the Index Store. A nil QueryCache interface value means
// "always query the store directly"; the redis adapter, the only
// implementation, does not accept a nil receiver.
type QueryCache interface {
	Get(ctx context.Context, key string) ([]domain.OverviewRow, bool, error)
	Set(ctx context.Context, key string, rows []domain.OverviewRow) error
}
