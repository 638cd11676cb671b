package driven

import (
	"context"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
)

// IndexStore wraps an external embedded relational engine holding the
// articles table. One store instance serves one newsgroup database.
type IndexStore interface {
	// EnsureSchema creates tables and indexes if absent. Idempotent.
	EnsureSchema(ctx context.Context) error

	// UpsertBatch inserts rows with conflict-ignore semantics inside one
	// transaction. Returns the count inserted vs ignored.
	UpsertBatch(ctx context.Context, rows []domain.OverviewRow) (domain.UpsertResult, error)

	// Query returns rows matching filter, ordered by ArticleNum ascending.
	Query(ctx context.Context, filter domain.Filter) ([]domain.OverviewRow, error)

	// Count returns the number of rows matching filter without materializing them.
	Count(ctx context.Context, filter domain.Filter) (int, error)

	Close() error
}
