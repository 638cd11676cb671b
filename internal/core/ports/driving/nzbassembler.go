package driving

import (
	"context"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
)

// NZBDocument is one rendered NZB file ready for a sink, named per
// spec.md §4.7's grouped-output filename rule when grouping is requested.
type NZBDocument struct {
	Filename string
	XML      []byte
}

// NZBAssembler groups indexed rows into files and collections, checks
// completeness, and emits canonical NZB XML.
type NZBAssembler interface {
	Assemble(ctx context.Context, rows []domain.OverviewRow, opts domain.NZBConfig) ([]NZBDocument, error)
}
