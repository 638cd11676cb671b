package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
	"github.com/usenet-tools/nntpidx/internal/core/ports/driven"
	"github.com/usenet-tools/nntpidx/internal/core/ports/driving"
	"github.com/usenet-tools/nntpidx/internal/logger"
)

// Ensure IndexQueryService implements the interface.
var _ driving.IndexQueryService = (*IndexQueryService)(nil)

// IndexQueryService wraps an IndexStore's query operation, optionally
// fronted by a query cache per SPEC_FULL.md §4.11. The fetch write path
// never goes through this service.
type IndexQueryService struct {
	store driven.IndexStore
	cache driven.QueryCache
}

// NewIndexQueryService creates a query service. cache may be nil to always
// query the store directly.
func NewIndexQueryService(store driven.IndexStore, cache driven.QueryCache) *IndexQueryService {
	return &IndexQueryService{store: store, cache: cache}
}

// Query returns rows matching filter, consulting the cache first when one
// is configured.
func (s *IndexQueryService) Query(ctx context.Context, filter domain.Filter) ([]domain.OverviewRow, error) {
	if s.cache == nil {
		return s.store.Query(ctx, filter)
	}

	key := filterCacheKey(filter)
	if rows, hit, err := s.cache.Get(ctx, key); err != nil {
		logger.Debug("query cache get failed: %v", err)
	} else if hit {
		return rows, nil
	}

	rows, err := s.store.Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, rows); err != nil {
		logger.Debug("query cache set failed: %v", err)
	}
	return rows, nil
}

// filterCacheKey hashes a Filter into a stable cache key.
func filterCacheKey(f domain.Filter) string {
	raw := fmt.Sprintf("%s|%s|%s|%s|%s|%s|%d",
		f.GroupName, f.SubjectLike, f.NotSubject, f.FromLike,
		formatNullableInt64(f.DateFromUnix), formatNullableInt64(f.DateToUnix), f.Limit)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func formatNullableInt64(v *int64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}
