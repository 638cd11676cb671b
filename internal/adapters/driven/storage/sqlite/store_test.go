package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func i64Ptr(v int64) *int64   { return &v }
func u64Ptr(v uint64) *uint64 { return &v }
func u32Ptr(v uint32) *uint32 { return &v }

func sampleRow(articleNum uint64, subject, from string) domain.OverviewRow {
	return domain.OverviewRow{
		ArticleNum: articleNum,
		GroupName:  "alt.test",
		Subject:    subject,
		FromAddr:   from,
		DateRaw:    "Mon, 01 Jan 2024 00:00:00 +0000",
		DateUnix:   i64Ptr(1704067200 + int64(articleNum)),
		MessageID:  "<" + subject + "@x>",
		BytesLen:   u64Ptr(1000),
		LineCount:  u32Ptr(20),
	}
}

func TestStore_UpsertBatch_InsertsNewRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	result, err := store.UpsertBatch(ctx, []domain.OverviewRow{
		sampleRow(1, "hello", "a@x"),
		sampleRow(2, "world", "b@x"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 0, result.Ignored)

	count, err := store.Count(ctx, domain.Filter{GroupName: "alt.test"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStore_UpsertBatch_IgnoresDuplicateKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.UpsertBatch(ctx, []domain.OverviewRow{sampleRow(1, "hello", "a@x")})
	require.NoError(t, err)

	result, err := store.UpsertBatch(ctx, []domain.OverviewRow{sampleRow(1, "hello-retry", "a@x")})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 1, result.Ignored)
}

func TestStore_Query_OrderedByArticleNumAscending(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.UpsertBatch(ctx, []domain.OverviewRow{
		sampleRow(3, "third", "a@x"),
		sampleRow(1, "first", "a@x"),
		sampleRow(2, "second", "a@x"),
	})
	require.NoError(t, err)

	rows, err := store.Query(ctx, domain.Filter{GroupName: "alt.test"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, uint64(1), rows[0].ArticleNum)
	assert.Equal(t, uint64(2), rows[1].ArticleNum)
	assert.Equal(t, uint64(3), rows[2].ArticleNum)
}

func TestStore_Query_SubjectLikeCaseInsensitive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.UpsertBatch(ctx, []domain.OverviewRow{
		sampleRow(1, "Movie Night", "a@x"),
		sampleRow(2, "Cooking Show", "b@x"),
	})
	require.NoError(t, err)

	rows, err := store.Query(ctx, domain.Filter{GroupName: "alt.test", SubjectLike: "movie"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Movie Night", rows[0].Subject)
}

func TestStore_Query_NotSubjectExcludesPipeDelimitedTerms(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.UpsertBatch(ctx, []domain.OverviewRow{
		sampleRow(1, "spam offer", "a@x"),
		sampleRow(2, "junk mail", "b@x"),
		sampleRow(3, "real content", "c@x"),
	})
	require.NoError(t, err)

	rows, err := store.Query(ctx, domain.Filter{GroupName: "alt.test", NotSubject: "spam|junk"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "real content", rows[0].Subject)
}

func TestStore_Query_DateRangeFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.UpsertBatch(ctx, []domain.OverviewRow{
		{ArticleNum: 1, GroupName: "alt.test", Subject: "a", FromAddr: "x", DateRaw: "d", DateUnix: i64Ptr(100), MessageID: "<1@x>"},
		{ArticleNum: 2, GroupName: "alt.test", Subject: "b", FromAddr: "x", DateRaw: "d", DateUnix: i64Ptr(200), MessageID: "<2@x>"},
		{ArticleNum: 3, GroupName: "alt.test", Subject: "c", FromAddr: "x", DateRaw: "d", DateUnix: i64Ptr(300), MessageID: "<3@x>"},
	})
	require.NoError(t, err)

	rows, err := store.Query(ctx, domain.Filter{GroupName: "alt.test", DateFromUnix: i64Ptr(150), DateToUnix: i64Ptr(250)})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, uint64(2), rows[0].ArticleNum)
}

func TestStore_Query_LimitCapsResults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.UpsertBatch(ctx, []domain.OverviewRow{
		sampleRow(1, "a", "x"),
		sampleRow(2, "b", "x"),
		sampleRow(3, "c", "x"),
	})
	require.NoError(t, err)

	rows, err := store.Query(ctx, domain.Filter{GroupName: "alt.test", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestStore_Query_NoFilterOptionsReturnsFullGroup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.UpsertBatch(ctx, []domain.OverviewRow{
		sampleRow(1, "a", "x"),
		sampleRow(2, "b", "x"),
	})
	require.NoError(t, err)

	rows, err := store.Query(ctx, domain.Filter{GroupName: "alt.test"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestStore_MigrationsAreIdempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.EnsureSchema(context.Background()))
	require.NoError(t, store.EnsureSchema(context.Background()))
}
