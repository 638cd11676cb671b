package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
)

func u64(v uint64) *uint64 { return &v }
func i64(v int64) *int64   { return &v }

func TestNZBAssembler_SingleCompleteFile(t *testing.T) {
	rows := []domain.OverviewRow{
		{ArticleNum: 1, GroupName: "alt.test", Subject: `movie (1/2) "movie.mkv" yEnc (1000)`, FromAddr: "a@x", MessageID: "<1@x>", BytesLen: u64(500), DateUnix: i64(1000)},
		{ArticleNum: 2, GroupName: "alt.test", Subject: `movie (2/2) "movie.mkv" yEnc (1000)`, FromAddr: "a@x", MessageID: "<2@x>", BytesLen: u64(500), DateUnix: i64(1001)},
	}

	a := NewNZBAssembler()
	docs, err := a.Assemble(context.Background(), rows, domain.NZBConfig{RequireCompleteSets: true})
	require.NoError(t, err)
	require.Len(t, docs, 1)

	xmlStr := string(docs[0].XML)
	assert.Contains(t, xmlStr, `<!DOCTYPE nzb PUBLIC "-//newzBin//DTD NZB 1.1//EN"`)
	assert.Contains(t, xmlStr, `<nzb xmlns="http://www.newzbin.com/DTD/2003/nzb">`)
	assert.Contains(t, xmlStr, `<group>alt.test</group>`)
	assert.Contains(t, xmlStr, `number="1"`)
	assert.Contains(t, xmlStr, `number="2"`)
	assert.Contains(t, xmlStr, "1@x")
	assert.Contains(t, xmlStr, "2@x")
	assert.NotContains(t, xmlStr, "<1@x>")
}

func TestNZBAssembler_RequireCompleteSetsDropsPartial(t *testing.T) {
	rows := []domain.OverviewRow{
		{ArticleNum: 1, GroupName: "alt.test", Subject: `movie (1/2) "movie.mkv" yEnc`, FromAddr: "a@x", MessageID: "<1@x>"},
	}

	a := NewNZBAssembler()
	docs, err := a.Assemble(context.Background(), rows, domain.NZBConfig{RequireCompleteSets: true})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.NotContains(t, string(docs[0].XML), "<file")
}

func TestNZBAssembler_WithoutCompletenessCheckKeepsPartial(t *testing.T) {
	rows := []domain.OverviewRow{
		{ArticleNum: 1, GroupName: "alt.test", Subject: `movie (1/2) "movie.mkv" yEnc`, FromAddr: "a@x", MessageID: "<1@x>"},
	}

	a := NewNZBAssembler()
	docs, err := a.Assemble(context.Background(), rows, domain.NZBConfig{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Contains(t, string(docs[0].XML), "<file")
}

func TestNZBAssembler_GroupByCollectionProducesOnePerPoster(t *testing.T) {
	rows := []domain.OverviewRow{
		{ArticleNum: 1, GroupName: "alt.test", Subject: `foo (1/1) "foo.bin" yEnc`, FromAddr: "alice@x", MessageID: "<1@x>"},
		{ArticleNum: 2, GroupName: "alt.test", Subject: `bar (1/1) "bar.bin" yEnc`, FromAddr: "bob@x", MessageID: "<2@x>"},
	}

	a := NewNZBAssembler()
	docs, err := a.Assemble(context.Background(), rows, domain.NZBConfig{GroupByCollection: true})
	require.NoError(t, err)
	assert.Len(t, docs, 2)
	for _, d := range docs {
		assert.True(t, strings.HasSuffix(d.Filename, ".nzb"))
	}
}

func TestNZBAssembler_DiscardsRowsWithoutMessageID(t *testing.T) {
	rows := []domain.OverviewRow{
		{ArticleNum: 1, GroupName: "alt.test", Subject: "no id here", FromAddr: "a@x", MessageID: ""},
	}
	a := NewNZBAssembler()
	docs, err := a.Assemble(context.Background(), rows, domain.NZBConfig{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.NotContains(t, string(docs[0].XML), "<file")
}
