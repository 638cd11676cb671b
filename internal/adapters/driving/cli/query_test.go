package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
	"github.com/usenet-tools/nntpidx/internal/core/ports/driving"
)

type mockQueryService struct {
	rows []domain.OverviewRow
	err  error
}

func (m *mockQueryService) Query(_ context.Context, _ domain.Filter) ([]domain.OverviewRow, error) {
	return m.rows, m.err
}

func setupQueryTest(svc driving.IndexQueryService) func() {
	old := queryService
	queryService = svc
	return func() { queryService = old }
}

func TestQueryCmd_Use(t *testing.T) {
	assert.Equal(t, "query", queryCmd.Use)
}

func TestQueryCmd_Executes(t *testing.T) {
	cleanup := setupQueryTest(&mockQueryService{
		rows: []domain.OverviewRow{{ArticleNum: 1, MessageID: "<a@b>", FromAddr: "poster", Subject: "hello"}},
	})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"query", "--group", "alt.test"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "1 rows.")
}

func TestQueryCmd_NotConfigured(t *testing.T) {
	cleanup := setupQueryTest(nil)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"query", "--group", "alt.test"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "query service not configured")
}

func TestQueryCmd_ServiceError(t *testing.T) {
	cleanup := setupQueryTest(&mockQueryService{err: errors.New("boom")})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"query", "--group", "alt.test"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "query failed")
}
