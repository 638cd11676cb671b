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

type mockFetchOrchestrator struct {
	run domain.FetchRun
	err error
}

func (m *mockFetchOrchestrator) FetchRange(_ context.Context, _ domain.FetchOptions, onProgress driving.ProgressFunc) (domain.FetchRun, error) {
	if onProgress != nil {
		onProgress(domain.FetchProgress{ChunksDone: 1, ChunksTotal: 1, RowsSoFar: m.run.RowsFetched})
	}
	return m.run, m.err
}

func setupFetchTest(orch driving.FetchOrchestrator) func() {
	old := fetchOrchestrator
	fetchOrchestrator = orch
	return func() { fetchOrchestrator = old }
}

func TestFetchCmd_Use(t *testing.T) {
	assert.Equal(t, "fetch", fetchCmd.Use)
}

func TestFetchCmd_Executes(t *testing.T) {
	cleanup := setupFetchTest(&mockFetchOrchestrator{run: domain.FetchRun{RowsFetched: 10, Inserted: 9, Ignored: 1}})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"fetch", "--group", "alt.test", "--low", "1", "--high", "100"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "10 rows fetched")
	assert.NotNil(t, LastFetchRun())
}

func TestFetchCmd_NotConfigured(t *testing.T) {
	cleanup := setupFetchTest(nil)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"fetch", "--group", "alt.test", "--low", "1", "--high", "100"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "fetch orchestrator not configured")
}

func TestFetchCmd_ReportsParseErrors(t *testing.T) {
	cleanup := setupFetchTest(&mockFetchOrchestrator{run: domain.FetchRun{RowsFetched: 10, ParseErrors: 3}})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"fetch", "--group", "alt.test", "--low", "1", "--high", "100"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "3 parse errors")
}

func TestFetchCmd_OrchestratorError(t *testing.T) {
	cleanup := setupFetchTest(&mockFetchOrchestrator{err: errors.New("boom")})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"fetch", "--group", "alt.test", "--low", "1", "--high", "100"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "fetch failed")
}
