package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usenet-tools/nntpidx/internal/adapters/driving/tui/components/status"
	"github.com/usenet-tools/nntpidx/internal/adapters/driving/tui/messages"
	"github.com/usenet-tools/nntpidx/internal/core/domain"
)

func newTestPorts() *Ports {
	return &Ports{Orchestrator: &MockOrchestrator{}}
}

func newTestOpts() domain.FetchOptions {
	return domain.FetchOptions{
		Group:      "alt.binaries.test",
		Low:        1,
		High:       1000,
		ChunkSize:  100,
		MaxWorkers: 4,
		NRetry:     3,
	}
}

func TestNewApp_Success(t *testing.T) {
	ports := newTestPorts()

	app, err := NewApp(ports, newTestOpts())

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.False(t, app.Ready())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	ports := &Ports{Orchestrator: nil}

	app, err := NewApp(ports, newTestOpts())

	assert.Error(t, err)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports, newTestOpts())

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	result := app.WithContext(ctx)

	assert.Same(t, app, result)
	assert.Equal(t, ctx, app.ctx)
}

func TestApp_Init(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports, newTestOpts())

	cmd := app.Init()

	require.NotNil(t, cmd)
}

func TestApp_Update_WindowSize(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports, newTestOpts())

	msg := tea.WindowSizeMsg{Width: 100, Height: 40}
	updated, cmd := app.Update(msg)

	assert.Equal(t, app, updated)
	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
}

func TestApp_Update_ProgressUpdated(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports, newTestOpts())
	app.SetDimensions(80, 24)

	msg := messages.ProgressUpdated{Progress: domain.FetchProgress{ChunksDone: 3, ChunksTotal: 10, RowsSoFar: 600}}
	app.Update(msg)

	assert.Equal(t, 3, app.StatusBar().ChunksDone())
	assert.Equal(t, 10, app.StatusBar().ChunksTotal())
	assert.Equal(t, 600, app.StatusBar().RowsFetched())
}

func TestApp_Update_ChunkFailed(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports, newTestOpts())
	app.SetDimensions(80, 24)

	msg := messages.ChunkFailed{Range: domain.ChunkRange{Low: 1, High: 100}, Err: errors.New("timeout")}
	app.Update(msg)

	assert.Equal(t, 1, app.FailedChunks().Count())
}

func TestApp_Update_FetchCompleted_Success(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports, newTestOpts())
	app.SetDimensions(80, 24)

	run := domain.FetchRun{Group: "alt.binaries.test", RowsFetched: 900, Inserted: 850, Ignored: 50}
	app.Update(messages.FetchCompleted{Run: run})

	assert.Equal(t, status.StateDone, app.StatusBar().State())
	assert.True(t, app.SummaryView().HasRun())
	assert.Equal(t, run, app.SummaryView().Run())
}

func TestApp_Update_FetchCompleted_Cancelled(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports, newTestOpts())
	app.SetDimensions(80, 24)

	run := domain.FetchRun{Group: "alt.binaries.test", Cancelled: true}
	app.Update(messages.FetchCompleted{Run: run})

	assert.Equal(t, status.StateCancelled, app.StatusBar().State())
}

func TestApp_Update_FetchCompleted_WithFailures(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports, newTestOpts())
	app.SetDimensions(80, 24)

	run := domain.FetchRun{
		Group:        "alt.binaries.test",
		ChunksFailed: []domain.ChunkRange{{Low: 1, High: 100}, {Low: 200, High: 300}},
	}
	app.Update(messages.FetchCompleted{Run: run})

	assert.Equal(t, 2, app.FailedChunks().Count())
}

func TestApp_Update_ErrorOccurred(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports, newTestOpts())
	app.SetDimensions(80, 24)

	err := errors.New("connection refused")
	app.Update(messages.ErrorOccurred{Err: err})

	assert.ErrorIs(t, app.Err(), err)
	assert.Equal(t, status.StateError, app.StatusBar().State())
	assert.Equal(t, "connection refused", app.StatusBar().Message())
}

func TestApp_Update_Quit(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports, newTestOpts())

	_, cmd := app.Update(messages.Quit{})

	require.NotNil(t, cmd)
}

func TestApp_Update_KeyQuit(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports, newTestOpts())
	app.SetDimensions(80, 24)

	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
	_, cmd := app.Update(msg)

	require.NotNil(t, cmd)
}

func TestApp_Update_KeyHelp(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports, newTestOpts())
	app.SetDimensions(80, 24)

	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}}
	app.Update(msg)

	assert.True(t, app.showHelp)

	app.Update(msg)
	assert.False(t, app.showHelp)
}

func TestApp_View_NotReady(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports, newTestOpts())

	view := app.View()

	assert.Contains(t, view, "Initialising")
}

func TestApp_View_Help(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports, newTestOpts())
	app.SetDimensions(80, 24)
	app.showHelp = true

	view := app.View()

	assert.Contains(t, view, "quit")
}

func TestApp_View_ShowsProgress(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports, newTestOpts())
	app.SetDimensions(80, 24)
	app.Update(messages.ProgressUpdated{Progress: domain.FetchProgress{ChunksDone: 2, ChunksTotal: 5, RowsSoFar: 200}})

	view := app.View()

	assert.Contains(t, view, "2/5")
}

func TestApp_View_ShowsSummaryAfterCompletion(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports, newTestOpts())
	app.SetDimensions(80, 24)
	app.Update(messages.FetchCompleted{Run: domain.FetchRun{Group: "alt.binaries.test", RowsFetched: 42}})

	view := app.View()

	assert.Contains(t, view, "alt.binaries.test")
}

func TestApp_Ready(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports, newTestOpts())

	assert.False(t, app.Ready())

	app.SetDimensions(80, 24)
	assert.True(t, app.Ready())
}

func TestApp_SetDimensions(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports, newTestOpts())

	app.SetDimensions(120, 40)

	assert.True(t, app.Ready())
}
