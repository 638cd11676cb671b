package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/usenet-tools/nntpidx/internal/adapters/driving/tui/components/list"
	"github.com/usenet-tools/nntpidx/internal/adapters/driving/tui/components/status"
	"github.com/usenet-tools/nntpidx/internal/adapters/driving/tui/keymap"
	"github.com/usenet-tools/nntpidx/internal/adapters/driving/tui/messages"
	"github.com/usenet-tools/nntpidx/internal/adapters/driving/tui/styles"
	"github.com/usenet-tools/nntpidx/internal/adapters/driving/tui/views/summary"
	"github.com/usenet-tools/nntpidx/internal/core/domain"
)

// App is the fetch progress dashboard following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to the core orchestrator via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// keymap holds the active keybindings.
	keymap *keymap.KeyMap

	// statusBar renders run state and progress counters.
	statusBar *status.Bar

	// failedChunks lists chunks that exhausted their retries.
	failedChunks *list.ResultList

	// summaryView renders the final run summary once the fetch completes.
	summaryView *summary.View

	// opts parameterises the fetch this dashboard is driving.
	opts domain.FetchOptions

	// showHelp toggles the full keybinding help overlay.
	showHelp bool

	// err holds the last fatal error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI dashboard for the given fetch options.
func NewApp(ports *Ports, opts domain.FetchOptions) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keymap:       km,
		statusBar:    status.NewBar(s, km),
		failedChunks: list.NewResultList(s),
		summaryView:  summary.NewView(s),
		opts:         opts,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("nntpidx - fetch"),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.statusBar.SetWidth(msg.Width)
		a.failedChunks.SetDimensions(msg.Width, msg.Height-4)
		a.summaryView.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if keymap.Matches(msg.String(), a.keymap.Quit) {
			return a, tea.Quit
		}
		if keymap.Matches(msg.String(), a.keymap.Help) {
			a.showHelp = !a.showHelp
			return a, nil
		}
		var cmd tea.Cmd
		a.failedChunks, cmd = a.failedChunks.Update(msg)
		return a, cmd

	case messages.ProgressUpdated:
		a.statusBar.SetProgress(msg.Progress.ChunksDone, msg.Progress.ChunksTotal, msg.Progress.RowsSoFar)
		return a, nil

	case messages.ChunkFailed:
		a.failedChunks.AddFailure(msg.Range, msg.Err)
		return a, nil

	case messages.FetchCompleted:
		a.summaryView.SetRun(msg.Run)
		a.failedChunks.SetFailures(failedChunksFromRun(msg.Run))
		if msg.Run.Cancelled {
			a.statusBar.SetState(status.StateCancelled)
		} else {
			a.statusBar.SetState(status.StateDone)
		}
		total := len(a.opts.Chunks())
		a.statusBar.SetProgress(total, total, msg.Run.RowsFetched)
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.statusBar.SetState(status.StateError)
		a.statusBar.SetMessage(msg.Err.Error())
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	return a, nil
}

// View implements tea.Model.
// It renders the dashboard as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	if a.showHelp {
		return a.viewHelp()
	}

	body := a.failedChunks.View()
	if a.summaryView.HasRun() {
		body = a.summaryView.View()
	}

	return body + "\n\n" + a.statusBar.View()
}

// viewHelp renders the keybinding help overlay.
func (a *App) viewHelp() string {
	return `Help

  up/k        scroll failed chunks up
  down/j      scroll failed chunks down
  ?           toggle this help
  q, ctrl+c   quit (cancels the in-flight fetch)
`
}

// Run starts the TUI dashboard and drives the fetch orchestrator in the
// background, forwarding its progress into the running program.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())

	// Quitting ends p.Run, and the deferred cancel stops the fetch.
	ctx, cancel := context.WithCancel(a.ctx)
	defer cancel()

	go func() {
		run, err := a.ports.Orchestrator.FetchRange(ctx, a.opts, func(prog domain.FetchProgress) {
			p.Send(messages.ProgressUpdated{Progress: prog})
		})
		if err != nil {
			p.Send(messages.ErrorOccurred{Err: err})
			return
		}
		p.Send(messages.FetchCompleted{Run: run})
	}()

	_, err := p.Run()
	return err
}

// Err returns the last fatal error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.statusBar.SetWidth(width)
	a.failedChunks.SetDimensions(width, height-4)
	a.summaryView.SetDimensions(width, height)
}

// StatusBar exposes the status bar for testing.
func (a *App) StatusBar() *status.Bar {
	return a.statusBar
}

// FailedChunks exposes the failed-chunk list for testing.
func (a *App) FailedChunks() *list.ResultList {
	return a.failedChunks
}

// SummaryView exposes the summary view for testing.
func (a *App) SummaryView() *summary.View {
	return a.summaryView
}

func failedChunksFromRun(run domain.FetchRun) []list.FailedChunk {
	failures := make([]list.FailedChunk, 0, len(run.ChunksFailed))
	for _, rng := range run.ChunksFailed {
		failures = append(failures, list.FailedChunk{Range: rng})
	}
	return failures
}
