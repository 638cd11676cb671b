// Package summary provides the final fetch-run summary view for the TUI.
package summary

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/usenet-tools/nntpidx/internal/adapters/driving/tui/styles"
	"github.com/usenet-tools/nntpidx/internal/core/domain"
)

// View renders the terminal summary panel shown once a fetch run finishes.
type View struct {
	styles  *styles.Styles
	run     domain.FetchRun
	hasRun  bool
	width   int
	height  int
	ready   bool
}

// NewView creates a new summary view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles: s,
		width:  80,
		height: 24,
	}
}

// Init initialises the summary view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the summary view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ready = true
		return v, nil

	case tea.KeyMsg:
		if msg.String() == "q" {
			return v, tea.Quit
		}
	}

	return v, nil
}

// View renders the summary panel.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	if !v.hasRun {
		return v.styles.Muted.Render("Fetch in progress...")
	}

	var b strings.Builder

	title := v.styles.Title.Render("Fetch run summary")
	b.WriteString(title)
	b.WriteString("\n\n")

	group := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Render(fmt.Sprintf("group: %s  range: %d-%d", v.run.Group, v.run.Low, v.run.High))
	b.WriteString(group)
	b.WriteString("\n\n")

	rows := []string{
		fmt.Sprintf("rows fetched:  %d", v.run.RowsFetched),
		fmt.Sprintf("inserted:      %d", v.run.Inserted),
		fmt.Sprintf("ignored:       %d", v.run.Ignored),
		fmt.Sprintf("chunks failed: %d", len(v.run.ChunksFailed)),
		fmt.Sprintf("parse errors:  %d", v.run.ParseErrors),
	}
	for _, row := range rows {
		b.WriteString(v.styles.Normal.Render(row))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case v.run.Cancelled:
		b.WriteString(v.styles.Warning.Render("run was cancelled"))
	case len(v.run.ChunksFailed) > 0:
		b.WriteString(v.styles.Warning.Render("run completed with failures"))
	default:
		b.WriteString(v.styles.Success.Render("run completed successfully"))
	}

	b.WriteString("\n\n")
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Render("[q] Quit")
	b.WriteString(footer)

	return b.String()
}

// SetRun records the completed fetch run to display.
func (v *View) SetRun(run domain.FetchRun) {
	v.run = run
	v.hasRun = true
}

// Run returns the recorded fetch run.
func (v *View) Run() domain.FetchRun {
	return v.run
}

// HasRun reports whether a completed run has been recorded.
func (v *View) HasRun() bool {
	return v.hasRun
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}
