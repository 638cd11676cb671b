// Package status provides the status bar component for the fetch progress
// TUI: current run state, chunk/row counters, and keybinding hints.
package status

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/usenet-tools/nntpidx/internal/adapters/driving/tui/keymap"
	"github.com/usenet-tools/nntpidx/internal/adapters/driving/tui/styles"
)

// State represents the current fetch run state for display.
type State string

const (
	StateRunning   State = "running"
	StateDone      State = "done"
	StateCancelled State = "cancelled"
	StateError     State = "error"
	StateHelp      State = "help"
)

// Bar displays fetch progress and keybinding hints.
type Bar struct {
	styles      *styles.Styles
	keymap      *keymap.KeyMap
	state       State
	message     string
	chunksDone  int
	chunksTotal int
	rowsFetched int
	width       int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateRunning,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages. The bar is passive, driven by the
// Set methods from the owning model.
func (s *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	leftLen := lipgloss.Width(left)
	rightLen := lipgloss.Width(right)
	padding := s.width - leftLen - rightLen
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	switch s.state {
	case StateRunning:
		return s.styles.Normal.Render(fmt.Sprintf("chunks %d/%d  rows %d", s.chunksDone, s.chunksTotal, s.rowsFetched))
	case StateDone:
		return s.styles.Success.Render(fmt.Sprintf("done: %d chunks, %d rows", s.chunksTotal, s.rowsFetched))
	case StateCancelled:
		return s.styles.Warning.Render("cancelled")
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render(fmt.Sprintf("error: %s", s.message))
		}
		return s.styles.Error.Render("error")
	case StateHelp:
		return s.styles.Normal.Render("help")
	}
	return s.styles.Muted.Render("idle")
}

func (s *Bar) renderRight() string {
	bindings := s.keymap.ShortHelp()
	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message (used in the error state).
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetProgress updates the chunk and row counters.
func (s *Bar) SetProgress(chunksDone, chunksTotal, rowsFetched int) {
	s.chunksDone = chunksDone
	s.chunksTotal = chunksTotal
	s.rowsFetched = rowsFetched
}

// ChunksDone returns the number of completed chunks.
func (s *Bar) ChunksDone() int {
	return s.chunksDone
}

// ChunksTotal returns the total number of chunks in this run.
func (s *Bar) ChunksTotal() int {
	return s.chunksTotal
}

// RowsFetched returns the number of rows fetched so far.
func (s *Bar) RowsFetched() int {
	return s.rowsFetched
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to its initial running state.
func (s *Bar) Clear() {
	s.state = StateRunning
	s.message = ""
	s.chunksDone = 0
	s.chunksTotal = 0
	s.rowsFetched = 0
}
