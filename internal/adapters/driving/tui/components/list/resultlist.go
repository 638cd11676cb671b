// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/usenet-tools/nntpidx/internal/adapters/driving/tui/styles"
	"github.com/usenet-tools/nntpidx/internal/core/domain"
)

// FailedChunk pairs a chunk range with the error that exhausted its retries.
type FailedChunk struct {
	Range domain.ChunkRange
	Err   error
}

// ResultList displays failed chunk ranges in a navigable, scrollable list.
type ResultList struct {
	failures []FailedChunk
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates a new failed-chunk list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		failures: nil,
		selected: 0,
		styles:   s,
		width:    80,
		height:   10,
	}
}

// Init initialises the list.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		//nolint:exhaustive // handling only relevant key types
		switch msg.Type {
		case tea.KeyUp:
			r.MoveUp()
		case tea.KeyDown:
			r.MoveDown()
		default:
			// Handle other keys
		}
		switch msg.String() {
		case "k":
			r.MoveUp()
		case "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the failed-chunk list.
func (r *ResultList) View() string {
	if len(r.failures) == 0 {
		return r.styles.Muted.Render("No failed chunks")
	}

	lines := make([]string, 0, len(r.failures)+2)

	header := r.styles.Subtitle.Render(fmt.Sprintf("Failed chunks (%d)", len(r.failures)))
	lines = append(lines, header, "")

	visibleCount := r.height - 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(r.failures) {
		end = len(r.failures)
	}

	for i := start; i < end; i++ {
		lines = append(lines, r.renderFailure(i, &r.failures[i]))
	}

	return strings.Join(lines, "\n")
}

// renderFailure formats a single failed chunk range with its error.
func (r *ResultList) renderFailure(index int, f *FailedChunk) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	rangeText := fmt.Sprintf("%d-%d", f.Range.Low, f.Range.High)

	errText := ""
	if f.Err != nil {
		errText = f.Err.Error()
	}

	maxErrLen := r.width - len(rangeText) - 8
	if maxErrLen < 10 {
		maxErrLen = 10
	}
	if len(errText) > maxErrLen {
		errText = errText[:maxErrLen-3] + "..."
	}

	line := fmt.Sprintf("%s%s  %s", indicator, rangeText, errText)
	if index == r.selected {
		return r.styles.Selected.Render(line)
	}
	return r.styles.Normal.Render(indicator+rangeText+"  ") + r.styles.Error.Render(errText)
}

// SetFailures updates the failed-chunk list.
func (r *ResultList) SetFailures(failures []FailedChunk) {
	r.failures = failures
	r.selected = 0
}

// AddFailure appends a single failed chunk to the list.
func (r *ResultList) AddFailure(rng domain.ChunkRange, err error) {
	r.failures = append(r.failures, FailedChunk{Range: rng, Err: err})
}

// Failures returns the current failed chunks.
func (r *ResultList) Failures() []FailedChunk {
	return r.failures
}

// Selected returns the index of the selected failure.
func (r *ResultList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *ResultList) SetSelected(index int) {
	if index >= 0 && index < len(r.failures) {
		r.selected = index
	}
}

// SelectedFailure returns the currently selected failure, or nil if none.
func (r *ResultList) SelectedFailure() *FailedChunk {
	if len(r.failures) == 0 || r.selected < 0 || r.selected >= len(r.failures) {
		return nil
	}
	return &r.failures[r.selected]
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.failures)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Width returns the current width.
func (r *ResultList) Width() int {
	return r.width
}

// Height returns the current height.
func (r *ResultList) Height() int {
	return r.height
}

// Count returns the number of failed chunks.
func (r *ResultList) Count() int {
	return len(r.failures)
}

// IsEmpty returns whether the list is empty.
func (r *ResultList) IsEmpty() bool {
	return len(r.failures) == 0
}
