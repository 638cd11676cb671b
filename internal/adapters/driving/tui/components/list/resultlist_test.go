package list

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usenet-tools/nntpidx/internal/adapters/driving/tui/styles"
	"github.com/usenet-tools/nntpidx/internal/core/domain"
)

func sampleFailures() []FailedChunk {
	return []FailedChunk{
		{Range: domain.ChunkRange{Low: 100, High: 199}, Err: errors.New("timeout")},
		{Range: domain.ChunkRange{Low: 200, High: 299}, Err: errors.New("connection reset")},
		{Range: domain.ChunkRange{Low: 300, High: 399}, Err: errors.New("article not found")},
	}
}

func TestNewResultList(t *testing.T) {
	s := styles.DefaultStyles()
	list := NewResultList(s)

	require.NotNil(t, list)
	assert.Equal(t, 0, list.Selected())
	assert.True(t, list.IsEmpty())
}

func TestNewResultList_NilStyles(t *testing.T) {
	list := NewResultList(nil)

	require.NotNil(t, list)
	assert.NotNil(t, list.styles)
}

func TestResultList_Init(t *testing.T) {
	list := NewResultList(nil)

	cmd := list.Init()

	assert.Nil(t, cmd)
}

func TestResultList_SetFailures(t *testing.T) {
	list := NewResultList(nil)
	failures := sampleFailures()

	list.SetFailures(failures)

	assert.Equal(t, 3, list.Count())
	assert.False(t, list.IsEmpty())
	assert.Equal(t, 0, list.Selected())
}

func TestResultList_Failures(t *testing.T) {
	list := NewResultList(nil)
	failures := sampleFailures()
	list.SetFailures(failures)

	got := list.Failures()

	assert.Equal(t, failures, got)
}

func TestResultList_AddFailure(t *testing.T) {
	list := NewResultList(nil)

	list.AddFailure(domain.ChunkRange{Low: 1, High: 50}, errors.New("boom"))

	assert.Equal(t, 1, list.Count())
	assert.Equal(t, uint64(1), list.Failures()[0].Range.Low)
}

func TestResultList_Selected(t *testing.T) {
	list := NewResultList(nil)
	list.SetFailures(sampleFailures())

	assert.Equal(t, 0, list.Selected())

	list.SetSelected(1)
	assert.Equal(t, 1, list.Selected())
}

func TestResultList_SetSelected_Valid(t *testing.T) {
	list := NewResultList(nil)
	list.SetFailures(sampleFailures())

	list.SetSelected(2)

	assert.Equal(t, 2, list.Selected())
}

func TestResultList_SetSelected_OutOfBounds(t *testing.T) {
	list := NewResultList(nil)
	list.SetFailures(sampleFailures())

	list.SetSelected(99)

	assert.Equal(t, 0, list.Selected())
}

func TestResultList_SetSelected_Negative(t *testing.T) {
	list := NewResultList(nil)
	list.SetFailures(sampleFailures())

	list.SetSelected(-1)

	assert.Equal(t, 0, list.Selected())
}

func TestResultList_SelectedFailure(t *testing.T) {
	list := NewResultList(nil)
	failures := sampleFailures()
	list.SetFailures(failures)

	f := list.SelectedFailure()

	require.NotNil(t, f)
	assert.Equal(t, uint64(100), f.Range.Low)
}

func TestResultList_SelectedFailure_Empty(t *testing.T) {
	list := NewResultList(nil)

	f := list.SelectedFailure()

	assert.Nil(t, f)
}

func TestResultList_MoveUp(t *testing.T) {
	list := NewResultList(nil)
	list.SetFailures(sampleFailures())
	list.SetSelected(1)

	list.MoveUp()

	assert.Equal(t, 0, list.Selected())
}

func TestResultList_MoveUp_AtTop(t *testing.T) {
	list := NewResultList(nil)
	list.SetFailures(sampleFailures())

	list.MoveUp()

	assert.Equal(t, 0, list.Selected())
}

func TestResultList_MoveDown(t *testing.T) {
	list := NewResultList(nil)
	list.SetFailures(sampleFailures())

	list.MoveDown()

	assert.Equal(t, 1, list.Selected())
}

func TestResultList_MoveDown_AtBottom(t *testing.T) {
	list := NewResultList(nil)
	list.SetFailures(sampleFailures())
	list.SetSelected(2)

	list.MoveDown()

	assert.Equal(t, 2, list.Selected())
}

func TestResultList_Update_KeyUp(t *testing.T) {
	list := NewResultList(nil)
	list.SetFailures(sampleFailures())
	list.SetSelected(1)

	msg := tea.KeyMsg{Type: tea.KeyUp}
	updated, cmd := list.Update(msg)

	assert.Equal(t, list, updated)
	assert.Nil(t, cmd)
	assert.Equal(t, 0, list.Selected())
}

func TestResultList_Update_KeyDown(t *testing.T) {
	list := NewResultList(nil)
	list.SetFailures(sampleFailures())

	msg := tea.KeyMsg{Type: tea.KeyDown}
	updated, cmd := list.Update(msg)

	assert.Equal(t, list, updated)
	assert.Nil(t, cmd)
	assert.Equal(t, 1, list.Selected())
}

func TestResultList_Update_KeyK(t *testing.T) {
	list := NewResultList(nil)
	list.SetFailures(sampleFailures())
	list.SetSelected(1)

	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}
	list.Update(msg)

	assert.Equal(t, 0, list.Selected())
}

func TestResultList_Update_KeyJ(t *testing.T) {
	list := NewResultList(nil)
	list.SetFailures(sampleFailures())

	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
	list.Update(msg)

	assert.Equal(t, 1, list.Selected())
}

func TestResultList_View_Empty(t *testing.T) {
	list := NewResultList(nil)

	view := list.View()

	assert.Contains(t, view, "No failed chunks")
}

func TestResultList_View_WithFailures(t *testing.T) {
	list := NewResultList(nil)
	list.SetFailures(sampleFailures())

	view := list.View()

	assert.Contains(t, view, "Failed chunks (3)")
	assert.Contains(t, view, "100-199")
	assert.Contains(t, view, "timeout")
}

func TestResultList_View_SelectedIndicator(t *testing.T) {
	list := NewResultList(nil)
	list.SetFailures(sampleFailures())

	view := list.View()

	assert.Contains(t, view, ">")
}

func TestResultList_SetDimensions(t *testing.T) {
	list := NewResultList(nil)

	list.SetDimensions(100, 20)

	assert.Equal(t, 100, list.Width())
	assert.Equal(t, 20, list.Height())
}

func TestResultList_Width(t *testing.T) {
	list := NewResultList(nil)

	assert.Equal(t, 80, list.Width())
}

func TestResultList_Height(t *testing.T) {
	list := NewResultList(nil)

	assert.Equal(t, 10, list.Height())
}

func TestResultList_Count(t *testing.T) {
	list := NewResultList(nil)

	assert.Equal(t, 0, list.Count())

	list.SetFailures(sampleFailures())
	assert.Equal(t, 3, list.Count())
}

func TestResultList_IsEmpty(t *testing.T) {
	list := NewResultList(nil)

	assert.True(t, list.IsEmpty())

	list.SetFailures(sampleFailures())
	assert.False(t, list.IsEmpty())
}

func TestResultList_View_LongError(t *testing.T) {
	list := NewResultList(nil)
	longErr := errors.New("this is a very long error message that should be truncated when displayed in the list view")
	list.SetFailures([]FailedChunk{
		{Range: domain.ChunkRange{Low: 1, High: 2}, Err: longErr},
	})

	view := list.View()

	assert.Contains(t, view, "...")
}
