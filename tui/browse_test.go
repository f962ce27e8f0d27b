// ABOUTME: Unit tests for the plan browser model
// ABOUTME: Drives the Bubble Tea model with key and reload messages

package tui

import (
	"errors"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crate-sorter/classification"
	"crate-sorter/library"
	"crate-sorter/placement"
)

func testReport(t *testing.T, title string, outcomes ...placement.Outcome) placement.Report {
	t.Helper()

	code, err := classification.Parse("1,a")
	require.NoError(t, err)

	r := placement.Report{Track: &library.Track{Title: title, Artist: "Artist", Classification: code, Extension: "mp3"}}
	for _, o := range outcomes {
		r.Results = append(r.Results, placement.Result{Destination: "/target/a/" + title + ".mp3", Outcome: o})
	}

	return r
}

func sized(t *testing.T, m browseModel) browseModel {
	t.Helper()

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})

	return next.(browseModel)
}

func press(m browseModel, keys ...string) browseModel {
	for _, k := range keys {
		var msg tea.KeyMsg

		switch k {
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "end":
			msg = tea.KeyMsg{Type: tea.KeyEnd}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}

		next, _ := m.Update(msg)
		m = next.(browseModel)
	}

	return m
}

func TestBrowseNavigation(t *testing.T) {
	reports := []placement.Report{
		testReport(t, "One", placement.Copied),
		testReport(t, "Two", placement.SkippedExisting),
		testReport(t, "Three", placement.Failed),
	}
	m := sized(t, newBrowseModel("plan", "/target", reports, nil, nil))

	assert.Equal(t, 0, m.cursorPos)

	m = press(m, "down", "down", "down")
	assert.Equal(t, 2, m.cursorPos, "cursor stops at the last track")

	m = press(m, "up")
	assert.Equal(t, 1, m.cursorPos)

	m = press(m, "g")
	assert.Equal(t, 0, m.cursorPos)

	m = press(m, "G")
	assert.Equal(t, 2, m.cursorPos)
}

func TestBrowsePendingFilter(t *testing.T) {
	reports := []placement.Report{
		testReport(t, "One", placement.Copied),
		testReport(t, "Two", placement.SkippedExisting, placement.SkippedExisting),
		testReport(t, "Three", placement.SkippedExisting, placement.Failed),
	}
	m := sized(t, newBrowseModel("plan", "/target", reports, nil, nil))
	m = press(m, "G")

	m = press(m, "p")
	assert.True(t, m.pendingOnly)
	assert.Equal(t, []int{0, 2}, m.visible)
	assert.Equal(t, 1, m.cursorPos, "cursor clamped to the shorter list")

	m = press(m, "p")
	assert.Len(t, m.visible, 3)
}

func TestBrowseRenderExpandsSelection(t *testing.T) {
	reports := []placement.Report{
		testReport(t, "One", placement.Copied),
		testReport(t, "Two", placement.Copied),
	}
	m := sized(t, newBrowseModel("plan", "/target", reports, nil, nil))

	content := m.renderContent()
	assert.Contains(t, content, "a/One.mp3")
	assert.NotContains(t, content, "a/Two.mp3")

	m = press(m, "down")
	content = m.renderContent()
	assert.Contains(t, content, "a/Two.mp3")
	assert.Contains(t, m.View(), "2/2 tracks")
}

func TestBrowseScrollKeepsDestinationsVisible(t *testing.T) {
	reports := make([]placement.Report, 0, 20)
	for i := range cap(reports) {
		reports = append(reports, testReport(t, fmt.Sprintf("Track%02d", i), placement.Copied, placement.Copied, placement.Copied))
	}

	m := sized(t, newBrowseModel("plan", "/target", reports, nil, nil))
	m = press(m, "G")

	last := m.cursorPos + len(reports[m.cursorPos].Results)
	assert.Equal(t, 19, m.cursorPos)
	assert.GreaterOrEqual(t, m.viewport.YOffset+m.viewport.Height-1, last, "last destination line is on screen")
	assert.LessOrEqual(t, m.viewport.YOffset, m.cursorPos, "selected track is on screen")
}

func TestBrowseScrollPrefersTrackWhenExpansionTooTall(t *testing.T) {
	reports := []placement.Report{
		testReport(t, "Wide", placement.Copied, placement.Copied, placement.Copied, placement.Copied, placement.Copied, placement.Copied),
		testReport(t, "Next", placement.Copied),
	}

	next, _ := newBrowseModel("plan", "/target", reports, nil, nil).Update(tea.WindowSizeMsg{Width: 80, Height: 8})
	m := next.(browseModel)

	m = press(m, "down", "up")
	assert.Equal(t, 0, m.viewport.YOffset)
}

func TestBrowseReload(t *testing.T) {
	fresh := []placement.Report{testReport(t, "Fresh", placement.Copied)}
	load := func() ([]placement.Report, error) { return fresh, nil }

	m := sized(t, newBrowseModel("plan", "/target", nil, load, nil))
	assert.Contains(t, m.renderContent(), "nothing to place")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.NotNil(t, cmd)

	next, _ = next.(browseModel).Update(cmd())
	m = next.(browseModel)

	assert.Len(t, m.reports, 1)
	assert.Contains(t, m.renderContent(), "Fresh")

	next, _ = m.Update(planLoadedMsg{err: errors.New("boom")})
	m = next.(browseModel)
	assert.Contains(t, m.View(), "boom")
	assert.Len(t, m.reports, 1, "failed reload keeps the previous plan")
}

func TestBrowseQuit(t *testing.T) {
	m := sized(t, newBrowseModel("plan", "/target", nil, nil, nil))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
