// ABOUTME: Read-only browser for a placement plan
// ABOUTME: Lists tracks with their destinations and reloads when the source tree changes

// Package tui provides an interactive terminal view of what a sort run would do.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	"crate-sorter/placement"
)

// Layout constants for UI dimensions
const (
	headerHeight = 3 // Title + header row + separator
	footerHeight = 2 // Status + help
	pageJumpSize = 10

	minViewportHeight = 3
)

// PlanLoader computes the placement plan, typically a dry run of a sort
type PlanLoader func() ([]placement.Report, error)

// browseKeyMap defines the key bindings of the browser
type browseKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Pending  key.Binding
	Reload   key.Binding
	Quit     key.Binding
}

var browseKeys = browseKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup", "ctrl+u"),
		key.WithHelp("pgup", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+d"),
		key.WithHelp("pgdn", "page down"),
	),
	Top: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	Pending: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "pending only"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Styles for the browser
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10"))

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("15")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	cursorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("240")).
			Foreground(lipgloss.Color("15")).
			Bold(true)

	outcomeStyles = map[placement.Outcome]lipgloss.Style{
		placement.Copied:          lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		placement.SkippedExisting: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		placement.Failed:          lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
)

// sourceChangeMsg is sent when something changes below a watched directory
type sourceChangeMsg struct{}

// planLoadedMsg is sent after the plan has been recomputed
type planLoadedMsg struct {
	reports []placement.Report
	err     error
}

// browseModel holds the state of the plan browser
type browseModel struct {
	title   string
	target  string
	load    PlanLoader
	watcher *fsnotify.Watcher

	reports     []placement.Report
	visible     []int // indexes into reports
	pendingOnly bool
	cursorPos   int

	viewport   viewport.Model
	width      int
	height     int
	ready      bool
	lastReload time.Time
	errorMsg   string
}

func newBrowseModel(title, target string, reports []placement.Report, load PlanLoader, watcher *fsnotify.Watcher) browseModel {
	m := browseModel{
		title:      title,
		target:     target,
		load:       load,
		watcher:    watcher,
		reports:    reports,
		lastReload: time.Now(),
	}
	m.refilter()

	return m
}

// RunBrowser loads the plan and shows it until the user quits.
// When watcher is not nil, the plan is reloaded on every change it reports.
func RunBrowser(title, target string, load PlanLoader, watcher *fsnotify.Watcher) error {
	reports, err := load()
	if err != nil {
		return err
	}

	p := tea.NewProgram(newBrowseModel(title, target, reports, load, watcher), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("browse mode error: %w", err)
	}

	return nil
}

// Init starts watching for source changes
func (m browseModel) Init() tea.Cmd {
	if m.watcher == nil {
		return nil
	}

	return waitForSourceChange(m.watcher)
}

// waitForSourceChange returns a command that waits for file system events
func waitForSourceChange(watcher *fsnotify.Watcher) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}

				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					// Debounce: wait a bit for copies and tag edits to complete
					time.Sleep(500 * time.Millisecond)

					return sourceChangeMsg{}
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
			}
		}
	}
}

// reloadPlan recomputes the plan in the background
func reloadPlan(load PlanLoader) tea.Cmd {
	return func() tea.Msg {
		reports, err := load()

		return planLoadedMsg{reports: reports, err: err}
	}
}

// refilter rebuilds the visible list and clamps the cursor
func (m *browseModel) refilter() {
	m.visible = m.visible[:0]

	for i, r := range m.reports {
		if !m.pendingOnly || hasPending(r) {
			m.visible = append(m.visible, i)
		}
	}

	if m.cursorPos >= len(m.visible) {
		m.cursorPos = len(m.visible) - 1
	}

	if m.cursorPos < 0 {
		m.cursorPos = 0
	}
}

func hasPending(r placement.Report) bool {
	for _, res := range r.Results {
		if res.Outcome != placement.SkippedExisting {
			return true
		}
	}

	return false
}

// Update handles messages and updates the model
func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		height := max(msg.Height-headerHeight-footerHeight, minViewportHeight)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}

		m.viewport.SetContent(m.renderContent())

		return m, nil

	case sourceChangeMsg:
		return m, tea.Batch(
			reloadPlan(m.load),
			waitForSourceChange(m.watcher), // Continue watching
		)

	case planLoadedMsg:
		if msg.err != nil {
			m.errorMsg = fmt.Sprintf("Error reloading: %v", msg.err)
		} else {
			m.reports = msg.reports
			m.lastReload = time.Now()
			m.errorMsg = ""
			m.refilter()
		}

		m.updateViewport()

		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, browseKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, browseKeys.Up):
			m.moveCursor(-1)
		case key.Matches(msg, browseKeys.Down):
			m.moveCursor(1)
		case key.Matches(msg, browseKeys.PageUp):
			m.moveCursor(-pageJumpSize)
		case key.Matches(msg, browseKeys.PageDown):
			m.moveCursor(pageJumpSize)
		case key.Matches(msg, browseKeys.Top):
			m.cursorPos = 0
		case key.Matches(msg, browseKeys.Bottom):
			m.cursorPos = max(len(m.visible)-1, 0)
		case key.Matches(msg, browseKeys.Pending):
			m.pendingOnly = !m.pendingOnly
			m.refilter()
		case key.Matches(msg, browseKeys.Reload):
			return m, reloadPlan(m.load)
		}

		m.updateViewport()

		return m, nil
	}

	return m, nil
}

func (m *browseModel) moveCursor(delta int) {
	m.cursorPos = min(max(m.cursorPos+delta, 0), max(len(m.visible)-1, 0))
}

func (m *browseModel) updateViewport() {
	if !m.ready {
		return
	}

	m.viewport.SetContent(m.renderContent())
	m.ensureCursorVisible()
}

// ensureCursorVisible scrolls viewport to keep the selected track and its
// expanded destinations in view; the track line wins when both do not fit
func (m *browseModel) ensureCursorVisible() {
	line := m.cursorPos
	last := line + m.selectedExtraLines()
	viewportTop := m.viewport.YOffset
	viewportBottom := m.viewport.YOffset + m.viewport.Height - 1

	switch {
	case line < viewportTop:
		m.viewport.SetYOffset(line)
	case last > viewportBottom:
		m.viewport.SetYOffset(min(last-m.viewport.Height+1, line))
	}
}

// selectedExtraLines is the number of destination lines under the selection
func (m browseModel) selectedExtraLines() int {
	if m.cursorPos >= len(m.visible) {
		return 0
	}

	return len(m.reports[m.visible[m.cursorPos]].Results)
}

// renderContent renders one line per visible track, expanding the selected one
func (m browseModel) renderContent() string {
	if len(m.visible) == 0 {
		return helpStyle.Render("  nothing to place")
	}

	var b strings.Builder

	for pos, idx := range m.visible {
		r := m.reports[idx]

		line := fmt.Sprintf("%-8s %s - %s  %s", r.Track.Classification, r.Track.Artist, r.Track.Title, outcomeCounts(r))
		if pos == m.cursorPos {
			line = cursorStyle.Render(line)
		}

		b.WriteString(line)
		b.WriteString("\n")

		if pos == m.cursorPos {
			for _, res := range r.Results {
				b.WriteString("    ")
				b.WriteString(outcomeStyles[res.Outcome].Render(fmt.Sprintf("%-7s %s", res.Outcome, m.relative(res.Destination))))

				if res.Truncated {
					b.WriteString(helpStyle.Render(" (truncated)"))
				}

				if res.Err != nil {
					b.WriteString(errorStyle.Render(" " + res.Err.Error()))
				}

				b.WriteString("\n")
			}
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func (m browseModel) relative(path string) string {
	if rel, err := filepath.Rel(m.target, path); err == nil {
		return rel
	}

	return path
}

func outcomeCounts(r placement.Report) string {
	counts := map[placement.Outcome]int{}
	for _, res := range r.Results {
		counts[res.Outcome]++
	}

	var parts []string

	for _, o := range []placement.Outcome{placement.Copied, placement.SkippedExisting, placement.Failed} {
		if counts[o] > 0 {
			parts = append(parts, outcomeStyles[o].Render(fmt.Sprintf("%d %s", counts[o], o)))
		}
	}

	return strings.Join(parts, " ")
}

// View renders the browser
func (m browseModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-8s %s", "Code", "Artist - Title")))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", max(m.width, 1)))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	status := fmt.Sprintf("%d/%d tracks | reloaded %s", len(m.visible), len(m.reports), m.lastReload.Format("15:04:05"))
	if m.pendingOnly {
		status += " | pending only"
	}

	if m.errorMsg != "" {
		b.WriteString(errorStyle.Render(m.errorMsg))
	} else {
		b.WriteString(statusStyle.Render(status))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ navigate • pgup/pgdn page • g/G top/bottom • p pending • r reload • q quit"))

	return b.String()
}
