package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/buildseq/internal/cli/formatter"
	"github.com/alexanderramin/buildseq/internal/domain"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type viewerTab int

const (
	tabTasks viewerTab = iota
	tabGantt
	tabPhases
)

var viewerTabNames = []string{"Tasks", "Gantt", "Phases"}

type viewerKeyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Quit     key.Binding
}

func defaultViewerKeys() viewerKeyMap {
	return viewerKeyMap{
		Next:     key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next view")),
		Prev:     key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("shift+tab", "prev view")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d", " "), key.WithHelp("pgdn", "page down")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k viewerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Up, k.Down, k.Quit}
}

func (k viewerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev}, {k.Up, k.Down, k.PageUp, k.PageDown}, {k.Quit}}
}

// scheduleViewer is a full-screen, scrollable view of one schedule with a
// tab per rendering.
type scheduleViewer struct {
	title  string
	result *domain.SequencingResult
	tab    viewerTab
	keys   viewerKeyMap
	help   help.Model
	vp     viewport.Model
	width  int
	ready  bool
}

func newScheduleViewer(title string, result *domain.SequencingResult) scheduleViewer {
	vp := viewport.New(0, 0)
	vp.KeyMap = viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown", "ctrl+d", " ")),
		PageUp:       key.NewBinding(key.WithKeys("pgup", "ctrl+u")),
		HalfPageUp:   key.NewBinding(key.WithDisabled()),
		HalfPageDown: key.NewBinding(key.WithDisabled()),
		Up:           key.NewBinding(key.WithKeys("up", "k")),
		Down:         key.NewBinding(key.WithKeys("down", "j")),
	}
	return scheduleViewer{
		title:  title,
		result: result,
		keys:   defaultViewerKeys(),
		help:   help.New(),
		vp:     vp,
	}
}

func runScheduleViewer(title string, result *domain.SequencingResult) error {
	_, err := tea.NewProgram(newScheduleViewer(title, result), tea.WithAltScreen()).Run()
	return err
}

func (m scheduleViewer) Init() tea.Cmd { return nil }

func (m scheduleViewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.vp.Width = msg.Width
		m.vp.Height = max(msg.Height-lipgloss.Height(m.headerView())-lipgloss.Height(m.footerView()), 1)
		m.ready = true
		m.vp.SetContent(m.content())
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.tab = (m.tab + 1) % viewerTab(len(viewerTabNames))
			m.vp.SetContent(m.content())
			m.vp.GotoTop()
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.tab = (m.tab + viewerTab(len(viewerTabNames)) - 1) % viewerTab(len(viewerTabNames))
			m.vp.SetContent(m.content())
			m.vp.GotoTop()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m scheduleViewer) View() string {
	if !m.ready {
		return "Loading schedule..."
	}
	return m.headerView() + "\n" + m.vp.View() + "\n" + m.footerView()
}

func (m scheduleViewer) content() string {
	switch m.tab {
	case tabGantt:
		return formatter.FormatGantt(m.result, max(m.width-ganttChrome, 10))
	case tabPhases:
		return formatter.FormatPhaseSummary(m.result) + "\n" + formatter.FormatPhaseTree(m.result)
	default:
		return formatter.FormatTaskTable(m.result)
	}
}

// ganttChrome is the width the Gantt chart spends outside its track: the
// name column plus the span label.
const ganttChrome = 48

func (m scheduleViewer) headerView() string {
	tabs := make([]string, len(viewerTabNames))
	for i, name := range viewerTabNames {
		if viewerTab(i) == m.tab {
			tabs[i] = formatter.StyleHeader.Render("[" + name + "]")
		} else {
			tabs[i] = formatter.Dim(" " + name + " ")
		}
	}
	summary := formatter.Dim(fmt.Sprintf("%d tasks · %s", len(m.result.Tasks), formatter.FormatDays(m.result.TotalDurationDays)))
	return formatter.Bold(m.title) + "  " + summary + "\n" + strings.Join(tabs, " ")
}

func (m scheduleViewer) footerView() string {
	return scrollIndicator(m.vp) + "  " + m.help.View(m.keys)
}

// scrollIndicator returns a dim scroll position string for the status bar.
func scrollIndicator(vp viewport.Model) string {
	if vp.AtTop() {
		return formatter.Dim("[TOP]")
	}
	if vp.AtBottom() {
		return formatter.Dim("[END]")
	}
	return formatter.Dim(fmt.Sprintf("[%d%%]", int(vp.ScrollPercent()*100)))
}
