package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Model is the bubbletea model for one download session.
type Model struct {
	title  string
	cancel context.CancelFunc

	state      sessionState
	cancelling bool

	width  int
	styles Styles
}

// NewModel returns a model titled title. cancel aborts the session.
func NewModel(title string, cancel context.CancelFunc) Model {
	sty := defaultStyles()
	return Model{
		title:  title,
		cancel: cancel,
		state:  newSessionState(sty),
		styles: sty,
	}
}

func (m Model) Init() tea.Cmd {
	return m.state.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.state.done {
				return m, tea.Quit
			}
			// Keep rendering until the session reports its cancelled result.
			if !m.cancelling {
				m.cancelling = true
				m.state.status = "Cancelling..."
				if m.cancel != nil {
					m.cancel()
				}
			}
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 20; w > 10 && w < 60 {
			m.state.bar.Width = w
		}
	case eventMsg:
		m.state.apply(msg.Ev)
		return m, nil
	case feedClosedMsg:
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.state.spinner, cmd = m.state.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	out := m.viewHeader() + "\n\n" + m.viewSession()
	if s := m.viewSummary(); s != "" {
		out += "\n" + s
	}
	return out + "\n"
}
