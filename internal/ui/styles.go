package ui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles shared by the TUI, the plain renderer and
// the interactive prompts.
type Styles struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Header    lipgloss.Style
	Label     lipgloss.Style
	Info      lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Faint     lipgloss.Style
	Box       lipgloss.Style
	Spinner   lipgloss.Style
	StageMeta lipgloss.Style
	StageDL   lipgloss.Style
	StageConv lipgloss.Style
}

func defaultStyles() Styles {
	base := lipgloss.NewStyle()
	return Styles{
		Title:     base.Bold(true).Foreground(lipgloss.Color("#EF4444")),
		Subtitle:  base.Faint(true),
		Header:    base.Bold(true),
		Label:     base.Foreground(lipgloss.Color("#A3A3A3")),
		Info:      base.Foreground(lipgloss.Color("#D1D5DB")),
		Success:   base.Foreground(lipgloss.Color("#22C55E")),
		Error:     base.Foreground(lipgloss.Color("#EF4444")),
		Warning:   base.Foreground(lipgloss.Color("#F59E0B")),
		Faint:     base.Faint(true),
		Box:       base.Padding(0, 1),
		Spinner:   base.Foreground(lipgloss.Color("#22D3EE")),
		StageMeta: base.Foreground(lipgloss.Color("#60A5FA")),
		StageDL:   base.Foreground(lipgloss.Color("#06B6D4")),
		StageConv: base.Foreground(lipgloss.Color("#D946EF")),
	}
}

// DefaultStyles returns the application palette.
func DefaultStyles() Styles {
	return defaultStyles()
}
