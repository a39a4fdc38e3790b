package ui

import "github.com/charmbracelet/lipgloss"

type Styles struct {
	Sidebar      lipgloss.Style
	SidebarItem  lipgloss.Style
	ActiveItem   lipgloss.Style
	SelectedItem lipgloss.Style
	UserMessage  lipgloss.Style
	SourceLink   lipgloss.Style
	StatusBar    lipgloss.Style
	Notice       lipgloss.Style
	ModalBox     lipgloss.Style
}

func DefaultStyles() *Styles {
	accent := lipgloss.AdaptiveColor{Light: "#5A4FCF", Dark: "#9A8FFF"}
	dim := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#666666"}

	return &Styles{
		Sidebar: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(dim).
			PaddingRight(1),
		SidebarItem: lipgloss.NewStyle(),
		ActiveItem: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),
		SelectedItem: lipgloss.NewStyle().
			Reverse(true),
		UserMessage: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),
		SourceLink: lipgloss.NewStyle().
			Foreground(dim).
			Underline(true),
		StatusBar: lipgloss.NewStyle().
			Foreground(dim),
		Notice: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#B00020", Dark: "#FF6B6B"}),
		ModalBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2),
	}
}
