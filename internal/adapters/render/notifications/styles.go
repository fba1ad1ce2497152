package notifications

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	unread   lipgloss.Style
	read     lipgloss.Style
	kind     lipgloss.Style
	meta     lipgloss.Style
	empty    lipgloss.Style
	section  lipgloss.Style
	badge    lipgloss.Style
	friendly lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true),
		header:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		unread:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		read:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		kind:     lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		meta:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		empty:    lipgloss.NewStyle().Faint(true),
		section:  lipgloss.NewStyle().MarginTop(1),
		badge:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		friendly: lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
	}
}
