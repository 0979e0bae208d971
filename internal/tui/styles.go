package tui

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

type AppTheme struct {
	Primary   string
	Secondary string
	Accent    string
	Text      string
	Subtle    string
	Error     string
}

func AmberTheme() AppTheme {
	return AppTheme{
		Primary:   "#ffcc66",
		Secondary: "#6b4f1d",
		Accent:    "#ffe7b3",
		Text:      "#ece6dc",
		Subtle:    "#b8ab96",
		Error:     "#ffb4ab",
	}
}

type Styles struct {
	theme  AppTheme
	Title  lipgloss.Style
	Normal lipgloss.Style
	Bold   lipgloss.Style
	Subtle lipgloss.Style
	Error  lipgloss.Style
	Key    lipgloss.Style
}

func NewStyles(theme AppTheme) Styles {
	return Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Primary)).
			Bold(true).
			MarginLeft(1).
			MarginBottom(1),

		Normal: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Text)),

		Bold: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Text)).
			Bold(true),

		Subtle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Subtle)),

		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Error)),

		Key: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Accent)).
			Bold(true),
	}
}

func (s Styles) NewThemedProgress(width int) progress.Model {
	prog := progress.New(
		progress.WithGradient(s.theme.Secondary, s.theme.Primary),
	)

	prog.Width = width
	prog.ShowPercentage = false

	return prog
}
