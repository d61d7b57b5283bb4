package ui

import "github.com/charmbracelet/lipgloss"

// Styles for diff rendering
var (
	diffAddedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2"))

	diffRemovedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("1"))

	diffContextStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("8"))

	diffAnchorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6"))

	diffMarkerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Italic(true)

	diffHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("4"))
)

// Styles for approval UI
var (
	approvalTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("5")).
				MarginBottom(1)

	approvalActionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("3"))

	yesButtonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")).
			Background(lipgloss.Color("0")).
			Padding(0, 1).
			MarginRight(1)

	noButtonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Background(lipgloss.Color("0")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)
