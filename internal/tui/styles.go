package tui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4a9ae9"))
	sortedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9e9e9e")).Italic(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#777777"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3a873a"))

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#dcdcdc"))
	inputErrorStyle = inputStyle.BorderForeground(lipgloss.Color("#d32f2f"))
	inputBusyStyle  = inputStyle.BorderForeground(lipgloss.Color("#1976d2"))

	editStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.ThickBorder()).
			BorderLeft(true).
			BorderForeground(lipgloss.Color("#dcdcdc"))
	editErrorStyle = editStyle.BorderForeground(lipgloss.Color("#d32f2f"))

	handleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9e9e9e"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4a9ae9")).Bold(true)
	doneTextStyle = lipgloss.NewStyle().Strikethrough(true).Faint(true)
	liftedStyle   = lipgloss.NewStyle().Faint(true)

	dueBadgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1565c0")).
			Background(lipgloss.Color("#e3f2fd")).
			Padding(0, 1)
	overdueBadgeStyle = dueBadgeStyle.
				Foreground(lipgloss.Color("#ffffff")).
				Background(lipgloss.Color("#d32f2f"))
	jiraBadgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#424242")).
			Background(lipgloss.Color("#f5f5f5")).
			Padding(0, 1)
	doneBadgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#4caf50")).
			Padding(0, 1)

	dropLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4a9ae9"))
	ghostStyle    = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#4a9ae9"))
)
