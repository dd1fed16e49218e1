package tui

import "github.com/charmbracelet/lipgloss"

const (
	sidebarWidth      = 30
	headerHeight      = 1
	footerHeight      = 2
	composerHeight    = 3
	inputBorderHeight = 2
	minViewportHeight = 3
)

var (
	primaryColor = lipgloss.Color("#7C3AED") // Purple
	successColor = lipgloss.Color("#10B981") // Green
	accentColor  = lipgloss.Color("#F59E0B") // Amber
	errorColor   = lipgloss.Color("#EF4444") // Red
	mutedColor   = lipgloss.Color("#6B7280") // Gray
	textColor    = lipgloss.Color("#F9FAFB")
	borderColor  = lipgloss.Color("#4B5563")

	titleStyle = lipgloss.NewStyle().
			Background(primaryColor).
			Foreground(textColor).
			Bold(true)

	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1)

	sidebarFocusedStyle = sidebarStyle.
				BorderForeground(primaryColor)

	chatItemStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	chatCursorStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Bold(true)

	chatActiveStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	userMessageStyle = lipgloss.NewStyle().
				Foreground(textColor).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(primaryColor).
				Padding(0, 1)

	aiMessageStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(successColor).
			Padding(0, 1)

	textAreaStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	textAreaFocusedStyle = textAreaStyle.
				BorderForeground(primaryColor)

	phaseStyles = map[string]lipgloss.Style{
		"connected":    lipgloss.NewStyle().Foreground(successColor),
		"connecting":   lipgloss.NewStyle().Foreground(accentColor),
		"disconnected": lipgloss.NewStyle().Foreground(mutedColor),
	}

	formStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(1, 2)

	labelStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	dimTextStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(accentColor)
)
