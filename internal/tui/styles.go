package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/weeklit/internal/status"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Bold(true)

	todayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Underline(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("205")).
			Bold(true)

	dangerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)

	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	docStyle = lipgloss.NewStyle().Padding(1, 2)
)

// colorKeys maps the abstract tier color keys to terminal colors
var colorKeys = map[string]lipgloss.Color{
	"gray-400":   lipgloss.Color("245"),
	"yellow-500": lipgloss.Color("220"),
	"yellow-600": lipgloss.Color("178"),
	"green-500":  lipgloss.Color("35"),
	"green-600":  lipgloss.Color("28"),
}

var dailyColors = map[status.DailyTier]lipgloss.Color{
	status.DailyPoor:   lipgloss.Color("203"),
	status.DailyMedium: lipgloss.Color("214"),
	status.DailyGood:   lipgloss.Color("42"),
}

func tierStyle(t status.Tier) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorKeys[t.ColorKey()])
}

func dailyStyle(t status.DailyTier) lipgloss.Style {
	if c, ok := dailyColors[t]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return mutedStyle
}
