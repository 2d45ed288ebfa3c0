package tui

import (
	"fmt"
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Shimmer animation for the header logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "SMART PADDY" as a slow wave from deep field
// green (#1f3d1a) to ripe-grain gold (#e8c547).
func renderShimmerLogo(frame int) string {
	const text = "SMART PADDY"
	n := len(text)
	t := float64(frame)

	var out string
	for i := 0; i < n; i++ {
		if text[i] == ' ' {
			out += "   "
			continue
		}
		x := float64(i) / float64(n-1)
		phase := t*0.1 - x*3.0
		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)*0.8 + 0.15
		if b > 1.0 {
			b = 1.0
		}

		r := clampByte(31 + b*(232-31))
		g := clampByte(61 + b*(197-61))
		bl := clampByte(26 + b*(71-26))
		color := fmt.Sprintf("#%02X%02X%02X", r, g, bl)

		out += lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).Render(string(text[i]))
		if i < n-1 && text[i+1] != ' ' {
			out += " "
		}
	}
	return out
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8a9486"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#eef2e6")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c6ccbc"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#56604f"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8a9486"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#56604f"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6bbf4e"))

	goldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e8c547"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d9534f"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6bbf4e")).
			Bold(true)

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#e8c547")).
				Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8a9486")).
			Width(18)

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#101a0c")).
			Background(lipgloss.Color("#6bbf4e")).
			Padding(0, 2).
			Bold(true)

	buttonDisabledStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#8a9486")).
				Background(lipgloss.Color("#2a3326")).
				Padding(0, 2)

	stageCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#2f3b2a")).
			Padding(0, 1)

	fertilizerCardStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#e8c547")).
				Padding(0, 1)

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6bbf4e")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#3a4436"))

	tableHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#e8c547")).
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("#2f3b2a")).
				BorderBottom(true)

	tableSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#eef2e6")).
				Background(lipgloss.Color("#2a3326"))
)

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}
