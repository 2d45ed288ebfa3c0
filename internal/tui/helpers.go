package tui

import (
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smartpaddy/advisor/pkg/client"
)

// errorText is what a page shows for a failed call.
func errorText(err error) string {
	if err == nil {
		return ""
	}
	return client.AsError(err).Message
}

// expireIfUnauthorized returns a command that ends the session when err is
// an auth failure, or nil.
func expireIfUnauthorized(err error) tea.Cmd {
	if !client.IsAuthFailure(err) {
		return nil
	}
	return func() tea.Msg { return sessionExpiredMsg{} }
}

// navigateTo returns a command that asks the app to change route.
func navigateTo(path string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{path: path} }
}

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}

// centered pads s on the left so it sits in the middle of width columns.
func centered(s string, width int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}

// tabBar renders numbered tabs with the active one underlined.
func tabBar(names []string, active int) string {
	parts := make([]string, len(names))
	for i, name := range names {
		key := string(rune('1' + i))
		if i == active {
			parts[i] = accentStyle.Render(key) + " " + selectedStyle.Underline(true).Render(name)
		} else {
			parts[i] = metaStyle.Render(key) + " " + dimStyle.Render(name)
		}
	}
	return strings.Join(parts, "    ")
}
