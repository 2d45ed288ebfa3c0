package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/smartpaddy/advisor/internal/report"
	"github.com/smartpaddy/advisor/pkg/domain"
)

type historyLoadedMsg struct {
	load    uuid.UUID
	entries []domain.PredictionHistoryEntry
	err     error
}

const (
	historyLoadingText = "Loading your prediction history..."
	historyEmptyText   = "No predictions found yet."
	unidentifiedText   = "User not identified"
)

type historyModel struct {
	api     API
	userID  int64
	loadID  uuid.UUID // the load whose result is awaited
	loading bool
	err     string
	entries []domain.PredictionHistoryEntry
	table   table.Model
	width   int
	height  int
}

func newHistoryModel(api API, user domain.User) historyModel {
	m := historyModel{api: api, userID: user.ID, height: 12}
	if user.ID == 0 {
		m.err = unidentifiedText
		return m
	}
	m.loading = true
	m.loadID = uuid.New()
	return m
}

func (m historyModel) Init() tea.Cmd {
	if m.userID == 0 {
		return nil
	}
	return m.load()
}

func (m historyModel) load() tea.Cmd {
	api := m.api
	userID, load := m.userID, m.loadID
	return func() tea.Msg {
		entries, err := api.PredictionsByUser(context.Background(), userID)
		return historyLoadedMsg{load: load, entries: entries, err: err}
	}
}

func (m historyModel) Update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if len(m.table.Rows()) > 0 {
			m.table.SetHeight(m.tableHeight())
		}
		return m, nil

	case historyLoadedMsg:
		if msg.load != m.loadID {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = errorText(msg.err)
			return m, expireIfUnauthorized(msg.err)
		}
		m.err = ""
		m.entries = msg.entries
		m.table = newDataTable(report.History(m.entries), m.tableHeight())
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "r" && m.userID != 0 && !m.loading {
			m.loading = true
			m.loadID = uuid.New()
			return m, m.load()
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m historyModel) tableHeight() int {
	h := m.height - 4
	if h < 3 {
		h = 3
	}
	return h
}

func (m historyModel) View() string {
	switch {
	case m.loading:
		return "  " + dimStyle.Render(historyLoadingText) + "\n"
	case m.err != "":
		return "  " + errorStyle.Render(m.err) + "\n"
	case len(m.entries) == 0:
		return "  " + dimStyle.Render(historyEmptyText) + "\n"
	}
	return indent(m.table.View(), 2) + "\n"
}

// newDataTable builds a focused bubbles table sized to fit its content.
func newDataTable(data report.Data, height int) table.Model {
	cols := make([]table.Column, len(data.Headers))
	for i, h := range data.Headers {
		w := lipgloss.Width(h)
		for _, row := range data.Rows {
			if i < len(row) {
				w = max(w, lipgloss.Width(row[i]))
			}
		}
		cols[i] = table.Column{Title: h, Width: min(w, 32)}
	}
	rows := make([]table.Row, len(data.Rows))
	for i, r := range data.Rows {
		rows[i] = table.Row(r)
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	s := table.DefaultStyles()
	s.Header = tableHeaderStyle
	s.Selected = tableSelectedStyle
	t.SetStyles(s)
	return t
}

// tableText is the plain cell text of t, for tests and logging.
func tableText(t table.Model) string {
	var b strings.Builder
	for _, r := range t.Rows() {
		b.WriteString(strings.Join(r, " "))
		b.WriteByte('\n')
	}
	return b.String()
}
