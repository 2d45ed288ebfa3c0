package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/smartpaddy/advisor/internal/report"
	"github.com/smartpaddy/advisor/pkg/domain"
)

type usersLoadedMsg struct {
	load  uuid.UUID
	users []domain.User
	err   error
}

const (
	adminTabUsers = iota
	adminTabLogs
	adminTabSettings
)

var adminTabs = []string{"Manage Users", "Prediction Logs", "Settings"}

const (
	usersEmptyText   = "No users found."
	logsPendingText  = "Prediction logs coming soon..."
	settingsPendText = "Settings coming soon..."
)

type adminModel struct {
	api     API
	user    domain.User
	tab     int
	loadID  uuid.UUID
	loading bool
	err     string
	users   []domain.User
	table   table.Model
	width   int
	height  int
}

func newAdminModel(api API, user domain.User) adminModel {
	return adminModel{api: api, user: user, loadID: uuid.New(), loading: true, height: 12}
}

func (m adminModel) Init() tea.Cmd {
	return m.load()
}

func (m adminModel) load() tea.Cmd {
	api, load := m.api, m.loadID
	return func() tea.Msg {
		users, err := api.ListUsers(context.Background())
		return usersLoadedMsg{load: load, users: users, err: err}
	}
}

func (m adminModel) Update(msg tea.Msg) (adminModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if len(m.table.Rows()) > 0 {
			m.table.SetHeight(m.tableHeight())
		}
		return m, nil

	case usersLoadedMsg:
		if msg.load != m.loadID {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = errorText(msg.err)
			return m, expireIfUnauthorized(msg.err)
		}
		m.err = ""
		m.users = msg.users
		m.table = newDataTable(report.Users(m.users), m.tableHeight())
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "1":
			m.tab = adminTabUsers
			return m, nil
		case "2":
			m.tab = adminTabLogs
			return m, nil
		case "3":
			m.tab = adminTabSettings
			return m, nil
		case "L":
			return m, func() tea.Msg { return logoutMsg{} }
		case "r":
			if m.tab == adminTabUsers && !m.loading {
				m.loading = true
				m.loadID = uuid.New()
				return m, m.load()
			}
			return m, nil
		}
		if m.tab == adminTabUsers {
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m adminModel) tableHeight() int {
	h := m.height - 6
	if h < 3 {
		h = 3
	}
	return h
}

func (m adminModel) View() string {
	head := "  " + tabBar(adminTabs, m.tab) + "\n\n"
	switch m.tab {
	case adminTabLogs:
		return head + "  " + dimStyle.Render(logsPendingText) + "\n"
	case adminTabSettings:
		return head + "  " + dimStyle.Render(settingsPendText) + "\n"
	}

	switch {
	case m.loading:
		return head + "  " + dimStyle.Render("Loading users...") + "\n"
	case m.err != "":
		return head + "  " + errorStyle.Render(m.err) + "\n"
	case len(m.users) == 0:
		return head + "  " + dimStyle.Render(usersEmptyText) + "\n"
	}
	return head + "  " + sectionHeaderStyle.Render("Registered Users") + "\n" + indent(m.table.View(), 2) + "\n"
}

func (m adminModel) helpKeys() string {
	return helpEntry("1-3", "tabs") + "  " + helpEntry("j/k", "scroll") + "  " + helpEntry("r", "refresh") + "  " + helpEntry("L", "logout") + "  " + helpEntry("q", "quit")
}
