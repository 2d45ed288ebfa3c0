package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smartpaddy/advisor/pkg/domain"
)

const (
	tabPredict = iota
	tabHistory
)

var portalTabs = []string{"Make Prediction", "Prediction History"}

// portalModel is the farmer's home: the prediction form and their history.
type portalModel struct {
	api     API
	user    domain.User
	tab     int
	form    predictModel
	history historyModel
	width   int
	height  int
}

func newPortalModel(api API, user domain.User) portalModel {
	return portalModel{
		api:  api,
		user: user,
		form: newPredictModel(api),
	}
}

func (m portalModel) Init() tea.Cmd {
	return m.form.Init()
}

// detach drops anything the mounted tabs were waiting for.
func (m *portalModel) detach() {
	m.form.detach()
}

func (m portalModel) editing() bool {
	return m.tab == tabPredict && m.form.editing
}

func (m portalModel) Update(msg tea.Msg) (portalModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		body := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 2}
		m.form, _ = m.form.Update(body)
		m.history, _ = m.history.Update(body)
		return m, nil

	case historyLoadedMsg:
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		return m, cmd

	case predictionDoneMsg, copyResultMsg, spinner.TickMsg:
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if !m.editing() {
			switch msg.String() {
			case "1":
				return m.switchTab(tabPredict)
			case "2":
				return m.switchTab(tabHistory)
			case "L":
				return m, func() tea.Msg { return logoutMsg{} }
			}
		}
	}

	var cmd tea.Cmd
	switch m.tab {
	case tabPredict:
		m.form, cmd = m.form.Update(msg)
	case tabHistory:
		m.history, cmd = m.history.Update(msg)
	}
	return m, cmd
}

// switchTab mounts the history list afresh each time it is opened.
func (m portalModel) switchTab(tab int) (portalModel, tea.Cmd) {
	if tab == m.tab {
		return m, nil
	}
	m.tab = tab
	if tab == tabHistory {
		m.history = newHistoryModel(m.api, m.user)
		m.history, _ = m.history.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height - 2})
		return m, m.history.Init()
	}
	return m, nil
}

func (m portalModel) View() string {
	body := m.form.View()
	if m.tab == tabHistory {
		body = m.history.View()
	}
	return "  " + tabBar(portalTabs, m.tab) + "\n\n" + body
}

func (m portalModel) helpKeys() string {
	if m.tab == tabPredict {
		return m.form.helpKeys()
	}
	return helpEntry("1-2", "tabs") + "  " + helpEntry("j/k", "scroll") + "  " + helpEntry("r", "refresh") + "  " + helpEntry("L", "logout") + "  " + helpEntry("q", "quit")
}
