package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/smartpaddy/advisor/pkg/client"
)

type loginDoneMsg struct {
	page uuid.UUID
	resp *client.LoginResponse
	err  error
}

const (
	loginEmail = iota
	loginPassword
	numLoginInputs
)

type loginModel struct {
	api     API
	id      uuid.UUID // this mount of the page
	inputs  [numLoginInputs]textinput.Model
	focus   int
	pending bool
	err     string
	flash   string // notice carried over from a redirect
	width   int
}

func newCredentialInput(placeholder string, masked bool) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = 254
	ti.Width = 32
	ti.PlaceholderStyle = inputPlaceholderStyle
	if masked {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return ti
}

func newLoginModel(api API) loginModel {
	m := loginModel{api: api, id: uuid.New()}
	m.inputs[loginEmail] = newCredentialInput("admin@example.com", false)
	m.inputs[loginPassword] = newCredentialInput("password", true)
	m.inputs[loginEmail].Focus()
	return m
}

func (m loginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case loginDoneMsg:
		if msg.page != m.id {
			return m, nil
		}
		m.pending = false
		if msg.err != nil {
			m.err = errorText(msg.err)
			return m, nil
		}
		resp := msg.resp
		return m, func() tea.Msg {
			return loggedInMsg{token: resp.AccessToken, user: *resp.User}
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+r":
			return m, navigateTo(PathRegister)
		case "tab", "down", "shift+tab", "up":
			m.focus = (m.focus + 1) % numLoginInputs
			return m.refocus(), nil
		case "enter":
			if m.focus == loginEmail {
				m.focus = loginPassword
				return m.refocus(), nil
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m loginModel) refocus() loginModel {
	for i := range m.inputs {
		if i == m.focus {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return m
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	if m.pending {
		return m, nil
	}
	email := strings.TrimSpace(m.inputs[loginEmail].Value())
	password := m.inputs[loginPassword].Value()
	if email == "" || password == "" {
		m.err = "Email and password are required"
		return m, nil
	}

	m.pending = true
	m.err = ""
	m.flash = ""
	api, page := m.api, m.id
	return m, func() tea.Msg {
		resp, err := api.Login(context.Background(), email, password)
		return loginDoneMsg{page: page, resp: resp, err: err}
	}
}

func (m loginModel) View() string {
	var b strings.Builder
	if m.flash != "" {
		b.WriteString("  " + goldStyle.Render(m.flash) + "\n\n")
	}
	fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render("Email"), m.inputs[loginEmail].View())
	fmt.Fprintf(&b, "  %s %s\n\n", labelStyle.Render("Password"), m.inputs[loginPassword].View())

	if m.pending {
		b.WriteString("  " + buttonDisabledStyle.Render("Logging in...") + "\n")
	} else {
		b.WriteString("  " + buttonStyle.Render("Login") + "\n")
	}
	if m.err != "" {
		b.WriteString("\n  " + errorStyle.Render(m.err) + "\n")
	}
	b.WriteString("\n  " + dimStyle.Render("Don't have an account? ") + accentStyle.Render("ctrl+r") + dimStyle.Render(" to register") + "\n")
	return b.String()
}

func (m loginModel) helpKeys() string {
	return helpEntry("tab", "next") + "  " + helpEntry("enter", "login") + "  " + helpEntry("ctrl+r", "register") + "  " + helpEntry("ctrl+c", "quit")
}
