package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/smartpaddy/advisor/pkg/client"
)

type registerDoneMsg struct {
	page uuid.UUID
	resp *client.RegisterResponse
	err  error
}

// registerRedirectMsg fires once the success notice has been shown. Only the
// register page that scheduled it acts on it.
type registerRedirectMsg struct {
	page uuid.UUID
}

const (
	registeredNotice = "Registration successful! Redirecting to login..."
	mismatchNotice   = "Passwords do not match"

	// registerRedirectDelay is how long the success notice stays up.
	registerRedirectDelay = 2 * time.Second
)

const (
	registerEmail = iota
	registerPassword
	registerConfirm
	numRegisterInputs
)

type registerModel struct {
	api     API
	id      uuid.UUID
	inputs  [numRegisterInputs]textinput.Model
	focus   int
	pending bool
	done    bool
	err     string
	success string
	width   int
}

func newRegisterModel(api API) registerModel {
	m := registerModel{api: api, id: uuid.New()}
	m.inputs[registerEmail] = newCredentialInput("you@example.com", false)
	m.inputs[registerPassword] = newCredentialInput("password", true)
	m.inputs[registerConfirm] = newCredentialInput("confirm password", true)
	m.inputs[registerEmail].Focus()
	return m
}

func (m registerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m registerModel) Update(msg tea.Msg) (registerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case registerDoneMsg:
		if msg.page != m.id {
			return m, nil
		}
		m.pending = false
		if msg.err != nil {
			m.err = errorText(msg.err)
			return m, nil
		}
		m.done = true
		m.success = registeredNotice
		page := m.id
		return m, tea.Tick(registerRedirectDelay, func(time.Time) tea.Msg {
			return registerRedirectMsg{page: page}
		})

	case registerRedirectMsg:
		if msg.page != m.id {
			return m, nil
		}
		return m, navigateTo(PathLogin)

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+l":
			return m, navigateTo(PathLogin)
		case "tab", "down":
			m.focus = (m.focus + 1) % numRegisterInputs
			return m.refocus(), nil
		case "shift+tab", "up":
			m.focus = (m.focus - 1 + numRegisterInputs) % numRegisterInputs
			return m.refocus(), nil
		case "enter":
			if m.focus < registerConfirm {
				m.focus++
				return m.refocus(), nil
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m registerModel) refocus() registerModel {
	for i := range m.inputs {
		if i == m.focus {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return m
}

func (m registerModel) submit() (registerModel, tea.Cmd) {
	if m.pending || m.done {
		return m, nil
	}
	m.err = ""
	email := strings.TrimSpace(m.inputs[registerEmail].Value())
	password := m.inputs[registerPassword].Value()
	if email == "" || password == "" {
		m.err = "Email and password are required"
		return m, nil
	}
	if password != m.inputs[registerConfirm].Value() {
		m.err = mismatchNotice
		return m, nil
	}

	m.pending = true
	api, page := m.api, m.id
	return m, func() tea.Msg {
		resp, err := api.Register(context.Background(), email, password)
		return registerDoneMsg{page: page, resp: resp, err: err}
	}
}

func (m registerModel) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render("Email"), m.inputs[registerEmail].View())
	fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render("Password"), m.inputs[registerPassword].View())
	fmt.Fprintf(&b, "  %s %s\n\n", labelStyle.Render("Confirm password"), m.inputs[registerConfirm].View())

	if m.pending {
		b.WriteString("  " + buttonDisabledStyle.Render("Registering...") + "\n")
	} else {
		b.WriteString("  " + buttonStyle.Render("Register") + "\n")
	}
	if m.err != "" {
		b.WriteString("\n  " + errorStyle.Render(m.err) + "\n")
	}
	if m.success != "" {
		b.WriteString("\n  " + successStyle.Render(m.success) + "\n")
	}
	b.WriteString("\n  " + dimStyle.Render("Already have an account? ") + accentStyle.Render("esc") + dimStyle.Render(" to login") + "\n")
	return b.String()
}

func (m registerModel) helpKeys() string {
	return helpEntry("tab", "next") + "  " + helpEntry("enter", "register") + "  " + helpEntry("esc", "login") + "  " + helpEntry("ctrl+c", "quit")
}
