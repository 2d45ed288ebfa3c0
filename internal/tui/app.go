package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/smartpaddy/advisor/internal/session"
	"github.com/smartpaddy/advisor/pkg/client"
	"github.com/smartpaddy/advisor/pkg/domain"
)

// API is the advisory service as the pages use it.
type API interface {
	Login(ctx context.Context, email, password string) (*client.LoginResponse, error)
	Register(ctx context.Context, email, password string) (*client.RegisterResponse, error)
	Predict(ctx context.Context, req domain.PredictionRequest) (*domain.PredictionResult, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	PredictionsByUser(ctx context.Context, userID int64) ([]domain.PredictionHistoryEntry, error)
}

// navigateMsg asks the app to show another route. The guard runs on every
// navigation, so the route shown may differ from path.
type navigateMsg struct {
	path string
}

// loggedInMsg carries a successful login to the app, which owns the session.
type loggedInMsg struct {
	token string
	user  domain.User
}

type logoutMsg struct{}

// sessionExpiredMsg is sent by any page whose call came back unauthorized.
type sessionExpiredMsg struct{}

const expiredNotice = "Your session has expired. Please log in again."

// App is the root Bubbletea model. It owns the session and the current route
// and mounts a fresh page model on every navigation.
type App struct {
	api    API
	store  *session.Store
	logger zerolog.Logger

	path     string
	login    loginModel
	register registerModel
	portal   portalModel
	admin    adminModel

	width  int
	height int
	frame  int // logo shimmer animation frame
}

// NewApp creates the TUI application and mounts start, which is resolved
// through the route guard like any other navigation.
func NewApp(api API, store *session.Store, logger zerolog.Logger, start string) App {
	a := App{api: api, store: store, logger: logger}
	a.mount(start)
	return a
}

// Path is the route currently shown.
func (a App) Path() string { return a.path }

func (a App) Init() tea.Cmd {
	return tea.Batch(shimmerTickCmd(), a.pageInit())
}

// mount resolves path against the current session and builds a fresh model
// for the resulting page. Whatever page was shown before is dropped along
// with any outcome it was waiting for.
func (a *App) mount(path string) {
	s := a.store.Current()
	target := Resolve(path, s)
	if target != path {
		a.logger.Info().Str("requested", path).Str("redirect", target).Msg("navigation redirected")
	} else {
		a.logger.Debug().Str("route", target).Msg("navigate")
	}

	if a.path == PathUser {
		a.portal.detach()
	}
	a.path = target

	switch target {
	case PathLogin:
		a.login = newLoginModel(a.api)
	case PathRegister:
		a.register = newRegisterModel(a.api)
	case PathUser:
		a.portal = newPortalModel(a.api, *s.User)
	case PathAdmin:
		a.admin = newAdminModel(a.api, *s.User)
	}

	if a.width > 0 {
		a.forwardSize()
	}
}

func (a App) navigate(path string) (App, tea.Cmd) {
	a.mount(path)
	return a, a.pageInit()
}

func (a App) pageInit() tea.Cmd {
	switch a.path {
	case PathLogin:
		return a.login.Init()
	case PathRegister:
		return a.register.Init()
	case PathUser:
		return a.portal.Init()
	case PathAdmin:
		return a.admin.Init()
	}
	return nil
}

// forwardSize passes the body area to the mounted page.
func (a *App) forwardSize() {
	// Chrome: header(2) + blank(1) + help(1)
	body := tea.WindowSizeMsg{Width: a.width, Height: a.height - 4}
	switch a.path {
	case PathLogin:
		a.login, _ = a.login.Update(body)
	case PathRegister:
		a.register, _ = a.register.Update(body)
	case PathUser:
		a.portal, _ = a.portal.Update(body)
	case PathAdmin:
		a.admin, _ = a.admin.Update(body)
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.forwardSize()
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case navigateMsg:
		return a.navigate(msg.path)

	case registerRedirectMsg:
		// The register page it was meant for is gone.
		if a.path != PathRegister {
			return a, nil
		}

	case loggedInMsg:
		if err := a.store.Set(msg.token, msg.user); err != nil {
			a.logger.Error().Err(err).Msg("saving session failed")
			a.login.pending = false
			a.login.err = "Could not save session"
			return a, nil
		}
		a.logger.Info().Str("email", msg.user.Email).Str("role", string(msg.user.Role)).Msg("logged in")
		return a.navigate(HomeFor(&msg.user))

	case logoutMsg:
		a.clearSession()
		return a.navigate(PathLogin)

	case sessionExpiredMsg:
		a.logger.Warn().Str("route", a.path).Msg("session rejected by server")
		a.clearSession()
		a, cmd := a.navigate(PathLogin)
		a.login.flash = expiredNotice
		return a, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if !a.isEditing() {
				return a, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	switch a.path {
	case PathLogin:
		a.login, cmd = a.login.Update(msg)
	case PathRegister:
		a.register, cmd = a.register.Update(msg)
	case PathUser:
		a.portal, cmd = a.portal.Update(msg)
	case PathAdmin:
		a.admin, cmd = a.admin.Update(msg)
	}
	return a, cmd
}

func (a *App) clearSession() {
	if err := a.store.Clear(); err != nil {
		a.logger.Error().Err(err).Msg("clearing session failed")
	}
}

// isEditing reports whether keystrokes belong to a text input.
func (a App) isEditing() bool {
	switch a.path {
	case PathLogin, PathRegister:
		return true
	case PathUser:
		return a.portal.editing()
	}
	return false
}

func (a App) View() string {
	header := centered(renderShimmerLogo(a.frame), a.width)

	var sub, body, help string
	switch a.path {
	case PathLogin:
		sub = dimStyle.Render("Login")
		body = a.login.View()
		help = a.login.helpKeys()
	case PathRegister:
		sub = dimStyle.Render("Register")
		body = a.register.View()
		help = a.register.helpKeys()
	case PathUser:
		sub = normalStyle.Render("Welcome, ") + selectedStyle.Render(a.portal.user.Email)
		body = a.portal.View()
		help = a.portal.helpKeys()
	case PathAdmin:
		sub = goldStyle.Render("Admin: ") + selectedStyle.Render(a.admin.user.Email)
		body = a.admin.View()
		help = a.admin.helpKeys()
	}
	header += "\n" + centered(sub, a.width)

	chrome := 4
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n\n%s\n %s", header, body, help)
}
