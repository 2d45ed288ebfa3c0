package tui

import (
	"github.com/smartpaddy/advisor/internal/guard"
	"github.com/smartpaddy/advisor/pkg/domain"
)

// Route paths.
const (
	PathLogin    = guard.LoginPath
	PathRegister = "/register"
	PathUser     = "/user"
	PathAdmin    = "/admin"
)

type route struct {
	open     bool
	required domain.Role // "" = any authenticated role
}

var routes = map[string]route{
	PathLogin:    {open: true},
	PathRegister: {open: true},
	PathUser:     {},
	PathAdmin:    {required: domain.RoleAdmin},
}

// Resolve returns the path that is actually shown when path is requested
// with session s. The root and unknown paths go to the login view; protected
// paths go through the guard.
func Resolve(path string, s domain.Session) string {
	r, ok := routes[path]
	if !ok {
		return PathLogin
	}
	if r.open {
		return path
	}
	if d := guard.Decide(s, r.required); !d.Admitted() {
		return d.RedirectTo
	}
	return path
}

// HomeFor is the portal a freshly logged-in user lands on.
func HomeFor(u *domain.User) string {
	if u != nil && u.IsAdmin() {
		return PathAdmin
	}
	return PathUser
}
