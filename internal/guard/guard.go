// Package guard decides whether a protected view may be entered.
package guard

import "github.com/smartpaddy/advisor/pkg/domain"

// LoginPath is where every denied navigation is sent.
const LoginPath = "/login"

// Decision is the outcome of a guard evaluation: either Admit, or a
// redirect to RedirectTo.
type Decision struct {
	RedirectTo string
}

// Admitted reports whether the navigation may proceed.
func (d Decision) Admitted() bool {
	return d.RedirectTo == ""
}

// Admit is the decision that lets a navigation through.
var Admit = Decision{}

// SessionReader is the read side of the session store.
type SessionReader interface {
	Current() domain.Session
}

// Decide evaluates one navigation. required == "" means any authenticated
// session is enough. A role mismatch goes to the login view as well; there
// is no separate forbidden state.
func Decide(s domain.Session, required domain.Role) Decision {
	if !s.Authenticated() {
		return Decision{RedirectTo: LoginPath}
	}
	if required != "" && s.User.Role != required {
		return Decision{RedirectTo: LoginPath}
	}
	return Admit
}

// Check reads the session fresh from r and decides.
func Check(r SessionReader, required domain.Role) Decision {
	return Decide(r.Current(), required)
}
