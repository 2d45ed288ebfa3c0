package domain

// Session is the authenticated identity held by the client.
// A zero Session is the unauthenticated state.
type Session struct {
	Token string `json:"-"`
	User  *User  `json:"user,omitempty"`
}

// Authenticated reports whether both the token and the user are present.
// A session never carries one without the other.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// Role returns the session user's role, or "" when unauthenticated.
func (s Session) Role() Role {
	if !s.Authenticated() {
		return ""
	}
	return s.User.Role
}
