// Package session holds the process-wide authenticated identity and its
// persisted copy.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/smartpaddy/advisor/pkg/domain"
)

// Storage keys for the two halves of a session.
const (
	TokenKey = "token"
	UserKey  = "user.json"
)

// ErrIncomplete is returned by Set when the token is empty.
var ErrIncomplete = errors.New("session: token and user are both required")

// ErrInvalidRole is returned by Set for a user Load would refuse to restore.
var ErrInvalidRole = errors.New("session: user has no valid role")

// Store is the single source of session state. Readers get snapshots and
// never observe a token without its user.
type Store struct {
	backend Backend
	logger  zerolog.Logger

	mu  sync.RWMutex
	cur domain.Session
}

// NewStore returns an empty Store over backend. Call Load to read the
// persisted session.
func NewStore(backend Backend, logger zerolog.Logger) *Store {
	return &Store{backend: backend, logger: logger}
}

// Load reads the persisted session into memory and returns it. Missing or
// malformed data yields an empty session.
func (s *Store) Load() domain.Session {
	sess := s.read()
	s.mu.Lock()
	s.cur = sess
	s.mu.Unlock()
	return copySession(sess)
}

func (s *Store) read() domain.Session {
	rawToken, tokErr := s.backend.Get(TokenKey)
	rawUser, userErr := s.backend.Get(UserKey)
	if errors.Is(tokErr, ErrNotFound) && errors.Is(userErr, ErrNotFound) {
		return domain.Session{}
	}
	if tokErr != nil || userErr != nil {
		s.logger.Warn().AnErr("token_err", tokErr).AnErr("user_err", userErr).Msg("persisted session unreadable, starting logged out")
		return domain.Session{}
	}

	token := strings.TrimSpace(string(rawToken))
	var user domain.User
	if err := json.Unmarshal(rawUser, &user); err != nil {
		s.logger.Warn().Err(err).Msg("persisted user is corrupt, starting logged out")
		return domain.Session{}
	}
	if token == "" || !user.Role.Valid() {
		s.logger.Warn().Bool("token", token != "").Str("role", string(user.Role)).Msg("persisted session incomplete, starting logged out")
		return domain.Session{}
	}
	return domain.Session{Token: token, User: &user}
}

// Set persists token and user and then publishes them together.
func (s *Store) Set(token string, user domain.User) error {
	if token == "" {
		return ErrIncomplete
	}
	if !user.Role.Valid() {
		return ErrInvalidRole
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session.Set: encode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Put(UserKey, data); err != nil {
		return fmt.Errorf("session.Set: %w", err)
	}
	if err := s.backend.Put(TokenKey, []byte(token)); err != nil {
		s.backend.Delete(UserKey) //nolint:errcheck // best-effort rollback
		return fmt.Errorf("session.Set: %w", err)
	}
	s.cur = domain.Session{Token: token, User: &user}
	s.logger.Debug().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("session stored")
	return nil
}

// Clear drops the session from memory and storage. Clearing an empty
// session is a no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = domain.Session{}
	err := errors.Join(s.backend.Delete(TokenKey), s.backend.Delete(UserKey))
	if err != nil {
		return fmt.Errorf("session.Clear: %w", err)
	}
	s.logger.Debug().Msg("session cleared")
	return nil
}

// Current returns a snapshot of the in-memory session.
func (s *Store) Current() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySession(s.cur)
}

// Token returns the current token, making Store a client.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.Token
}

func copySession(in domain.Session) domain.Session {
	if in.User == nil {
		return in
	}
	u := *in.User
	return domain.Session{Token: in.Token, User: &u}
}
