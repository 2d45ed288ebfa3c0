package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/smartpaddy/advisor/internal/session"
	"github.com/smartpaddy/advisor/pkg/client"
	"github.com/smartpaddy/advisor/pkg/domain"
)

// fakeAPI records calls and returns canned answers.
type fakeAPI struct {
	loginResp *client.LoginResponse
	loginErr  error

	registerErr   error
	registerCalls int

	predictRes   *domain.PredictionResult
	predictErr   error
	predictCalls []domain.PredictionRequest

	users    []domain.User
	usersErr error

	history      []domain.PredictionHistoryEntry
	historyErr   error
	historyCalls []int64
}

func (f *fakeAPI) Login(_ context.Context, _, _ string) (*client.LoginResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeAPI) Register(_ context.Context, email, _ string) (*client.RegisterResponse, error) {
	f.registerCalls++
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &client.RegisterResponse{Message: "User registered"}, nil
}

func (f *fakeAPI) Predict(_ context.Context, req domain.PredictionRequest) (*domain.PredictionResult, error) {
	f.predictCalls = append(f.predictCalls, req)
	return f.predictRes, f.predictErr
}

func (f *fakeAPI) ListUsers(context.Context) ([]domain.User, error) {
	return f.users, f.usersErr
}

func (f *fakeAPI) PredictionsByUser(_ context.Context, id int64) ([]domain.PredictionHistoryEntry, error) {
	f.historyCalls = append(f.historyCalls, id)
	return f.history, f.historyErr
}

var (
	testFarmer = domain.User{ID: 4, Email: "farmer@example.com", Role: domain.RoleUser}
	testAdmin  = domain.User{ID: 1, Email: "admin@example.com", Role: domain.RoleAdmin}
)

func newTestStore(t *testing.T, user *domain.User) *session.Store {
	t.Helper()
	store := session.NewStore(session.NewMemoryBackend(), zerolog.Nop())
	if user != nil {
		if err := store.Set("jwt-token", *user); err != nil {
			t.Fatalf("store.Set: %v", err)
		}
	}
	return store
}

func newTestApp(t *testing.T, api API, user *domain.User, start string) App {
	t.Helper()
	a := NewApp(api, newTestStore(t, user), zerolog.Nop(), start)
	model, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return model.(App)
}

// collect runs cmd and any batch it expands to, returning every message.
// Commands that would block on a timer must not be passed here.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// firstOf returns the first message of type T produced by cmd.
func firstOf[T tea.Msg](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	for _, msg := range collect(cmd) {
		if m, ok := msg.(T); ok {
			return m
		}
	}
	var zero T
	t.Fatalf("expected a %T from command", zero)
	return zero
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
