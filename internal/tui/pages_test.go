package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smartpaddy/advisor/internal/predict"
	"github.com/smartpaddy/advisor/internal/report"
	"github.com/smartpaddy/advisor/pkg/client"
	"github.com/smartpaddy/advisor/pkg/domain"
)

func filledLogin(api API, email, password string) loginModel {
	m := newLoginModel(api)
	m.inputs[loginEmail].SetValue(email)
	m.inputs[loginPassword].SetValue(password)
	m.focus = loginPassword
	return m.refocus()
}

func TestLoginRequiresBothFields(t *testing.T) {
	m := filledLogin(&fakeAPI{}, "admin@example.com", "")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("expected no request with an empty password")
	}
	if m.pending {
		t.Error("expected not pending")
	}
	if !strings.Contains(m.View(), "Email and password are required") {
		t.Errorf("expected required message, got:\n%s", m.View())
	}
}

func TestLoginSubmitShowsPending(t *testing.T) {
	api := &fakeAPI{loginResp: &client.LoginResponse{AccessToken: "jwt", User: &testAdmin}}
	m := filledLogin(api, "admin@example.com", "Password123")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.pending {
		t.Fatal("expected pending after submit")
	}
	if !strings.Contains(m.View(), "Logging in...") {
		t.Errorf("expected 'Logging in...' while pending, got:\n%s", m.View())
	}

	// A second enter while pending sends nothing.
	if _, again := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); again != nil {
		t.Error("expected no second request while pending")
	}

	done := firstOf[loginDoneMsg](t, cmd)
	m, cmd = m.Update(done)
	in := firstOf[loggedInMsg](t, cmd)
	if in.token != "jwt" || in.user.Email != "admin@example.com" {
		t.Errorf("unexpected loggedInMsg: %+v", in)
	}
	if m.pending {
		t.Error("expected pending cleared")
	}
}

func TestLoginFailureShowsServerMessage(t *testing.T) {
	m := filledLogin(&fakeAPI{}, "admin@example.com", "wrong")
	m.pending = true
	m, cmd := m.Update(loginDoneMsg{page: m.id, err: &client.Error{Status: 401, Message: "Invalid email or password"}})
	if cmd != nil {
		t.Error("a failed login must not expire anything or navigate")
	}
	if !strings.Contains(m.View(), "Invalid email or password") {
		t.Errorf("expected server message, got:\n%s", m.View())
	}
}

func TestLoginCtrlRGoesToRegister(t *testing.T) {
	m := newLoginModel(&fakeAPI{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	nav := firstOf[navigateMsg](t, cmd)
	if nav.path != PathRegister {
		t.Errorf("expected navigate to %q, got %q", PathRegister, nav.path)
	}
}

func filledRegister(api API, email, password, confirm string) registerModel {
	m := newRegisterModel(api)
	m.inputs[registerEmail].SetValue(email)
	m.inputs[registerPassword].SetValue(password)
	m.inputs[registerConfirm].SetValue(confirm)
	m.focus = registerConfirm
	return m.refocus()
}

func TestRegisterPasswordMismatch(t *testing.T) {
	api := &fakeAPI{}
	m := filledRegister(api, "new@example.com", "secret1", "secret2")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("expected no request on mismatch")
	}
	if api.registerCalls != 0 {
		t.Errorf("expected no register call, got %d", api.registerCalls)
	}
	if !strings.Contains(m.View(), "Passwords do not match") {
		t.Errorf("expected mismatch message, got:\n%s", m.View())
	}
}

func TestRegisterSuccessSchedulesRedirect(t *testing.T) {
	api := &fakeAPI{}
	m := filledRegister(api, "new@example.com", "secret", "secret")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd = m.Update(firstOf[registerDoneMsg](t, cmd))

	if api.registerCalls != 1 {
		t.Errorf("expected one register call, got %d", api.registerCalls)
	}
	if !strings.Contains(m.View(), "Registration successful! Redirecting to login...") {
		t.Errorf("expected success notice, got:\n%s", m.View())
	}
	if cmd == nil {
		t.Error("expected delayed redirect command")
	}

	// Further submits are ignored once registered.
	if _, again := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); again != nil {
		t.Error("expected no request after success")
	}
}

func TestRegisterFailure(t *testing.T) {
	m := filledRegister(&fakeAPI{}, "dup@example.com", "secret", "secret")
	m, _ = m.Update(registerDoneMsg{page: m.id, err: &client.Error{Status: 400, Message: "Email already registered"}})
	if !strings.Contains(m.View(), "Email already registered") {
		t.Errorf("expected server message, got:\n%s", m.View())
	}
}

func newTestPredictModel(api *fakeAPI, values ...string) predictModel {
	m := newPredictModel(api)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	for i, v := range values {
		m.inputs[i].SetValue(v)
	}
	return m
}

func TestPredictValidationBlocksRequest(t *testing.T) {
	api := &fakeAPI{}
	m := newTestPredictModel(api, "28", "acidic", "120", "0.5", "75")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd != nil {
		t.Error("expected no request for invalid input")
	}
	if m.focus != predict.FieldSoilPH {
		t.Errorf("expected focus on soil pH, got %v", m.focus)
	}
	if !strings.Contains(m.View(), "Soil pH must be a number") {
		t.Errorf("expected validation message, got:\n%s", m.View())
	}
	if len(api.predictCalls) != 0 {
		t.Errorf("expected no predict calls, got %d", len(api.predictCalls))
	}
}

func TestPredictSuccessRendersStages(t *testing.T) {
	api := &fakeAPI{predictRes: &domain.PredictionResult{
		Numeric:    domain.Mapping{"PredictedYield_kg_ha": 4200.0},
		Text:       domain.Mapping{"PloughMethod": "Disc plough"},
		Fertilizer: domain.Mapping{"TSP_kg": 10.0, "MOP_kg": 5.0, "Urea_kg": 20.0},
	}}
	m := newTestPredictModel(api, "28", "6.5", "120", "0.5", "75")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if !m.orch.Busy() {
		t.Fatal("expected submitting state")
	}
	if !strings.Contains(m.View(), "Predicting...") {
		t.Errorf("expected spinner text while submitting, got:\n%s", m.View())
	}
	if _, again := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS}); again != nil {
		t.Error("expected submit disabled while a request is in flight")
	}

	m, _ = m.Update(firstOf[predictionDoneMsg](t, cmd))
	if len(api.predictCalls) != 1 {
		t.Fatalf("expected exactly one predict call, got %d", len(api.predictCalls))
	}
	want := domain.PredictionRequest{Temperature: 28, SoilPH: 6.5, Rainfall: 120, FieldArea: 0.5, Humidity: 75}
	if api.predictCalls[0] != want {
		t.Errorf("request = %+v, want %+v", api.predictCalls[0], want)
	}

	view := m.View()
	for _, s := range []string{
		"Land Preparation", "Harvesting & Post-harvest",
		"PloughMethod: Disc plough", "PredictedYield_kg_ha: 4200",
		"HumidityTarget_%: 75", "Fertilizer Recommendation",
		"TSP: 10 kg", "MOP: 5 kg", "Urea: 20 kg",
	} {
		if !strings.Contains(view, s) {
			t.Errorf("expected %q in result view, got:\n%s", s, view)
		}
	}
}

func TestPredictFailureShowsMessage(t *testing.T) {
	api := &fakeAPI{predictErr: &client.Error{Status: 400, Message: "Missing input key: 'humidity'"}}
	m := newTestPredictModel(api, "28", "6.5", "120", "0.5", "75")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m, next := m.Update(firstOf[predictionDoneMsg](t, cmd))
	if next != nil {
		t.Error("a 400 must not expire the session")
	}
	if !strings.Contains(m.View(), "Missing input key: 'humidity'") {
		t.Errorf("expected server message, got:\n%s", m.View())
	}
	if m.orch.Busy() {
		t.Error("expected submit re-enabled after failure")
	}
}

func TestPredictUnauthorizedExpiresSession(t *testing.T) {
	api := &fakeAPI{predictErr: &client.Error{Status: 422, Message: "Not enough segments"}}
	m := newTestPredictModel(api, "28", "6.5", "120", "0.5", "75")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	_, next := m.Update(firstOf[predictionDoneMsg](t, cmd))
	firstOf[sessionExpiredMsg](t, next)
}

func TestPredictCopy(t *testing.T) {
	var copied string
	orig := copyToClipboard
	copyToClipboard = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { copyToClipboard = orig })

	api := &fakeAPI{predictRes: &domain.PredictionResult{Numeric: domain.Mapping{"SeedAmount_kg": 40.0}}}
	m := newTestPredictModel(api, "28", "6.5", "120", "0.5", "75")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m, _ = m.Update(firstOf[predictionDoneMsg](t, cmd))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m, cmd = m.Update(keyRunes("c"))
	m, _ = m.Update(firstOf[copyResultMsg](t, cmd))

	view, _ := m.orch.View()
	if copied != report.PlainText(view) {
		t.Errorf("copied text mismatch:\n%s", copied)
	}
	if !strings.Contains(m.View(), "Recommendation copied to clipboard") {
		t.Errorf("expected copy status, got:\n%s", m.View())
	}
}

func TestPredictCopyFailure(t *testing.T) {
	m := newTestPredictModel(&fakeAPI{})
	m, _ = m.Update(copyResultMsg{err: errors.New("no clipboard utility")})
	if !strings.Contains(m.View(), "Copy failed: no clipboard utility") {
		t.Errorf("expected copy failure, got:\n%s", m.View())
	}
}

func TestHistoryUnidentifiedUser(t *testing.T) {
	api := &fakeAPI{}
	m := newHistoryModel(api, domain.User{Email: "ghost@example.com", Role: domain.RoleUser})
	if cmd := m.Init(); cmd != nil {
		t.Error("expected no request without a user id")
	}
	if !strings.Contains(m.View(), "User not identified") {
		t.Errorf("expected unidentified message, got:\n%s", m.View())
	}
}

func TestHistoryLoadStates(t *testing.T) {
	yield := 4200.0
	api := &fakeAPI{history: []domain.PredictionHistoryEntry{
		{ID: 9, Temperature: 28, SoilPH: 6.5, Rainfall: 120, FieldArea: 0.5, PredictedYield: &yield},
	}}
	m := newHistoryModel(api, testFarmer)
	if !strings.Contains(m.View(), "Loading your prediction history...") {
		t.Errorf("expected loading text, got:\n%s", m.View())
	}

	m, _ = m.Update(firstOf[historyLoadedMsg](t, m.Init()))
	if len(api.historyCalls) != 1 || api.historyCalls[0] != testFarmer.ID {
		t.Errorf("expected one call for user %d, got %v", testFarmer.ID, api.historyCalls)
	}
	rows := tableText(m.table)
	if !strings.Contains(rows, "4200") || !strings.Contains(rows, "N/A") {
		t.Errorf("expected yield and N/A cells, got:\n%s", rows)
	}
}

func TestHistoryEmptyAndError(t *testing.T) {
	m := newHistoryModel(&fakeAPI{}, testFarmer)
	m, _ = m.Update(historyLoadedMsg{load: m.loadID, entries: []domain.PredictionHistoryEntry{}})
	if !strings.Contains(m.View(), "No predictions found yet.") {
		t.Errorf("expected empty text, got:\n%s", m.View())
	}

	m = newHistoryModel(&fakeAPI{}, testFarmer)
	m, _ = m.Update(historyLoadedMsg{load: m.loadID, err: &client.Error{Status: 200, Message: "Unexpected response format"}})
	if !strings.Contains(m.View(), "Unexpected response format") {
		t.Errorf("expected shape error, got:\n%s", m.View())
	}
}

func TestPortalHistoryTabLoadsOnOpen(t *testing.T) {
	api := &fakeAPI{history: []domain.PredictionHistoryEntry{}}
	m := newPortalModel(api, testFarmer)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m, cmd := m.Update(keyRunes("2"))
	if m.tab != tabHistory {
		t.Fatalf("expected history tab, got %d", m.tab)
	}
	m, _ = m.Update(firstOf[historyLoadedMsg](t, cmd))
	if !strings.Contains(m.View(), "No predictions found yet.") {
		t.Errorf("expected empty history, got:\n%s", m.View())
	}

	// Re-opening fetches again.
	m, _ = m.Update(keyRunes("1"))
	_, cmd = m.Update(keyRunes("2"))
	firstOf[historyLoadedMsg](t, cmd)
	if len(api.historyCalls) != 2 {
		t.Errorf("expected two history calls, got %d", len(api.historyCalls))
	}
}

func TestPortalSpinnerKeepsTurningOnHistoryTab(t *testing.T) {
	m := newPortalModel(&fakeAPI{history: []domain.PredictionHistoryEntry{}}, testFarmer)
	for i, v := range []string{"28", "6.5", "120", "0.5", "75"} {
		m.form.inputs[i].SetValue(v)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if !m.form.orch.Busy() {
		t.Fatal("expected prediction in flight")
	}

	m.form.editing = false
	m, _ = m.Update(keyRunes("2"))
	if m.tab != tabHistory {
		t.Fatalf("expected history tab, got %d", m.tab)
	}

	tick, ok := m.form.spinner.Tick().(spinner.TickMsg)
	if !ok {
		t.Fatal("expected a spinner tick")
	}
	if _, cmd := m.Update(tick); cmd == nil {
		t.Error("expected the form spinner to schedule its next frame")
	}
}

func TestPortalDigitsTypeWhileEditing(t *testing.T) {
	m := newPortalModel(&fakeAPI{}, testFarmer)
	m, _ = m.Update(keyRunes("2"))
	if m.tab != tabPredict {
		t.Error("expected digit to go to the form while editing")
	}
	if got := m.form.inputs[predict.FieldTemperature].Value(); got != "2" {
		t.Errorf("expected '2' in temperature, got %q", got)
	}
}

func TestAdminUsers(t *testing.T) {
	api := &fakeAPI{users: []domain.User{testAdmin, testFarmer}}
	m := newAdminModel(api, testAdmin)
	m, _ = m.Update(firstOf[usersLoadedMsg](t, m.Init()))

	rows := tableText(m.table)
	if !strings.Contains(rows, "farmer@example.com") || !strings.Contains(rows, "admin") {
		t.Errorf("expected user rows, got:\n%s", rows)
	}
}

func TestAdminEmptyAndPlaceholders(t *testing.T) {
	m := newAdminModel(&fakeAPI{}, testAdmin)
	m, _ = m.Update(usersLoadedMsg{load: m.loadID, users: []domain.User{}})
	if !strings.Contains(m.View(), "No users found.") {
		t.Errorf("expected empty users text, got:\n%s", m.View())
	}

	m, _ = m.Update(keyRunes("2"))
	if !strings.Contains(m.View(), "Prediction logs coming soon...") {
		t.Errorf("expected logs placeholder, got:\n%s", m.View())
	}
	m, _ = m.Update(keyRunes("3"))
	if !strings.Contains(m.View(), "Settings coming soon...") {
		t.Errorf("expected settings placeholder, got:\n%s", m.View())
	}
}
