package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartpaddy/advisor/pkg/domain"
)

// DefaultBaseURL is the local advisory service.
const DefaultBaseURL = "http://127.0.0.1:5000"

// Fallback messages used when a failed response carries no error field.
const (
	msgLoginFailed    = "Login failed"
	msgRegisterFailed = "Registration failed"
	msgPredictFailed  = "Prediction failed"
	msgHistoryFailed  = "Failed to load predictions."
	msgUsersFailed    = "Failed to load users"
	msgMeFailed       = "Failed to load account"
	msgUnexpected     = "Unexpected response format"
)

// TokenSource yields the current session token, or "" when there is none.
// It is consulted on every request.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource with a fixed value.
type StaticToken string

// Token returns the fixed token.
func (t StaticToken) Token() string { return string(t) }

// Credentials is the payload for login and register.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the successful /auth/login body.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	User        *domain.User `json:"user"`
}

// RegisterResponse is the successful /auth/register body. Either field may be set.
type RegisterResponse struct {
	Message string       `json:"message,omitempty"`
	User    *domain.User `json:"user,omitempty"`
}

// Client is the advisory service API client.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a new API client. tokens may be nil for a client that only
// logs in or registers.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	c := &Client{
		baseURL: baseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges credentials for an access token and the account identity.
// The caller decides whether to persist the result.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.doRequest(ctx, http.MethodPost, "/auth/login", Credentials{email, password}, &resp, msgLoginFailed, false); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	if resp.AccessToken == "" || resp.User == nil || !resp.User.Role.Valid() {
		return nil, fmt.Errorf("client.Login: %w", &Error{Status: http.StatusOK, Message: msgLoginFailed})
	}
	return &resp, nil
}

// Register creates a new account. It does not log in.
func (c *Client) Register(ctx context.Context, email, password string) (*RegisterResponse, error) {
	var resp RegisterResponse
	if err := c.doRequest(ctx, http.MethodPost, "/auth/register", Credentials{email, password}, &resp, msgRegisterFailed, false); err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	return &resp, nil
}

// Me returns the account behind the current token.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var resp struct {
		User *domain.User `json:"user"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/auth/me", nil, &resp, msgMeFailed, true); err != nil {
		return nil, fmt.Errorf("client.Me: %w", err)
	}
	if resp.User == nil {
		return nil, fmt.Errorf("client.Me: %w", &Error{Status: http.StatusOK, Message: msgUnexpected})
	}
	return resp.User, nil
}

// Predict submits field measurements and returns the staged recommendation.
func (c *Client) Predict(ctx context.Context, req domain.PredictionRequest) (*domain.PredictionResult, error) {
	var result domain.PredictionResult
	if err := c.doRequest(ctx, http.MethodPost, "/predict", req, &result, msgPredictFailed, true); err != nil {
		return nil, fmt.Errorf("client.Predict: %w", err)
	}
	return &result, nil
}

// ListUsers returns every account. Admin only.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var resp struct {
		Users []domain.User `json:"users"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/admin/users", nil, &resp, msgUsersFailed, true); err != nil {
		return nil, fmt.Errorf("client.ListUsers: %w", err)
	}
	if resp.Users == nil {
		return []domain.User{}, nil
	}
	return resp.Users, nil
}

// PredictionsByUser returns a user's past predictions in server order.
// The endpoint may answer 2xx with an {"error": ...} object; that is
// reported as an Error too.
func (c *Client) PredictionsByUser(ctx context.Context, userID int64) ([]domain.PredictionHistoryEntry, error) {
	var raw json.RawMessage
	path := "/api/predictions_by_user/" + strconv.FormatInt(userID, 10)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &raw, msgHistoryFailed, true); err != nil {
		return nil, fmt.Errorf("client.PredictionsByUser: %w", err)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var entries []domain.PredictionHistoryEntry
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("client.PredictionsByUser: %w", &Error{Status: http.StatusOK, Message: msgUnexpected})
		}
		return entries, nil
	}
	var apiErr struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
		return nil, fmt.Errorf("client.PredictionsByUser: %w", &Error{Status: http.StatusOK, Message: apiErr.Error})
	}
	return nil, fmt.Errorf("client.PredictionsByUser: %w", &Error{Status: http.StatusOK, Message: msgUnexpected})
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any, fallback string, auth bool) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	if auth {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Str("request_id", reqID).Msg("request failed")
		return &Error{Message: NetworkErrorMessage, cause: err}
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Str("request_id", reqID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request")

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &Error{Status: resp.StatusCode, Message: fallback}
		}
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return &Error{Status: resp.StatusCode, Message: apiErr.Error}
		}
		return &Error{Status: resp.StatusCode, Message: fallback}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.logger.Debug().Err(err).Str("path", path).Msg("decode response")
			return &Error{Status: resp.StatusCode, Message: fallback, cause: err}
		}
	}
	return nil
}
