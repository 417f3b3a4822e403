// Package backend wraps the marketplace backend REST API. The backend is
// the source of truth for accounts, matching and dashboards; this client
// only shapes requests and decodes the {user, token} and {"message": ...}
// envelopes it speaks.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talentbridge/gateway/internal/core/domain"
	"github.com/talentbridge/gateway/internal/core/ports"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Config captures the settings for reaching the backend.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client implements ports.BackendClient over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ ports.BackendClient = (*Client)(nil)

// NewClient builds a Client. When httpClient is nil a default client with
// cfg.Timeout is used.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: cfg.BaseURL, http: httpClient}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"user_type"`
}

type authEnvelope struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// Login calls POST /login.
func (c *Client) Login(ctx context.Context, creds ports.Credentials) (*ports.AuthResult, error) {
	var out authEnvelope
	err := c.do(ctx, http.MethodPost, "/login", "", loginRequest{
		Email:    creds.Email,
		Password: creds.Password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{User: out.User, Token: out.Token}, nil
}

// Register calls POST /register.
func (c *Client) Register(ctx context.Context, reg ports.Registration) (*ports.AuthResult, error) {
	var out authEnvelope
	err := c.do(ctx, http.MethodPost, "/register", "", registerRequest{
		Name:     reg.Name,
		Email:    reg.Email,
		Password: reg.Password,
		UserType: string(reg.UserType),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{User: out.User, Token: out.Token}, nil
}

// Logout calls POST /logout. Callers treat failures as best effort.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/logout", token, nil, nil)
}

// CurrentUser calls GET /me with the stored token; a non-2xx answer means
// the token is no longer honoured.
func (c *Client) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	var envelope struct {
		User *domain.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/me", token, nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.User == nil {
		return nil, &domain.APIError{Status: http.StatusBadGateway, Message: "backend returned no user record"}
	}
	return envelope.User, nil
}

// Dashboard calls GET /{role}/dashboard.
func (c *Client) Dashboard(ctx context.Context, token string, role domain.Role) (domain.DashboardPayload, error) {
	if !role.Valid() {
		return nil, domain.ErrUnknownRole
	}
	var payload domain.DashboardPayload
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/%s/dashboard", role), token, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// ResendVerification calls POST /resend-verification.
func (c *Client) ResendVerification(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/resend-verification", token, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// decodeError lifts the backend's error body into a typed APIError. Both
// the {"message": ...} and the older {"error": ...} envelopes occur.
func decodeError(status int, raw []byte) error {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(raw, &body)
	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	return &domain.APIError{Status: status, Message: msg}
}
