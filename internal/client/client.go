// Package client is a small API client for the community server, used by
// cmd/sosmonitor. Every authenticated call takes an explicit Session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/societyhub/community-server/internal/models"
)

// ErrSessionInvalid is returned for calls made with a signed-out or expired session
var ErrSessionInvalid = errors.New("session is no longer valid")

// Session is the result of a successful sign-in
type Session struct {
	Token     string
	User      models.User
	ExpiresAt time.Time

	mu        sync.Mutex
	signedOut bool
}

// Valid reports whether the session can still be used at now
func (s *Session) Valid(now time.Time) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.signedOut && s.Token != "" && now.Before(s.ExpiresAt)
}

func (s *Session) invalidate() {
	s.mu.Lock()
	s.signedOut = true
	s.mu.Unlock()
}

// APIError is a non-2xx response
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client talks to one server
type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
}

// New creates a client for baseURL (e.g. http://localhost:8080/api/v1).
// A nil httpClient gets a 15s timeout default.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient, now: time.Now}
}

// SignIn authenticates and returns a new session
func (c *Client) SignIn(ctx context.Context, identifier, password string, role models.Role) (*Session, error) {
	var resp struct {
		Token     string      `json:"token"`
		ExpiresAt time.Time   `json:"expiresAt"`
		User      models.User `json:"user"`
	}
	body := models.SigninRequest{NameOrEmail: identifier, Password: password, Role: role}
	if err := c.do(ctx, http.MethodPost, "/auth/signin", "", body, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, errors.New("sign-in response carried no token")
	}
	return &Session{Token: resp.Token, User: resp.User, ExpiresAt: resp.ExpiresAt}, nil
}

// SignOut revokes the session server-side. The session is unusable afterwards
// even if the server call fails.
func (c *Client) SignOut(ctx context.Context, s *Session) error {
	if !s.Valid(c.now()) {
		return nil
	}
	defer s.invalidate()
	return c.do(ctx, http.MethodPost, "/auth/signout", s.Token, nil, nil)
}

// ListSOS returns every SOS alert
func (c *Client) ListSOS(ctx context.Context, s *Session) ([]models.SOSAlert, error) {
	if !s.Valid(c.now()) {
		return nil, ErrSessionInvalid
	}
	var resp struct {
		Alerts []models.SOSAlert `json:"alerts"`
	}
	if err := c.do(ctx, http.MethodGet, "/sos/all", s.Token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Alerts, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
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

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
