package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrInvalidSession means the provider did not recognize the session id.
// Timeouts and transport failures are reported as wrapped errors; callers
// treat every failure as an authentication failure (fail closed).
var ErrInvalidSession = errors.New("identity provider rejected session")

// SessionData is what the provider returns for a valid session exchange.
type SessionData struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Picture      string `json:"picture"`
	SessionToken string `json:"session_token"`
}

// Provider exchanges a one-time session id for a verified identity.
type Provider interface {
	ExchangeSession(ctx context.Context, sessionID string) (SessionData, error)
}

// Client talks to the external identity provider over HTTP.
type Client struct {
	http *resty.Client
}

// NewClient builds a Client with a bounded request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)
	return &Client{http: httpClient}
}

// ExchangeSession validates the session id with the provider. Any transport
// or timeout failure surfaces as an error so the caller rejects the login.
func (c *Client) ExchangeSession(ctx context.Context, sessionID string) (SessionData, error) {
	var data SessionData
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Session-ID", sessionID).
		SetResult(&data).
		Get("/session-data")
	if err != nil {
		return SessionData{}, fmt.Errorf("identity provider: %w", err)
	}
	if !resp.IsSuccess() || data.ID == "" || data.SessionToken == "" {
		return SessionData{}, ErrInvalidSession
	}
	return data, nil
}
