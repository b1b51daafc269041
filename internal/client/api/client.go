// Package api is the single choke point for every call against the
// tax-refund server. It injects the bearer credential before each request
// and normalizes every outcome: success returns the server's JSON body
// decoded into the caller's value, any failure becomes an *Error with a
// human-readable message.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chungyifen/tax-refund/internal/model"
)

// DefaultTimeout bounds every request. Exceeding it is indistinguishable,
// to the caller, from any other transport failure.
const DefaultTimeout = 5 * time.Second

// CredentialSource provides the current bearer credential, if any.
// Absence is a normal state, not an error: public endpoints such as login
// are called without one.
type CredentialSource interface {
	Read() (token string, ok bool)
}

// Notifier receives best-effort, fire-and-forget failure messages for
// display. Implementations must not block.
type Notifier interface {
	Notify(message string)
}

// NopNotifier discards all messages.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(string) {}

// Error is the single failure shape the pipeline surfaces. Callers never
// see raw transport errors or *http.Response.
type Error struct {
	Status  int    // HTTP status when the server answered, 0 otherwise
	Message string // human-readable, from the server's {message} body when present
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// Client issues JSON requests against the server API.
type Client struct {
	base   string
	creds  CredentialSource
	http   *http.Client
	notify Notifier
}

// New constructs a Client for the given base URL (e.g. "http://host:8080").
// A nil notifier disables notifications.
func New(base string, creds CredentialSource, notify Notifier) *Client {
	if notify == nil {
		notify = NopNotifier{}
	}
	return &Client{
		base:   strings.TrimRight(base, "/"),
		creds:  creds,
		http:   &http.Client{Timeout: DefaultTimeout},
		notify: notify,
	}
}

// do runs one request. On 2xx the body is decoded into out (which may be
// nil). Everything else is normalized into *Error, after the notifier has
// been told.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return c.fail(0, fmt.Sprintf("encode request: %v", err))
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return c.fail(0, fmt.Sprintf("build request: %v", err))
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok, ok := c.creds.Read(); ok {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(0, fmt.Sprintf("request %s %s: %v", method, path, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(resp.StatusCode, errorMessage(resp))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.fail(0, fmt.Sprintf("decode response: %v", err))
	}
	return nil
}

func (c *Client) fail(status int, msg string) error {
	c.notify.Notify(msg)
	return &Error{Status: status, Message: msg}
}

// errorMessage extracts the server's {message} body, falling back to the
// HTTP status text.
func errorMessage(resp *http.Response) string {
	var e struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&e); err == nil && e.Message != "" {
		return e.Message
	}
	return http.StatusText(resp.StatusCode)
}

// LoginResponse is the body of a successful login call.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
}

// Login authenticates with username and password. No credential is
// attached when none is stored, which is always the case on first login.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResponse, error) {
	req := map[string]string{"username": username, "password": password}
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &out); err != nil {
		return LoginResponse{}, err
	}
	return out, nil
}

// Whoami fetches the profile for the stored credential.
func (c *Client) Whoami(ctx context.Context) (model.Profile, error) {
	var out model.Profile
	if err := c.do(ctx, http.MethodGet, "/api/auth/info", nil, &out); err != nil {
		return model.Profile{}, err
	}
	return out, nil
}

// Logout tells the server to discard the session. The caller clears local
// state regardless of this call's outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// ListRefunds returns the tax refund ledger.
func (c *Client) ListRefunds(ctx context.Context) ([]model.TaxRefund, error) {
	var out []model.TaxRefund
	if err := c.do(ctx, http.MethodGet, "/api/refund/list", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateRefund records a new refund row.
func (c *Client) CreateRefund(ctx context.Context, in model.NewTaxRefund) (model.TaxRefund, error) {
	var out model.TaxRefund
	if err := c.do(ctx, http.MethodPost, "/api/refund/list", in, &out); err != nil {
		return model.TaxRefund{}, err
	}
	return out, nil
}

// ListUsers returns system user accounts.
func (c *Client) ListUsers(ctx context.Context) ([]model.UserSummary, error) {
	var out []model.UserSummary
	if err := c.do(ctx, http.MethodGet, "/api/system/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
