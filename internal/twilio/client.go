// Package twilio composes and sends WhatsApp messages through Twilio's
// Messages API.
//
// The package splits into three pieces with distinct contracts:
//
//   - Message kinds and Build: pure payload construction. Structural
//     limits (button counts, id uniqueness, section shape) are enforced
//     here, so an invalid message never reaches the network.
//   - Client.Send: one form-encoded POST with Basic auth, returning a
//     *SendResult or a typed error (*ValidationError, *ProviderError,
//     *TransportError). Retryable distinguishes "fix the payload" from
//     "safe to retry".
//   - Convenience senders (SendText, SendQuickReplies, ...) that pair a
//     message kind with Send.
//
// Credentials are immutable after construction and the Client performs no
// internal locking: Build is pure and Send holds no mutable state, so one
// Client is safe for arbitrarily many concurrent sends.
package twilio

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chatwire/chatwire/internal/events"
	"github.com/chatwire/chatwire/internal/log"
)

const defaultBaseURL = "https://api.twilio.com/2010-04-01"

// Credentials bundles the account identity used for outbound sends.
// Immutable after construction; shared by read-only reference across
// concurrent requests.
type Credentials struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

// HTTPDoer abstracts the http.Client Do method for easier testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option customises Client construction.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used to talk to Twilio.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.httpClient = doer
		}
	}
}

// WithBaseURL sets the base Twilio API URL. Useful for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger overrides the component logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithEventHub publishes a message.sent event for every accepted send.
func WithEventHub(hub *events.Hub) Option {
	return func(c *Client) {
		c.hub = hub
	}
}

// Client sends messages for one account. The zero value is not usable;
// construct with NewClient.
type Client struct {
	creds        Credentials
	httpClient   HTTPDoer
	baseURL      string
	logger       *slog.Logger
	hub          *events.Hub // optional, nil when no feed is attached
	maxBodyBytes int64
}

// NewClient validates the credential bundle and returns a ready Client.
func NewClient(creds Credentials, opts ...Option) (*Client, error) {
	if strings.TrimSpace(creds.AccountSID) == "" {
		return nil, errors.New("twilio: account SID is required")
	}
	if strings.TrimSpace(creds.AuthToken) == "" {
		return nil, errors.New("twilio: auth token is required")
	}
	if strings.TrimSpace(creds.FromNumber) == "" {
		return nil, errors.New("twilio: from number is required")
	}

	c := &Client{
		creds: Credentials{
			AccountSID: strings.TrimSpace(creds.AccountSID),
			AuthToken:  strings.TrimSpace(creds.AuthToken),
			FromNumber: strings.TrimSpace(creds.FromNumber),
		},
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		baseURL:      defaultBaseURL,
		logger:       log.WithComponent("twilio"),
		maxBodyBytes: 16 * 1024,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c, nil
}

// FromNumber returns the configured sender number (without channel prefix).
func (c *Client) FromNumber() string {
	return c.creds.FromNumber
}

// MessagesURL returns the per-account Messages endpoint.
func (c *Client) MessagesURL() string {
	return fmt.Sprintf("%s/Accounts/%s/Messages.json", c.baseURL, url.PathEscape(c.creds.AccountSID))
}
