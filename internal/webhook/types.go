package webhook

import (
	"context"

	"github.com/chatwire/chatwire/internal/twilio"
)

// Config holds webhook server configuration.
type Config struct {
	// Listen is the address the HTTP server binds.
	Listen string

	// Path is the URL path Twilio posts callbacks to.
	Path string

	// PublicURL is the exact URL the provider signed: scheme, host,
	// path, and query string if any. Verification recomputes the
	// signature over this value, not over what the local listener saw.
	PublicURL string

	// SignatureHeader carries the provider signature
	// (default "X-Twilio-Signature").
	SignatureHeader string

	// AuthToken is the shared secret signatures are verified with.
	AuthToken string

	// MaxBodySize is the maximum allowed request body size in bytes.
	MaxBodySize int64

	// APIKey guards the /events feed. Empty disables the feed.
	APIKey string
}

// Default values.
const (
	DefaultMaxBodySize     = 65536
	DefaultSignatureHeader = "X-Twilio-Signature"
)

// InboundMessage is one verified webhook callback. It lives for the
// duration of the invocation only; nothing is persisted.
type InboundMessage struct {
	From        string // channel-prefixed sender
	To          string // channel-prefixed recipient (our number)
	Body        string
	MessageSID  string
	ProfileName string // optional; empty when the provider omits it
	WaID        string // optional provider contact id
}

// AutoReplyPolicy decides whether a verified inbound message gets an
// automatic reply. Implementations are opaque to the server and must be
// safe for concurrent calls; the server invokes them synchronously with
// the prefixed sender address and the message body. Returning ok=false
// or an empty reply means no reply.
type AutoReplyPolicy interface {
	Reply(from, body string) (reply string, ok bool)
}

// PolicyFunc adapts a plain function to AutoReplyPolicy.
type PolicyFunc func(from, body string) (string, bool)

func (f PolicyFunc) Reply(from, body string) (string, bool) {
	return f(from, body)
}

// ReplySender issues the outbound auto-reply. *twilio.Client satisfies
// this; tests substitute a recorder.
type ReplySender interface {
	SendText(ctx context.Context, to, body string) (*twilio.SendResult, error)
}

// ErrorResponse is the JSON response for webhook errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON body of /healthz.
type HealthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}
