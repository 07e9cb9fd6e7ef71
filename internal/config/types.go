package config

// Config represents the complete chatwire configuration.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Twilio  TwilioConfig  `yaml:"twilio"`
	Webhook WebhookConfig `yaml:"webhook"`
	API     APIConfig     `yaml:"api,omitempty"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name     string `yaml:"name"`
	LogLevel string `yaml:"log_level"`
}

// TwilioConfig holds the provider credential bundle. Values are usually
// ${ENV_VAR} references expanded at load time so the auth token never
// lives in the file itself.
type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

// WebhookConfig defines the inbound webhook listener.
type WebhookConfig struct {
	Listen string `yaml:"listen"`
	Path   string `yaml:"path"`

	// PublicURL is the exact URL Twilio signs: scheme, host, path, and
	// query string if any. Signature verification fails if this differs
	// from what the provider was configured with.
	PublicURL string `yaml:"public_url"`

	// SignatureHeader is the HTTP header carrying the provider signature.
	SignatureHeader string `yaml:"signature_header,omitempty"`

	// MaxBodySize limits the request body, e.g. "64KB" or "1048576".
	MaxBodySize string `yaml:"max_body_size,omitempty"`
}

// APIConfig guards the observation endpoints (/events).
type APIConfig struct {
	// Key is the bearer token for the SSE event feed. Empty disables
	// the feed entirely.
	Key string `yaml:"key,omitempty"`
}

// Default values applied by Load.
const (
	DefaultListen          = "127.0.0.1:8085"
	DefaultPath            = "/twilio/whatsapp"
	DefaultSignatureHeader = "X-Twilio-Signature"
	DefaultMaxBodySize     = 65536 // 64 KB of form fields is plenty
)

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:     "chatwire",
			LogLevel: "info",
		},
		Webhook: WebhookConfig{
			Listen:          DefaultListen,
			Path:            DefaultPath,
			SignatureHeader: DefaultSignatureHeader,
		},
	}
}
