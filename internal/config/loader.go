package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads and parses configuration from a file.
//
// A .env file next to the config file is loaded first (best effort, never
// an error when absent), then ${ENV_VAR} references in the YAML are
// expanded, defaults applied, the integrity sidecar verified when one
// exists, and the result validated.
func Load(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	if _, err := os.Stat(absPath); err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}

	// Credentials usually live in a .env beside the config file.
	_ = godotenv.Load(filepath.Join(filepath.Dir(absPath), ".env"))

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	expanded := expandEnvVars(string(data))

	cfg := Defaults()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(cfg)

	// Integrity sidecar is written by `chatwire config lock`; when it
	// exists the config must match it.
	if err := VerifyIfLocked(absPath); err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// DiscoverConfigPath finds the config file by checking standard locations.
// Priority order: $CHATWIRE_CONFIG, ~/.config/chatwire/config.yaml,
// /etc/chatwire/config.yaml, ./config.yaml.
func DiscoverConfigPath() (string, error) {
	if path := os.Getenv("CHATWIRE_CONFIG"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		userPath := filepath.Join(homeDir, ".config", "chatwire", "config.yaml")
		if _, err := os.Stat(userPath); err == nil {
			return userPath, nil
		}
	}

	systemPath := "/etc/chatwire/config.yaml"
	if _, err := os.Stat(systemPath); err == nil {
		return systemPath, nil
	}

	legacyPath := "./config.yaml"
	if _, err := os.Stat(legacyPath); err == nil {
		return legacyPath, nil
	}

	return "", fmt.Errorf("no config found (checked: $CHATWIRE_CONFIG, ~/.config/chatwire, /etc/chatwire, ./config.yaml)")
}

// expandEnvVars replaces ${VAR} references with environment values.
// Unset variables expand to the empty string; validate catches required
// fields that end up empty.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})
}

func applyDefaults(cfg *Config) {
	if cfg.Service.Name == "" {
		cfg.Service.Name = "chatwire"
	}
	if cfg.Service.LogLevel == "" {
		cfg.Service.LogLevel = "info"
	}
	if cfg.Webhook.Listen == "" {
		cfg.Webhook.Listen = DefaultListen
	}
	if cfg.Webhook.Path == "" {
		cfg.Webhook.Path = DefaultPath
	}
	if cfg.Webhook.SignatureHeader == "" {
		cfg.Webhook.SignatureHeader = DefaultSignatureHeader
	}
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Twilio.AccountSID) == "" {
		return fmt.Errorf("twilio.account_sid is required (is TWILIO_ACCOUNT_SID set?)")
	}
	if strings.TrimSpace(cfg.Twilio.AuthToken) == "" {
		return fmt.Errorf("twilio.auth_token is required (is TWILIO_AUTH_TOKEN set?)")
	}
	if strings.TrimSpace(cfg.Twilio.FromNumber) == "" {
		return fmt.Errorf("twilio.from_number is required (is TWILIO_PHONE_NUMBER set?)")
	}
	if !strings.HasPrefix(cfg.Webhook.Path, "/") {
		return fmt.Errorf("webhook.path must start with /")
	}
	if cfg.Webhook.PublicURL == "" {
		return fmt.Errorf("webhook.public_url is required: it must match the URL configured at the provider exactly")
	}
	if !strings.HasPrefix(cfg.Webhook.PublicURL, "http://") && !strings.HasPrefix(cfg.Webhook.PublicURL, "https://") {
		return fmt.Errorf("webhook.public_url must be an absolute URL, got %q", cfg.Webhook.PublicURL)
	}
	if _, err := ParseMaxBodySize(cfg.Webhook.MaxBodySize); err != nil {
		return fmt.Errorf("webhook.max_body_size: %w", err)
	}
	return nil
}

// ParseMaxBodySize parses size strings like "64KB", "1MB", "1048576" to
// bytes. Returns DefaultMaxBodySize if empty.
func ParseMaxBodySize(size string) (int64, error) {
	if size == "" {
		return DefaultMaxBodySize, nil
	}

	upper := strings.ToUpper(size)
	multiplier := int64(1)

	if strings.HasSuffix(upper, "KB") {
		multiplier = 1024
		size = strings.TrimSuffix(upper, "KB")
	} else if strings.HasSuffix(upper, "MB") {
		multiplier = 1024 * 1024
		size = strings.TrimSuffix(upper, "MB")
	} else if strings.HasSuffix(upper, "GB") {
		multiplier = 1024 * 1024 * 1024
		size = strings.TrimSuffix(upper, "GB")
	}

	value, err := strconv.ParseInt(strings.TrimSpace(size), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value: %w", err)
	}

	if value <= 0 {
		return 0, fmt.Errorf("size must be positive")
	}

	result := value * multiplier
	if result < 0 {
		return 0, fmt.Errorf("size too large")
	}

	return result, nil
}
