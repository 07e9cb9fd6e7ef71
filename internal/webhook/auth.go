package webhook

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

// validateAPIKey returns true if providedKey matches configKey.
// Constant-time compare; an empty configured key never validates.
func validateAPIKey(providedKey, configKey string) bool {
	if configKey == "" || providedKey == "" {
		return false
	}
	if len(providedKey) != len(configKey) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(providedKey), []byte(configKey)) == 1
}

// extractAPIKey extracts a key from an Authorization: Bearer <key> header.
func extractAPIKey(r *http.Request) (string, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", errors.New("missing Authorization header")
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", errors.New("invalid Authorization header format")
	}

	key := strings.TrimSpace(auth[len(prefix):])
	if key == "" {
		return "", errors.New("missing API key")
	}
	return key, nil
}

// requireAPIKey guards a handler with the configured bearer key.
func (s *Server) requireAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := extractAPIKey(r)
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		if !validateAPIKey(key, s.config.APIKey) {
			s.respondError(w, http.StatusUnauthorized, "invalid API key")
			return
		}
		next(w, r)
	}
}
