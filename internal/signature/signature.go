// Package signature implements Twilio webhook request signing.
//
// Twilio signs every webhook callback with the account's auth token: the
// full public URL of the endpoint is concatenated with each POST parameter
// name and value (parameters sorted by name), the result is HMAC-SHA1
// hashed with the auth token as key, and the digest is base64 encoded into
// the X-Twilio-Signature header.
//
// Verification recomputes that signature and compares in constant time.
// Compute and Verify are pure functions, safe for concurrent use.
package signature

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"sort"
	"strings"
)

// Compute returns the base64-encoded HMAC-SHA1 signature for a webhook
// request, as Twilio computes it before sending.
//
// url must be the exact public URL Twilio posts to (scheme, host, path,
// and query string if any). params are the form-encoded POST parameters.
func Compute(url string, params map[string]string, authToken string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	// Byte-wise lexicographic order, matching Twilio's canonicalization.
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(url)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(params[k])
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify reports whether presented matches the expected signature for the
// given URL and parameters under authToken.
//
// The comparison is constant-time so a mismatch position cannot be probed.
// An empty presented signature or empty auth token never verifies.
func Verify(url string, params map[string]string, presented, authToken string) bool {
	if presented == "" || authToken == "" {
		return false
	}
	expected := Compute(url, params, authToken)
	return hmac.Equal([]byte(expected), []byte(presented))
}
