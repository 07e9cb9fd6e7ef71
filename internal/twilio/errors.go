package twilio

import (
	"errors"
	"fmt"
)

// ValidationError means the payload violates a structural rule. It is the
// caller's bug; resending the same payload can never succeed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid message: " + e.Reason
	}
	return fmt.Sprintf("invalid message: %s: %s", e.Field, e.Reason)
}

// ProviderError is a non-2xx response from the provider. Body carries the
// response verbatim so template rejections and recipient errors can be
// diagnosed; Code and Message are parsed out of it when present.
type ProviderError struct {
	StatusCode int
	Body       string
	Code       int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("twilio: error %d: %s (http %d)", e.Code, e.Message, e.StatusCode)
	}
	if e.Message != "" {
		return fmt.Sprintf("twilio: http %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("twilio: http %d", e.StatusCode)
}

// TransportError means the provider was never reached (or the connection
// broke mid-request). The request may have been lost; callers with their
// own retry policy can resend.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "twilio: transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may safely retry the send with
// backoff. Validation and provider rejections are permanent; only
// transport failures qualify.
func Retryable(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
