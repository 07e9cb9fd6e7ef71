package twilio

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SendResult is the provider's acknowledgment of an accepted message.
// Only fields present on every response variant are guaranteed; a pure
// text acknowledgment has no media count, and that absence is not an
// error.
type SendResult struct {
	SID                 string     `json:"sid"`
	Status              string     `json:"status"`
	To                  string     `json:"to"`
	From                string     `json:"from"`
	Body                string     `json:"body"`
	AccountSID          string     `json:"account_sid"`
	APIVersion          string     `json:"api_version"`
	DateCreated         string     `json:"date_created"`
	DateSent            string     `json:"date_sent"`
	DateUpdated         string     `json:"date_updated"`
	Direction           string     `json:"direction"`
	ErrorCode           FlexString `json:"error_code"`
	ErrorMessage        string     `json:"error_message"`
	MessagingServiceSID string     `json:"messaging_service_sid"`
	NumMedia            FlexString `json:"num_media"`
	NumSegments         FlexString `json:"num_segments"`
	Price               string     `json:"price"`
	PriceUnit           string     `json:"price_unit"`
	URI                 string     `json:"uri"`
}

// FlexString decodes a JSON string, number, or null into a string.
// The provider encodes numeric-looking fields inconsistently across API
// versions; this is a compatibility shim, not a core invariant.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return string(f)
}
