package twilio

import "strings"

// ChannelPrefix is prepended to phone numbers to select the WhatsApp
// channel on the provider side.
const ChannelPrefix = "whatsapp:"

// Message is an outbound WhatsApp message. Exactly one concrete kind is
// behind any Message value; the set is closed (the params method is
// unexported), so every variant the gateway can send is defined in this
// package and validated before it reaches the network.
type Message interface {
	// params renders the provider field list. to and from arrive already
	// channel-prefixed; implementations must not prefix again.
	params(to, from string) ([]Param, error)
}

// Param is a single form field in provider order. Build returns params as
// an ordered slice rather than a map because the field order is part of
// the request we want to be able to assert on.
type Param struct {
	Key   string
	Value string
}

// Text is a plain text message.
type Text struct {
	Body string
}

// Media is a text message with an attached media URL.
type Media struct {
	Body     string
	MediaURL string
}

// Template references a pre-approved content template by SID.
// Variables, when present, is the JSON-encoded substitution map.
type Template struct {
	ContentSID string
	Variables  string
}

// Button is one quick-reply button on an interactive message.
type Button struct {
	ID    string
	Title string
}

// ListRow is one selectable row inside a list section.
type ListRow struct {
	ID          string
	Title       string
	Description string
}

// ListSection groups rows under an optional title. Row order is the
// user-visible menu order and is preserved exactly.
type ListSection struct {
	Title string
	Rows  []ListRow
}

// InteractiveButtons is a button-reply message. WhatsApp allows at most
// three buttons; ids must be non-empty and unique within the message.
type InteractiveButtons struct {
	Header  string
	Body    string
	Footer  string
	Buttons []Button
}

// InteractiveList is a list-picker message. ActionLabel is the text on
// the button that opens the list.
type InteractiveList struct {
	Header      string
	Body        string
	Footer      string
	ActionLabel string
	Sections    []ListSection
}

// PaymentRequest renders a formatted payment summary. CustomBody, when
// set, replaces the default template entirely.
type PaymentRequest struct {
	Amount      float64
	Currency    string
	Description string
	ReferenceID string
	CustomBody  string
}

// Reminder is a notification message. With action buttons it renders as
// an interactive message (ScheduledAt becomes the footer); without, as
// plain text.
type Reminder struct {
	Title       string
	Body        string
	ScheduledAt string
	Buttons     []Button
}

// WhatsAppAddress prefixes number with the WhatsApp channel prefix.
// Already-prefixed numbers are passed through, so the prefix is applied
// exactly once no matter how the address was supplied.
func WhatsAppAddress(number string) string {
	trimmed := strings.TrimSpace(number)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(trimmed), ChannelPrefix) {
		return ChannelPrefix + strings.TrimSpace(trimmed[len(ChannelPrefix):])
	}
	return ChannelPrefix + trimmed
}

// StripChannelPrefix removes the WhatsApp channel prefix, returning the
// bare number. Webhook senders arrive prefixed and must be stripped
// before reuse as an outbound recipient.
func StripChannelPrefix(address string) string {
	trimmed := strings.TrimSpace(address)
	if strings.HasPrefix(strings.ToLower(trimmed), ChannelPrefix) {
		return strings.TrimSpace(trimmed[len(ChannelPrefix):])
	}
	return trimmed
}
