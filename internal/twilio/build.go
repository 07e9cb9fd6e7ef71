package twilio

import (
	"encoding/json"
	"fmt"
)

// MaxButtons is the provider's cap on quick-reply buttons per message.
const MaxButtons = 3

// Labels used when QuickReply promotes plain choices into an interactive
// message. Fixed so the promotion is deterministic.
const (
	quickReplyHeader       = "Please select an option"
	quickReplySectionTitle = "Choose an option"
	quickReplyActionLabel  = "Choose"
)

// Build renders msg into the ordered provider field list for a send from
// from to to. Both addresses are channel-prefixed here, exactly once.
// Structural rules (button counts, id uniqueness, non-empty sections) are
// enforced now, before any network call; violations return a
// *ValidationError. Build performs no I/O.
func Build(msg Message, from, to string) ([]Param, error) {
	if msg == nil {
		return nil, &ValidationError{Field: "message", Reason: "message is nil"}
	}
	return msg.params(WhatsAppAddress(to), WhatsAppAddress(from))
}

func (m Text) params(to, from string) ([]Param, error) {
	return []Param{
		{"To", to},
		{"From", from},
		{"Body", m.Body},
	}, nil
}

func (m Media) params(to, from string) ([]Param, error) {
	if m.MediaURL == "" {
		return nil, &ValidationError{Field: "media_url", Reason: "media URL is required"}
	}
	return []Param{
		{"To", to},
		{"From", from},
		{"Body", m.Body},
		{"MediaUrl", m.MediaURL},
	}, nil
}

func (m Template) params(to, from string) ([]Param, error) {
	if m.ContentSID == "" {
		return nil, &ValidationError{Field: "content_sid", Reason: "content SID is required"}
	}
	out := []Param{
		{"To", to},
		{"From", from},
		{"ContentSid", m.ContentSID},
	}
	// Omitted entirely when absent; an empty ContentVariables field would
	// change provider-side rendering.
	if m.Variables != "" {
		out = append(out, Param{"ContentVariables", m.Variables})
	}
	return out, nil
}

func (m InteractiveButtons) params(to, from string) ([]Param, error) {
	if err := validateButtons(m.Buttons); err != nil {
		return nil, err
	}

	payload := interactivePayload{
		Type:   "button",
		Header: &interactiveText{Type: "text", Text: m.Header},
		Body:   interactiveBody{Text: m.Body},
		Action: &interactiveAction{Buttons: replyButtons(m.Buttons)},
	}
	if m.Footer != "" {
		payload.Footer = &interactiveBody{Text: m.Footer}
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode interactive payload: %w", err)
	}

	return []Param{
		{"To", to},
		{"From", from},
		{"Body", m.Body},
		{"Interactive", string(encoded)},
	}, nil
}

func (m InteractiveList) params(to, from string) ([]Param, error) {
	if len(m.Sections) == 0 {
		return nil, &ValidationError{Field: "sections", Reason: "at least one section is required"}
	}
	for i, section := range m.Sections {
		if len(section.Rows) == 0 {
			return nil, &ValidationError{
				Field:  "sections",
				Reason: fmt.Sprintf("section %d has no rows", i),
			}
		}
		// Row ids are scoped per section; duplicates across sections are
		// fine because the provider keys selection by section+row.
		seen := make(map[string]struct{}, len(section.Rows))
		for _, row := range section.Rows {
			if _, dup := seen[row.ID]; dup {
				return nil, &ValidationError{
					Field:  "sections",
					Reason: fmt.Sprintf("duplicate row id %q in section %d", row.ID, i),
				}
			}
			seen[row.ID] = struct{}{}
		}
	}

	sections := make([]listSection, 0, len(m.Sections))
	for _, section := range m.Sections {
		rows := make([]listRow, 0, len(section.Rows))
		for _, row := range section.Rows {
			rows = append(rows, listRow{
				ID:          row.ID,
				Title:       row.Title,
				Description: row.Description,
			})
		}
		sections = append(sections, listSection{Title: section.Title, Rows: rows})
	}

	payload := interactivePayload{
		Type:   "list",
		Header: &interactiveText{Type: "text", Text: m.Header},
		Body:   interactiveBody{Text: m.Body},
		Action: &interactiveAction{Button: m.ActionLabel, Sections: sections},
	}
	if m.Footer != "" {
		payload.Footer = &interactiveBody{Text: m.Footer}
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode interactive payload: %w", err)
	}

	return []Param{
		{"To", to},
		{"From", from},
		{"Body", m.Body},
		{"Interactive", string(encoded)},
	}, nil
}

func (m PaymentRequest) params(to, from string) ([]Param, error) {
	body := m.CustomBody
	if body == "" {
		body = fmt.Sprintf(
			"💳 Payment Request\n\nAmount: %s %.2f\nDescription: %s\nReference: %s\n\nPlease complete your payment to proceed.",
			m.Currency, m.Amount, m.Description, m.ReferenceID,
		)
	}
	return Text{Body: body}.params(to, from)
}

func (m Reminder) params(to, from string) ([]Param, error) {
	if len(m.Buttons) > 0 {
		return InteractiveButtons{
			Header:  "🔔 " + m.Title,
			Body:    m.Body,
			Footer:  m.ScheduledAt,
			Buttons: m.Buttons,
		}.params(to, from)
	}

	body := fmt.Sprintf("🔔 Reminder: %s\n\n%s", m.Title, m.Body)
	if m.ScheduledAt != "" {
		body += fmt.Sprintf("\n⏰ Scheduled for: %s", m.ScheduledAt)
	}
	return Text{Body: body}.params(to, from)
}

// QuickReply maps a flat choice list onto the right interactive shape:
// up to MaxButtons choices become buttons, more become a single-section
// list. Ids are choice_<index> in the original order either way, so a
// given input always produces the same payload.
func QuickReply(prompt string, choices []string) (Message, error) {
	if len(choices) == 0 {
		return nil, &ValidationError{Field: "choices", Reason: "at least one choice is required"}
	}

	if len(choices) > MaxButtons {
		rows := make([]ListRow, 0, len(choices))
		for i, choice := range choices {
			rows = append(rows, ListRow{
				ID:    fmt.Sprintf("choice_%d", i),
				Title: choice,
			})
		}
		return InteractiveList{
			Header:      quickReplyHeader,
			Body:        prompt,
			ActionLabel: quickReplyActionLabel,
			Sections: []ListSection{
				{Title: quickReplySectionTitle, Rows: rows},
			},
		}, nil
	}

	buttons := make([]Button, 0, len(choices))
	for i, choice := range choices {
		buttons = append(buttons, Button{
			ID:    fmt.Sprintf("choice_%d", i),
			Title: choice,
		})
	}
	return InteractiveButtons{
		Header:  quickReplyHeader,
		Body:    prompt,
		Buttons: buttons,
	}, nil
}

func validateButtons(buttons []Button) error {
	if len(buttons) == 0 {
		return &ValidationError{Field: "buttons", Reason: "at least one button is required"}
	}
	if len(buttons) > MaxButtons {
		return &ValidationError{
			Field:  "buttons",
			Reason: fmt.Sprintf("WhatsApp interactive messages support maximum %d buttons, got %d", MaxButtons, len(buttons)),
		}
	}
	seen := make(map[string]struct{}, len(buttons))
	for _, b := range buttons {
		if b.ID == "" {
			return &ValidationError{Field: "buttons", Reason: "button id must not be empty"}
		}
		if _, dup := seen[b.ID]; dup {
			return &ValidationError{
				Field:  "buttons",
				Reason: fmt.Sprintf("duplicate button id %q", b.ID),
			}
		}
		seen[b.ID] = struct{}{}
	}
	return nil
}

// Wire shapes for the Interactive form field. Struct (not map) encoding
// keeps key order stable across builds.

type interactivePayload struct {
	Type   string             `json:"type"`
	Header *interactiveText   `json:"header,omitempty"`
	Body   interactiveBody    `json:"body"`
	Action *interactiveAction `json:"action"`
	Footer *interactiveBody   `json:"footer,omitempty"`
}

type interactiveText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type interactiveBody struct {
	Text string `json:"text"`
}

type interactiveAction struct {
	Buttons  []replyButton `json:"buttons,omitempty"`
	Button   string        `json:"button,omitempty"`
	Sections []listSection `json:"sections,omitempty"`
}

type replyButton struct {
	Type  string      `json:"type"`
	Reply buttonReply `json:"reply"`
}

type buttonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type listSection struct {
	Title string    `json:"title,omitempty"`
	Rows  []listRow `json:"rows"`
}

type listRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

func replyButtons(buttons []Button) []replyButton {
	out := make([]replyButton, 0, len(buttons))
	for _, b := range buttons {
		out = append(out, replyButton{
			Type:  "reply",
			Reply: buttonReply{ID: b.ID, Title: b.Title},
		})
	}
	return out
}
