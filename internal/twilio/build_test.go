package twilio

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paramMap(params []Param) map[string]string {
	out := make(map[string]string, len(params))
	for _, p := range params {
		out[p.Key] = p.Value
	}
	return out
}

func TestBuildText(t *testing.T) {
	params, err := Build(Text{Body: "hello"}, "+14155238886", "+15005550006")
	require.NoError(t, err)

	assert.Equal(t, []Param{
		{"To", "whatsapp:+15005550006"},
		{"From", "whatsapp:+14155238886"},
		{"Body", "hello"},
	}, params)
}

func TestBuildPrefixAppliedExactlyOnce(t *testing.T) {
	// Addresses may arrive with or without the channel prefix; the built
	// fields must carry it exactly once either way.
	params, err := Build(Text{Body: "hi"}, "whatsapp:+1415", "whatsapp:+1500")
	require.NoError(t, err)

	m := paramMap(params)
	assert.Equal(t, "whatsapp:+1500", m["To"])
	assert.Equal(t, "whatsapp:+1415", m["From"])
}

func TestBuildMedia(t *testing.T) {
	params, err := Build(Media{Body: "see this", MediaURL: "https://example.org/cat.jpg"}, "+1", "+2")
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/cat.jpg", paramMap(params)["MediaUrl"])

	_, err = Build(Media{Body: "no url"}, "+1", "+2")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestBuildTemplateOmitsAbsentVariables(t *testing.T) {
	params, err := Build(Template{ContentSID: "HX123"}, "+1", "+2")
	require.NoError(t, err)
	_, present := paramMap(params)["ContentVariables"]
	assert.False(t, present, "absent variables must be omitted, not sent empty")

	params, err = Build(Template{ContentSID: "HX123", Variables: `{"1":"Alice"}`}, "+1", "+2")
	require.NoError(t, err)
	assert.Equal(t, `{"1":"Alice"}`, paramMap(params)["ContentVariables"])
}

func TestBuildInteractiveButtonsLimits(t *testing.T) {
	makeButtons := func(n int) []Button {
		out := make([]Button, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, Button{ID: fmt.Sprintf("b%d", i), Title: fmt.Sprintf("Button %d", i)})
		}
		return out
	}

	tests := []struct {
		name    string
		buttons []Button
		wantErr bool
	}{
		{name: "zero buttons", buttons: nil, wantErr: true},
		{name: "one button", buttons: makeButtons(1), wantErr: false},
		{name: "exactly three", buttons: makeButtons(3), wantErr: false},
		{name: "four buttons", buttons: makeButtons(4), wantErr: true},
		{name: "duplicate ids", buttons: []Button{{ID: "x", Title: "A"}, {ID: "x", Title: "B"}}, wantErr: true},
		{name: "empty id", buttons: []Button{{ID: "", Title: "A"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(InteractiveButtons{Header: "H", Body: "B", Buttons: tt.buttons}, "+1", "+2")
			if tt.wantErr {
				var verr *ValidationError
				assert.ErrorAs(t, err, &verr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuildInteractiveButtonsPayload(t *testing.T) {
	params, err := Build(InteractiveButtons{
		Header:  "Pick one",
		Body:    "Which size?",
		Footer:  "Offer ends soon",
		Buttons: []Button{{ID: "s", Title: "Small"}, {ID: "l", Title: "Large"}},
	}, "+1", "+2")
	require.NoError(t, err)

	m := paramMap(params)
	assert.Equal(t, "Which size?", m["Body"])

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(m["Interactive"]), &payload))

	assert.Equal(t, "button", payload["type"])
	header := payload["header"].(map[string]any)
	assert.Equal(t, "text", header["type"])
	assert.Equal(t, "Pick one", header["text"])

	action := payload["action"].(map[string]any)
	buttons := action["buttons"].([]any)
	require.Len(t, buttons, 2)
	first := buttons[0].(map[string]any)
	assert.Equal(t, "reply", first["type"])
	assert.Equal(t, "s", first["reply"].(map[string]any)["id"])

	footer := payload["footer"].(map[string]any)
	assert.Equal(t, "Offer ends soon", footer["text"])
}

func TestBuildInteractiveButtonsOmitsAbsentFooter(t *testing.T) {
	params, err := Build(InteractiveButtons{
		Header:  "H",
		Body:    "B",
		Buttons: []Button{{ID: "a", Title: "A"}},
	}, "+1", "+2")
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(paramMap(params)["Interactive"]), &payload))
	_, present := payload["footer"]
	assert.False(t, present, "absent footer must not appear in the payload")
}

func TestBuildInteractiveListValidation(t *testing.T) {
	tests := []struct {
		name     string
		sections []ListSection
		wantErr  bool
	}{
		{name: "no sections", sections: nil, wantErr: true},
		{
			name:     "empty section",
			sections: []ListSection{{Title: "Empty", Rows: nil}},
			wantErr:  true,
		},
		{
			name: "duplicate row id within section",
			sections: []ListSection{
				{Rows: []ListRow{{ID: "r1", Title: "A"}, {ID: "r1", Title: "B"}}},
			},
			wantErr: true,
		},
		{
			name: "duplicate row ids across sections allowed",
			sections: []ListSection{
				{Title: "One", Rows: []ListRow{{ID: "r1", Title: "A"}}},
				{Title: "Two", Rows: []ListRow{{ID: "r1", Title: "B"}}},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(InteractiveList{
				Header: "H", Body: "B", ActionLabel: "Open", Sections: tt.sections,
			}, "+1", "+2")
			if tt.wantErr {
				var verr *ValidationError
				assert.ErrorAs(t, err, &verr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuildInteractiveListPreservesOrder(t *testing.T) {
	params, err := Build(InteractiveList{
		Header:      "Menu",
		Body:        "What would you like?",
		ActionLabel: "Browse",
		Sections: []ListSection{
			{Title: "Mains", Rows: []ListRow{
				{ID: "m1", Title: "Dal", Description: "Lentils"},
				{ID: "m2", Title: "Paneer"},
			}},
			{Title: "Drinks", Rows: []ListRow{
				{ID: "d1", Title: "Chai"},
			}},
		},
	}, "+1", "+2")
	require.NoError(t, err)

	var payload struct {
		Type   string `json:"type"`
		Action struct {
			Button   string `json:"button"`
			Sections []struct {
				Title string `json:"title"`
				Rows  []struct {
					ID          string `json:"id"`
					Title       string `json:"title"`
					Description string `json:"description"`
				} `json:"rows"`
			} `json:"sections"`
		} `json:"action"`
	}
	require.NoError(t, json.Unmarshal([]byte(paramMap(params)["Interactive"]), &payload))

	assert.Equal(t, "list", payload.Type)
	assert.Equal(t, "Browse", payload.Action.Button)
	require.Len(t, payload.Action.Sections, 2)
	assert.Equal(t, "Mains", payload.Action.Sections[0].Title)
	require.Len(t, payload.Action.Sections[0].Rows, 2)
	assert.Equal(t, "m1", payload.Action.Sections[0].Rows[0].ID)
	assert.Equal(t, "Lentils", payload.Action.Sections[0].Rows[0].Description)
	assert.Equal(t, "m2", payload.Action.Sections[0].Rows[1].ID)
	assert.Equal(t, "Drinks", payload.Action.Sections[1].Title)
}

func TestQuickReplyPromotion(t *testing.T) {
	// Five choices promote to a single-section list, ids choice_0..4 in
	// original order.
	msg, err := QuickReply("Pick one", []string{"A", "B", "C", "D", "E"})
	require.NoError(t, err)

	list, ok := msg.(InteractiveList)
	require.True(t, ok, "more than three choices must produce a list")
	require.Len(t, list.Sections, 1)
	assert.Equal(t, "Choose an option", list.Sections[0].Title)
	require.Len(t, list.Sections[0].Rows, 5)
	for i, row := range list.Sections[0].Rows {
		assert.Equal(t, fmt.Sprintf("choice_%d", i), row.ID)
	}
	assert.Equal(t, "E", list.Sections[0].Rows[4].Title)

	// Two choices stay buttons with the same index-derived ids.
	msg, err = QuickReply("Pick one", []string{"Yes", "No"})
	require.NoError(t, err)

	buttons, ok := msg.(InteractiveButtons)
	require.True(t, ok, "three or fewer choices must produce buttons")
	require.Len(t, buttons.Buttons, 2)
	assert.Equal(t, "choice_0", buttons.Buttons[0].ID)
	assert.Equal(t, "choice_1", buttons.Buttons[1].ID)
}

func TestQuickReplyDeterministic(t *testing.T) {
	choices := []string{"One", "Two", "Three", "Four"}
	first, err := QuickReply("p", choices)
	require.NoError(t, err)
	second, err := QuickReply("p", choices)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestQuickReplyNoChoices(t *testing.T) {
	_, err := QuickReply("p", nil)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestBuildReminder(t *testing.T) {
	// Without buttons: plain text with the scheduled line.
	params, err := Build(Reminder{Title: "Standup", Body: "Daily sync", ScheduledAt: "09:00"}, "+1", "+2")
	require.NoError(t, err)
	m := paramMap(params)
	assert.Contains(t, m["Body"], "Standup")
	assert.Contains(t, m["Body"], "09:00")
	_, interactive := m["Interactive"]
	assert.False(t, interactive)

	// With buttons: interactive, scheduled time as footer.
	params, err = Build(Reminder{
		Title:       "Standup",
		Body:        "Daily sync",
		ScheduledAt: "09:00",
		Buttons:     []Button{{ID: "ack", Title: "Got it"}},
	}, "+1", "+2")
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(paramMap(params)["Interactive"]), &payload))
	assert.Equal(t, "09:00", payload["footer"].(map[string]any)["text"])
}

func TestBuildPaymentRequest(t *testing.T) {
	params, err := Build(PaymentRequest{
		Amount:      149.5,
		Currency:    "INR",
		Description: "Subscription",
		ReferenceID: "ref-42",
	}, "+1", "+2")
	require.NoError(t, err)

	body := paramMap(params)["Body"]
	assert.Contains(t, body, "INR 149.50")
	assert.Contains(t, body, "Subscription")
	assert.Contains(t, body, "ref-42")

	params, err = Build(PaymentRequest{Amount: 1, Currency: "INR", CustomBody: "pay up"}, "+1", "+2")
	require.NoError(t, err)
	assert.Equal(t, "pay up", paramMap(params)["Body"])
}

func TestStripChannelPrefix(t *testing.T) {
	assert.Equal(t, "+1500", StripChannelPrefix("whatsapp:+1500"))
	assert.Equal(t, "+1500", StripChannelPrefix("+1500"))
	assert.Equal(t, "+1500", StripChannelPrefix("  whatsapp:+1500 "))
}
