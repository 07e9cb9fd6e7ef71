package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/chatwire/chatwire/internal/events"
)

// Send posts a built field list to the Messages endpoint and decodes the
// acknowledgment. Errors are typed: *TransportError when the provider was
// not reached, *ProviderError on a non-2xx response (with the response
// body verbatim), and a plain error when a 2xx body fails to decode —
// a malformed acknowledgment never yields a partial SendResult.
func (c *Client) Send(ctx context.Context, params []Param) (*SendResult, error) {
	if len(params) == 0 {
		return nil, &ValidationError{Field: "params", Reason: "empty field list"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.MessagesURL(), strings.NewReader(encodeForm(params)))
	if err != nil {
		return nil, fmt.Errorf("twilio: new request: %w", err)
	}
	req.SetBasicAuth(c.creds.AccountSID, c.creds.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		perr := &ProviderError{StatusCode: resp.StatusCode, Body: string(body)}
		perr.Code, perr.Message = parseProviderDiagnostics(body)
		c.logger.Warn("provider rejected message",
			"status", resp.StatusCode,
			"code", perr.Code,
		)
		return nil, perr
	}

	var result SendResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("twilio: decode response: %w", err)
	}

	c.logger.Debug("message accepted", "sid", result.SID, "status", result.Status)
	if c.hub != nil {
		c.hub.Publish(events.TypeMessageSent, events.Traffic{
			To:         paramValue(params, "To"),
			MessageSID: result.SID,
			Status:     result.Status,
		})
	}
	return &result, nil
}

func paramValue(params []Param, key string) string {
	for _, p := range params {
		if p.Key == key {
			return p.Value
		}
	}
	return ""
}

// SendMessage builds msg for recipient to and sends it.
func (c *Client) SendMessage(ctx context.Context, to string, msg Message) (*SendResult, error) {
	params, err := Build(msg, c.creds.FromNumber, to)
	if err != nil {
		return nil, err
	}
	return c.Send(ctx, params)
}

// SendText sends a plain text message.
func (c *Client) SendText(ctx context.Context, to, body string) (*SendResult, error) {
	return c.SendMessage(ctx, to, Text{Body: body})
}

// SendMedia sends a text message with an attached media URL.
func (c *Client) SendMedia(ctx context.Context, to, body, mediaURL string) (*SendResult, error) {
	return c.SendMessage(ctx, to, Media{Body: body, MediaURL: mediaURL})
}

// SendTemplate sends a pre-approved content template. variables is the
// JSON substitution map, or empty for none.
func (c *Client) SendTemplate(ctx context.Context, to, contentSID, variables string) (*SendResult, error) {
	return c.SendMessage(ctx, to, Template{ContentSID: contentSID, Variables: variables})
}

// SendInteractiveButtons sends a button-reply message.
func (c *Client) SendInteractiveButtons(ctx context.Context, to string, msg InteractiveButtons) (*SendResult, error) {
	return c.SendMessage(ctx, to, msg)
}

// SendInteractiveList sends a list-picker message.
func (c *Client) SendInteractiveList(ctx context.Context, to string, msg InteractiveList) (*SendResult, error) {
	return c.SendMessage(ctx, to, msg)
}

// SendPaymentRequest sends a formatted payment summary.
func (c *Client) SendPaymentRequest(ctx context.Context, to string, req PaymentRequest) (*SendResult, error) {
	return c.SendMessage(ctx, to, req)
}

// SendReminder sends a reminder, interactive when action buttons are
// present and plain text otherwise.
func (c *Client) SendReminder(ctx context.Context, to string, rem Reminder) (*SendResult, error) {
	return c.SendMessage(ctx, to, rem)
}

// SendQuickReplies presents a choice list, as buttons for up to three
// choices and as a list menu beyond that.
func (c *Client) SendQuickReplies(ctx context.Context, to, prompt string, choices []string) (*SendResult, error) {
	msg, err := QuickReply(prompt, choices)
	if err != nil {
		return nil, err
	}
	return c.SendMessage(ctx, to, msg)
}

// SendAppointmentReminder sends an appointment summary with fixed
// confirm / reschedule / cancel buttons.
func (c *Client) SendAppointmentReminder(ctx context.Context, to, date, timeOfDay, location, doctorName string) (*SendResult, error) {
	doctorInfo := ""
	if doctorName != "" {
		doctorInfo = fmt.Sprintf("👨‍⚕️ With: Dr. %s\n", doctorName)
	}

	return c.SendMessage(ctx, to, InteractiveButtons{
		Header: "🩺 Appointment Reminder",
		Body:   fmt.Sprintf("📅 Date: %s\n⏰ Time: %s\n📍 Location: %s\n%s", date, timeOfDay, location, doctorInfo),
		Footer: "Please confirm your appointment",
		Buttons: []Button{
			{ID: "confirm", Title: "✅ Confirm"},
			{ID: "reschedule", Title: "📅 Reschedule"},
			{ID: "cancel", Title: "❌ Cancel"},
		},
	})
}

// SendOrderStatus sends an order update with tracking and support buttons.
func (c *Client) SendOrderStatus(ctx context.Context, to, orderID, status, trackingURL, estimatedDelivery string) (*SendResult, error) {
	body := fmt.Sprintf("📦 Order Update\n\nOrder ID: %s\nStatus: %s", orderID, status)
	if estimatedDelivery != "" {
		body += fmt.Sprintf("\n🚚 Estimated Delivery: %s", estimatedDelivery)
	}
	if trackingURL != "" {
		body += fmt.Sprintf("\n\n🔗 Track your order: %s", trackingURL)
	}

	return c.SendMessage(ctx, to, InteractiveButtons{
		Header: "📦 Order Status Update",
		Body:   body,
		Footer: "Need help with your order?",
		Buttons: []Button{
			{ID: "track_order", Title: "📍 Track Order"},
			{ID: "contact_support", Title: "💬 Support"},
		},
	})
}

// encodeForm form-encodes params preserving their order. url.Values would
// sort keys on Encode; the builder's order is part of the contract.
func encodeForm(params []Param) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// parseProviderDiagnostics pulls the error code and message out of a
// rejection body. Twilio encodes code as a number but proxies have been
// seen stringifying it, so both are accepted.
func parseProviderDiagnostics(body []byte) (int, string) {
	var parsed struct {
		Code    FlexString `json:"code"`
		Message string     `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, ""
	}
	code, err := strconv.Atoi(parsed.Code.String())
	if err != nil {
		code = 0
	}
	return code, parsed.Message
}
