// Package upi builds UPI deep links and payment-request messages.
//
// A UPI link encodes the payee address (pa), payee name (pn), amount (am)
// and currency (cu) as query parameters on an app-specific scheme. The
// generic upi:// scheme is handled by whichever UPI app the recipient has
// installed; the app-specific schemes open one app directly.
package upi

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/chatwire/chatwire/internal/twilio"
)

// App selects the URI scheme for a payment link.
type App int

const (
	// Any uses the generic upi:// scheme.
	Any App = iota
	GooglePay
	PhonePe
	Paytm
)

// Scheme returns the deep-link prefix for the app.
func (a App) Scheme() string {
	switch a {
	case GooglePay:
		return "tez://upi/pay"
	case PhonePe:
		return "phonepe://upi/pay"
	case Paytm:
		return "paytmmp://pay"
	default:
		return "upi://pay"
	}
}

func (a App) String() string {
	switch a {
	case GooglePay:
		return "googlepay"
	case PhonePe:
		return "phonepe"
	case Paytm:
		return "paytm"
	default:
		return "any"
	}
}

// ParseApp maps a user-supplied app name to an App. Unknown names fall
// back to the generic scheme with an error so callers can warn.
func ParseApp(name string) (App, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "any", "upi":
		return Any, nil
	case "googlepay", "gpay", "tez":
		return GooglePay, nil
	case "phonepe":
		return PhonePe, nil
	case "paytm":
		return Paytm, nil
	}
	return Any, fmt.Errorf("unknown UPI app %q", name)
}

// Link builds a UPI payment deep link. Amount is formatted with two
// decimal places and the currency is always INR. An empty note omits
// the tn parameter.
func Link(vpa, payee string, amount float64, note string, app App) string {
	var b strings.Builder
	b.WriteString(app.Scheme())
	b.WriteString("?pa=")
	b.WriteString(url.QueryEscape(vpa))
	b.WriteString("&pn=")
	b.WriteString(url.QueryEscape(payee))
	fmt.Fprintf(&b, "&am=%.2f&cu=INR", amount)
	if note != "" {
		b.WriteString("&tn=")
		b.WriteString(url.QueryEscape(note))
	}
	return b.String()
}

// QRText renders the link as a terminal-friendly QR code using half-block
// characters.
func QRText(link string) (string, error) {
	code, err := qrcode.New(link, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("encoding QR code: %w", err)
	}
	return code.ToSmallString(false), nil
}

// QRPNG renders the link as a PNG image, size pixels per side.
func QRPNG(link string, size int) ([]byte, error) {
	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encoding QR code: %w", err)
	}
	return png, nil
}

// TextSender sends a plain text message to a recipient.
type TextSender interface {
	SendText(ctx context.Context, to, body string) (*twilio.SendResult, error)
}

// Request describes a UPI payment request message.
type Request struct {
	// To is the recipient phone number, with or without the channel prefix.
	To string
	// VPA is the payee's UPI address, e.g. shop@upi.
	VPA string
	// Payee is the display name shown in the paying app.
	Payee string
	// Amount is the amount due in INR.
	Amount float64
	// Note is an optional transaction note carried in the link.
	Note string
	// App selects the link scheme.
	App App
	// IncludeQR appends a scannable text QR code to the message body.
	IncludeQR bool
	// Format overrides the default message body. It receives the payee
	// name, the amount and the generated link.
	Format func(payee string, amount float64, link string) string
}

func (r Request) validate() error {
	if r.To == "" {
		return &twilio.ValidationError{Field: "to", Reason: "recipient is required"}
	}
	if !strings.Contains(r.VPA, "@") {
		return &twilio.ValidationError{Field: "vpa", Reason: "UPI address must contain @"}
	}
	if r.Payee == "" {
		return &twilio.ValidationError{Field: "payee", Reason: "payee name is required"}
	}
	if r.Amount <= 0 {
		return &twilio.ValidationError{Field: "amount", Reason: "amount must be positive"}
	}
	return nil
}

// SendRequest builds the payment link and sends it as a text message.
// QR rendering failures degrade to a link-only message rather than
// failing the send.
func SendRequest(ctx context.Context, sender TextSender, req Request) (*twilio.SendResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	link := Link(req.VPA, req.Payee, req.Amount, req.Note, req.App)

	var body string
	if req.Format != nil {
		body = req.Format(req.Payee, req.Amount, link)
	} else {
		body = fmt.Sprintf("Hi %s,\nPlease complete the payment of INR %.2f using the UPI link below:\n%s",
			req.Payee, req.Amount, link)
	}

	if req.IncludeQR {
		if qr, err := QRText(link); err == nil {
			body = fmt.Sprintf("%s\n\nScan this QR:\n%s", body, qr)
		}
	}

	return sender.SendText(ctx, req.To, body)
}
