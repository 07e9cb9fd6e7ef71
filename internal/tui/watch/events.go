package watch

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chatwire/chatwire/internal/events"
)

func renderEventStream(eventLog []events.Event, theme Theme, width int) string {
	innerWidth := width - 4

	if len(eventLog) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			theme.Title.Render("EVENT STREAM"),
			theme.Dim.Render("  Waiting for traffic..."),
		)
		return theme.Border.Width(innerWidth).Render(content)
	}

	var lines []string
	for i, e := range eventLog {
		if i >= 10 {
			break
		}
		lines = append(lines, formatEvent(e, theme))
	}

	eventsText := lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines, "\n"))
	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render("EVENT STREAM"),
		eventsText,
	)

	return theme.Border.Width(innerWidth).Render(content)
}

func formatEvent(e events.Event, theme Theme) string {
	ts := theme.Dim.Render(e.At.Format("15:04:05"))

	var typeStyle lipgloss.Style
	switch e.Type {
	case events.TypeReplySent, events.TypeMessageSent:
		typeStyle = theme.StatusOK
	case events.TypeReplyFailed:
		typeStyle = theme.StatusFailed
	case events.TypeMessageRejected:
		typeStyle = theme.StatusRejected
	case events.TypeMessageReceived:
		typeStyle = theme.StatusPending
	default:
		typeStyle = theme.Dim
	}

	typeName := typeStyle.Render(fmt.Sprintf("%-18s", e.Type))

	return fmt.Sprintf("%s %s %s", ts, typeName, extractEventDesc(e))
}

// extractEventDesc summarizes a traffic payload for the stream line.
func extractEventDesc(e events.Event) string {
	var t events.Traffic
	_ = json.Unmarshal(e.Data, &t)

	var parts []string
	if t.From != "" {
		parts = append(parts, t.From)
	}
	if t.To != "" {
		parts = append(parts, "→ "+t.To)
	}
	if t.MessageSID != "" {
		sid := t.MessageSID
		if len(sid) > 10 {
			sid = sid[:10]
		}
		parts = append(parts, fmt.Sprintf("[%s]", sid))
	}
	if t.Status != "" {
		parts = append(parts, t.Status)
	}
	if t.Reason != "" {
		parts = append(parts, t.Reason)
	}

	if len(parts) == 0 {
		raw := string(e.Data)
		if len(raw) > 60 {
			raw = raw[:60] + "..."
		}
		return raw
	}

	return strings.Join(parts, " ")
}
