package watch

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/chatwire/chatwire/internal/events"
)

// TrafficCounters aggregates message traffic by outcome.
type TrafficCounters struct {
	Received   int
	Rejected   int
	RepliesOK  int
	RepliesErr int
	Sent       int

	lastSeen map[string]time.Time
}

func NewTrafficCounters() TrafficCounters {
	return TrafficCounters{lastSeen: make(map[string]time.Time)}
}

func (c *TrafficCounters) Observe(e events.Event) {
	switch e.Type {
	case events.TypeMessageReceived:
		c.Received++
	case events.TypeMessageRejected:
		c.Rejected++
	case events.TypeReplySent:
		c.RepliesOK++
	case events.TypeReplyFailed:
		c.RepliesErr++
	case events.TypeMessageSent:
		c.Sent++
	}
	c.lastSeen[e.Type] = e.At
}

func newTrafficTable() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Event", Width: 20},
			{Title: "Count", Width: 8},
			{Title: "Last seen", Width: 12},
		}),
		table.WithHeight(5),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func trafficRows(c TrafficCounters) []table.Row {
	entries := []struct {
		typ   string
		count int
	}{
		{events.TypeMessageReceived, c.Received},
		{events.TypeMessageRejected, c.Rejected},
		{events.TypeReplySent, c.RepliesOK},
		{events.TypeReplyFailed, c.RepliesErr},
		{events.TypeMessageSent, c.Sent},
	}

	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		last := "-"
		if at, ok := c.lastSeen[e.typ]; ok {
			last = at.Local().Format("15:04:05")
		}
		rows = append(rows, table.Row{e.typ, fmt.Sprintf("%d", e.count), last})
	}
	return rows
}
