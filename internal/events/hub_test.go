package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	hub := NewHub(8)
	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.Publish(TypeMessageReceived, Traffic{From: "whatsapp:+1", MessageSID: "SM1"})

	ev := <-ch
	assert.Equal(t, TypeMessageReceived, ev.Type)

	var traffic Traffic
	require.NoError(t, json.Unmarshal(ev.Data, &traffic))
	assert.Equal(t, "whatsapp:+1", traffic.From)
	assert.Equal(t, "SM1", traffic.MessageSID)
}

func TestSnapshotSince(t *testing.T) {
	hub := NewHub(4)
	for i := 0; i < 6; i++ {
		hub.Publish(TypeMessageSent, nil)
	}

	// Ring capacity 4: only the last four events survive.
	all := hub.SnapshotSince(0)
	require.Len(t, all, 4)
	assert.Equal(t, int64(3), all[0].ID)
	assert.Equal(t, int64(6), all[3].ID)

	later := hub.SnapshotSince(5)
	require.Len(t, later, 1)
	assert.Equal(t, int64(6), later[0].ID)
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub(4)
	_, cancel := hub.Subscribe()
	defer cancel()

	// Channel buffer is 128; publishing more must not deadlock.
	for i := 0; i < 200; i++ {
		hub.Publish(TypeReplySent, nil)
	}
}
