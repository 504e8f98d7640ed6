package sse

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublishReachesOnlyRecipient(t *testing.T) {
	h := NewHub(2)

	a, cleanupA := h.Subscribe("E1")
	b, cleanupB := h.Subscribe("E2")
	defer cleanupB()

	n := h.Publish("E1", Event{EmployeeID: "E1", Event: "notification", Data: "hello"})
	assert.Equal(t, 1, n)

	got := <-a
	assert.Equal(t, "hello", got.Data)
	assert.Empty(t, b)

	cleanupA()
	cleanupA()
	_, open := <-a
	assert.False(t, open)
	assert.Equal(t, 0, h.SubscriberCount("E1"))
	assert.Equal(t, 1, h.TotalSubscribers())
}

func TestHubPublishSkipsFullStreams(t *testing.T) {
	h := NewHub(1)
	_, cleanup := h.Subscribe("E1")
	defer cleanup()

	assert.Equal(t, 1, h.Publish("E1", Event{Event: "notification"}))
	assert.Equal(t, 0, h.Publish("E1", Event{Event: "notification"}))
}

func TestEventWrite(t *testing.T) {
	var buf bytes.Buffer
	err := Event{Event: "notification", Data: map[string]string{"title": "Leave Request Approved"}}.Write(&buf)
	require.NoError(t, err)
	assert.Equal(t, "event: notification\ndata: {\"title\":\"Leave Request Approved\"}\n\n", buf.String())
}
