package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubFanOut(t *testing.T) {
	h := NewHub()
	a, b := h.Subscribe(), h.Subscribe()
	defer h.Unsubscribe(a)
	defer h.Unsubscribe(b)

	h.Emit(TypeRunStarted, RunStarted{RunID: "r1", Query: "Receptionist"})

	for _, ch := range []chan string{a, b} {
		var e Event
		require.NoError(t, json.Unmarshal([]byte(<-ch), &e))
		assert.Equal(t, TypeRunStarted, e.Type)
		assert.Equal(t, 1, e.Version)

		var d RunStarted
		require.NoError(t, json.Unmarshal(e.Data, &d))
		assert.Equal(t, "r1", d.RunID)
	}
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	for i := 0; i < cap(ch)+5; i++ {
		h.Publish("x")
	}
	assert.Len(t, ch, cap(ch))
}

func TestNilHubIsNoop(t *testing.T) {
	var h *Hub
	assert.NotPanics(t, func() {
		h.Publish("x")
		h.Emit(TypePing, nil)
	})
}
