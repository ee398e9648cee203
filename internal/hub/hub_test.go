package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"socialnet/backend/internal/intimate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesBothUsers(t *testing.T) {
	h := NewHub()
	alice := make(Client, 1)
	bob := make(Client, 1)
	carol := make(Client, 1)
	h.Subscribe(1, alice)
	h.Subscribe(2, bob)
	h.Subscribe(3, carol)

	e := intimate.NewEvent(intimate.EventApproved, 1, 2, time.Now())
	require.NoError(t, h.Publish(context.Background(), e))

	for _, c := range []Client{alice, bob} {
		select {
		case msg := <-c:
			var got struct {
				Type    string         `json:"type"`
				Payload intimate.Event `json:"payload"`
			}
			require.NoError(t, json.Unmarshal(msg, &got))
			assert.Equal(t, "intimate.approved", got.Type)
			assert.Equal(t, e.ID, got.Payload.ID)
		default:
			t.Fatal("expected an event")
		}
	}
	assert.Len(t, carol, 0)
}

func TestSendDoesNotBlockOnFullClient(t *testing.T) {
	h := NewHub()
	c := make(Client) // unbuffered, nobody reading
	h.Subscribe(1, c)

	done := make(chan struct{})
	go func() {
		_ = h.Send(1, Event{Type: "ping"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send blocked on a slow client")
	}
}

func TestUnsubscribeClosesClient(t *testing.T) {
	h := NewHub()
	c := make(Client, 1)
	h.Subscribe(1, c)
	assert.Equal(t, 1, h.Connected(1))

	h.Unsubscribe(1, c)
	assert.Equal(t, 0, h.Connected(1))

	_, open := <-c
	assert.False(t, open)

	// Unknown users and clients are ignored.
	h.Unsubscribe(1, c)
	assert.NoError(t, h.Send(42, Event{Type: "ping"}))
}
