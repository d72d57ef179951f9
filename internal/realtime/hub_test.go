package realtime

import (
	"testing"

	"mandi/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesRoomSubscribersOnly(t *testing.T) {
	hub := NewHub()
	a := hub.Subscribe("room-a")
	b := hub.Subscribe("room-b")
	defer hub.Unsubscribe(a)
	defer hub.Unsubscribe(b)

	delivered, dropped := hub.Publish(models.Message{ID: "m1", ChatRoomID: "room-a", Body: "hello"})
	assert.Equal(t, 1, delivered)
	assert.Zero(t, dropped)

	msg := <-a.C
	assert.Equal(t, "m1", msg.ID)
	assert.Empty(t, b.C)
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("room")
	defer hub.Unsubscribe(sub)

	for i := 0; i < subscriberBuffer; i++ {
		hub.Publish(models.Message{ChatRoomID: "room"})
	}
	delivered, dropped := hub.Publish(models.Message{ChatRoomID: "room"})
	assert.Zero(t, delivered)
	assert.Equal(t, 1, dropped)
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("room")
	require.Equal(t, 1, hub.Subscribers("room"))

	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)
	assert.Zero(t, hub.Subscribers("room"))

	_, open := <-sub.C
	assert.False(t, open)

	delivered, _ := hub.Publish(models.Message{ChatRoomID: "room"})
	assert.Zero(t, delivered)
}
