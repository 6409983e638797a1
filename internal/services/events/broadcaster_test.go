package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/vn-engine/internal/dialogue"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestBroadcaster_Publish(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()
	id := uuid.New()

	sub := client.Subscribe(ctx, Channel(id))
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	b := NewBroadcaster(client, testLogger())
	sent := dialogue.Event{
		Type:      dialogue.EventLineShown,
		SessionID: id,
		Script:    "open_door",
		Speaker:   "ALICE",
		Text:      "Hello",
		Line:      1,
	}
	require.NoError(t, b.Publish(ctx, sent))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, "dialogue-events:"+id.String(), msg.Channel)

		var got dialogue.Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, sent, got)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestBroadcaster_OtherSessionsNotDelivered(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()
	mine, other := uuid.New(), uuid.New()

	sub := client.Subscribe(ctx, Channel(mine))
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	b := NewBroadcaster(client, testLogger())
	require.NoError(t, b.Publish(ctx, dialogue.Event{Type: dialogue.EventSessionStarted, SessionID: other}))
	require.NoError(t, b.Publish(ctx, dialogue.Event{Type: dialogue.EventSessionEnded, SessionID: mine}))

	msg := <-sub.Channel()
	var got dialogue.Event
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	assert.Equal(t, dialogue.EventSessionEnded, got.Type)
	assert.Equal(t, mine, got.SessionID)
}

func TestBroadcaster_PublishFailure(t *testing.T) {
	mr, client := setupTestRedis(t)
	mr.Close()

	b := NewBroadcaster(client, testLogger())
	err := b.Publish(context.Background(), dialogue.Event{Type: dialogue.EventDiagnostic, SessionID: uuid.New()})
	assert.ErrorContains(t, err, "failed to publish event")
}
