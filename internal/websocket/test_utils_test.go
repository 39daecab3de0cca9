package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"forms-service/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// receivedFrame is an outgoing frame as a client sees it.
type receivedFrame struct {
	Event MessageType     `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func createTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil)
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

// createTestClient registers a client without a network connection; frames queue on send.
func createTestClient(t *testing.T, hub *Hub, session models.Session) *Client {
	t.Helper()
	client := NewClient(hub, nil, session)
	require.True(t, hub.Register(client))
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return hub.clients[client]
	}, time.Second, 5*time.Millisecond)
	return client
}

func nextFrame(t *testing.T, c *Client) receivedFrame {
	t.Helper()
	select {
	case raw, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var f receivedFrame
		require.NoError(t, json.Unmarshal(raw, &f))
		return f
	case <-time.After(2 * time.Second):
		t.Fatalf("no frame received by %s", c.session.Name)
		return receivedFrame{}
	}
}

func assertNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case raw := <-c.send:
		t.Fatalf("unexpected frame for %s: %s", c.session.Name, raw)
	case <-time.After(100 * time.Millisecond):
	}
}

func decodeData[T any](t *testing.T, f receivedFrame) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(f.Data, &v))
	return v
}

// isRedisAvailable checks if Redis is available for testing
func isRedisAvailable() bool {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	_, err := client.Ping(ctx).Result()
	return err == nil
}
