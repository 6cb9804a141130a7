package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(hub.Serve))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func TestHubDeliversEvents(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub)

	// Registration races the dial; give the hub a moment to add the client.
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients) == 1
	}, time.Second, 10*time.Millisecond)

	hub.NotifyChange("folder", "created", 42)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))

	var event Event
	require.NoError(t, conn.ReadJSON(&event))
	require.Equal(t, "folder", event.Resource)
	require.Equal(t, "created", event.Action)
	require.Equal(t, int64(42), event.ID)
}

func TestHubRemovesDisconnectedClients(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub)

	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients) == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients) == 0
	}, time.Second, 10*time.Millisecond)

	// Publishing into an empty hub is harmless.
	hub.NotifyChange("storage", "deleted", 1)
}
