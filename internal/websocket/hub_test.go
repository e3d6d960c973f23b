package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scorecard/internal/config"
	"scorecard/internal/shared/testutil"
)

func startServer(t *testing.T, allowed []string) (*Hub, *httptest.Server) {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	hub := NewHub(logger)
	hub.Start()

	srv := httptest.NewServer(NewHandler(hub, config.Default().WebSocket, allowed, logger))
	t.Cleanup(func() {
		srv.Close()
		hub.Stop()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_ConnectAndRefresh(t *testing.T) {
	hub, srv := startServer(t, nil)
	conn := dial(t, srv, nil)

	hello := readMessage(t, conn)
	assert.Equal(t, TypeConnection, hello.Type)
	assert.Equal(t, 1, hub.ClientCount())

	hub.BroadcastRefresh("watcher", []string{"kpis", "charts"})

	msg := readMessage(t, conn)
	assert.Equal(t, TypeDataUpdate, msg.Type)
	assert.Equal(t, SubtypeAll, msg.Subtype)
	assert.Equal(t, ActionRefresh, msg.Action)

	data, ok := msg.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "watcher", data["source"])

	stats := hub.Stats()
	assert.Equal(t, int64(1), stats.TotalConnections)
	assert.GreaterOrEqual(t, stats.MessagesSent, int64(2))
}

func TestHub_ClientDisconnectUnregisters(t *testing.T) {
	hub, srv := startServer(t, nil)
	conn := dial(t, srv, nil)
	readMessage(t, conn)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_StopClosesClients(t *testing.T) {
	hub, srv := startServer(t, nil)
	conn := dial(t, srv, nil)
	readMessage(t, conn)

	hub.Stop()
	hub.Stop()
	assert.Equal(t, 0, hub.ClientCount())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)

	// broadcasting after stop must not block
	done := make(chan struct{})
	go func() {
		hub.BroadcastRefresh("test", nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked after stop")
	}
}

func TestHub_BroadcastBeforeStart(t *testing.T) {
	hub := NewHub(nil)
	hub.BroadcastRefresh("test", nil)
	hub.Stop()
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHandler_OriginCheck(t *testing.T) {
	_, srv := startServer(t, []string{"http://allowed.example"})
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn := dial(t, srv, http.Header{"Origin": {"http://allowed.example"}})
	assert.Equal(t, TypeConnection, readMessage(t, conn).Type)
}

func TestOriginChecker_SameHost(t *testing.T) {
	check := originChecker(nil)
	r := httptest.NewRequest(http.MethodGet, "http://dash.local:8501/ws", nil)
	r.Header.Set("Origin", "http://dash.local:8501")
	assert.True(t, check(r))

	r.Header.Set("Origin", "http://other.local")
	assert.False(t, check(r))
}
