package server

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"sketchparty/internal/config"
	"sketchparty/internal/content"
	"sketchparty/internal/game"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

type testGateway struct {
	srv   *Server
	ts    *httptest.Server
	clock *clockwork.FakeClock
}

func newTestGateway(t *testing.T, mutate func(*config.Config)) *testGateway {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	clock := clockwork.NewFakeClock()
	srv := New(cfg, content.Builtin(), game.WithClock(clock))
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Registry().Close()
	})
	return &testGateway{srv: srv, ts: ts, clock: clock}
}

func (g *testGateway) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(g.ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

type wireEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (e wireEvent) decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(e.Data, v), "decode %s payload", e.Type)
}

func sendIntent(t *testing.T, conn *websocket.Conn, intent string, data any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{"type": intent, "data": data}))
}

func readEvent(t *testing.T, conn *websocket.Conn, timeout time.Duration) wireEvent {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	var event wireEvent
	require.NoError(t, conn.ReadJSON(&event), "read websocket event")
	return event
}

// waitForEvent skips events of other types until one of eventType arrives.
func waitForEvent(t *testing.T, conn *websocket.Conn, eventType string) wireEvent {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		event := readEvent(t, conn, time.Until(deadline))
		if event.Type == eventType {
			return event
		}
	}
	t.Fatalf("timed out waiting for %s", eventType)
	return wireEvent{}
}

// expectNoEvent must be the last read on conn; a timed out read leaves the
// connection unusable.
func expectNoEvent(t *testing.T, conn *websocket.Conn, eventType string, timeout time.Duration) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	for {
		var event wireEvent
		if err := conn.ReadJSON(&event); err != nil {
			return
		}
		if eventType == "" || event.Type == eventType {
			t.Fatalf("unexpected %s event: %s", event.Type, string(event.Data))
		}
	}
}

type joinedPayload struct {
	Code        string           `json:"code"`
	Participant game.Participant `json:"participant"`
	Reconnected bool             `json:"reconnected"`
}

func createRoom(t *testing.T, conn *websocket.Conn, name, mode string) joinedPayload {
	t.Helper()
	sendIntent(t, conn, "create_room", map[string]any{"name": name, "mode": mode})
	var created joinedPayload
	waitForEvent(t, conn, "room_created").decode(t, &created)
	require.Len(t, created.Code, 6)
	require.NotEmpty(t, created.Participant.ID)
	return created
}

func joinRoom(t *testing.T, conn *websocket.Conn, code, name, priorID string) joinedPayload {
	t.Helper()
	sendIntent(t, conn, "join_room", map[string]any{"code": code, "name": name, "participant_id": priorID})
	var joined joinedPayload
	waitForEvent(t, conn, "joined_room").decode(t, &joined)
	return joined
}
