package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wricardo/atomic-chess/game/engine"
)

func newTestClient(hub *Hub, sessionID string, buffer int) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, buffer),
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub(nil)

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if hub.events == nil {
		t.Error("Hub events channel is nil")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client := newTestClient(hub, "test-session", 8)

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if hub.ClientCount("test-session") != 1 {
		t.Errorf("Expected 1 client in session, got %d", hub.ClientCount("test-session"))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client := newTestClient(hub, "test-session", 8)

	hub.registerClient(client)
	hub.unregisterClient(client)
	// second unregister must not close the channel again
	hub.unregisterClient(client)

	if hub.SessionCount() != 0 {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Expected send channel to be closed")
	}
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub(zap.NewNop())
	sessionID := "multi-client-session"

	client1 := newTestClient(hub, sessionID, 8)
	client2 := newTestClient(hub, sessionID, 8)
	hub.registerClient(client1)
	hub.registerClient(client2)

	if hub.ClientCount(sessionID) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", hub.ClientCount(sessionID))
	}

	hub.unregisterClient(client1)

	if hub.ClientCount(sessionID) != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", hub.ClientCount(sessionID))
	}
	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastToSession(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client := newTestClient(hub, "broadcast-test", 8)
	other := newTestClient(hub, "other", 8)
	hub.registerClient(client)
	hub.registerClient(other)

	state := engine.InitGameStateFromConfig(engine.DefaultGameConfig())
	hub.BroadcastToSession("broadcast-test", state)

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.SessionID != "broadcast-test" {
			t.Errorf("Expected sessionID broadcast-test, got %s", message.SessionID)
		}
		if message.Event != EventStateUpdate {
			t.Errorf("Expected event 'state_update', got %s", message.Event)
		}
		if message.GameState == nil || message.GameState.Board != state.Board {
			t.Error("GameState not correctly transmitted")
		}
		if message.FEN != engine.StandardFEN {
			t.Errorf("Expected FEN %q, got %q", engine.StandardFEN, message.FEN)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No message received within timeout")
	}

	if len(other.send) != 0 {
		t.Error("Clients of other sessions should not receive the update")
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	slow := newTestClient(hub, "slow", 1)
	hub.registerClient(slow)

	state := engine.InitGameStateFromConfig(engine.DefaultGameConfig())
	hub.BroadcastToSession("slow", state)
	hub.BroadcastToSession("slow", state)

	if hub.ClientCount("slow") != 0 {
		t.Error("Expected slow client to be dropped")
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client := newTestClient(hub, "event-test", 8)
	hub.registerClient(client)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	hub.BroadcastEvent("event-test", "custom-event", "test-data")

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.Event != "custom-event" {
			t.Errorf("Expected event 'custom-event', got %s", message.Event)
		}
		if message.Data != "test-data" {
			t.Errorf("Expected data 'test-data', got %v", message.Data)
		}
	case <-time.After(time.Second):
		t.Fatal("No event received within timeout")
	}

	cancel()
	<-done
	if hub.SessionCount() != 0 {
		t.Error("Expected Run to disconnect clients on shutdown")
	}
}

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	t.Cleanup(server.Close)
	return server
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}

func TestWebSocketLifecycle(t *testing.T) {
	hub := NewHub(zap.NewNop())
	server := newTestServer(t, hub)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=ws-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}

	waitFor(t, func() bool { return hub.ClientCount("ws-test") == 1 })

	conn.Close()

	waitFor(t, func() bool { return hub.ClientCount("ws-test") == 0 })
}

func TestWebSocketMessageReceive(t *testing.T) {
	hub := NewHub(zap.NewNop())
	server := newTestServer(t, hub)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=msg-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	waitFor(t, func() bool { return hub.ClientCount("msg-test") == 1 })

	eng := engine.NewGame()
	if !eng.MakeMove("e2", "e4") {
		t.Fatal("Expected e2-e4 to be accepted")
	}
	hub.BroadcastToSession("msg-test", eng.GetState())

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, messageData, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}

	var message Message
	if err := json.Unmarshal(messageData, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	if message.SessionID != "msg-test" {
		t.Errorf("Expected sessionID 'msg-test', got %s", message.SessionID)
	}
	if message.GameState.SideToMove != engine.Black {
		t.Errorf("Expected Black to move, got %s", message.GameState.SideToMove)
	}
	if len(message.GameState.MoveHistory) != 1 {
		t.Errorf("Expected 1 history entry, got %d", len(message.GameState.MoveHistory))
	}
	if !strings.HasPrefix(message.FEN, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b") {
		t.Errorf("Unexpected FEN %q", message.FEN)
	}
}
