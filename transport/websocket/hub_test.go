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

	"github.com/wricardo/rush-hour-solver/game/engine"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, sendBuffer),
	}
}

// waitFor polls cond until it holds or a second passes
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func testGameState() *engine.GameState {
	return &engine.GameState{
		PuzzleName: "ws",
		Size:       6,
		Vehicles: []engine.Vehicle{
			{Name: "r", Row: 2, Col: 1, Length: 2, Orientation: engine.Horizontal},
		},
		Board:      []string{"......", "......", ".rr...", "......", "......", "......"},
		TotalMoves: 3,
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
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("Hub channels should be initialized")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("Expected 0 clients, got %d", hub.ClientCount())
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if len(hub.sessions["test-session"]) != 1 {
		t.Errorf("Expected 1 client in session, got %d", len(hub.sessions["test-session"]))
	}
	if hub.ClientCount() != 1 {
		t.Errorf("Expected client count 1, got %d", hub.ClientCount())
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Send channel should be closed")
	}

	// A second unregister is a no-op
	hub.unregisterClient(client)
	if hub.ClientCount() != 0 {
		t.Errorf("Expected client count 0, got %d", hub.ClientCount())
	}
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub(nil)
	sessionID := "multi-client-session"

	client1 := newTestClient(hub, sessionID)
	client2 := newTestClient(hub, sessionID)
	hub.registerClient(client1)
	hub.registerClient(client2)

	if len(hub.sessions[sessionID]) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", len(hub.sessions[sessionID]))
	}

	hub.unregisterClient(client1)

	if len(hub.sessions[sessionID]) != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", len(hub.sessions[sessionID]))
	}
	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastMessage(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(hub, "broadcast-test")
	other := newTestClient(hub, "other-session")
	hub.registerClient(client)
	hub.registerClient(other)

	hub.broadcastMessage(&Message{SessionID: "broadcast-test", GameState: testGameState(), Event: EventStateUpdate})

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
			t.Errorf("Expected event %q, got %q", EventStateUpdate, message.Event)
		}
		if message.GameState == nil || message.GameState.Board[2] != ".rr..." {
			t.Errorf("GameState not correctly transmitted: %+v", message.GameState)
		}
	default:
		t.Error("No message queued for session client")
	}

	select {
	case <-other.send:
		t.Error("Clients of other sessions should not receive the message")
	default:
	}
}

func TestHubBroadcastDropsSlowClient(t *testing.T) {
	hub := NewHub(nil)
	slow := &Client{hub: hub, sessionID: "slow", send: make(chan []byte)}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{SessionID: "slow", Event: EventStateUpdate})

	if _, exists := hub.sessions["slow"]; exists {
		t.Error("Slow client should have been unregistered")
	}
}

func TestHubBroadcastEventQueues(t *testing.T) {
	hub := NewHub(nil)

	hub.BroadcastEvent("event-test", EventHint, "r-Right")

	select {
	case message := <-hub.broadcast:
		if message.SessionID != "event-test" || message.Event != EventHint {
			t.Errorf("Unexpected message %+v", message)
		}
		if message.Data != "r-Right" {
			t.Errorf("Expected data r-Right, got %v", message.Data)
		}
	default:
		t.Error("BroadcastEvent should queue a message")
	}
}

func TestHubPublishNeverBlocks(t *testing.T) {
	hub := NewHub(nil)

	// Nobody is running the hub; overflowing the queue must return
	done := make(chan struct{})
	go func() {
		for i := 0; i < sendBuffer*2; i++ {
			hub.BroadcastToSession("full", testGameState())
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("BroadcastToSession blocked on a full queue")
	}
}

func newTestServer(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	t.Cleanup(server.Close)

	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestWebSocketUpgrade(t *testing.T) {
	hub, wsURL := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?session=ws-test", nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}

	waitFor(t, "registration", func() bool { return hub.ClientCount() == 1 })

	conn.Close()

	waitFor(t, "unregistration", func() bool { return hub.ClientCount() == 0 })
}

func TestWebSocketMessageReceive(t *testing.T) {
	hub, wsURL := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?session=msg-test", nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	waitFor(t, "registration", func() bool { return hub.ClientCount() == 1 })

	hub.BroadcastToSession("msg-test", testGameState())
	hub.BroadcastEvent("msg-test", EventSolve, map[string]any{"steps": 3})

	conn.SetReadDeadline(time.Now().Add(time.Second))

	var first, second Message
	for _, m := range []*Message{&first, &second} {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Failed to read WebSocket message: %v", err)
		}
		if err := json.Unmarshal(data, m); err != nil {
			t.Fatalf("Failed to unmarshal message %q: %v", data, err)
		}
	}

	if first.Event != EventStateUpdate || first.GameState == nil || first.GameState.TotalMoves != 3 {
		t.Errorf("Unexpected state message: %+v", first)
	}
	if second.Event != EventSolve {
		t.Errorf("Expected event %q, got %q", EventSolve, second.Event)
	}
	if data, ok := second.Data.(map[string]any); !ok || data["steps"] != float64(3) {
		t.Errorf("Unexpected solve payload: %v", second.Data)
	}
}

func TestHubRunStopsOnCancel(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
