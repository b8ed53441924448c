package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/driftpad/driftpad/internal/reconciler"
)

func startTestServer(t *testing.T) *Server {
	t.Helper()

	s := NewServer(&Config{
		Port:   0,
		Logger: log.New(os.Stderr, "[test] ", 0),
	})
	if err := s.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Stop() })

	return s
}

func TestServerStartStop(t *testing.T) {
	s := startTestServer(t)

	if s.Addr() == "" {
		t.Fatal("server address is empty")
	}
}

func TestStatusBroadcast(t *testing.T) {
	s := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, fmt.Sprintf("ws://%s/ws", s.Addr()), nil)
	if err != nil {
		t.Fatalf("websocket.Dial() failed: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	// Wait until the server has registered the client.
	deadline := time.Now().Add(2 * time.Second)
	for s.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.ClientCount() != 1 {
		t.Fatalf("client count = %d, want 1", s.ClientCount())
	}

	s.BroadcastStatus("syncing")

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	if msg.Type != MessageTypeStatus {
		t.Errorf("message type = %q, want status", msg.Type)
	}

	var status StatusData
	if err := json.Unmarshal(msg.Data, &status); err != nil {
		t.Fatalf("Unmarshal(data) failed: %v", err)
	}
	if status.State != "syncing" {
		t.Errorf("state = %q, want syncing", status.State)
	}
}

func TestPassBroadcast(t *testing.T) {
	s := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, fmt.Sprintf("ws://%s/ws", s.Addr()), nil)
	if err != nil {
		t.Fatalf("websocket.Dial() failed: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	deadline := time.Now().Add(2 * time.Second)
	for s.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	s.BroadcastPass(reconciler.Summary{Pushed: 2, Pulled: 1})

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	if msg.Type != MessageTypePass {
		t.Errorf("message type = %q, want pass", msg.Type)
	}

	var pass PassData
	if err := json.Unmarshal(msg.Data, &pass); err != nil {
		t.Fatalf("Unmarshal(data) failed: %v", err)
	}
	if pass.Pushed != 2 || pass.Pulled != 1 {
		t.Errorf("pass data = %+v, want pushed=2 pulled=1", pass)
	}
}
