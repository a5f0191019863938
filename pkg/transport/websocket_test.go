package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWebSocket_OriginValidation(t *testing.T) {
	tests := []struct {
		name          string
		allowed       []string
		origin        string
		host          string
		expectAllowed bool
	}{
		{"same-origin allowed", nil, "https://example.com", "example.com", true},
		{"no origin allowed", nil, "", "example.com", true},
		{"explicit origin allowed", []string{"https://allowed.com"}, "https://allowed.com", "example.com", true},
		{"host match allowed", []string{"http://allowed.com"}, "https://allowed.com", "example.com", true},
		{"origin not in list blocked", []string{"https://allowed.com"}, "https://attacker.com", "example.com", false},
		{"wildcard allows all", []string{"*"}, "https://any-site.com", "example.com", true},
		{"cross-origin blocked by default", nil, "https://attacker.com", "example.com", false},
		{"garbage origin blocked", nil, "://", "example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewWebSocketTransport(nil, &WebSocketConfig{AllowedOrigins: tt.allowed}, nil)
			if got := tr.isOriginAllowed(tt.origin, tt.host); got != tt.expectAllowed {
				t.Errorf("isOriginAllowed(%q, %q) = %v, want %v", tt.origin, tt.host, got, tt.expectAllowed)
			}
		})
	}
}

func TestWebSocket_UpgradeRejectsForeignOrigin(t *testing.T) {
	tr := NewWebSocketTransport(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "example.com"
	req.Header.Set("Origin", "https://attacker.com")
	rec := httptest.NewRecorder()

	if err := tr.Upgrade(rec, req); err != ErrOriginNotAllowed {
		t.Fatalf("expected ErrOriginNotAllowed, got %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestWebSocket_RoundTrip(t *testing.T) {
	accepted := make(chan *WebSocketTransport, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tr := NewWebSocketTransport(nil, nil, nil)
		if err := tr.Upgrade(w, r); err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		accepted <- tr
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	tr := <-accepted

	if err := wsjson.Write(ctx, conn, Message{Ref: "1", Topic: "lv:x", Event: "terminal-toggle"}); err != nil {
		t.Fatalf("client write: %v", err)
	}

	select {
	case msg := <-tr.Receive():
		if msg.Event != "terminal-toggle" || msg.Ref != "1" {
			t.Errorf("unexpected message %+v", msg)
		}
	case <-ctx.Done():
		t.Fatal("server did not receive the message")
	}

	if err := tr.Send(Message{Topic: "lv:x", Event: "focus", Payload: map[string]any{"target": "terminal-input"}}); err != nil {
		t.Fatalf("server send: %v", err)
	}

	var got Message
	if err := wsjson.Read(ctx, conn, &got); err != nil {
		t.Fatalf("client read: %v", err)
	}
	if got.Event != "focus" || got.Payload["target"] != "terminal-input" {
		t.Errorf("unexpected message %+v", got)
	}

	if err := conn.Close(websocket.StatusNormalClosure, ""); err != nil {
		t.Fatalf("client close: %v", err)
	}
	tr.Wait()

	if tr.IsConnected() {
		t.Error("transport should be disconnected once the client leaves")
	}
	if err := tr.Send(Message{Event: "x"}); err != ErrNotConnected {
		t.Errorf("send after close = %v, want ErrNotConnected", err)
	}
}

func TestMessage_Unmarshal(t *testing.T) {
	msg, err := Unmarshal([]byte(`{"ref":"7","topic":"lv:a","event":"terminal-submit","payload":{"value":"help"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if msg.Payload["value"] != "help" {
		t.Errorf("payload = %+v", msg.Payload)
	}

	if _, err := Unmarshal([]byte(`not json`)); err == nil {
		t.Error("expected error for malformed message")
	}
}
