package stream

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backend-bloghub/internal/shared/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
)

func okVerify(ctx context.Context, token string) (string, error) {
	if token != "good-token" {
		return "", apperror.Unauthenticated("invalid token")
	}
	return "user-1", nil
}

func streamApp(hub *Hub, verify VerifyToken) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apperror.Handler(false)})
	RegisterRoutes(app.Group("/stream"), hub, verify)
	return app
}

func TestStreamRejectsMissingToken(t *testing.T) {
	app := streamApp(NewHub(nil), okVerify)

	req := httptest.NewRequest(http.MethodGet, "/stream/ws", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestStreamRejectsBadToken(t *testing.T) {
	app := streamApp(NewHub(nil), okVerify)

	req := httptest.NewRequest(http.MethodGet, "/stream/ws?token=wrong", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestStreamWebsocketBroadcast(t *testing.T) {
	hub := NewHub(nil)
	app := streamApp(hub, okVerify)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}
	defer ln.Close()

	go func() {
		_ = app.Listener(ln)
	}()
	defer func() { _ = app.Shutdown() }()

	wsURL := "ws://" + ln.Addr().String() + "/stream/ws?token=good-token"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	time.Sleep(20 * time.Millisecond)
	hub.Broadcast("user-1", []byte(`{"event":"follow"}`))

	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if string(msg) != `{"event":"follow"}` {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestStreamWebsocketVerifierError(t *testing.T) {
	hub := NewHub(nil)
	app := streamApp(hub, func(ctx context.Context, token string) (string, error) {
		return "", errors.New("verifier down")
	})

	req := httptest.NewRequest(http.MethodGet, "/stream/ws?token=any", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestStreamWebsocketClientClose(t *testing.T) {
	hub := NewHub(nil)
	app := streamApp(hub, okVerify)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}
	defer ln.Close()

	go func() {
		_ = app.Listener(ln)
	}()
	defer func() { _ = app.Shutdown() }()

	wsURL := "ws://" + ln.Addr().String() + "/stream/ws?token=good-token"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	conn.Close()

	hub.Broadcast("user-1", []byte("ping"))
	time.Sleep(20 * time.Millisecond)
}
