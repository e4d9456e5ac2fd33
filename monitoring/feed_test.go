package monitoring

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap/zaptest"
)

func startFeed(t *testing.T) (*Feed, string, context.CancelFunc) {
	t.Helper()
	feed := NewFeed(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	go feed.Run(ctx)

	server := httptest.NewServer(feed)
	t.Cleanup(func() {
		cancel()
		server.Close()
	})
	return feed, "ws" + strings.TrimPrefix(server.URL, "http"), cancel
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, feed *Feed, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for feed.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", want, feed.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestFeedBroadcastsToAllClients(t *testing.T) {
	feed, url, _ := startFeed(t)
	first := dial(t, url)
	second := dial(t, url)
	waitForClients(t, feed, 2)

	feed.Publish(EventPrediction, map[string]any{"Name": "Asha", "Eligibility": "Eligible"})

	for _, conn := range []*websocket.Conn{first, second} {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if msg.Type != EventPrediction || msg.ID == "" || msg.Timestamp.IsZero() {
			t.Fatalf("unexpected envelope: %s", raw)
		}
		var data map[string]any
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
		if data["Eligibility"] != "Eligible" {
			t.Fatalf("unexpected data: %v", data)
		}
	}
}

func TestFeedDropsDisconnectedClients(t *testing.T) {
	feed, url, _ := startFeed(t)
	conn := dial(t, url)
	waitForClients(t, feed, 1)

	conn.Close()
	waitForClients(t, feed, 0)
}

func TestFeedClosesClientsOnShutdown(t *testing.T) {
	feed, url, cancel := startFeed(t)
	conn := dial(t, url)
	waitForClients(t, feed, 1)

	cancel()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected connection to close")
	}
}

func TestPublishWithoutSubscribersDoesNotBlock(t *testing.T) {
	feed := NewFeed(zaptest.NewLogger(t))
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			feed.Publish(EventCleared, map[string]int64{"deleted": 0})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked")
	}
}
