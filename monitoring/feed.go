package monitoring

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// EventType 事件类型
type EventType string

const (
	EventPrediction EventType = "prediction"
	EventCleared    EventType = "cleared"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

// Message is one frame on the prediction feed.
type Message struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	ID        string          `json:"id"`
	Data      json.RawMessage `json:"data"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	id   string
}

// Feed fans prediction events out to websocket subscribers. The client set
// is owned by the Run goroutine; everything else talks to it over channels.
type Feed struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}
	count      atomic.Int64
	upgrader   websocket.Upgrader
	logger     *zap.Logger
}

func NewFeed(logger *zap.Logger) *Feed {
	return &Feed{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			// Browser dashboards may be served from any origin.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}
}

// Run serves registrations and broadcasts until ctx is done, then closes
// every client.
func (f *Feed) Run(ctx context.Context) {
	defer close(f.done)
	for {
		select {
		case c := <-f.register:
			f.clients[c] = true
			f.setCount()
			f.logger.Debug("feed client connected", zap.String("client", c.id), zap.Int("total", len(f.clients)))

		case c := <-f.unregister:
			if _, ok := f.clients[c]; ok {
				delete(f.clients, c)
				close(c.send)
				f.setCount()
				f.logger.Debug("feed client disconnected", zap.String("client", c.id), zap.Int("total", len(f.clients)))
			}

		case message := <-f.broadcast:
			for c := range f.clients {
				select {
				case c.send <- message:
				default:
					// Slow consumer; drop it rather than stall the feed.
					delete(f.clients, c)
					close(c.send)
				}
			}
			f.setCount()

		case <-ctx.Done():
			for c := range f.clients {
				delete(f.clients, c)
				close(c.send)
			}
			f.setCount()
			return
		}
	}
}

func (f *Feed) setCount() {
	f.count.Store(int64(len(f.clients)))
	FeedClients.Set(float64(len(f.clients)))
}

// ClientCount reports the number of registered subscribers.
func (f *Feed) ClientCount() int {
	return int(f.count.Load())
}

// Publish queues an event for every subscriber. It never blocks; events are
// dropped when the queue is full.
func (f *Feed) Publish(eventType EventType, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		f.logger.Error("encode feed event", zap.String("type", string(eventType)), zap.Error(err))
		return
	}
	message, err := json.Marshal(Message{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		ID:        uuid.NewString(),
		Data:      payload,
	})
	if err != nil {
		f.logger.Error("encode feed message", zap.Error(err))
		return
	}

	select {
	case f.broadcast <- message:
	default:
		f.logger.Warn("feed queue full, dropping event", zap.String("type", string(eventType)))
	}
}

// ServeHTTP upgrades the request and subscribes the connection.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer), id: uuid.NewString()}
	select {
	case f.register <- c:
	case <-f.done:
		conn.Close()
		return
	}

	go f.writePump(c)
	go f.readPump(c)
}

// readPump only drains control frames; subscribers have nothing to send.
func (f *Feed) readPump(c *client) {
	defer func() {
		select {
		case f.unregister <- c:
		case <-f.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *Feed) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
