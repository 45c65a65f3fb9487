package ws

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/scrumdeck/room-sync/internal/event"
	"github.com/scrumdeck/room-sync/internal/hub"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// Server exposes the room event feed over a websocket, as an alternative to
// the SSE endpoint. The feed is push-only: nothing a client writes is
// interpreted, the read side exists to notice the close.
type Server struct {
	upgrader websocket.Upgrader
	hub      *hub.Hub

	pingEvery time.Duration
}

func NewServer(h *hub.Hub, pingEvery time.Duration) *Server {
	if pingEvery <= 0 {
		pingEvery = 15 * time.Second
	}
	return &Server{
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: pingEvery,
	}
}

// WS endpoint: GET /ws/rooms/{roomKey}
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	roomKey := chi.URLParam(r, "roomKey")
	if roomKey == "" {
		http.Error(w, "missing room key", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(conn)
	sub := s.hub.Subscribe(event.Topic(roomKey))

	go s.writeLoop(c, sub)
	s.readLoop(c)

	sub.Close()
	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "room", roomKey, "err", err)
	}
}

// readLoop discards client frames until the connection dies; pongs refresh
// the read deadline.
func (s *Server) readLoop(c *wsConn) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(1 << 10)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writeLoop(c *wsConn, sub *hub.Subscription) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := c.Send(ev); err != nil {
				_ = c.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-c.closed:
			return
		}
	}
}

type wsConn struct {
	conn      *websocket.Conn
	sendMu    chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

func newWsConn(c *websocket.Conn) *wsConn {
	return &wsConn{
		conn:   c,
		sendMu: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (c *wsConn) Send(ev event.Event) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.conn.WriteJSON(ev)
}

func (c *wsConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })

	return c.conn.Close()
}
