package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/scrumdeck/room-sync/internal/hub"
)

// SSEServer streams hub events to browsers over server-sent events, addressed
// Mercure-style: GET /events?topic=room/{roomKey}.
type SSEServer struct {
	hub       *hub.Hub
	heartbeat time.Duration
}

func NewSSEServer(h *hub.Hub, heartbeat time.Duration) *SSEServer {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	return &SSEServer{hub: h, heartbeat: heartbeat}
}

func (s *SSEServer) HandleEvents(w http.ResponseWriter, r *http.Request) {
	topic := strings.TrimSpace(r.URL.Query().Get("topic"))
	if !strings.HasPrefix(topic, "room/") {
		http.Error(w, "invalid topic", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := s.hub.Subscribe(topic)
	defer sub.Close()

	slog.Debug("sse subscriber connected", "topic", topic)

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			slog.Debug("sse subscriber gone", "topic", topic)
			return
		case <-ticker.C:
			// comment frame keeps proxies from timing the stream out
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			data, err := ev.Encode()
			if err != nil {
				slog.Warn("sse encode failed", "topic", topic, "err", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
