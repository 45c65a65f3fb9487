package http

import (
	"net/http"
	"time"

	"github.com/scrumdeck/room-sync/internal/transport/ws"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(h *Handler, sse *SSEServer, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// long-lived push endpoints stay outside the API timeout group
	r.Get("/events", sse.HandleEvents)
	r.Get("/ws/rooms/{roomKey}", wsServer.HandleWS)

	r.Group(func(pr chi.Router) {
		pr.Use(middlewareChi.Timeout(30 * time.Second))

		pr.Route("/api", func(api chi.Router) {
			api.Route("/rooms", func(rm chi.Router) {
				rm.Post("/", h.CreateRoom)

				rm.Route("/{roomKey}", func(rr chi.Router) {
					rr.Post("/join", h.JoinRoom)
					rr.Post("/leave", h.LeaveRoom)
					rr.Get("/participants", h.GetParticipants)
				})
			})

			api.Route("/votes", func(v chi.Router) {
				v.Get("/", h.ListVoteOptions)
				v.Post("/", h.CastVote)
				v.Post("/toggle-visibility", h.ToggleVisibility)
				v.Post("/reset", h.ResetVotes)
			})
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
