package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/scrumdeck/room-sync/internal/domain"
	"github.com/scrumdeck/room-sync/internal/service"
	"github.com/scrumdeck/room-sync/pkg/errs"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	roomSvc *service.RoomService
	voteSvc *service.VoteService
}

func NewHandler(room *service.RoomService, vote *service.VoteService) *Handler {
	return &Handler{roomSvc: room, voteSvc: vote}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	writeJSON(w, errs.ToHTTP(err), ErrorResponse{Error: err.Error()})
}

// POST /api/rooms
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	room, p, err := h.roomSvc.Create(r.Context(), req.Username)
	if err != nil {
		slog.Error("handler.CreateRoom:", slog.Any("err", err))
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateRoomResponse{
		RoomKey:  room.RoomKey,
		UserID:   p.UserID,
		Username: p.Username,
	})
}

// POST /api/rooms/{roomKey}/join
func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	roomKey := chi.URLParam(r, "roomKey")
	var req JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	p, err := h.roomSvc.Join(r.Context(), roomKey, req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		slog.Error("handler.JoinRoom:", slog.Any("err", err))
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, JoinRoomResponse{
		RoomKey:  roomKey,
		UserID:   p.UserID,
		Username: p.Username,
	})
}

// POST /api/rooms/{roomKey}/leave
func (h *Handler) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	roomKey := chi.URLParam(r, "roomKey")
	var req LeaveRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing userId"})
		return
	}

	if err := h.roomSvc.Leave(r.Context(), roomKey, req.UserID); err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		slog.Error("handler.LeaveRoom:", slog.Any("err", err))
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "user left room successfully",
		"roomKey": roomKey,
		"userId":  req.UserID,
	})
}

// GET /api/rooms/{roomKey}/participants
func (h *Handler) GetParticipants(w http.ResponseWriter, r *http.Request) {
	roomKey := chi.URLParam(r, "roomKey")

	snap, err := h.roomSvc.Snapshot(r.Context(), roomKey)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		slog.Error("handler.GetParticipants:", slog.Any("err", err))
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// GET /api/votes
func (h *Handler) ListVoteOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.voteSvc.Options(r.Context())
	if err != nil {
		slog.Error("handler.ListVoteOptions:", slog.Any("err", err))
		writeErr(w, err)
		return
	}

	items := make([]VoteOptionItem, 0, len(opts))
	for _, o := range opts {
		items = append(items, VoteOptionItem{ID: o.ID, Label: o.Label})
	}
	writeJSON(w, http.StatusOK, items)
}

// POST /api/votes
func (h *Handler) CastVote(w http.ResponseWriter, r *http.Request) {
	var req CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	if req.RoomKey == "" || req.UserID == "" || req.VoteID == 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing required field"})
		return
	}

	vote, err := h.voteSvc.Cast(r.Context(), req.RoomKey, req.UserID, req.VoteID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound),
			errors.Is(err, domain.ErrVoteOptionNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
		case errors.Is(err, domain.ErrNotInRoom):
			writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "user is not a participant in this room"})
		default:
			slog.Error("handler.CastVote:", slog.Any("err", err))
			writeErr(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "vote recorded",
		"userVote": vote,
	})
}

// POST /api/votes/toggle-visibility
func (h *Handler) ToggleVisibility(w http.ResponseWriter, r *http.Request) {
	var req ToggleVisibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RoomKey == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing roomKey"})
		return
	}

	visible, err := h.voteSvc.ToggleVisibility(r.Context(), req.RoomKey)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		slog.Error("handler.ToggleVisibility:", slog.Any("err", err))
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ToggleVisibilityResponse{
		Message:      "vote visibility toggled successfully",
		RoomKey:      req.RoomKey,
		VotesVisible: visible,
	})
}

// POST /api/votes/reset
func (h *Handler) ResetVotes(w http.ResponseWriter, r *http.Request) {
	var req ResetVotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RoomKey == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing roomKey"})
		return
	}

	count, err := h.voteSvc.Reset(r.Context(), req.RoomKey)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		slog.Error("handler.ResetVotes:", slog.Any("err", err))
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ResetVotesResponse{
		Message:      "all votes reset successfully",
		RoomKey:      req.RoomKey,
		ResetCount:   count,
		VotesVisible: false,
	})
}
