package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/scrumdeck/room-sync/internal/domain"
	"github.com/scrumdeck/room-sync/internal/event"
	"github.com/scrumdeck/room-sync/pkg/errs"

	"github.com/google/uuid"
)

// RoomSnapshot is the authoritative read surface clients reconcile against.
type RoomSnapshot struct {
	RoomKey      string                  `json:"roomKey"`
	Participants []event.ParticipantView `json:"participants"`
	Status       string                  `json:"status"`
	CreatedBy    string                  `json:"createdBy"`
	VotesVisible bool                    `json:"votesVisible"`
}

type RoomService struct {
	rooms        RoomStore
	participants ParticipantStore
	votes        VoteStore
	pub          *event.Publisher
}

func NewRoomService(rooms RoomStore, participants ParticipantStore, votes VoteStore, pub *event.Publisher) *RoomService {
	return &RoomService{
		rooms:        rooms,
		participants: participants,
		votes:        votes,
		pub:          pub,
	}
}

// Create makes a room with a fresh key and its creator as first participant.
func (s *RoomService) Create(ctx context.Context, username string) (*domain.Room, *domain.Participant, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil, fmt.Errorf("%w: username is required", errs.ErrInvalidInput)
	}

	room := &domain.Room{
		RoomKey:   uuid.NewString(),
		CreatedBy: uuid.NewString(),
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, nil, fmt.Errorf("rooms.Create: %w", err)
	}

	p := &domain.Participant{
		RoomID:   room.ID,
		UserID:   room.CreatedBy,
		Username: username,
		JoinedAt: time.Now(),
	}
	if err := s.participants.Add(ctx, p); err != nil {
		return nil, nil, fmt.Errorf("participants.Add: %w", err)
	}

	s.pub.PublishParticipantUpdate(room.RoomKey, event.ParticipantView{
		ID:        p.UserID,
		Username:  p.Username,
		IsCreator: true,
	}, event.ActionJoined)

	return room, p, nil
}

// Join adds a participant with a fresh per-browser identity to an existing
// room.
func (s *RoomService) Join(ctx context.Context, roomKey, username string) (*domain.Participant, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", errs.ErrInvalidInput)
	}

	room, err := s.rooms.GetByKey(ctx, roomKey)
	if err != nil {
		return nil, err
	}

	p := &domain.Participant{
		RoomID:   room.ID,
		UserID:   uuid.NewString(),
		Username: username,
		JoinedAt: time.Now(),
	}
	if err := s.participants.Add(ctx, p); err != nil {
		return nil, fmt.Errorf("participants.Add: %w", err)
	}
	_ = s.rooms.Touch(ctx, room.ID)

	s.pub.PublishParticipantUpdate(roomKey, event.ParticipantView{
		ID:        p.UserID,
		Username:  p.Username,
		IsCreator: p.IsCreator(room),
	}, event.ActionJoined)

	return p, nil
}

// Leave removes the participant and their vote. Leaving a room you are not
// in is not an error; duplicate leave calls happen routinely on navigation.
func (s *RoomService) Leave(ctx context.Context, roomKey, userID string) error {
	room, err := s.rooms.GetByKey(ctx, roomKey)
	if err != nil {
		return err
	}

	p, err := s.participants.Get(ctx, room.ID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotInRoom) {
			return nil
		}
		return err
	}

	view := event.ParticipantView{
		ID:        p.UserID,
		Username:  p.Username,
		IsCreator: p.IsCreator(room),
	}

	if err := s.votes.DeleteByUser(ctx, room.ID, userID); err != nil {
		return fmt.Errorf("votes.DeleteByUser: %w", err)
	}
	if err := s.participants.Remove(ctx, room.ID, userID); err != nil && !errors.Is(err, domain.ErrNotInRoom) {
		return fmt.Errorf("participants.Remove: %w", err)
	}
	_ = s.rooms.Touch(ctx, room.ID)

	s.pub.PublishParticipantUpdate(roomKey, view, event.ActionLeft)
	return nil
}

// Snapshot returns the full authoritative room state.
func (s *RoomService) Snapshot(ctx context.Context, roomKey string) (*RoomSnapshot, error) {
	room, err := s.rooms.GetByKey(ctx, roomKey)
	if err != nil {
		return nil, err
	}

	parts, votes, err := s.participants.ListWithVotes(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("participants.ListWithVotes: %w", err)
	}

	views := make([]event.ParticipantView, 0, len(parts))
	for _, p := range parts {
		view := event.ParticipantView{
			ID:        p.UserID,
			Username:  p.Username,
			IsCreator: p.IsCreator(room),
		}
		if v := votes[p.UserID]; v != nil {
			view.Vote = &event.VoteView{
				ID:        v.OptionID,
				Label:     v.Label,
				CreatedAt: event.FormatTime(v.CreatedAt),
				UpdatedAt: event.FormatTime(v.UpdatedAt),
			}
		}
		views = append(views, view)
	}

	return &RoomSnapshot{
		RoomKey:      room.RoomKey,
		Participants: views,
		Status:       "active",
		CreatedBy:    room.CreatedBy,
		VotesVisible: room.VotesVisible,
	}, nil
}
