package service

import (
	"context"
	"fmt"

	"github.com/scrumdeck/room-sync/internal/domain"
	"github.com/scrumdeck/room-sync/internal/event"
)

type VoteService struct {
	rooms        RoomStore
	participants ParticipantStore
	votes        VoteStore
	pub          *event.Publisher
}

func NewVoteService(rooms RoomStore, participants ParticipantStore, votes VoteStore, pub *event.Publisher) *VoteService {
	return &VoteService{
		rooms:        rooms,
		participants: participants,
		votes:        votes,
		pub:          pub,
	}
}

func (s *VoteService) Options(ctx context.Context) ([]domain.VoteOption, error) {
	return s.votes.ListOptions(ctx)
}

// Cast upserts the participant's vote: a resubmission replaces the previous
// one, never creates a duplicate.
func (s *VoteService) Cast(ctx context.Context, roomKey, userID string, optionID int64) (*event.VotePayload, error) {
	room, err := s.rooms.GetByKey(ctx, roomKey)
	if err != nil {
		return nil, err
	}

	p, err := s.participants.Get(ctx, room.ID, userID)
	if err != nil {
		return nil, err
	}

	opt, err := s.votes.GetOption(ctx, optionID)
	if err != nil {
		return nil, err
	}

	v, err := s.votes.Upsert(ctx, room.ID, userID, opt.ID)
	if err != nil {
		return nil, fmt.Errorf("votes.Upsert: %w", err)
	}
	_ = s.rooms.Touch(ctx, room.ID)

	payload := event.VotePayload{
		ID:        v.ID,
		RoomKey:   roomKey,
		UserID:    p.UserID,
		Username:  p.Username,
		VoteID:    opt.ID,
		VoteLabel: opt.Label,
		CreatedAt: event.FormatTime(v.CreatedAt),
		UpdatedAt: event.FormatTime(v.UpdatedAt),
	}
	s.pub.PublishVoteUpdate(roomKey, payload)

	return &payload, nil
}

// ToggleVisibility flips the room's votes-visible flag and returns the new
// value.
func (s *VoteService) ToggleVisibility(ctx context.Context, roomKey string) (bool, error) {
	room, err := s.rooms.GetByKey(ctx, roomKey)
	if err != nil {
		return false, err
	}

	visible := !room.VotesVisible
	if err := s.rooms.SetVisibility(ctx, room.ID, visible); err != nil {
		return false, fmt.Errorf("rooms.SetVisibility: %w", err)
	}

	s.pub.PublishVisibilityToggle(roomKey, visible)
	return visible, nil
}

// Reset clears every vote in the room and hides votes again; both happen in
// one store transaction so no observer sees a half-reset room.
func (s *VoteService) Reset(ctx context.Context, roomKey string) (int64, error) {
	room, err := s.rooms.GetByKey(ctx, roomKey)
	if err != nil {
		return 0, err
	}

	count, err := s.votes.Clear(ctx, room.ID)
	if err != nil {
		return 0, fmt.Errorf("votes.Clear: %w", err)
	}

	s.pub.PublishVoteReset(roomKey)
	return count, nil
}
