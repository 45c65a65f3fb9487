package service

import (
	"context"
	"time"

	"github.com/scrumdeck/room-sync/internal/domain"
)

// Store contracts consumed by the services; implemented by internal/postgres.

type RoomStore interface {
	Create(ctx context.Context, room *domain.Room) error
	GetByKey(ctx context.Context, roomKey string) (*domain.Room, error)
	SetVisibility(ctx context.Context, roomID int64, visible bool) error
	Touch(ctx context.Context, roomID int64) error
	PurgeInactive(ctx context.Context, olderThan time.Duration) (int64, error)
}

type ParticipantStore interface {
	Add(ctx context.Context, p *domain.Participant) error
	Remove(ctx context.Context, roomID int64, userID string) error
	Get(ctx context.Context, roomID int64, userID string) (*domain.Participant, error)
	ListWithVotes(ctx context.Context, roomID int64) ([]domain.Participant, map[string]*domain.CastVote, error)
}

type VoteStore interface {
	ListOptions(ctx context.Context) ([]domain.VoteOption, error)
	GetOption(ctx context.Context, id int64) (*domain.VoteOption, error)
	Upsert(ctx context.Context, roomID int64, userID string, optionID int64) (*domain.CastVote, error)
	Clear(ctx context.Context, roomID int64) (int64, error)
	DeleteByUser(ctx context.Context, roomID int64, userID string) error
}
