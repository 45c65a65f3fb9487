package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/scrumdeck/room-sync/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RoomRepository struct {
	db *pgxpool.Pool
}

func NewRoomRepository(db *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	query := `
		INSERT INTO rooms (room_key, created_by, votes_visible)
		VALUES ($1, $2, false)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query, room.RoomKey, room.CreatedBy).
		Scan(&room.ID, &room.CreatedAt, &room.UpdatedAt)
}

func (r *RoomRepository) GetByKey(ctx context.Context, roomKey string) (*domain.Room, error) {
	// room_key is a uuid column; a malformed key can never resolve, and
	// passing it through would surface as a codec error instead of not-found
	if uuid.Validate(roomKey) != nil {
		return nil, domain.ErrRoomNotFound
	}

	var rm domain.Room
	query := `
		SELECT id, room_key, created_by, votes_visible, created_at, updated_at
		FROM rooms WHERE room_key=$1`
	err := r.db.QueryRow(ctx, query, roomKey).
		Scan(&rm.ID, &rm.RoomKey, &rm.CreatedBy, &rm.VotesVisible, &rm.CreatedAt, &rm.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	return &rm, nil
}

// SetVisibility flips votes_visible and returns the new value. The update is
// a single statement, so concurrent toggles serialize on the row.
func (r *RoomRepository) SetVisibility(ctx context.Context, roomID int64, visible bool) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE rooms SET votes_visible=$2, updated_at=now() WHERE id=$1`,
		roomID, visible)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

func (r *RoomRepository) Touch(ctx context.Context, roomID int64) error {
	_, err := r.db.Exec(ctx, `UPDATE rooms SET updated_at=now() WHERE id=$1`, roomID)
	return err
}

// PurgeInactive deletes rooms whose updated_at is older than the cutoff.
// Participants and votes go with them via ON DELETE CASCADE.
func (r *RoomRepository) PurgeInactive(ctx context.Context, olderThan time.Duration) (int64, error) {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM rooms WHERE updated_at < now() - ($1::bigint * INTERVAL '1 second')`,
		int64(olderThan/time.Second))
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
