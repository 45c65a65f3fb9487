package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/scrumdeck/room-sync/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ParticipantRepository struct {
	db *pgxpool.Pool
}

func NewParticipantRepository(db *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// Add is idempotent: joining a room twice is not an error.
func (r *ParticipantRepository) Add(ctx context.Context, p *domain.Participant) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO participants (room_id, user_id, username)
		VALUES ($1, $2, $3)
		ON CONFLICT (room_id, user_id) DO NOTHING
	`, p.RoomID, p.UserID, p.Username)
	return err
}

func (r *ParticipantRepository) Remove(ctx context.Context, roomID int64, userID string) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM participants WHERE room_id=$1 AND user_id=$2`,
		roomID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotInRoom
	}
	return nil
}

func (r *ParticipantRepository) Get(ctx context.Context, roomID int64, userID string) (*domain.Participant, error) {
	var p domain.Participant
	err := r.db.QueryRow(ctx,
		`SELECT room_id, user_id, username, joined_at FROM participants WHERE room_id=$1 AND user_id=$2`,
		roomID, userID).
		Scan(&p.RoomID, &p.UserID, &p.Username, &p.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotInRoom
		}
		return nil, err
	}
	return &p, nil
}

// ListWithVotes returns the room's participants in join order, each with the
// current cast vote (if any) resolved to its option label.
func (r *ParticipantRepository) ListWithVotes(ctx context.Context, roomID int64) ([]domain.Participant, map[string]*domain.CastVote, error) {
	const q = `
SELECT p.user_id,
       p.username,
       p.joined_at,
       uv.id,
       uv.vote_id,
       vo.label,
       uv.created_at,
       uv.updated_at
FROM participants AS p
LEFT JOIN votes AS uv ON uv.room_id = p.room_id AND uv.user_id = p.user_id
LEFT JOIN vote_options AS vo ON vo.id = uv.vote_id
WHERE p.room_id = $1
ORDER BY p.joined_at, p.user_id`

	rows, err := r.db.Query(ctx, q, roomID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	parts := make([]domain.Participant, 0, 8)
	votes := make(map[string]*domain.CastVote)
	for rows.Next() {
		var (
			p       domain.Participant
			voteID  *int64
			optID   *int64
			label   *string
			created *time.Time
			updated *time.Time
		)
		if err := rows.Scan(&p.UserID, &p.Username, &p.JoinedAt,
			&voteID, &optID, &label, &created, &updated); err != nil {
			return nil, nil, err
		}
		p.RoomID = roomID
		parts = append(parts, p)
		if voteID != nil {
			votes[p.UserID] = &domain.CastVote{
				ID:        *voteID,
				RoomID:    roomID,
				UserID:    p.UserID,
				OptionID:  *optID,
				Label:     *label,
				CreatedAt: *created,
				UpdatedAt: *updated,
			}
		}
	}

	return parts, votes, rows.Err()
}
