package postgres

import (
	"context"
	"errors"

	"github.com/scrumdeck/room-sync/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VoteRepository struct {
	db *pgxpool.Pool
}

func NewVoteRepository(db *pgxpool.Pool) *VoteRepository {
	return &VoteRepository{db: db}
}

func (r *VoteRepository) ListOptions(ctx context.Context) ([]domain.VoteOption, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, label, position FROM vote_options ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var opts []domain.VoteOption
	for rows.Next() {
		var o domain.VoteOption
		if err := rows.Scan(&o.ID, &o.Label, &o.Position); err != nil {
			return nil, err
		}
		opts = append(opts, o)
	}
	return opts, rows.Err()
}

func (r *VoteRepository) GetOption(ctx context.Context, id int64) (*domain.VoteOption, error) {
	var o domain.VoteOption
	err := r.db.QueryRow(ctx,
		`SELECT id, label, position FROM vote_options WHERE id=$1`, id).
		Scan(&o.ID, &o.Label, &o.Position)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVoteOptionNotFound
		}
		return nil, err
	}
	return &o, nil
}

// Upsert keeps at most one vote per (room, participant). A resubmission
// updates the existing row and refreshes updated_at.
func (r *VoteRepository) Upsert(ctx context.Context, roomID int64, userID string, optionID int64) (*domain.CastVote, error) {
	const q = `
		INSERT INTO votes (room_id, user_id, vote_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (room_id, user_id)
		DO UPDATE SET vote_id=EXCLUDED.vote_id, updated_at=now()
		RETURNING id, created_at, updated_at`

	v := domain.CastVote{RoomID: roomID, UserID: userID, OptionID: optionID}
	if err := r.db.QueryRow(ctx, q, roomID, userID, optionID).
		Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

// Clear deletes every cast vote in the room and forces votes_visible back to
// false in the same transaction, so no reader observes cleared votes while
// visibility is still true.
func (r *VoteRepository) Clear(ctx context.Context, roomID int64) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `DELETE FROM votes WHERE room_id=$1`, roomID)
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE rooms SET votes_visible=false, updated_at=now() WHERE id=$1`, roomID); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// DeleteByUser removes a leaving participant's vote. Zero rows is fine.
func (r *VoteRepository) DeleteByUser(ctx context.Context, roomID int64, userID string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM votes WHERE room_id=$1 AND user_id=$2`, roomID, userID)
	return err
}
