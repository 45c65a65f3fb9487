package domain

import "time"

// VoteOption is a fixed catalog entry ("0", "1", ..., "?", "∞", "BRB").
// Created at setup time, never mutated at runtime.
type VoteOption struct {
	ID       int64  `db:"id"`
	Label    string `db:"label"`
	Position int    `db:"position"`
}

// CastVote is the single current vote of one participant in one room.
// (room_id, user_id) is unique; a resubmission updates the row.
type CastVote struct {
	ID        int64     `db:"id"`
	RoomID    int64     `db:"room_id"`
	UserID    string    `db:"user_id"`
	OptionID  int64     `db:"vote_id"`
	Label     string    `db:"label"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
