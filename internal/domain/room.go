package domain

import "time"

type Room struct {
	ID           int64     `db:"id"`
	RoomKey      string    `db:"room_key"`
	CreatedBy    string    `db:"created_by"`
	VotesVisible bool      `db:"votes_visible"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
