package domain

import "time"

// Participant is a per-browser identity inside one room. UserID is an opaque
// login token, not a username.
type Participant struct {
	RoomID   int64     `db:"room_id"`
	UserID   string    `db:"user_id"`
	Username string    `db:"username"`
	JoinedAt time.Time `db:"joined_at"`
}

func (p Participant) IsCreator(r *Room) bool {
	return r != nil && r.CreatedBy == p.UserID
}
