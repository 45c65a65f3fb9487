package domain

import "errors"

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrVoteOptionNotFound = errors.New("vote option not found")
	ErrNotInRoom          = errors.New("user not in the room")
)
