package http

type ErrorResponse struct {
	Error string `json:"error"`
}

type CreateRoomRequest struct {
	Username string `json:"username"`
}

type CreateRoomResponse struct {
	RoomKey  string `json:"roomKey"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type JoinRoomRequest struct {
	Username string `json:"username"`
}

type JoinRoomResponse struct {
	RoomKey  string `json:"roomKey"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type LeaveRoomRequest struct {
	UserID string `json:"userId"`
}

type VoteOptionItem struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

type CastVoteRequest struct {
	RoomKey string `json:"roomKey"`
	UserID  string `json:"userId"`
	VoteID  int64  `json:"voteId"`
}

type ToggleVisibilityRequest struct {
	RoomKey string `json:"roomKey"`
}

type ToggleVisibilityResponse struct {
	Message      string `json:"message"`
	RoomKey      string `json:"roomKey"`
	VotesVisible bool   `json:"votesVisible"`
}

type ResetVotesRequest struct {
	RoomKey string `json:"roomKey"`
}

type ResetVotesResponse struct {
	Message      string `json:"message"`
	RoomKey      string `json:"roomKey"`
	ResetCount   int64  `json:"resetCount"`
	VotesVisible bool   `json:"votesVisible"`
}
