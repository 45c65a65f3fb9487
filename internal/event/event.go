package event

import (
	"encoding/json"
	"time"
)

// Event types pushed to room subscribers.
const (
	TypeRoomUpdate        = "room_update"
	TypeVoteUpdate        = "vote_update"
	TypeVisibilityToggle  = "visibility_toggle"
	TypeVoteReset         = "vote_reset"
	TypeParticipantUpdate = "participant_update"
)

// Participant update actions.
const (
	ActionJoined = "joined"
	ActionLeft   = "left"
)

// TimeLayout is the timestamp format used inside event payloads.
const TimeLayout = "2006-01-02 15:04:05"

// Event is an ephemeral message on a room topic. It is never persisted;
// subscribers treat it purely as a hint to re-fetch the room snapshot, so a
// lost event never corrupts state.
type Event struct {
	Type      string `json:"type"`
	RoomKey   string `json:"roomKey"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"`
}

func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// VotePayload is the data of a vote_update event.
type VotePayload struct {
	ID        int64  `json:"id"`
	RoomKey   string `json:"roomKey"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	VoteID    int64  `json:"voteId"`
	VoteLabel string `json:"voteLabel"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type VisibilityPayload struct {
	VotesVisible bool `json:"votesVisible"`
}

type ResetPayload struct {
	Reset bool `json:"reset"`
}

// ParticipantView is the participant shape carried by participant_update
// events and by the snapshot read surface.
type ParticipantView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	IsCreator bool      `json:"isCreator"`
	Vote      *VoteView `json:"vote"`
}

type VoteView struct {
	ID        int64  `json:"id"`
	Label     string `json:"label"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type ParticipantPayload struct {
	Action      string          `json:"action"` // joined|left
	Participant ParticipantView `json:"participant"`
}

// FormatTime renders a payload timestamp.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}
