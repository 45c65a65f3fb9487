package live

import "encoding/json"

// Event types, matching the server wire format.
const (
	TypeRoomUpdate        = "room_update"
	TypeVoteUpdate        = "vote_update"
	TypeVisibilityToggle  = "visibility_toggle"
	TypeVoteReset         = "vote_reset"
	TypeParticipantUpdate = "participant_update"
)

// Message is one pushed event. Data is kept raw: the payload is only a hint
// to re-fetch, so the client never needs to fully model it.
type Message struct {
	Type      string          `json:"type"`
	RoomKey   string          `json:"roomKey"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// Handlers is the dispatch table for one logical subscriber. OnMessage runs
// first for every event, then exactly one type-specific handler. Nil entries
// and unknown event types are skipped silently.
type Handlers struct {
	OnMessage           func(Message)
	OnRoomUpdate        func(json.RawMessage)
	OnVoteUpdate        func(json.RawMessage)
	OnVisibilityToggle  func(json.RawMessage)
	OnVoteReset         func(json.RawMessage)
	OnParticipantUpdate func(json.RawMessage)
}

func (h *Handlers) dispatch(msg Message) {
	if h == nil {
		return
	}
	if h.OnMessage != nil {
		h.OnMessage(msg)
	}
	switch msg.Type {
	case TypeRoomUpdate:
		if h.OnRoomUpdate != nil {
			h.OnRoomUpdate(msg.Data)
		}
	case TypeVoteUpdate:
		if h.OnVoteUpdate != nil {
			h.OnVoteUpdate(msg.Data)
		}
	case TypeVisibilityToggle:
		if h.OnVisibilityToggle != nil {
			h.OnVisibilityToggle(msg.Data)
		}
	case TypeVoteReset:
		if h.OnVoteReset != nil {
			h.OnVoteReset(msg.Data)
		}
	case TypeParticipantUpdate:
		if h.OnParticipantUpdate != nil {
			h.OnParticipantUpdate(msg.Data)
		}
	default:
		// unknown type, ignore
	}
}
