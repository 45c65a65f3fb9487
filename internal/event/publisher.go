package event

import "time"

// Sink is where published events go; implemented by hub.Hub.
type Sink interface {
	Publish(topic string, ev Event)
}

// Topic returns the fan-out topic for a room.
func Topic(roomKey string) string {
	return "room/" + roomKey
}

// Publisher turns state mutations into typed events on the room's topic.
// Stateless; one call per successful mutation, always after the store write
// so a re-fetching client sees state at least as fresh as the event implies.
type Publisher struct {
	sink Sink
	now  func() time.Time
}

func NewPublisher(sink Sink) *Publisher {
	return &Publisher{sink: sink, now: time.Now}
}

func (p *Publisher) publish(roomKey, typ string, data any) {
	p.sink.Publish(Topic(roomKey), Event{
		Type:      typ,
		RoomKey:   roomKey,
		Data:      data,
		Timestamp: p.now().Unix(),
	})
}

func (p *Publisher) PublishRoomUpdate(roomKey string, data any) {
	p.publish(roomKey, TypeRoomUpdate, data)
}

func (p *Publisher) PublishVoteUpdate(roomKey string, vote VotePayload) {
	p.publish(roomKey, TypeVoteUpdate, vote)
}

func (p *Publisher) PublishVisibilityToggle(roomKey string, visible bool) {
	p.publish(roomKey, TypeVisibilityToggle, VisibilityPayload{VotesVisible: visible})
}

func (p *Publisher) PublishVoteReset(roomKey string) {
	p.publish(roomKey, TypeVoteReset, ResetPayload{Reset: true})
}

func (p *Publisher) PublishParticipantUpdate(roomKey string, participant ParticipantView, action string) {
	p.publish(roomKey, TypeParticipantUpdate, ParticipantPayload{
		Action:      action,
		Participant: participant,
	})
}
