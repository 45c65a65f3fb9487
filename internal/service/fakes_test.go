package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/scrumdeck/room-sync/internal/domain"
	"github.com/scrumdeck/room-sync/internal/event"
)

// memStore is an in-memory Room State Store used by the service tests. A
// single mutex stands in for the per-room atomicity the real store gets from
// postgres transactions.
type memStore struct {
	mu sync.Mutex

	seq       int64
	rooms     map[string]*domain.Room // by room key
	roomsByID map[int64]*domain.Room
	parts     map[int64]map[string]*domain.Participant
	votes     map[int64]map[string]*domain.CastVote
	options   []domain.VoteOption
}

func newMemStore() *memStore {
	s := &memStore{
		rooms:     make(map[string]*domain.Room),
		roomsByID: make(map[int64]*domain.Room),
		parts:     make(map[int64]map[string]*domain.Participant),
		votes:     make(map[int64]map[string]*domain.CastVote),
	}
	for i, label := range []string{"0", "1", "2", "3", "5", "8", "13", "21", "?", "∞", "BRB"} {
		s.options = append(s.options, domain.VoteOption{
			ID:       int64(i + 1),
			Label:    label,
			Position: i + 1,
		})
	}
	return s
}

func (s *memStore) nextID() int64 {
	s.seq++
	return s.seq
}

// RoomStore

func (s *memStore) Create(_ context.Context, room *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room.ID = s.nextID()
	room.CreatedAt = time.Now()
	room.UpdatedAt = room.CreatedAt
	s.rooms[room.RoomKey] = room
	s.roomsByID[room.ID] = room
	s.parts[room.ID] = make(map[string]*domain.Participant)
	s.votes[room.ID] = make(map[string]*domain.CastVote)
	return nil
}

func (s *memStore) GetByKey(_ context.Context, roomKey string) (*domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomKey]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	cp := *room
	return &cp, nil
}

func (s *memStore) SetVisibility(_ context.Context, roomID int64, visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.roomsByID[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	room.VotesVisible = visible
	room.UpdatedAt = time.Now()
	return nil
}

func (s *memStore) Touch(_ context.Context, roomID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if room, ok := s.roomsByID[roomID]; ok {
		room.UpdatedAt = time.Now()
	}
	return nil
}

func (s *memStore) PurgeInactive(_ context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	var n int64
	for key, room := range s.rooms {
		if room.UpdatedAt.Before(cutoff) {
			delete(s.rooms, key)
			delete(s.roomsByID, room.ID)
			delete(s.parts, room.ID)
			delete(s.votes, room.ID)
			n++
		}
	}
	return n, nil
}

// ParticipantStore

func (s *memStore) Add(_ context.Context, p *domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room := s.parts[p.RoomID]
	if _, exists := room[p.UserID]; exists {
		return nil
	}
	cp := *p
	room[p.UserID] = &cp
	return nil
}

func (s *memStore) Remove(_ context.Context, roomID int64, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room := s.parts[roomID]
	if _, ok := room[userID]; !ok {
		return domain.ErrNotInRoom
	}
	delete(room, userID)
	return nil
}

func (s *memStore) Get(_ context.Context, roomID int64, userID string) (*domain.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.parts[roomID][userID]
	if !ok {
		return nil, domain.ErrNotInRoom
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) ListWithVotes(_ context.Context, roomID int64) ([]domain.Participant, map[string]*domain.CastVote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parts := make([]domain.Participant, 0, len(s.parts[roomID]))
	for _, p := range s.parts[roomID] {
		parts = append(parts, *p)
	}
	sort.Slice(parts, func(i, j int) bool {
		if !parts[i].JoinedAt.Equal(parts[j].JoinedAt) {
			return parts[i].JoinedAt.Before(parts[j].JoinedAt)
		}
		return parts[i].UserID < parts[j].UserID
	})

	votes := make(map[string]*domain.CastVote, len(s.votes[roomID]))
	for uid, v := range s.votes[roomID] {
		cp := *v
		votes[uid] = &cp
	}
	return parts, votes, nil
}

// VoteStore

func (s *memStore) ListOptions(_ context.Context) ([]domain.VoteOption, error) {
	return s.options, nil
}

func (s *memStore) GetOption(_ context.Context, id int64) (*domain.VoteOption, error) {
	for _, o := range s.options {
		if o.ID == id {
			cp := o
			return &cp, nil
		}
	}
	return nil, domain.ErrVoteOptionNotFound
}

func (s *memStore) Upsert(_ context.Context, roomID int64, userID string, optionID int64) (*domain.CastVote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var label string
	for _, o := range s.options {
		if o.ID == optionID {
			label = o.Label
		}
	}

	room := s.votes[roomID]
	if v, ok := room[userID]; ok {
		v.OptionID = optionID
		v.Label = label
		v.UpdatedAt = time.Now()
		cp := *v
		return &cp, nil
	}

	v := &domain.CastVote{
		ID:        s.nextID(),
		RoomID:    roomID,
		UserID:    userID,
		OptionID:  optionID,
		Label:     label,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	room[userID] = v
	cp := *v
	return &cp, nil
}

func (s *memStore) Clear(_ context.Context, roomID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.votes[roomID]))
	s.votes[roomID] = make(map[string]*domain.CastVote)
	if room, ok := s.roomsByID[roomID]; ok {
		room.VotesVisible = false
		room.UpdatedAt = time.Now()
	}
	return n, nil
}

func (s *memStore) DeleteByUser(_ context.Context, roomID int64, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.votes[roomID], userID)
	return nil
}

// captureSink records published events for assertions.
type captureSink struct {
	mu     sync.Mutex
	topics []string
	events []event.Event
}

func (c *captureSink) Publish(topic string, ev event.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics = append(c.topics, topic)
	c.events = append(c.events, ev)
}

func (c *captureSink) all() []event.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]event.Event(nil), c.events...)
}

func newTestServices() (*RoomService, *VoteService, *memStore, *captureSink) {
	store := newMemStore()
	sink := &captureSink{}
	pub := event.NewPublisher(sink)
	return NewRoomService(store, store, store, pub),
		NewVoteService(store, store, store, pub),
		store, sink
}
