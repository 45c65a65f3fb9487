package http

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/scrumdeck/room-sync/internal/domain"
	"github.com/scrumdeck/room-sync/internal/event"
	"github.com/scrumdeck/room-sync/internal/hub"
	"github.com/scrumdeck/room-sync/internal/service"
	"github.com/scrumdeck/room-sync/internal/transport/ws"
)

// stubStore is a minimal in-memory Room State Store for handler tests.
type stubStore struct {
	mu sync.Mutex

	seq     int64
	rooms   map[string]*domain.Room
	byID    map[int64]*domain.Room
	parts   map[int64]map[string]*domain.Participant
	votes   map[int64]map[string]*domain.CastVote
	options []domain.VoteOption
}

func newStubStore() *stubStore {
	s := &stubStore{
		rooms: make(map[string]*domain.Room),
		byID:  make(map[int64]*domain.Room),
		parts: make(map[int64]map[string]*domain.Participant),
		votes: make(map[int64]map[string]*domain.CastVote),
	}
	for i, label := range []string{"0", "1", "2", "3", "5", "8", "13", "21", "?", "∞", "BRB"} {
		s.options = append(s.options, domain.VoteOption{ID: int64(i + 1), Label: label, Position: i + 1})
	}
	return s
}

func (s *stubStore) Create(_ context.Context, room *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	room.ID = s.seq
	room.CreatedAt = time.Now()
	room.UpdatedAt = room.CreatedAt
	s.rooms[room.RoomKey] = room
	s.byID[room.ID] = room
	s.parts[room.ID] = make(map[string]*domain.Participant)
	s.votes[room.ID] = make(map[string]*domain.CastVote)
	return nil
}

func (s *stubStore) GetByKey(_ context.Context, key string) (*domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[key]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	cp := *room
	return &cp, nil
}

func (s *stubStore) SetVisibility(_ context.Context, roomID int64, visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.byID[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	room.VotesVisible = visible
	return nil
}

func (s *stubStore) Touch(_ context.Context, roomID int64) error { return nil }

func (s *stubStore) PurgeInactive(_ context.Context, _ time.Duration) (int64, error) {
	return 0, nil
}

func (s *stubStore) Add(_ context.Context, p *domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.parts[p.RoomID][p.UserID]; ok {
		return nil
	}
	cp := *p
	s.parts[p.RoomID][p.UserID] = &cp
	return nil
}

func (s *stubStore) Remove(_ context.Context, roomID int64, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.parts[roomID][userID]; !ok {
		return domain.ErrNotInRoom
	}
	delete(s.parts[roomID], userID)
	return nil
}

func (s *stubStore) Get(_ context.Context, roomID int64, userID string) (*domain.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.parts[roomID][userID]
	if !ok {
		return nil, domain.ErrNotInRoom
	}
	cp := *p
	return &cp, nil
}

func (s *stubStore) ListWithVotes(_ context.Context, roomID int64) ([]domain.Participant, map[string]*domain.CastVote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	parts := make([]domain.Participant, 0, len(s.parts[roomID]))
	for _, p := range s.parts[roomID] {
		parts = append(parts, *p)
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].UserID < parts[j].UserID })
	votes := make(map[string]*domain.CastVote, len(s.votes[roomID]))
	for uid, v := range s.votes[roomID] {
		cp := *v
		votes[uid] = &cp
	}
	return parts, votes, nil
}

func (s *stubStore) ListOptions(_ context.Context) ([]domain.VoteOption, error) {
	return s.options, nil
}

func (s *stubStore) GetOption(_ context.Context, id int64) (*domain.VoteOption, error) {
	for _, o := range s.options {
		if o.ID == id {
			cp := o
			return &cp, nil
		}
	}
	return nil, domain.ErrVoteOptionNotFound
}

func (s *stubStore) Upsert(_ context.Context, roomID int64, userID string, optionID int64) (*domain.CastVote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var label string
	for _, o := range s.options {
		if o.ID == optionID {
			label = o.Label
		}
	}
	if v, ok := s.votes[roomID][userID]; ok {
		v.OptionID = optionID
		v.Label = label
		v.UpdatedAt = time.Now()
		cp := *v
		return &cp, nil
	}
	s.seq++
	v := &domain.CastVote{
		ID: s.seq, RoomID: roomID, UserID: userID, OptionID: optionID,
		Label: label, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	s.votes[roomID][userID] = v
	cp := *v
	return &cp, nil
}

func (s *stubStore) Clear(_ context.Context, roomID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.votes[roomID]))
	s.votes[roomID] = make(map[string]*domain.CastVote)
	if room, ok := s.byID[roomID]; ok {
		room.VotesVisible = false
	}
	return n, nil
}

func (s *stubStore) DeleteByUser(_ context.Context, roomID int64, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.votes[roomID], userID)
	return nil
}

// newTestRouter wires the full stack (store, publisher, hub, services,
// transports) behind the real router.
func newTestRouter() (http.Handler, *hub.Hub, *stubStore) {
	store := newStubStore()
	broadcast := hub.New()
	pub := event.NewPublisher(broadcast)

	roomSvc := service.NewRoomService(store, store, store, pub)
	voteSvc := service.NewVoteService(store, store, store, pub)

	handler := NewHandler(roomSvc, voteSvc)
	sse := NewSSEServer(broadcast, 50*time.Millisecond)
	wsServer := ws.NewServer(broadcast, 50*time.Millisecond)

	return NewRouter(handler, sse, wsServer), broadcast, store
}
