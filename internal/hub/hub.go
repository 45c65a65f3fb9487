package hub

import (
	"sync"

	"github.com/scrumdeck/room-sync/internal/event"
)

// Hub fans events out per topic (one topic per room). Publishing never
// blocks: each subscriber has a bounded buffer and a slow subscriber drops
// events instead of delaying the topic. Per-topic locking keeps publish
// order for every subscriber of a topic without coupling topics to each
// other.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]*topic

	buffer int
}

type topic struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

const defaultBuffer = 16

func New() *Hub {
	return NewWithBuffer(defaultBuffer)
}

func NewWithBuffer(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		topics: make(map[string]*topic),
		buffer: buffer,
	}
}

// Publish enqueues ev for every current subscriber of the topic. With no
// subscribers the event is silently dropped: a late subscriber fetches
// current state itself and never needs history.
func (h *Hub) Publish(name string, ev event.Event) {
	h.mu.RLock()
	t := h.topics[name]
	h.mu.RUnlock()
	if t == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for s := range t.subs {
		select {
		case s.ch <- ev:
		default:
			// buffer full, drop for this subscriber
		}
	}
}

// Subscribe registers a new subscriber on the topic. Events arrive on
// Events() in publish order until Close.
func (h *Hub) Subscribe(name string) *Subscription {
	s := &Subscription{
		hub:   h,
		topic: name,
		ch:    make(chan event.Event, h.buffer),
	}

	// h.mu is held across the add so a concurrent teardown of the same
	// topic cannot orphan the new subscription.
	h.mu.Lock()
	t, ok := h.topics[name]
	if !ok {
		t = &topic{subs: make(map[*Subscription]struct{})}
		h.topics[name] = t
	}
	t.mu.Lock()
	t.subs[s] = struct{}{}
	t.mu.Unlock()
	h.mu.Unlock()

	return s
}

func (h *Hub) unsubscribe(s *Subscription) {
	h.mu.Lock()
	t := h.topics[s.topic]
	if t == nil {
		h.mu.Unlock()
		return
	}

	t.mu.Lock()
	delete(t.subs, s)
	empty := len(t.subs) == 0
	t.mu.Unlock()

	// last subscriber gone: tear the topic down, nothing is retained
	if empty {
		delete(h.topics, s.topic)
	}
	h.mu.Unlock()
}

// Subscribers reports the current subscriber count of a topic.
func (h *Hub) Subscribers(name string) int {
	h.mu.RLock()
	t := h.topics[name]
	h.mu.RUnlock()
	if t == nil {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// Subscription is one logical consumer of a topic.
type Subscription struct {
	hub   *Hub
	topic string
	ch    chan event.Event
	once  sync.Once
}

// Events yields events in topic publish order. The channel is closed by
// Close.
func (s *Subscription) Events() <-chan event.Event {
	return s.ch
}

func (s *Subscription) Topic() string {
	return s.topic
}

// Close releases the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.unsubscribe(s)
		close(s.ch)
	})
}
