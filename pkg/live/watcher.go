package live

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// RoomSnapshot is the authoritative room state returned by the read path.
type RoomSnapshot struct {
	RoomKey      string        `json:"roomKey"`
	Participants []Participant `json:"participants"`
	Status       string        `json:"status"`
	CreatedBy    string        `json:"createdBy"`
	VotesVisible bool          `json:"votesVisible"`
}

type Participant struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	IsCreator bool   `json:"isCreator"`
	Vote      *Vote  `json:"vote"`
}

type Vote struct {
	ID        int64  `json:"id"`
	Label     string `json:"label"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// SnapshotFetcher reads the authoritative room state.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context, roomKey string) (*RoomSnapshot, error)
}

// HTTPFetcher reads snapshots from the service's REST read surface.
type HTTPFetcher struct {
	BaseURL string // e.g. http://host
	HTTPC   *http.Client
}

func (f *HTTPFetcher) FetchSnapshot(ctx context.Context, roomKey string) (*RoomSnapshot, error) {
	httpc := f.HTTPC
	if httpc == nil {
		httpc = http.DefaultClient
	}

	u := f.BaseURL + "/api/rooms/" + roomKey + "/participants"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot fetch returned %s", resp.Status)
	}

	var snap RoomSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Watcher keeps a room snapshot current. Every pushed event is treated only
// as a cache-invalidation signal: the watcher re-fetches the full state
// through the read path instead of applying the event payload, and also
// re-fetches on a fixed interval so silently dropped events heal themselves.
type Watcher struct {
	client   *Client
	fetcher  SnapshotFetcher
	roomKey  string
	interval time.Duration
	onChange func(*RoomSnapshot)

	mu      sync.RWMutex
	current *RoomSnapshot

	invalidate chan struct{}
}

func NewWatcher(client *Client, fetcher SnapshotFetcher, roomKey string, interval time.Duration, onChange func(*RoomSnapshot)) *Watcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Watcher{
		client:     client,
		fetcher:    fetcher,
		roomKey:    roomKey,
		interval:   interval,
		onChange:   onChange,
		invalidate: make(chan struct{}, 1),
	}
}

// Snapshot returns the last fetched state, nil before the first fetch.
func (w *Watcher) Snapshot() *RoomSnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Invalidate forces a re-fetch on the next loop turn. Coalesces: pending
// invalidations collapse into one fetch.
func (w *Watcher) Invalidate() {
	select {
	case w.invalidate <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	sub := w.client.Subscribe(w.roomKey, Handlers{
		OnMessage: func(Message) { w.Invalidate() },
	})
	defer sub.Close()

	w.refetch(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.invalidate:
			w.refetch(ctx)
		case <-ticker.C:
			w.refetch(ctx)
		}
	}
}

func (w *Watcher) refetch(ctx context.Context) {
	snap, err := w.fetcher.FetchSnapshot(ctx, w.roomKey)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("snapshot refetch failed", "room", w.roomKey, "err", err)
		}
		return
	}

	w.mu.Lock()
	w.current = snap
	w.mu.Unlock()

	if w.onChange != nil {
		w.onChange(snap)
	}
}
