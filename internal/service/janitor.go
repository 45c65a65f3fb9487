package service

import (
	"context"
	"log/slog"
	"time"
)

// Janitor purges rooms that have not been touched within the TTL. Rooms are
// touched on every mutation, so only abandoned sessions age out.
type Janitor struct {
	rooms    RoomStore
	ttl      time.Duration
	interval time.Duration
}

func NewJanitor(rooms RoomStore, ttl, interval time.Duration) *Janitor {
	return &Janitor{rooms: rooms, ttl: ttl, interval: interval}
}

// Run blocks until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := j.rooms.PurgeInactive(ctx, j.ttl)
			if err != nil {
				slog.Warn("janitor purge failed", "err", err)
				continue
			}
			if n > 0 {
				slog.Info("janitor purged rooms", "count", n)
			}
		}
	}
}
