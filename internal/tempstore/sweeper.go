package tempstore

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper runs the eviction pass on a fixed schedule, independently of
// request traffic.
type Sweeper struct {
	Store    *Store
	Interval time.Duration
	MaxAge   time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

func (s *Sweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.loop(ctx)
	slog.Info("sweep scheduler started", "interval", s.Interval, "retention", s.MaxAge)
}

func (s *Sweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	slog.Info("sweep scheduler stopped")
}

func (s *Sweeper) loop(ctx context.Context) {
	defer close(s.done)

	s.Store.Sweep(s.MaxAge)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Store.Sweep(s.MaxAge)
		}
	}
}
