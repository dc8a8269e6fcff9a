package db

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
)

// SessionJanitor purges expired admin sessions on a fixed schedule.
// Lookups already reject expired rows; the janitor keeps the table from
// growing unbounded.
type SessionJanitor struct {
	DB       *sql.DB
	Interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

func (j *SessionJanitor) Start(ctx context.Context) {
	ctx, j.cancel = context.WithCancel(ctx)
	j.done = make(chan struct{})
	go j.loop(ctx)
	slog.Info("session janitor started", "interval", j.Interval)
}

func (j *SessionJanitor) Stop() {
	if j.cancel != nil {
		j.cancel()
		<-j.done
	}
	slog.Info("session janitor stopped")
}

func (j *SessionJanitor) loop(ctx context.Context) {
	defer close(j.done)

	j.purge()

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.purge()
		}
	}
}

func (j *SessionJanitor) purge() {
	if err := DeleteExpiredAdminSessions(j.DB); err != nil {
		slog.Error("session janitor: purge failed", "error", err)
	}
}
