package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sponsorgate "github.com/eventops/sponsorgate"
	"github.com/eventops/sponsorgate/internal/db"
	"github.com/eventops/sponsorgate/internal/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := db.Migrate(database, sponsorgate.MigrationFS); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return database
}

func createSession(t *testing.T, database *sql.DB, id string, expiresAt time.Time) {
	t.Helper()
	err := db.CreateAdminSession(database, &model.AdminSession{
		ID:        id,
		Email:     "admin@example.org",
		ExpiresAt: expiresAt,
	})
	if err != nil {
		t.Fatalf("create session %s: %v", id, err)
	}
}

func TestDeleteExpiredAdminSessions(t *testing.T) {
	database := openTestDB(t)
	createSession(t, database, "live", time.Now().Add(time.Hour))
	createSession(t, database, "dead", time.Now().Add(-time.Hour))

	if err := db.DeleteExpiredAdminSessions(database); err != nil {
		t.Fatalf("delete expired: %v", err)
	}

	if s, err := db.GetAdminSession(database, "live"); err != nil || s == nil {
		t.Errorf("unexpired session purged (s=%v, err=%v)", s, err)
	}
	if s, err := db.GetAdminSession(database, "dead"); err != nil || s != nil {
		t.Errorf("expired session survived purge (s=%v, err=%v)", s, err)
	}
}

func TestSessionJanitorPurgesOnStart(t *testing.T) {
	database := openTestDB(t)
	createSession(t, database, "dead", time.Now().Add(-time.Hour))

	janitor := &db.SessionJanitor{DB: database, Interval: time.Hour}
	janitor.Start(context.Background())
	defer janitor.Stop()

	// The first purge runs as soon as the loop starts.
	deadline := time.Now().Add(5 * time.Second)
	for {
		s, err := db.GetAdminSession(database, "dead")
		if err != nil {
			t.Fatalf("get session: %v", err)
		}
		if s == nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("expired session still present after janitor start")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
