package db

import (
	"database/sql"
	"time"

	"github.com/eventops/sponsorgate/internal/model"
)

func CreateAdminSession(database *sql.DB, s *model.AdminSession) error {
	_, err := database.Exec(
		`INSERT INTO admin_sessions (id, email, expires_at) VALUES (?, ?, ?)`,
		s.ID, s.Email, s.ExpiresAt.UTC().Format(time.RFC3339),
	)
	return err
}

func GetAdminSession(database *sql.DB, id string) (*model.AdminSession, error) {
	s := &model.AdminSession{}
	var createdAt SQLiteTime
	var expiresAt string
	err := database.QueryRow(
		`SELECT id, email, created_at, expires_at FROM admin_sessions WHERE id = ?`, id,
	).Scan(&s.ID, &s.Email, &createdAt, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.CreatedAt = createdAt.Time
	s.ExpiresAt, _ = time.Parse(time.RFC3339, expiresAt)
	return s, nil
}

func DeleteAdminSession(database *sql.DB, id string) error {
	_, err := database.Exec(`DELETE FROM admin_sessions WHERE id = ?`, id)
	return err
}

func DeleteExpiredAdminSessions(database *sql.DB) error {
	_, err := database.Exec(
		`DELETE FROM admin_sessions WHERE expires_at < ?`,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}
