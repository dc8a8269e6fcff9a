package db

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"

	"github.com/eventops/sponsorgate/internal/model"
)

var labelSafe = regexp.MustCompile(`[^A-Za-z0-9]`)

// TokenStore is the gateway to the access-token collection. Consume is the
// only mutating operation after creation; it is a single conditional UPDATE,
// so concurrent callers racing on one token see exactly one winner.
type TokenStore struct {
	DB *sql.DB
}

// Create inserts a fresh not_used token whose value combines the sanitized
// label with four random bytes, hex encoded.
func (s *TokenStore) Create(label string) (*model.AccessToken, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("token entropy: %w", err)
	}
	value := labelSafe.ReplaceAllString(label, "_") + "_" + hex.EncodeToString(buf)

	now := time.Now().UTC()
	_, err := s.DB.Exec(
		`INSERT INTO access_tokens (value, status, label, created_at) VALUES (?, ?, ?, ?)`,
		value, model.TokenNotUsed, label, now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("insert token: %w", err)
	}
	return &model.AccessToken{
		Value:     value,
		Status:    model.TokenNotUsed,
		Label:     label,
		CreatedAt: now,
	}, nil
}

// Get is the non-mutating lookup used by the gatekeeper. Missing tokens
// return (nil, nil).
func (s *TokenStore) Get(value string) (*model.AccessToken, error) {
	t := &model.AccessToken{}
	var createdAt SQLiteTime
	var consumedAt *string
	err := s.DB.QueryRow(
		`SELECT value, status, label, created_at, consumed_by, consumed_at
		 FROM access_tokens WHERE value = ?`, value,
	).Scan(&t.Value, &t.Status, &t.Label, &createdAt, &t.ConsumedBy, &consumedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.CreatedAt = createdAt.Time
	if consumedAt != nil {
		pt, _ := time.Parse(time.RFC3339, *consumedAt)
		t.ConsumedAt = &pt
	}
	return t, nil
}

// Consume flips the token to used and records the submitter, conditioned on
// the current status still being not_used. The returned bool reports whether
// this caller won; false covers both a missing token and one already spent.
func (s *TokenStore) Consume(value, submitterName string) (bool, error) {
	res, err := s.DB.Exec(
		`UPDATE access_tokens
		 SET status = ?, consumed_by = ?, consumed_at = ?
		 WHERE value = ? AND status = ?`,
		model.TokenUsed, submitterName, time.Now().UTC().Format(time.RFC3339),
		value, model.TokenNotUsed,
	)
	if err != nil {
		return false, fmt.Errorf("consume token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
