package model

import "time"

const (
	TokenNotUsed = "not_used"
	TokenUsed    = "used"
)

// AccessToken is the single-use credential gating one form submission.
// Consumed tokens are retained as an audit trail and never deleted.
type AccessToken struct {
	Value      string
	Status     string
	Label      string
	CreatedAt  time.Time
	ConsumedBy *string
	ConsumedAt *time.Time
}

// SubmissionFields holds the text values a sponsor fills into the pledge form.
type SubmissionFields struct {
	Name          string
	Company       string
	Designation   string
	Amount        string
	PaymentMethod string
	CollectedBy   string
	CollectedOn   string
}

// Receipt is returned to the sponsor after a successful submission.
type Receipt struct {
	SubmissionID string
	Filename     string
}

type AdminSession struct {
	ID        string
	Email     string
	CreatedAt time.Time
	ExpiresAt time.Time
}
