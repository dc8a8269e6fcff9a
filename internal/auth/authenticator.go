package auth

import (
	"errors"

	gverifier "github.com/futurenda/google-auth-id-token-verifier"
)

// ErrNotAdmin covers every way a login attempt can fail: bad password, bad
// ID token, or an email outside the allow-list. Callers get no finer detail.
var ErrNotAdmin = errors.New("not an authorized admin")

// Credentials carries whichever proof the active strategy expects. The
// password strategy reads Email/Password, the Google strategy reads IDToken.
type Credentials struct {
	Email    string
	Password string
	IDToken  string
}

// Authenticator reduces the admin identity question to a single check.
// Handlers and the token store never know which strategy is active.
type Authenticator interface {
	Authenticate(c Credentials) (email string, err error)
}

// PasswordAuthenticator is the shared-credential variant: one admin email
// and a bcrypt hash of the password, both from configuration.
type PasswordAuthenticator struct {
	Email        string
	PasswordHash string
}

func (a *PasswordAuthenticator) Authenticate(c Credentials) (string, error) {
	if a.Email == "" || a.PasswordHash == "" {
		return "", ErrNotAdmin
	}
	if c.Email != a.Email || !CheckPassword(a.PasswordHash, c.Password) {
		return "", ErrNotAdmin
	}
	return a.Email, nil
}

// GoogleAuthenticator verifies a Google ID token issued to ClientID and
// requires the token's email to appear in the allow-list.
type GoogleAuthenticator struct {
	ClientID      string
	AllowedEmails []string
}

func (a *GoogleAuthenticator) Authenticate(c Credentials) (string, error) {
	if c.IDToken == "" {
		return "", ErrNotAdmin
	}
	v := gverifier.Verifier{}
	if err := v.VerifyIDToken(c.IDToken, []string{a.ClientID}); err != nil {
		return "", ErrNotAdmin
	}
	claims, err := gverifier.Decode(c.IDToken)
	if err != nil {
		return "", ErrNotAdmin
	}
	for _, allowed := range a.AllowedEmails {
		if claims.Email == allowed {
			return claims.Email, nil
		}
	}
	return "", ErrNotAdmin
}
