package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/eventops/sponsorgate/internal/auth"
	"github.com/eventops/sponsorgate/internal/db"
)

type contextKey string

const adminEmailKey contextKey = "admin_email"

// RequireAdmin guards admin-only routes. It is the only place the rest of
// the service asks "is this an admin?" — the answer comes from the session,
// never from which login strategy produced it.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, ok := h.adminEmail(r)
		if !ok {
			jsonError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), adminEmailKey, email)))
	})
}

// adminEmail resolves the session cookie to a live admin session.
func (h *Handler) adminEmail(r *http.Request) (string, bool) {
	sessionID, ok := auth.GetSessionID(r, h.Cfg.SessionSecret)
	if !ok {
		return "", false
	}
	session, err := db.GetAdminSession(h.DB, sessionID)
	if err != nil || session == nil || session.ExpiresAt.Before(time.Now()) {
		return "", false
	}
	return session.Email, true
}

func adminFromContext(ctx context.Context) string {
	v, _ := ctx.Value(adminEmailKey).(string)
	return v
}
