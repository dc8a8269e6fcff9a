package handler

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/eventops/sponsorgate/internal/model"
)

// Gate is the entry point for sponsors: the form is only served when the
// query carries a valid, still-unused token. The token itself is consumed
// later, at submission time, not here.
func (h *Handler) Gate(w http.ResponseWriter, r *http.Request) {
	value := r.URL.Query().Get("token")
	if value == "" {
		htmlError(w, http.StatusUnauthorized, "401: Unauthorized", "No access token provided.")
		return
	}

	token, err := h.Tokens.Get(value)
	if err != nil {
		slog.Error("gate: token lookup", "error", err)
		htmlError(w, http.StatusInternalServerError, "500: Server Error", "Could not validate token.")
		return
	}
	if token == nil {
		htmlError(w, http.StatusForbidden, "403: Invalid Link", "This access link is not valid.")
		return
	}
	if token.Status == model.TokenUsed {
		htmlError(w, http.StatusForbidden, "403: Link Expired", "This access link has already been used.")
		return
	}

	page, err := fs.ReadFile(h.staticFS, "index.html")
	if err != nil {
		slog.Error("gate: read form page", "error", err)
		htmlError(w, http.StatusInternalServerError, "500: Server Error", "Form unavailable.")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}
