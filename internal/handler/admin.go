package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"

	"github.com/eventops/sponsorgate/internal/auth"
	"github.com/eventops/sponsorgate/internal/db"
	"github.com/eventops/sponsorgate/internal/model"
)

type adminPageData struct {
	Authenticated bool
	Email         string
	CSRFField     interface{}
	GoogleLogin   bool
}

func (h *Handler) AdminPage(w http.ResponseWriter, r *http.Request) {
	email, ok := h.adminEmail(r)
	h.render(w, "admin.html", adminPageData{
		Authenticated: ok,
		Email:         email,
		CSRFField:     csrf.TemplateField(r),
		GoogleLogin:   h.Cfg.GoogleClientID != "",
	})
}

func (h *Handler) AuthStatus(w http.ResponseWriter, r *http.Request) {
	email, ok := h.adminEmail(r)
	if !ok {
		jsonOK(w, map[string]interface{}{"authenticated": false})
		return
	}
	jsonOK(w, map[string]interface{}{"authenticated": true, "email": email})
}

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	email, err := h.Auth.Authenticate(auth.Credentials{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	})
	if err != nil {
		jsonError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if err := h.startSession(w, email); err != nil {
		jsonError(w, "Internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// AdminGoogleLogin accepts the ID token the admin page obtained from
// Google's sign-in flow and exchanges it for a regular session.
func (h *Handler) AdminGoogleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Credential string `json:"credential"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "Invalid request body.", http.StatusBadRequest)
		return
	}
	email, err := h.Auth.Authenticate(auth.Credentials{IDToken: body.Credential})
	if err != nil {
		jsonError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if err := h.startSession(w, email); err != nil {
		jsonError(w, "Internal error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, map[string]interface{}{"success": true})
}

func (h *Handler) AdminLogout(w http.ResponseWriter, r *http.Request) {
	if sessionID, ok := auth.GetSessionID(r, h.Cfg.SessionSecret); ok {
		db.DeleteAdminSession(h.DB, sessionID)
	}
	auth.ClearSessionCookie(w)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// GenerateToken issues a fresh single-use access link for a brand.
func (h *Handler) GenerateToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BrandName string `json:"brandName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.BrandName) == "" {
		jsonError(w, "Brand name is required.", http.StatusBadRequest)
		return
	}

	token, err := h.Tokens.Create(strings.TrimSpace(body.BrandName))
	if err != nil {
		slog.Error("generate token", "error", err)
		jsonError(w, "Database error.", http.StatusInternalServerError)
		return
	}
	slog.Info("issued access token", "label", token.Label, "by", adminFromContext(r.Context()))

	jsonOK(w, map[string]interface{}{
		"success": true,
		"link":    h.Cfg.BaseURL + "/?token=" + token.Value,
	})
}

func (h *Handler) startSession(w http.ResponseWriter, email string) error {
	session := &model.AdminSession{
		ID:        uuid.New().String(),
		Email:     email,
		ExpiresAt: time.Now().Add(auth.SessionMaxAge),
	}
	if err := db.CreateAdminSession(h.DB, session); err != nil {
		slog.Error("create admin session", "error", err)
		return err
	}
	auth.SetSessionCookie(w, session.ID, h.Cfg.SessionSecret,
		strings.HasPrefix(h.Cfg.BaseURL, "https"))
	return nil
}
