package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
)

func (h *Handler) Routes(authRL *RateLimiter) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Handle("/static/*", http.StripPrefix("/static/",
		http.FileServer(http.FS(h.staticFS))))

	// Sponsor surface: gate, submission, one-time download.
	r.Get("/", h.Gate)
	r.Post("/submit-form", h.SubmitForm)
	r.Get("/download-user-copy/{filename}", h.DownloadUserCopy)

	// Admin surface: CSRF-protected HTML plus the token issuer.
	csrfProtect := csrf.Protect(
		[]byte(h.Cfg.SessionSecret),
		csrf.Secure(strings.HasPrefix(h.Cfg.BaseURL, "https")),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
	)
	r.Group(func(r chi.Router) {
		r.Use(csrfProtect)

		r.Get("/admin", h.AdminPage)
		r.Get("/admin/auth-status", h.AuthStatus)

		r.Group(func(r chi.Router) {
			r.Use(authRL.Middleware)
			r.Post("/admin/login", h.AdminLogin)
			r.Post("/admin/google-login", h.AdminGoogleLogin)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.RequireAdmin)
			r.Post("/admin/logout", h.AdminLogout)
			r.Post("/admin-generate-token", h.GenerateToken)
		})
	})

	return r
}
