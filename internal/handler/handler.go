package handler

import (
	"database/sql"
	"encoding/json"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/eventops/sponsorgate/internal/auth"
	"github.com/eventops/sponsorgate/internal/config"
	"github.com/eventops/sponsorgate/internal/db"
	"github.com/eventops/sponsorgate/internal/submit"
	"github.com/eventops/sponsorgate/internal/tempstore"
)

type Handler struct {
	DB           *sql.DB
	Cfg          *config.Config
	Tokens       *db.TokenStore
	Orchestrator *submit.Orchestrator
	Downloads    *tempstore.Store
	Auth         auth.Authenticator

	templates map[string]*template.Template
	staticFS  fs.FS
}

func New(database *sql.DB, cfg *config.Config, tokens *db.TokenStore,
	orchestrator *submit.Orchestrator, downloads *tempstore.Store,
	authenticator auth.Authenticator, templateFS, staticFS fs.FS) *Handler {

	templates := make(map[string]*template.Template)
	entries, err := fs.ReadDir(templateFS, ".")
	if err != nil {
		panic("read template dir: " + err.Error())
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		templates[e.Name()] = template.Must(template.ParseFS(templateFS, e.Name()))
	}

	return &Handler{
		DB:           database,
		Cfg:          cfg,
		Tokens:       tokens,
		Orchestrator: orchestrator,
		Downloads:    downloads,
		Auth:         authenticator,
		templates:    templates,
		staticFS:     staticFS,
	}
}

func (h *Handler) render(w http.ResponseWriter, name string, data interface{}) {
	t, ok := h.templates[name]
	if !ok {
		slog.Error("template not found", "name", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.Execute(w, data); err != nil {
		slog.Error("render template", "name", name, "error", err)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": msg})
}

func jsonOK(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func htmlError(w http.ResponseWriter, code int, title, detail string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	w.Write([]byte("<h1>" + title + "</h1><p>" + detail + "</p>"))
}
