package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	sponsorgate "github.com/eventops/sponsorgate"
	"github.com/eventops/sponsorgate/internal/auth"
	"github.com/eventops/sponsorgate/internal/config"
	"github.com/eventops/sponsorgate/internal/db"
	"github.com/eventops/sponsorgate/internal/dispatch"
	"github.com/eventops/sponsorgate/internal/handler"
	"github.com/eventops/sponsorgate/internal/stamp"
	"github.com/eventops/sponsorgate/internal/submit"
	"github.com/eventops/sponsorgate/internal/tempstore"
)

func Run(ctx context.Context, cfg *config.Config) error {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return err
	}

	database, err := db.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(database, sponsorgate.MigrationFS); err != nil {
		return err
	}
	slog.Info("database ready")

	janitor := &db.SessionJanitor{DB: database, Interval: time.Hour}
	janitor.Start(ctx)
	defer janitor.Stop()

	tokens := &db.TokenStore{DB: database}

	// Stamping inputs are read once here; the stamper itself does no I/O.
	userTpl, err := os.ReadFile(filepath.Join(cfg.TemplateDir, "user_copy.pdf"))
	if err != nil {
		return fmt.Errorf("read user template: %w", err)
	}
	officialTpl, err := os.ReadFile(filepath.Join(cfg.TemplateDir, "official.pdf"))
	if err != nil {
		return fmt.Errorf("read official template: %w", err)
	}
	font, err := os.ReadFile(cfg.FontPath)
	if err != nil {
		return fmt.Errorf("read stamp font: %w", err)
	}
	stamper := stamp.New(userTpl, officialTpl, font)

	var dispatcher submit.Dispatcher
	if cfg.S3Endpoint != "" {
		uploader, err := dispatch.New(cfg)
		if err != nil {
			return err
		}
		if err := uploader.EnsureBucket(ctx); err != nil {
			return err
		}
		dispatcher = uploader
		slog.Info("remote storage ready", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		dispatcher = dispatch.Discard{}
		slog.Warn("no S3 endpoint configured, remote uploads disabled")
	}

	downloads, err := tempstore.New(filepath.Join(cfg.DataDir, "temp-downloads"))
	if err != nil {
		return err
	}
	sweeper := &tempstore.Sweeper{
		Store:    downloads,
		Interval: cfg.SweepInterval,
		MaxAge:   cfg.RetentionWindow,
	}
	sweeper.Start(ctx)
	defer sweeper.Stop()

	orchestrator := &submit.Orchestrator{
		Tokens:               tokens,
		Stamper:              stamper,
		Dispatcher:           dispatcher,
		Downloads:            downloads,
		UserFolder:           cfg.UserFolder,
		OfficialFolder:       cfg.OfficialFolder,
		MaxFileBytes:         cfg.MaxUploadBytes,
		ConsumeAfterGenerate: cfg.ConsumeAfterGenerate,
	}

	var authenticator auth.Authenticator
	if cfg.GoogleClientID != "" {
		authenticator = &auth.GoogleAuthenticator{
			ClientID:      cfg.GoogleClientID,
			AllowedEmails: cfg.AdminEmailList,
		}
		slog.Info("admin auth: google id-token", "allowed", len(cfg.AdminEmailList))
	} else {
		authenticator = &auth.PasswordAuthenticator{
			Email:        cfg.AdminEmail,
			PasswordHash: cfg.AdminPasswordHash,
		}
		slog.Info("admin auth: shared password")
	}

	templateFS, err := fs.Sub(sponsorgate.TemplateFS, "templates")
	if err != nil {
		return err
	}
	staticFS, err := fs.Sub(sponsorgate.StaticFS, "static")
	if err != nil {
		return err
	}

	// Login endpoints: 5 attempts/minute, burst of 5.
	authRL := handler.NewRateLimiter(5.0/60.0, 5)
	defer authRL.Stop()

	h := handler.New(database, cfg, tokens, orchestrator, downloads, authenticator, templateFS, staticFS)
	router := h.Routes(authRL)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server")
		srv.Shutdown(context.Background())
	}()

	slog.Info("server starting", "addr", cfg.ListenAddr, "base_url", cfg.BaseURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
