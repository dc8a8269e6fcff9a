package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr    string
	DataDir       string
	BaseURL       string
	SessionSecret string
	LogLevel      string

	// Admin gate. When GoogleClientID is set the Google ID-token strategy is
	// used, otherwise the shared-password strategy.
	AdminEmail        string
	AdminPasswordHash string
	GoogleClientID    string
	AdminEmailList    []string

	// Remote object storage for durable artifact copies.
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3Region       string
	S3UseSSL       bool
	UserFolder     string
	OfficialFolder string

	// PDF stamping inputs.
	TemplateDir string
	FontPath    string

	MaxUploadBytes  int64
	SweepInterval   time.Duration
	RetentionWindow time.Duration

	// When true the orchestrator generates artifacts before consuming the
	// token, trading the wasted-token failure mode for a duplicate-artifact
	// window. Default false keeps consume-first ordering.
	ConsumeAfterGenerate bool
}

func Load() *Config {
	// Missing .env is fine; real deployments set the environment directly.
	godotenv.Load()

	return &Config{
		ListenAddr:    envOr("LISTEN_ADDR", ":8080"),
		DataDir:       envOr("DATA_DIR", "./data"),
		BaseURL:       envOr("BASE_URL", "http://localhost:8080"),
		SessionSecret: envOr("SESSION_SECRET", "change-me-in-production-32-bytes!"),
		LogLevel:      envOr("LOG_LEVEL", "info"),

		AdminEmail:        envOr("ADMIN_EMAIL", ""),
		AdminPasswordHash: envOr("ADMIN_PASSWORD_HASH", ""),
		GoogleClientID:    envOr("GOOGLE_CLIENT_ID", ""),
		AdminEmailList:    envList("ADMIN_EMAIL_LIST"),

		S3Endpoint:     envOr("S3_ENDPOINT", ""),
		S3AccessKey:    envOr("S3_ACCESS_KEY", ""),
		S3SecretKey:    envOr("S3_SECRET_KEY", ""),
		S3Bucket:       envOr("S3_BUCKET", "sponsorgate"),
		S3Region:       envOr("S3_REGION", "us-east-1"),
		S3UseSSL:       envBoolOr("S3_USE_SSL", true),
		UserFolder:     envOr("USER_FOLDER", "sponsor-copies/user"),
		OfficialFolder: envOr("OFFICIAL_FOLDER", "sponsor-copies/official"),

		TemplateDir: envOr("TEMPLATE_DIR", "./templates/pdf"),
		FontPath:    envOr("FONT_PATH", "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf"),

		MaxUploadBytes:  envInt64Or("MAX_UPLOAD_BYTES", 2*1024*1024),
		SweepInterval:   envDurationOr("SWEEP_INTERVAL", time.Hour),
		RetentionWindow: envDurationOr("RETENTION_WINDOW", time.Hour),

		ConsumeAfterGenerate: envBoolOr("CONSUME_AFTER_GENERATE", false),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64Or(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
