package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"

	AuthModeSession = "session"
	AuthModeDev     = "dev"
)

// DotEnvFiles are loaded in order by LoadDotEnv. Variables already present in
// the environment win, and earlier files win over later ones.
var DotEnvFiles = []string{".env.local", ".env"}

type StorageConfig struct {
	Backend     string // sqlite|postgres|redis|memory
	SQLitePath  string
	DatabaseURL string
	RedisURL    string
	// Namespace scopes the postgres rows / redis keys this deployment owns.
	Namespace string
}

type LogConfig struct {
	Level string
	JSON  bool
}

// Config is the process configuration shared by cmd/api and cmd/clubctl.
type Config struct {
	Port string

	// DevMode disables the storage version guard.
	DevMode bool
	Storage StorageConfig
	Log     LogConfig

	AuthMode string // session|dev
	Session  SessionConfig
	// DevMember is the member assumed by AUTH_MODE=dev when a request names none.
	DevMember string

	GeminiAPIKey string
	GeminiModel  string
	ImgBBAPIKey  string
	// HTTPTimeout bounds calls to the external text and image services.
	HTTPTimeout time.Duration
}

// LoadDotEnv loads the dotenv files that exist; missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = DotEnvFiles
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func LoadFromEnv() (Config, error) {
	return Load(os.Getenv)
}

// Load builds a Config from getenv. Session settings are only required when
// AUTH_MODE is session (the default).
func Load(getenv func(string) string) (Config, error) {
	get := func(k, def string) string {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:      get("PORT", "8080"),
		AuthMode:  get("AUTH_MODE", AuthModeSession),
		DevMember: getenv("DEV_MEMBER"),
		Storage: StorageConfig{
			Backend:     strings.ToLower(get("STORAGE_BACKEND", BackendSQLite)),
			SQLitePath:  get("CLUB_DB_PATH", "club.db"),
			DatabaseURL: getenv("DATABASE_URL"),
			RedisURL:    getenv("REDIS_URL"),
			Namespace:   get("KV_NAMESPACE", "cbb"),
		},
		Log: LogConfig{
			Level: get("LOG_LEVEL", "info"),
		},
		GeminiAPIKey: get("GEMINI_API_KEY", getenv("API_KEY")),
		GeminiModel:  get("GEMINI_MODEL", "gemini-2.5-flash"),
		ImgBBAPIKey:  getenv("IMGBB_API_KEY"),
		HTTPTimeout:  30 * time.Second,
	}

	var err error
	if cfg.DevMode, err = parseBool("DEV_MODE", getenv("DEV_MODE")); err != nil {
		return Config{}, err
	}
	if cfg.Log.JSON, err = parseBool("LOG_JSON", getenv("LOG_JSON")); err != nil {
		return Config{}, err
	}
	if v := getenv("EXTERNAL_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("EXTERNAL_HTTP_TIMEOUT must be a duration (e.g. 30s): %w", err)
		}
		cfg.HTTPTimeout = d
	}

	switch cfg.Storage.Backend {
	case BackendSQLite, BackendMemory:
	case BackendPostgres:
		if cfg.Storage.DatabaseURL == "" {
			return Config{}, fmt.Errorf("STORAGE_BACKEND=postgres requires DATABASE_URL")
		}
	case BackendRedis:
		if cfg.Storage.RedisURL == "" {
			return Config{}, fmt.Errorf("STORAGE_BACKEND=redis requires REDIS_URL")
		}
	default:
		return Config{}, fmt.Errorf("STORAGE_BACKEND must be one of sqlite, postgres, redis, memory (got %q)", cfg.Storage.Backend)
	}

	switch cfg.AuthMode {
	case AuthModeDev:
	case AuthModeSession:
		if cfg.Session, err = loadSessionConfig(getenv); err != nil {
			return Config{}, err
		}
	default:
		return Config{}, fmt.Errorf("AUTH_MODE must be session or dev (got %q)", cfg.AuthMode)
	}

	return cfg, nil
}

func parseBool(name, v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", name, err)
	}
	return b, nil
}
