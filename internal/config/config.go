package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Session   SessionConfig
	Database  DatabaseConfig
	SQLite    SQLiteConfig
	Listing   ListingConfig
	Media     MediaConfig
	WebSocket WebSocketConfig
	CORS      CORSConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

type BackendConfig struct {
	BaseURL string
	// Zero leaves the transport default in place.
	Timeout time.Duration
}

type SessionConfig struct {
	Store      string
	CookieName string
	SealKey    string
	Secure     bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type SQLiteConfig struct {
	Path string
}

type ListingConfig struct {
	SearchDebounce  time.Duration
	DefaultPageSize int
}

type MediaConfig struct {
	UploadConcurrency int
	DefaultDuration   int
	MaxUploadBytes    int64
}

type WebSocketConfig struct {
	ReadBufferSize    int
	WriteBufferSize   int
	WriteWait         time.Duration
	PongWait          time.Duration
	PingPeriod        time.Duration
	MaxConnPerSession int
}

type CORSConfig struct {
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

type LoggingConfig struct {
	Level string
}

const (
	StoreSQLite  = "sqlite"
	StoreCouchDB = "couchdb"
)

func Load() (*Config, error) {
	godotenv.Load()

	apiTimeout, err := time.ParseDuration(getEnv("API_TIMEOUT", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_TIMEOUT: %w", err)
	}

	debounce, err := time.ParseDuration(getEnv("SEARCH_DEBOUNCE", "450ms"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEARCH_DEBOUNCE: %w", err)
	}

	store := strings.ToLower(getEnv("SESSION_STORE", StoreSQLite))
	if store != StoreSQLite && store != StoreCouchDB {
		return nil, fmt.Errorf("invalid SESSION_STORE %q: want %s or %s", store, StoreSQLite, StoreCouchDB)
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Host: getEnv("HOST", "0.0.0.0"),
			Env:  getEnv("ENV", "development"),
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080"), "/"),
			Timeout: apiTimeout,
		},
		Session: SessionConfig{
			Store:      store,
			CookieName: getEnv("SESSION_COOKIE", "signage_session"),
			SealKey:    getEnv("SESSION_SEAL_KEY", "dev-seal-key-change-in-production"),
			Secure:     getEnvAsBool("SESSION_COOKIE_SECURE", false),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5984"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "password"),
			Name:     getEnv("DB_NAME", "signage_console"),
		},
		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "data/sessions.db"),
		},
		Listing: ListingConfig{
			SearchDebounce:  debounce,
			DefaultPageSize: getEnvAsInt("DEFAULT_PAGE_SIZE", 10),
		},
		Media: MediaConfig{
			UploadConcurrency: getEnvAsInt("UPLOAD_CONCURRENCY", 4),
			DefaultDuration:   getEnvAsInt("DEFAULT_MEDIA_DURATION", 5),
			MaxUploadBytes:    int64(getEnvAsInt("MAX_UPLOAD_BYTES", 512<<20)),
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:    getEnvAsInt("WS_READ_BUFFER_SIZE", 1024),
			WriteBufferSize:   getEnvAsInt("WS_WRITE_BUFFER_SIZE", 1024),
			WriteWait:         10 * time.Second,
			PongWait:          60 * time.Second,
			PingPeriod:        54 * time.Second,
			MaxConnPerSession: getEnvAsInt("WS_MAX_CONN_PER_SESSION", 5),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,PATCH,DELETE,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

// SlogLevel maps LOG_LEVEL onto slog; unknown values fall back to info.
func (c LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
