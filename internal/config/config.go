package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/tanami-dev/tanami/internal/storage"
)

// Config holds all configuration for the CLI and the chat server
type Config struct {
	// Backend API Configuration
	API APIConfig

	// Local Storage Configuration
	Storage StorageConfig

	// Chat Proxy Configuration
	Chat ChatConfig

	// HTTP Server Configuration
	Server ServerConfig

	// Logging Configuration
	Logging LoggingConfig
}

// APIConfig holds backend connection settings
type APIConfig struct {
	URL         string
	Timeout     time.Duration
	GeocoderURL string // Nominatim instance for place-name lookups
}

// StorageConfig selects where the token and cached user live
type StorageConfig struct {
	Backend string // keyring, file, sqlite, memory
	Path    string // directory for file and sqlite backends
}

// ChatConfig holds chat proxy settings. URL is what the CLI talks to, the
// rest is what the server uses upstream.
type ChatConfig struct {
	URL         string
	GroqAPIKey  string
	GroqBaseURL string
	Model       string
	Timeout     time.Duration // upstream completion timeout
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port         string
	AllowOrigins []string
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

const (
	DefaultAPIURL      = "http://localhost:5328"
	DefaultChatURL     = "http://localhost:8080/api/chat"
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"
	DefaultGeocoderURL = "https://nominatim.openstreetmap.org"
	DefaultPort        = "8080"
	DefaultOrigin      = "http://localhost:3000"

	DefaultRequestTimeout = 30 * time.Second
	DefaultChatTimeout    = 60 * time.Second
)

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	timeout, err := durationEnv("TANAMI_REQUEST_TIMEOUT", DefaultRequestTimeout)
	if err != nil {
		return nil, err
	}

	chatTimeout, err := durationEnv("GROQ_TIMEOUT", DefaultChatTimeout)
	if err != nil {
		return nil, err
	}

	backend := strings.ToLower(getenv("TANAMI_STORAGE", storage.BackendKeyring))
	switch backend {
	case storage.BackendKeyring, storage.BackendFile, storage.BackendSQLite, storage.BackendMemory:
	default:
		return nil, fmt.Errorf("invalid TANAMI_STORAGE %q (want keyring, file, sqlite or memory)", backend)
	}

	storagePath := os.Getenv("TANAMI_STORAGE_PATH")
	if storagePath == "" {
		dir, err := storage.DefaultDir()
		if err != nil {
			return nil, err
		}
		storagePath = dir
	}

	return &Config{
		API: APIConfig{
			URL:         strings.TrimSuffix(getenv("TANAMI_API_URL", DefaultAPIURL), "/"),
			Timeout:     timeout,
			GeocoderURL: getenv("TANAMI_GEOCODER_URL", DefaultGeocoderURL),
		},
		Storage: StorageConfig{
			Backend: backend,
			Path:    filepath.Clean(storagePath),
		},
		Chat: ChatConfig{
			URL:         getenv("TANAMI_CHAT_URL", DefaultChatURL),
			GroqAPIKey:  os.Getenv("GROQ_API_KEY"),
			GroqBaseURL: getenv("GROQ_BASE_URL", DefaultGroqBaseURL),
			Model:       os.Getenv("GROQ_MODEL"),
			Timeout:     chatTimeout,
		},
		Server: ServerConfig{
			Port:         getenv("PORT", DefaultPort),
			AllowOrigins: splitList(getenv("CORS_ALLOW_ORIGINS", DefaultOrigin)),
		},
		Logging: LoggingConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "json"),
		},
	}, nil
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", key, raw)
	}
	return parsed, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
