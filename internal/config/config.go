package config

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the portal gateway
type Config struct {
	// Backend API configuration
	Backend BackendConfig

	// HTTP listener configuration
	Server ServerConfig

	// Session storage configuration
	Session SessionConfig

	// Logging Configuration
	Logging LoggingConfig
}

// BackendConfig holds the upstream MedVerse API configuration
type BackendConfig struct {
	BaseURL string // Base URL of the backend; all calls are prefixed with /api
}

// ServerConfig holds HTTP listener configuration
type ServerConfig struct {
	ListenAddr string
	RoutesFile string // Optional YAML file overriding the role->dashboard table
}

// SessionConfig holds session store configuration
type SessionConfig struct {
	DatabasePath string // SQLite file backing the durable store
	Secret       []byte // 32-byte key sealing tokens at rest, hex-encoded in env
	RedisAddress string // Optional; enables the Redis ephemeral store when set
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// Backend base URL - the external API owning all business logic
	backendURL := os.Getenv("BACKEND_URL")
	if backendURL == "" {
		backendURL = "http://localhost:5000"
	}

	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	sessionDB := os.Getenv("SESSION_DB")
	if sessionDB == "" {
		sessionDB = "portal.sqlite"
	}

	// Session secret seals bearer tokens in the durable store. A missing
	// secret leaves sealing disabled (dev mode); a malformed one is an error.
	var secret []byte
	if raw := os.Getenv("SESSION_SECRET"); raw != "" {
		decoded, err := hex.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("SESSION_SECRET must be hex encoded: %w", err)
		}
		if len(decoded) != 32 {
			return nil, fmt.Errorf("SESSION_SECRET must decode to 32 bytes, got %d", len(decoded))
		}
		secret = decoded
	}

	// Logging configuration - defaults suitable for production
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}

	return &Config{
		Backend: BackendConfig{
			BaseURL: backendURL,
		},
		Server: ServerConfig{
			ListenAddr: listenAddr,
			RoutesFile: os.Getenv("ROUTES_FILE"),
		},
		Session: SessionConfig{
			DatabasePath: sessionDB,
			Secret:       secret,
			RedisAddress: os.Getenv("REDIS_ADDRESS"),
		},
		Logging: LoggingConfig{
			Level:  logLevel,
			Format: logFormat,
		},
	}, nil
}
