package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all server configuration. It is loaded once at startup and
// passed by reference into the server and session layers; nothing mutates it
// afterwards.
type Config struct {
	Port           int
	AllowedOrigins []string
	AppAPIKey      string // shared secret for clients; empty disables the check

	// Voice Live connection
	VoiceLiveEndpoint     string
	VoiceLiveAPIKey       string // empty falls back to Entra ID client credentials
	VoiceLiveAPIVersion   string
	VoiceLiveDeploymentID string
	VoiceLiveAgentID      string

	// Entra ID client credentials (used only when VoiceLiveAPIKey is empty)
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	AllowedModels          []string
	AvatarDefaultCharacter string

	RedisURL      string
	RedisPassword string

	MaxSessions     int
	SessionTimeout  time.Duration
	KeepAlivePeriod time.Duration
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	config := &Config{
		Port:                   8080,
		AllowedOrigins:         []string{"*"},
		VoiceLiveAPIVersion:    "2025-05-01-preview",
		VoiceLiveDeploymentID:  "gpt-realtime",
		AvatarDefaultCharacter: "lisa-casual-sitting",
		RedisURL:               "localhost:6379",
		MaxSessions:            100,
		SessionTimeout:         30 * time.Minute,
		KeepAlivePeriod:        30 * time.Second,
	}

	// Required: AZURE_VOICE_LIVE_ENDPOINT
	config.VoiceLiveEndpoint = strings.TrimSpace(os.Getenv("AZURE_VOICE_LIVE_ENDPOINT"))
	if config.VoiceLiveEndpoint == "" {
		return nil, fmt.Errorf("AZURE_VOICE_LIVE_ENDPOINT environment variable is required")
	}

	config.VoiceLiveAPIKey = strings.TrimSpace(os.Getenv("AZURE_VOICE_LIVE_API_KEY"))
	config.AzureTenantID = strings.TrimSpace(os.Getenv("AZURE_TENANT_ID"))
	config.AzureClientID = strings.TrimSpace(os.Getenv("AZURE_CLIENT_ID"))
	config.AzureClientSecret = strings.TrimSpace(os.Getenv("AZURE_CLIENT_SECRET"))
	if config.VoiceLiveAPIKey == "" && (config.AzureTenantID == "" || config.AzureClientID == "" || config.AzureClientSecret == "") {
		return nil, fmt.Errorf("either AZURE_VOICE_LIVE_API_KEY or AZURE_TENANT_ID/AZURE_CLIENT_ID/AZURE_CLIENT_SECRET is required")
	}

	// Optional: PORT
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		config.Port = p
	}

	// Optional: APP_API_KEY (client auth disabled when unset)
	config.AppAPIKey = strings.TrimSpace(os.Getenv("APP_API_KEY"))

	// Optional: APP_ALLOWED_ORIGINS (comma-separated)
	if origins := os.Getenv("APP_ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = splitCSV(origins)
	}

	// Optional: APP_ALLOWED_MODELS (comma-separated; empty allows every model)
	if models := os.Getenv("APP_ALLOWED_MODELS"); models != "" {
		config.AllowedModels = splitCSV(models)
	}

	// Optional: AZURE_VOICE_LIVE_API_VERSION
	if version := strings.TrimSpace(os.Getenv("AZURE_VOICE_LIVE_API_VERSION")); version != "" {
		config.VoiceLiveAPIVersion = version
	}

	// Optional: AZURE_VOICE_LIVE_DEPLOYMENT_ID
	if deployment := strings.TrimSpace(os.Getenv("AZURE_VOICE_LIVE_DEPLOYMENT_ID")); deployment != "" {
		config.VoiceLiveDeploymentID = deployment
	}

	// Optional: AZURE_VOICE_LIVE_AGENT_ID
	config.VoiceLiveAgentID = strings.TrimSpace(os.Getenv("AZURE_VOICE_LIVE_AGENT_ID"))

	// Optional: AZURE_AVATAR_DEFAULT_CHARACTER
	if avatar := strings.TrimSpace(os.Getenv("AZURE_AVATAR_DEFAULT_CHARACTER")); avatar != "" {
		config.AvatarDefaultCharacter = avatar
	}

	// Optional: REDIS_URL
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		config.RedisURL = redisURL
	}

	// Optional: REDIS_PASSWORD
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.RedisPassword = redisPassword
	}

	// Optional: MAX_SESSIONS
	if maxSessions := os.Getenv("MAX_SESSIONS"); maxSessions != "" {
		m, err := strconv.Atoi(maxSessions)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_SESSIONS: %w", err)
		}
		config.MaxSessions = m
	}

	// Optional: SESSION_TIMEOUT (in minutes)
	if timeout := os.Getenv("SESSION_TIMEOUT"); timeout != "" {
		t, err := strconv.Atoi(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TIMEOUT: %w", err)
		}
		config.SessionTimeout = time.Duration(t) * time.Minute
	}

	// Optional: KEEPALIVE_PERIOD (in seconds)
	if keepalive := os.Getenv("KEEPALIVE_PERIOD"); keepalive != "" {
		k, err := strconv.Atoi(keepalive)
		if err != nil {
			return nil, fmt.Errorf("invalid KEEPALIVE_PERIOD: %w", err)
		}
		config.KeepAlivePeriod = time.Duration(k) * time.Second
	}

	return config, nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
