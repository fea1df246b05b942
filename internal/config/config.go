package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Jellyfin
	JellyfinURL      string
	JellyfinAPIKey   string
	JellyfinUsername string // Optional: which user's watched state to check

	// TMDb
	TMDBAPIKey string

	// Sync
	SyncInterval time.Duration // Cadence of the background Jellyfin sync

	// Auth
	LoginPassword string
	JWTSecret     string

	// Server
	ServerPort    string
	AllowedOrigin string // Optional: CORS origin when behind a reverse proxy
	WebDir        string // Built frontend directory served as an SPA

	// Paths
	DatabaseFile string // $CONFIG_DIR/jellywatch.db

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Setup viper FIRST to load .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("SYNC_INTERVAL_SECONDS", 300)
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("WEB_DIR", "frontend/dist")
	viper.SetDefault("LOG_LEVEL", "info")

	// NOW read CONFIG_DIR from viper (which has loaded .env file)
	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "jellywatch")
	} else {
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		// Jellyfin
		JellyfinURL:      viper.GetString("JELLYFIN_URL"),
		JellyfinAPIKey:   viper.GetString("JELLYFIN_API_KEY"),
		JellyfinUsername: viper.GetString("JELLYFIN_USERNAME"),

		// TMDb
		TMDBAPIKey: viper.GetString("TMDB_API_KEY"),

		// Sync
		SyncInterval: time.Duration(viper.GetInt("SYNC_INTERVAL_SECONDS")) * time.Second,

		// Auth
		LoginPassword: viper.GetString("LOGIN_PASSWORD"),
		JWTSecret:     viper.GetString("JWT_SECRET"),

		// Server
		ServerPort:    viper.GetString("SERVER_PORT"),
		AllowedOrigin: viper.GetString("ALLOWED_ORIGIN"),
		WebDir:        viper.GetString("WEB_DIR"),

		// Paths
		DatabaseFile: filepath.Join(configDir, "jellywatch.db"),

		// Logging
		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	// Token signing falls back to the Jellyfin API key when no
	// dedicated secret is configured
	if config.JWTSecret == "" {
		config.JWTSecret = config.JellyfinAPIKey
	}

	// Validate required fields
	if config.JellyfinURL == "" {
		return nil, fmt.Errorf("JELLYFIN_URL is required")
	}
	if config.JellyfinAPIKey == "" {
		return nil, fmt.Errorf("JELLYFIN_API_KEY is required")
	}
	if config.TMDBAPIKey == "" {
		return nil, fmt.Errorf("TMDB_API_KEY is required")
	}
	if config.LoginPassword == "" {
		return nil, fmt.Errorf("LOGIN_PASSWORD is required")
	}
	if config.SyncInterval <= 0 {
		return nil, fmt.Errorf("SYNC_INTERVAL_SECONDS must be positive")
	}

	return config, nil
}
