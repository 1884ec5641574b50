/*
Package configs is responsible for loading and parsing the application's configuration settings.

All values are bound from operating system environment variables via go-envconfig,
covering both the notifier client (stream endpoint, reconnection policy) and the
development event hub (port, CORS allowed origins, JWT secret).
*/
package configs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// AppConfig contains all configuration parameters required for the application to run.
type AppConfig struct {
	// General settings.
	Environment string `env:"ENVIRONMENT, default=development"`

	// Client holds the notifier-side connection settings.
	Client ClientConfig

	// Hub holds the development event hub settings.
	Hub HubConfig
}

// ClientConfig groups the settings consumed by the realtime notification client.
type ClientConfig struct {
	// StreamURL is the WebSocket endpoint of the event stream.
	StreamURL string `env:"STREAM_URL, default=ws://localhost:8080/ws"`

	// AuthToken is the bearer token presented on connect. The notifier CLI
	// derives its identity from this token; the core client only requires it
	// to be non-empty before a connect attempt.
	AuthToken string `env:"AUTH_TOKEN"`

	// ReconnectAttempts bounds automatic reconnection after a transport failure.
	ReconnectAttempts int `env:"RECONNECT_ATTEMPTS, default=3"`

	// ReconnectDelay is the fixed pause between reconnection attempts.
	ReconnectDelay time.Duration `env:"RECONNECT_DELAY, default=3s"`

	// HandshakeTimeout caps a single WebSocket dial.
	HandshakeTimeout time.Duration `env:"HANDSHAKE_TIMEOUT, default=10s"`
}

// HubConfig groups the settings consumed by the development event hub.
type HubConfig struct {
	Port int `env:"HUB_PORT, default=8080"`

	// AllowedOrigins is a comma-separated list of origins permitted to open
	// credentialed connections. Empty means same-origin only outside development.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS"`

	// JWTSecret signs and verifies identity tokens.
	JWTSecret string `env:"JWT_SECRET"`
}

// LoadConfig binds the application configuration from environment variables
// and validates the values that have hard requirements.
func LoadConfig(ctx context.Context) (*AppConfig, error) {
	cfg := &AppConfig{}

	if err := envconfig.Process(ctx, cfg); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}

	if cfg.Hub.Port < 1024 || cfg.Hub.Port > 65535 {
		return nil, fmt.Errorf("hub port %d is outside the allowed range (1024-65535)", cfg.Hub.Port)
	}

	if cfg.Client.ReconnectAttempts < 0 {
		return nil, fmt.Errorf("RECONNECT_ATTEMPTS must not be negative, got %d", cfg.Client.ReconnectAttempts)
	}

	if cfg.Hub.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required in %s environment", cfg.Environment)
		}
		cfg.Hub.JWTSecret = "insecure_development_secret_change_me"
	}

	for i, origin := range cfg.Hub.AllowedOrigins {
		cfg.Hub.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return cfg, nil
}

// IsDevelopment reports whether the application runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}
