package configs

import (
	"context"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(context.Background())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if !cfg.IsDevelopment() {
		t.Errorf("expected development environment by default, got %q", cfg.Environment)
	}
	if cfg.Client.StreamURL != "ws://localhost:8080/ws" {
		t.Errorf("unexpected default stream url: %q", cfg.Client.StreamURL)
	}
	if cfg.Client.ReconnectAttempts != 3 {
		t.Errorf("unexpected default reconnect attempts: %d", cfg.Client.ReconnectAttempts)
	}
	if cfg.Client.ReconnectDelay != 3*time.Second {
		t.Errorf("unexpected default reconnect delay: %s", cfg.Client.ReconnectDelay)
	}
	if cfg.Hub.Port != 8080 {
		t.Errorf("unexpected default hub port: %d", cfg.Hub.Port)
	}
	if cfg.Hub.JWTSecret == "" {
		t.Error("expected a development fallback JWT secret")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("STREAM_URL", "wss://stream.example.com/ws")
	t.Setenv("RECONNECT_ATTEMPTS", "5")
	t.Setenv("RECONNECT_DELAY", "500ms")
	t.Setenv("HUB_PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg, err := LoadConfig(context.Background())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Client.StreamURL != "wss://stream.example.com/ws" {
		t.Errorf("unexpected stream url: %q", cfg.Client.StreamURL)
	}
	if cfg.Client.ReconnectAttempts != 5 {
		t.Errorf("unexpected reconnect attempts: %d", cfg.Client.ReconnectAttempts)
	}
	if cfg.Client.ReconnectDelay != 500*time.Millisecond {
		t.Errorf("unexpected reconnect delay: %s", cfg.Client.ReconnectDelay)
	}
	if cfg.Hub.Port != 9090 {
		t.Errorf("unexpected hub port: %d", cfg.Hub.Port)
	}

	want := []string{"https://app.example.com", "https://admin.example.com"}
	if len(cfg.Hub.AllowedOrigins) != len(want) {
		t.Fatalf("unexpected origins: %v", cfg.Hub.AllowedOrigins)
	}
	for i := range want {
		if cfg.Hub.AllowedOrigins[i] != want[i] {
			t.Errorf("origin %d: got %q, want %q", i, cfg.Hub.AllowedOrigins[i], want[i])
		}
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "PortTooLow", key: "HUB_PORT", value: "80"},
		{name: "PortTooHigh", key: "HUB_PORT", value: "70000"},
		{name: "NegativeAttempts", key: "RECONNECT_ATTEMPTS", value: "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			if _, err := LoadConfig(context.Background()); err == nil {
				t.Error("expected a validation error, got nil")
			}
		})
	}
}

func TestLoadConfigRequiresSecretOutsideDevelopment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	if _, err := LoadConfig(context.Background()); err == nil {
		t.Error("expected an error without JWT_SECRET in production")
	}

	t.Setenv("JWT_SECRET", "prod-secret")

	cfg, err := LoadConfig(context.Background())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Hub.JWTSecret != "prod-secret" {
		t.Errorf("unexpected secret: %q", cfg.Hub.JWTSecret)
	}
}
