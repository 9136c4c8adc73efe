package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "empty base url",
			mutate: func(cfg *Config) {
				cfg.BaseURL = ""
			},
			wantErr: "base URL",
		},
		{
			name: "invalid url format",
			mutate: func(cfg *Config) {
				cfg.BaseURL = "http://"
			},
			wantErr: "base URL",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "negative retries",
			mutate: func(cfg *Config) {
				cfg.MaxRetries = -1
			},
			wantErr: "max retries",
		},
		{
			name: "negative retry delay",
			mutate: func(cfg *Config) {
				cfg.RetryDelay = -time.Millisecond
			},
			wantErr: "retry delay",
		},
		{
			name: "unknown session backend",
			mutate: func(cfg *Config) {
				cfg.SessionBackend = "cookie"
			},
			wantErr: "session backend",
		},
		{
			name: "redis without addr",
			mutate: func(cfg *Config) {
				cfg.SessionBackend = SessionRedis
				cfg.RedisAddr = ""
			},
			wantErr: "redis addr",
		},
		{
			name: "unknown output format",
			mutate: func(cfg *Config) {
				cfg.OutputFormat = "xml"
			},
			wantErr: "output format",
		},
		{
			name: "zero batch size",
			mutate: func(cfg *Config) {
				cfg.BatchSize = 0
			},
			wantErr: "batch size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
	if cfg.Timeout != 5*time.Second || cfg.MaxRetries != 2 {
		t.Fatalf("timeout/retries = %v/%d, want 5s/2", cfg.Timeout, cfg.MaxRetries)
	}
}

func TestLoadAppliesEnvironment(t *testing.T) {
	t.Setenv("STOREFRONT_BASE_URL", "http://api.test/api/v1")
	t.Setenv("STOREFRONT_MAX_RETRIES", "4")
	t.Setenv("STOREFRONT_TIMEOUT", "250ms")
	t.Setenv("STOREFRONT_VERBOSE", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "http://api.test/api/v1" {
		t.Fatalf("base url = %q", cfg.BaseURL)
	}
	if cfg.MaxRetries != 4 {
		t.Fatalf("max retries = %d, want 4", cfg.MaxRetries)
	}
	if cfg.Timeout != 250*time.Millisecond {
		t.Fatalf("timeout = %v, want 250ms", cfg.Timeout)
	}
	if !cfg.Verbose {
		t.Fatalf("verbose should be enabled")
	}
}

func TestLoadReadsDotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("STOREFRONT_WHATSAPP_NUMBER=15550001111\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("STOREFRONT_WHATSAPP_NUMBER") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.WhatsAppNumber != "15550001111" {
		t.Fatalf("whatsapp number = %q", cfg.WhatsAppNumber)
	}
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("STOREFRONT_BATCH_SIZE", "many")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil || !strings.Contains(err.Error(), "BATCH_SIZE") {
		t.Fatalf("expected BATCH_SIZE error, got %v", err)
	}
}
