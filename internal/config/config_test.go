package config

import (
	"reflect"
	"testing"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"APP_LISTEN_ADDR", "APP_BASE_URL", "APP_DEFAULT_TIMEZONE", "APP_DB_DSN",
		"APP_DB_HOST", "APP_DB_NAME", "APP_DB_USER", "APP_DB_PASSWORD", "APP_DB_PORT", "APP_DB_SSLMODE",
		"APP_AVAILABILITY_FILE", "APP_ADMIN_TOKEN", "APP_API_RATE_LIMIT", "APP_PROMETHEUS_ENDPOINT_ENABLED", "APP_TRUSTED_PROXIES",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_DEFAULT_TIMEZONE", "Europe/Berlin")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.DB.DSN != "" {
		t.Errorf("expected no database, got %q", cfg.DB.DSN)
	}
	if cfg.APIRateLimit != 20 {
		t.Errorf("APIRateLimit = %v", cfg.APIRateLimit)
	}
	if cfg.DefaultTimezone != "Europe/Berlin" {
		t.Errorf("DefaultTimezone = %q", cfg.DefaultTimezone)
	}
}

func TestLoadDatabaseParts(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_DEFAULT_TIMEZONE", "UTC")
	t.Setenv("APP_DB_HOST", "db")
	t.Setenv("APP_DB_NAME", "dyncal")
	t.Setenv("APP_DB_USER", "app")
	t.Setenv("APP_DB_PASSWORD", "secret")
	t.Setenv("APP_TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.1,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := "postgres://app:secret@db:5432/dyncal?sslmode=disable"
	if cfg.DB.DSN != want {
		t.Errorf("DSN = %q, want %q", cfg.DB.DSN, want)
	}
	if !reflect.DeepEqual(cfg.TrustedProxies, []string{"10.0.0.0/8", "192.168.1.1"}) {
		t.Errorf("TrustedProxies = %v", cfg.TrustedProxies)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"partial database", map[string]string{"APP_DB_HOST": "db"}},
		{"bad timezone", map[string]string{"APP_DEFAULT_TIMEZONE": "Nowhere/Special"}},
		{"bad rate", map[string]string{"APP_API_RATE_LIMIT": "fast"}},
		{"zero rate", map[string]string{"APP_API_RATE_LIMIT": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("APP_DEFAULT_TIMEZONE", "UTC")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
