package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jw6ventures/dyncal/internal/calendar"
)

type Config struct {
	ListenAddr string
	BaseURL    string

	// DefaultTimezone is used when a request names no timezone.
	DefaultTimezone string

	DB struct {
		DSN string
	}

	AvailabilityFile string

	// AdminToken guards the availability management API; empty disables it.
	AdminToken string

	// APIRateLimit is the per-IP request rate for /api routes, per second.
	APIRateLimit float64

	PrometheusEnabled bool
	TrustedProxies    []string
}

func Load() (*Config, error) {
	cfg := &Config{}

	cfg.ListenAddr = getenvDefault("APP_LISTEN_ADDR", ":8080")
	cfg.BaseURL = getenvDefault("APP_BASE_URL", "http://localhost:8080")
	cfg.DefaultTimezone = getenvDefault("APP_DEFAULT_TIMEZONE", calendar.GuessTimezone())
	cfg.DB.DSN = os.Getenv("APP_DB_DSN")

	if cfg.DB.DSN == "" {
		host := os.Getenv("APP_DB_HOST")
		name := os.Getenv("APP_DB_NAME")
		user := os.Getenv("APP_DB_USER")
		password := os.Getenv("APP_DB_PASSWORD")
		port := getenvDefault("APP_DB_PORT", "5432")
		sslmode := getenvDefault("APP_DB_SSLMODE", "disable")

		var missing []string
		if host == "" {
			missing = append(missing, "APP_DB_HOST")
		}
		if name == "" {
			missing = append(missing, "APP_DB_NAME")
		}
		if user == "" {
			missing = append(missing, "APP_DB_USER")
		}
		if password == "" {
			missing = append(missing, "APP_DB_PASSWORD")
		}

		switch {
		case len(missing) == 0:
			cfg.DB.DSN = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, password, host, port, name, sslmode)
		case len(missing) < 4:
			return nil, fmt.Errorf("incomplete database configuration, missing %s", strings.Join(missing, ", "))
		}
	}

	cfg.AvailabilityFile = os.Getenv("APP_AVAILABILITY_FILE")
	cfg.AdminToken = os.Getenv("APP_ADMIN_TOKEN")
	cfg.PrometheusEnabled = getenvBool("APP_PROMETHEUS_ENDPOINT_ENABLED", false)
	cfg.TrustedProxies = getenvList("APP_TRUSTED_PROXIES")

	rateLimit, err := getenvFloat("APP_API_RATE_LIMIT", 20)
	if err != nil {
		return nil, err
	}
	if rateLimit <= 0 {
		return nil, fmt.Errorf("APP_API_RATE_LIMIT must be positive (got %v)", rateLimit)
	}
	cfg.APIRateLimit = rateLimit

	if _, err := time.LoadLocation(cfg.DefaultTimezone); err != nil {
		return nil, fmt.Errorf("APP_DEFAULT_TIMEZONE %q is not a known timezone: %w", cfg.DefaultTimezone, err)
	}

	if len(cfg.TrustedProxies) == 0 {
		fmt.Println("WARNING: No APP_TRUSTED_PROXIES configured. dyncal will trust all proxies - Not recommended for public environments.")
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return f, nil
}

func getenvList(key string) []string {
	if v := os.Getenv(key); v != "" {
		var result []string
		for _, item := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return nil
}
