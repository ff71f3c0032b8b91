package config

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort              string
	ServerReadHeaderTimeout time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration

	BackendBaseURL   string
	BackendAPIPrefix string
	BackendTimeout   time.Duration

	AccessCookieName    string
	RefreshCookieName   string
	AccessCookieMaxAge  time.Duration
	RefreshCookieMaxAge time.Duration
	CookieDomain        string
	CookieSecure        bool
	CookieSameSite      http.SameSite

	CORSOrigins      []string
	RateLimitRPM     int
	AuthRateLimitRPM int

	ExportPageSize int
	ExportMaxPages int

	UserCacheTTL time.Duration
	RedisURL     string

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	AuditRetention time.Duration

	LogLevel       string
	LogFormat      string
	MetricsEnabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:              getEnv("SERVER_PORT", "8080"),
		ServerReadHeaderTimeout: getDuration("SERVER_READ_HEADER_TIMEOUT", 10*time.Second),
		ServerWriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 120*time.Second),
		ServerIdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		BackendBaseURL:          strings.TrimRight(strings.TrimSpace(os.Getenv("BACKEND_BASE_URL")), "/"),
		BackendAPIPrefix:        normalizePrefix(getEnv("BACKEND_API_PREFIX", "/api/v3")),
		BackendTimeout:          getDuration("BACKEND_TIMEOUT", 60*time.Second),
		AccessCookieName:        getEnv("ACCESS_COOKIE_NAME", "access_token"),
		RefreshCookieName:       getEnv("REFRESH_COOKIE_NAME", "refresh_token"),
		AccessCookieMaxAge:      getDuration("ACCESS_COOKIE_MAX_AGE", time.Hour),
		RefreshCookieMaxAge:     getDuration("REFRESH_COOKIE_MAX_AGE", 7*24*time.Hour),
		CookieDomain:            strings.TrimSpace(os.Getenv("COOKIE_DOMAIN")),
		CookieSecure:            getBool("COOKIE_SECURE", true),
		CookieSameSite:          parseSameSite(getEnv("COOKIE_SAMESITE", "lax")),
		CORSOrigins:             splitCSV(strings.TrimSpace(os.Getenv("CORS_ORIGINS"))),
		RateLimitRPM:            getInt("RATE_LIMIT_RPM", 600),
		AuthRateLimitRPM:        getInt("AUTH_RATE_LIMIT_RPM", 10),
		ExportPageSize:          getInt("EXPORT_PAGE_SIZE", 500),
		ExportMaxPages:          getInt("EXPORT_MAX_PAGES", 200),
		UserCacheTTL:            getDuration("USER_CACHE_TTL", 5*time.Minute),
		RedisURL:                strings.TrimSpace(os.Getenv("REDIS_URL")),
		DatabaseURL:             strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:              int32(getInt("DB_MAX_CONNS", 4)),
		DBMinConns:              int32(getInt("DB_MIN_CONNS", 0)),
		AuditRetention:          getDuration("AUDIT_RETENTION", 90*24*time.Hour),
		LogLevel:                strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:               strings.ToLower(getEnv("LOG_FORMAT", "pretty")),
		MetricsEnabled:          getBool("METRICS_ENABLED", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.BackendBaseURL == "" {
		return fmt.Errorf("BACKEND_BASE_URL is required")
	}

	parsed, err := url.Parse(c.BackendBaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("BACKEND_BASE_URL must be an absolute URL, got %q", c.BackendBaseURL)
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.AccessCookieName == "" || c.RefreshCookieName == "" {
		return fmt.Errorf("cookie names cannot be empty")
	}

	if c.AccessCookieName == c.RefreshCookieName {
		return fmt.Errorf("ACCESS_COOKIE_NAME and REFRESH_COOKIE_NAME must differ")
	}

	if c.AccessCookieMaxAge <= 0 || c.RefreshCookieMaxAge <= 0 {
		return fmt.Errorf("cookie max-ages must be positive")
	}

	if c.AccessCookieMaxAge >= c.RefreshCookieMaxAge {
		return fmt.Errorf("ACCESS_COOKIE_MAX_AGE must be shorter than REFRESH_COOKIE_MAX_AGE")
	}

	if c.CookieSameSite == http.SameSiteNoneMode && !c.CookieSecure {
		return fmt.Errorf("COOKIE_SAMESITE=none requires COOKIE_SECURE=true")
	}

	if c.ExportPageSize <= 0 {
		return fmt.Errorf("EXPORT_PAGE_SIZE must be positive")
	}

	if c.ExportMaxPages <= 0 {
		return fmt.Errorf("EXPORT_MAX_PAGES must be positive")
	}

	if c.BackendTimeout < 0 {
		return fmt.Errorf("BACKEND_TIMEOUT cannot be negative")
	}

	if c.AuditRetention < 0 {
		return fmt.Errorf("AUDIT_RETENTION cannot be negative")
	}

	if c.LogFormat != "pretty" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be pretty or json")
	}

	return nil
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func parseSameSite(raw string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func normalizePrefix(raw string) string {
	trimmed := strings.Trim(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return ""
	}

	return "/" + trimmed
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
