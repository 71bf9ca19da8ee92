package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Cache backend selectors for the snapshot cache.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Portal    PortalConfig
	Scraper   ScraperConfig
	Groups    GroupsConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	Refresh   RefreshConfig
}

// PortalConfig locates the remote attendance portal.
type PortalConfig struct {
	BaseURL   string
	UserAgent string
	Campuses  []string
}

// ScraperConfig tunes the fetch pipeline: cache TTL, per-attempt timeout,
// retry budget, backoff base, batch size and inter-batch delay.
type ScraperConfig struct {
	CacheBackend   string
	CacheTTL       time.Duration
	AttemptTimeout time.Duration
	RetryCount     int
	BackoffBase    time.Duration
	BatchSize      int
	BatchDelay     time.Duration
}

// GroupsConfig locates the flat-file group store.
type GroupsConfig struct {
	FilePath string
	MaxRolls int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RateLimitConfig bounds per-IP request rates on the API surface.
type RateLimitConfig struct {
	Enabled   bool
	PerMinute int
	Burst     int
}

// RefreshConfig governs the background snapshot refresh worker.
type RefreshConfig struct {
	Enabled bool
	Workers int
	Lead    time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Portal = PortalConfig{
		BaseURL:   strings.TrimRight(v.GetString("PORTAL_BASE_URL"), "/"),
		UserAgent: v.GetString("PORTAL_USER_AGENT"),
		Campuses:  splitAndTrim(v.GetString("PORTAL_CAMPUSES")),
	}

	cfg.Scraper = ScraperConfig{
		CacheBackend:   v.GetString("SCRAPER_CACHE_BACKEND"),
		CacheTTL:       parseDuration(v.GetString("SCRAPER_CACHE_TTL"), 5*time.Minute),
		AttemptTimeout: parseDuration(v.GetString("SCRAPER_ATTEMPT_TIMEOUT"), 10*time.Second),
		RetryCount:     v.GetInt("SCRAPER_RETRY_COUNT"),
		BackoffBase:    parseDuration(v.GetString("SCRAPER_BACKOFF_BASE"), time.Second),
		BatchSize:      v.GetInt("SCRAPER_BATCH_SIZE"),
		BatchDelay:     parseDuration(v.GetString("SCRAPER_BATCH_DELAY"), 0),
	}

	cfg.Groups = GroupsConfig{
		FilePath: v.GetString("GROUPS_FILE"),
		MaxRolls: v.GetInt("GROUPS_MAX_ROLLS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.RateLimit = RateLimitConfig{
		Enabled:   v.GetBool("RATE_LIMIT_ENABLED"),
		PerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
		Burst:     v.GetInt("RATE_LIMIT_BURST"),
	}

	cfg.Refresh = RefreshConfig{
		Enabled: v.GetBool("ENABLE_REFRESH_WORKER"),
		Workers: v.GetInt("REFRESH_WORKERS"),
		Lead:    parseDuration(v.GetString("REFRESH_LEAD"), time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("PORTAL_BASE_URL", "https://attendance.sandyy.in")
	v.SetDefault("PORTAL_USER_AGENT", "Group-Attendance-Viewer/1.0")
	v.SetDefault("PORTAL_CAMPUSES", "AEC,ACET,AGBS")

	v.SetDefault("SCRAPER_CACHE_BACKEND", CacheBackendMemory)
	v.SetDefault("SCRAPER_CACHE_TTL", "5m")
	v.SetDefault("SCRAPER_ATTEMPT_TIMEOUT", "10s")
	v.SetDefault("SCRAPER_RETRY_COUNT", 3)
	v.SetDefault("SCRAPER_BACKOFF_BASE", "1s")
	v.SetDefault("SCRAPER_BATCH_SIZE", 3)
	v.SetDefault("SCRAPER_BATCH_DELAY", "0s")

	v.SetDefault("GROUPS_FILE", "./data/groups.json")
	v.SetDefault("GROUPS_MAX_ROLLS", 20)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 100)
	v.SetDefault("RATE_LIMIT_BURST", 20)

	v.SetDefault("ENABLE_REFRESH_WORKER", false)
	v.SetDefault("REFRESH_WORKERS", 1)
	v.SetDefault("REFRESH_LEAD", "1m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
