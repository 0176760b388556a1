package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Rate limit store types
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

// User cache types
const (
	UserCacheTypeMemory     = "memory"
	UserCacheTypeRedis      = "redis"
	UserCacheTypeRedisAside = "redis-aside"
)

// Metrics cache types
const (
	MetricsCacheTypeMemory     = "memory"
	MetricsCacheTypeRedis      = "redis"
	MetricsCacheTypeRedisAside = "redis-aside"
)

type Config struct {
	// Server settings
	ServerAddr   string
	BaseURL      string
	FrontendURL  string
	APIPrefix    string
	IsProduction bool
	CookieDomain string

	// JWT settings
	JWTSecret        string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	SessionSecret    string
	SessionMaxAge    int // seconds, CSRF session cookie
	DBInitTimeout    time.Duration
	CacheInitTimeout time.Duration
	ShutdownTimeout  time.Duration
	DatabaseDriver   string // "sqlite" or "postgres"
	DatabaseDSN      string

	// Device authorization settings
	DeviceCodeExpiration     time.Duration
	PollingInterval          int // seconds
	MaxPollingInterval       int // seconds, cap for slow_down back-off
	MaxPollAttempts          int
	ExpireOnMaxPollAttempts  bool
	DeviceCodeRateLimit      int
	DeviceCodeRateWindow     time.Duration
	DeviceSweepInterval      time.Duration
	DeviceSweepGracePeriod   time.Duration
	CliTokenExpiration       time.Duration
	CliTokenTouchInterval    time.Duration
	DefaultCliTokenLabel     string
	MaxCliTokenLabelLength   int
	RateLimitEventsRetention time.Duration

	// HTTP rate limiting (per-IP, in front of the handlers)
	EnableRateLimit          bool
	RateLimitStore           string // "memory" or "redis"
	RateLimitCleanupInterval time.Duration
	StartRateLimit           int // requests per minute
	PollRateLimit            int
	VerifyRateLimit          int
	RefreshRateLimit         int

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// User cache
	UserCacheType        string
	UserCacheTTL         time.Duration
	UserCacheClientTTL   time.Duration
	UserCacheSizePerConn int // MB

	// Metrics
	MetricsEnabled             bool
	MetricsToken               string
	MetricsGaugeUpdateEnabled  bool
	MetricsGaugeUpdateInterval time.Duration
	MetricsCacheType           string // "memory", "redis", "redis-aside"
	MetricsCacheClientTTL      time.Duration
	MetricsCacheSizePerConn    int // MB

	// Audit
	EnableAuditLogging bool
	AuditLogRetention  time.Duration
	AuditLogBufferSize int
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	driver := getEnv("DATABASE_DRIVER", "sqlite")
	var dsn string
	if driver == "sqlite" {
		dsn = getEnv("DATABASE_DSN", getEnv("DATABASE_PATH", "orca.db"))
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	return &Config{
		ServerAddr:       getEnv("SERVER_ADDR", ":8080"),
		BaseURL:          getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:3000"),
		APIPrefix:        getEnv("API_PREFIX", "/api/v1"),
		IsProduction:     getEnvBool("ENVIRONMENT_PRODUCTION", getEnv("NODE_ENV", "") == "production"),
		CookieDomain:     getEnv("COOKIE_DOMAIN", ""),
		JWTSecret:        getEnv("JWT_SECRET", "your-256-bit-secret-change-in-production"),
		AccessTokenTTL:   getEnvDuration("JWT_ACCESS_TTL", 15*time.Minute),
		RefreshTokenTTL:  time.Duration(getEnvInt("JWT_REFRESH_DAYS", 30)) * 24 * time.Hour,
		SessionSecret:    getEnv("SESSION_SECRET", "session-secret-change-in-production"),
		SessionMaxAge:    getEnvInt("SESSION_MAX_AGE", 86400),
		DBInitTimeout:    getEnvDuration("DB_INIT_TIMEOUT", 30*time.Second),
		CacheInitTimeout: getEnvDuration("CACHE_INIT_TIMEOUT", 5*time.Second),
		ShutdownTimeout:  getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		DatabaseDriver:   driver,
		DatabaseDSN:      dsn,

		DeviceCodeExpiration:     time.Duration(getEnvInt("CLI_DEVICE_EXPIRES_MIN", 10)) * time.Minute,
		PollingInterval:          getEnvInt("CLI_DEVICE_POLL_INTERVAL_SEC", 2),
		MaxPollingInterval:       getEnvInt("CLI_DEVICE_MAX_POLL_INTERVAL_SEC", 60),
		MaxPollAttempts:          getEnvInt("CLI_DEVICE_MAX_POLL_ATTEMPTS", 300),
		ExpireOnMaxPollAttempts:  getEnvBool("CLI_DEVICE_EXPIRE_ON_MAX_ATTEMPTS", false),
		DeviceCodeRateLimit:      getEnvInt("CLI_DEVICE_RATE_LIMIT", 10),
		DeviceCodeRateWindow:     getEnvDuration("CLI_DEVICE_RATE_WINDOW", time.Hour),
		DeviceSweepInterval:      getEnvDuration("CLI_DEVICE_SWEEP_INTERVAL", 15*time.Minute),
		DeviceSweepGracePeriod:   getEnvDuration("CLI_DEVICE_SWEEP_GRACE", time.Hour),
		CliTokenExpiration:       time.Duration(getEnvInt("CLI_TOKEN_DAYS", 30)) * 24 * time.Hour,
		CliTokenTouchInterval:    getEnvDuration("CLI_TOKEN_TOUCH_INTERVAL", time.Minute),
		DefaultCliTokenLabel:     getEnv("CLI_TOKEN_DEFAULT_LABEL", "cli"),
		MaxCliTokenLabelLength:   getEnvInt("CLI_TOKEN_MAX_LABEL_LENGTH", 100),
		RateLimitEventsRetention: getEnvDuration("RATE_LIMIT_EVENTS_RETENTION", 24*time.Hour),

		EnableRateLimit:          getEnvBool("ENABLE_RATE_LIMIT", true),
		RateLimitStore:           getEnv("RATE_LIMIT_STORE", RateLimitStoreMemory),
		RateLimitCleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		StartRateLimit:           getEnvInt("START_RATE_LIMIT", 20),
		PollRateLimit:            getEnvInt("POLL_RATE_LIMIT", 120),
		VerifyRateLimit:          getEnvInt("VERIFY_RATE_LIMIT", 10),
		RefreshRateLimit:         getEnvInt("REFRESH_RATE_LIMIT", 30),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		UserCacheType:        getEnv("USER_CACHE_TYPE", UserCacheTypeMemory),
		UserCacheTTL:         getEnvDuration("USER_CACHE_TTL", 5*time.Minute),
		UserCacheClientTTL:   getEnvDuration("USER_CACHE_CLIENT_TTL", 30*time.Second),
		UserCacheSizePerConn: getEnvInt("USER_CACHE_SIZE_PER_CONN", 32),

		MetricsEnabled:             getEnvBool("METRICS_ENABLED", false),
		MetricsToken:               getEnv("METRICS_TOKEN", ""),
		MetricsGaugeUpdateEnabled:  getEnvBool("METRICS_GAUGE_UPDATE_ENABLED", true),
		MetricsGaugeUpdateInterval: getEnvDuration("METRICS_GAUGE_UPDATE_INTERVAL", 5*time.Minute),
		MetricsCacheType:           getEnv("METRICS_CACHE_TYPE", MetricsCacheTypeMemory),
		MetricsCacheClientTTL:      getEnvDuration("METRICS_CACHE_CLIENT_TTL", 10*time.Second),
		MetricsCacheSizePerConn:    getEnvInt("METRICS_CACHE_SIZE_PER_CONN", 32),

		EnableAuditLogging: getEnvBool("ENABLE_AUDIT_LOGGING", true),
		AuditLogRetention:  getEnvDuration("AUDIT_LOG_RETENTION", 90*24*time.Hour),
		AuditLogBufferSize: getEnvInt("AUDIT_LOG_BUFFER_SIZE", 1000),
	}
}

// Validate checks settings that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid DATABASE_DRIVER value: %q (must be sqlite or postgres)", c.DatabaseDriver)
	}
	if c.DatabaseDriver == "postgres" && c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is required when DATABASE_DRIVER=postgres")
	}

	if c.RateLimitStore != RateLimitStoreMemory && c.RateLimitStore != RateLimitStoreRedis {
		return fmt.Errorf(
			"invalid RATE_LIMIT_STORE value: %q (must be %q or %q)",
			c.RateLimitStore, RateLimitStoreMemory, RateLimitStoreRedis,
		)
	}

	switch c.UserCacheType {
	case UserCacheTypeMemory, UserCacheTypeRedis, UserCacheTypeRedisAside:
	default:
		return fmt.Errorf(
			"invalid USER_CACHE_TYPE value: %q (must be %q, %q, or %q)",
			c.UserCacheType, UserCacheTypeMemory, UserCacheTypeRedis, UserCacheTypeRedisAside,
		)
	}
	switch c.MetricsCacheType {
	case "", MetricsCacheTypeMemory, MetricsCacheTypeRedis, MetricsCacheTypeRedisAside:
	default:
		return fmt.Errorf(
			"invalid METRICS_CACHE_TYPE value: %q (must be %q, %q, or %q)",
			c.MetricsCacheType, MetricsCacheTypeMemory, MetricsCacheTypeRedis, MetricsCacheTypeRedisAside,
		)
	}
	if c.UserCacheTTL <= 0 {
		return fmt.Errorf("USER_CACHE_TTL must be a positive duration (got %s)", c.UserCacheTTL)
	}

	if c.DeviceCodeExpiration <= 0 {
		return errors.New("CLI_DEVICE_EXPIRES_MIN must be positive")
	}
	if c.PollingInterval <= 0 {
		return errors.New("CLI_DEVICE_POLL_INTERVAL_SEC must be positive")
	}
	// The first slow_down doubles the interval and must still fit under the cap.
	if c.MaxPollingInterval < 2*c.PollingInterval {
		return fmt.Errorf(
			"CLI_DEVICE_MAX_POLL_INTERVAL_SEC (%d) must be at least twice CLI_DEVICE_POLL_INTERVAL_SEC (%d)",
			c.MaxPollingInterval, c.PollingInterval,
		)
	}
	if c.MaxPollAttempts <= 0 {
		return errors.New("CLI_DEVICE_MAX_POLL_ATTEMPTS must be positive")
	}
	if c.DeviceCodeRateLimit <= 0 || c.DeviceCodeRateWindow <= 0 {
		return errors.New("CLI_DEVICE_RATE_LIMIT and CLI_DEVICE_RATE_WINDOW must be positive")
	}
	if c.CliTokenExpiration <= 0 {
		return errors.New("CLI_TOKEN_DAYS must be positive")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("JWT_ACCESS_TTL and JWT_REFRESH_DAYS must be positive")
	}
	if c.IsProduction && strings.Contains(c.JWTSecret, "change-in-production") {
		return errors.New("JWT_SECRET must be set in production")
	}
	return nil
}

// CookiePath returns the path refresh cookies are scoped to.
func (c *Config) CookiePath() string {
	return strings.TrimRight(c.APIPrefix, "/") + "/auth"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
