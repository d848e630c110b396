package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	HTTPPort string
	LogLevel string

	DatabaseURL string
	SeedOnStart bool

	JWTIssuer      string
	JWTSecret      string
	JWTTTL         time.Duration
	BcryptCost     int
	PaginationSize int

	CORSAllowedOrigins  []string
	AuthRateLimitPerMin int
	APIRateLimitPerMin  int

	SignInGuardEnabled      bool
	SignInGuardRedisPrefix  string
	SignInFreeAttempts      int
	SignInBackoffMultiplier float64
	SignInBaseDelay         time.Duration
	SignInMaxDelay          time.Duration
	SignInResetWindow       time.Duration

	RedisEnabled         bool
	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	RateLimitRedisPrefix string
	ListCacheTTL         time.Duration

	StorageEnabled   bool
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StorageUseSSL    bool

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELTraceSamplingRatio    float64
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool

	ReadinessProbeTimeout        time.Duration
	ServerStartGracePeriod       time.Duration
	ShutdownTimeout              time.Duration
	ShutdownHTTPDrainTimeout     time.Duration
	ShutdownObservabilityTimeout time.Duration
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")
	cfg := &Config{
		Env:                     env,
		HTTPPort:                getEnv("HTTP_PORT", "3000"),
		LogLevel:                strings.ToLower(getEnv("LOG_LEVEL", "info")),
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		SeedOnStart:             getEnvBool("SEED_ON_START", false),
		JWTIssuer:               getEnv("JWT_ISSUER", "bookshelf-api"),
		JWTSecret:               os.Getenv("JWT_SECRET"),
		BcryptCost:              getEnvInt("BCRYPT_COST", 10),
		PaginationSize:          getEnvInt("PAGINATION_SIZE", 10),
		CORSAllowedOrigins:      splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		AuthRateLimitPerMin:     getEnvInt("AUTH_RATE_LIMIT_PER_MIN", 30),
		APIRateLimitPerMin:      getEnvInt("API_RATE_LIMIT_PER_MIN", 120),
		SignInGuardEnabled:      getEnvBool("SIGN_IN_GUARD_ENABLED", false),
		SignInGuardRedisPrefix:  getEnv("SIGN_IN_GUARD_REDIS_PREFIX", "sign_in_guard"),
		SignInFreeAttempts:      getEnvInt("SIGN_IN_FREE_ATTEMPTS", 5),
		SignInBackoffMultiplier: getEnvFloat("SIGN_IN_BACKOFF_MULTIPLIER", 2.0),
		RedisEnabled:            getEnvBool("REDIS_ENABLED", false),
		RedisAddr:               getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:           os.Getenv("REDIS_PASSWORD"),
		RedisDB:                 getEnvInt("REDIS_DB", 0),
		RateLimitRedisPrefix:    getEnv("RATE_LIMIT_REDIS_PREFIX", "rl"),
		StorageEnabled:          getEnvBool("STORAGE_ENABLED", false),
		StorageEndpoint:         getEnv("STORAGE_ENDPOINT", "localhost:9000"),
		StorageAccessKey:        os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey:        os.Getenv("STORAGE_SECRET_KEY"),
		StorageBucket:           getEnv("STORAGE_BUCKET", "book-covers"),
		StorageUseSSL:           getEnvBool("STORAGE_USE_SSL", false),

		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "bookshelf-api"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", env),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", false),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", false),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", false),
	}

	durations := []struct {
		key    string
		def    string
		target *time.Duration
	}{
		{"JWT_TTL", "1h", &cfg.JWTTTL},
		{"LIST_CACHE_TTL", "30s", &cfg.ListCacheTTL},
		{"SIGN_IN_BASE_DELAY", "2s", &cfg.SignInBaseDelay},
		{"SIGN_IN_MAX_DELAY", "5m", &cfg.SignInMaxDelay},
		{"SIGN_IN_RESET_WINDOW", "30m", &cfg.SignInResetWindow},
		{"OTEL_METRICS_EXPORT_INTERVAL", "10s", &cfg.OTELMetricsExportInterval},
		{"READINESS_PROBE_TIMEOUT", "1s", &cfg.ReadinessProbeTimeout},
		{"SERVER_START_GRACE_PERIOD", "2s", &cfg.ServerStartGracePeriod},
		{"SHUTDOWN_TIMEOUT", "20s", &cfg.ShutdownTimeout},
		{"SHUTDOWN_HTTP_DRAIN_TIMEOUT", "10s", &cfg.ShutdownHTTPDrainTimeout},
		{"SHUTDOWN_OBSERVABILITY_TIMEOUT", "8s", &cfg.ShutdownObservabilityTimeout},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnv(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.target = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if len(c.JWTSecret) < 32 {
		errs = append(errs, "JWT_SECRET must be at least 32 chars")
	}
	if c.JWTTTL < time.Second || c.JWTTTL > 24*time.Hour {
		errs = append(errs, "JWT_TTL must be between 1s and 24h")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, "BCRYPT_COST must be between 4 and 31")
	}
	if c.PaginationSize < 1 || c.PaginationSize > 100 {
		errs = append(errs, "PAGINATION_SIZE must be between 1 and 100")
	}
	if c.AuthRateLimitPerMin <= 0 {
		errs = append(errs, "AUTH_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.APIRateLimitPerMin <= 0 {
		errs = append(errs, "API_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.SignInGuardEnabled {
		if c.SignInFreeAttempts < 0 {
			errs = append(errs, "SIGN_IN_FREE_ATTEMPTS must be >= 0")
		}
		if c.SignInBackoffMultiplier < 1 {
			errs = append(errs, "SIGN_IN_BACKOFF_MULTIPLIER must be >= 1")
		}
		if c.SignInBaseDelay <= 0 || c.SignInMaxDelay < c.SignInBaseDelay {
			errs = append(errs, "SIGN_IN_BASE_DELAY must be > 0 and not exceed SIGN_IN_MAX_DELAY")
		}
		if c.SignInResetWindow <= 0 {
			errs = append(errs, "SIGN_IN_RESET_WINDOW must be > 0")
		}
	}
	if c.RedisEnabled && strings.TrimSpace(c.RedisAddr) == "" {
		errs = append(errs, "REDIS_ADDR is required when REDIS_ENABLED=true")
	}
	if c.ListCacheTTL < 0 {
		errs = append(errs, "LIST_CACHE_TTL must be >= 0")
	}
	if c.StorageEnabled {
		if c.StorageEndpoint == "" || c.StorageBucket == "" {
			errs = append(errs, "STORAGE_ENDPOINT and STORAGE_BUCKET are required when STORAGE_ENABLED=true")
		}
		if c.StorageAccessKey == "" || c.StorageSecretKey == "" {
			errs = append(errs, "STORAGE_ACCESS_KEY and STORAGE_SECRET_KEY are required when STORAGE_ENABLED=true")
		}
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if c.OTELMetricsExportInterval <= 0 {
		errs = append(errs, "OTEL_METRICS_EXPORT_INTERVAL must be > 0")
	}
	if !isValidLogLevel(c.LogLevel) {
		errs = append(errs, "LOG_LEVEL must be one of debug, info, warn, error")
	}
	if c.ReadinessProbeTimeout <= 0 {
		errs = append(errs, "READINESS_PROBE_TIMEOUT must be > 0")
	}
	if c.ServerStartGracePeriod < 0 {
		errs = append(errs, "SERVER_START_GRACE_PERIOD must be >= 0")
	}
	if c.ShutdownTimeout <= 0 || c.ShutdownHTTPDrainTimeout <= 0 || c.ShutdownObservabilityTimeout <= 0 {
		errs = append(errs, "SHUTDOWN_* timeouts must be > 0")
	}
	if c.ShutdownHTTPDrainTimeout > c.ShutdownTimeout {
		errs = append(errs, "SHUTDOWN_HTTP_DRAIN_TIMEOUT must not exceed SHUTDOWN_TIMEOUT")
	}
	if c.IsProduction() {
		if !strings.HasPrefix(c.DatabaseURL, "postgres://") && !strings.HasPrefix(c.DatabaseURL, "postgresql://") {
			errs = append(errs, "DATABASE_URL must be a postgres URL in production")
		}
		for _, origin := range c.CORSAllowedOrigins {
			if origin == "*" {
				errs = append(errs, "CORS_ALLOWED_ORIGINS must not contain * in production")
				break
			}
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "production", "prod":
		return true
	default:
		return false
	}
}

func isValidLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
