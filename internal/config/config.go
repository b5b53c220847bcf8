package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName        = "AuthGate"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultBaseURL        = "http://localhost:8080"
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour

	defaultAccessTokenTTL = 30 * time.Minute
	defaultVerifyTokenTTL = 60 * time.Minute
	defaultResetTokenTTL  = 15 * time.Minute

	secretKeyEnvVar        = "SECRET_KEY"
	accessTTLEnvVar        = "ACCESS_TOKEN_TTL_MINUTES"
	verifyTTLEnvVar        = "VERIFICATION_TOKEN_TTL_MINUTES"
	resetTTLEnvVar         = "RESET_TOKEN_TTL_MINUTES"
	idemTTLSecondsEnvVar   = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar       = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
)

// Config captures application runtime configuration loaded from environment
// variables. It is constructed once at startup and passed into every
// component; nothing reads the environment after Load returns.
type Config struct {
	AppName  string
	AppEnv   string
	Port     string
	LogLevel string

	DatabaseURL string
	RedisURL    string

	// SecretKey signs every token the service mints. Required.
	SecretKey      string
	AccessTokenTTL time.Duration
	VerifyTokenTTL time.Duration
	ResetTokenTTL  time.Duration

	// SMTP settings are optional; when SMTPHost is empty outbound mail is
	// written to the log instead of delivered.
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string

	// BaseURL is the externally reachable root used to build the
	// verification and reset links embedded in outbound mail.
	BaseURL string

	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration
}

// Load reads configuration values from the environment and populates a Config
// instance. A missing required key is a startup error.
func Load() (Config, error) {
	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		AppEnv:         getEnv("APP_ENV", defaultAppEnv),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		SecretKey:      os.Getenv(secretKeyEnvVar),
		AccessTokenTTL: defaultAccessTokenTTL,
		VerifyTokenTTL: defaultVerifyTokenTTL,
		ResetTokenTTL:  defaultResetTokenTTL,
		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPUser:       os.Getenv("SMTP_USER"),
		SMTPPass:       os.Getenv("SMTP_PASS"),
		BaseURL:        strings.TrimRight(getEnv("BASE_URL", defaultBaseURL), "/"),
		ShutdownPeriod: defaultShutdownDelay,
		IdempotencyTTL: defaultIdempotencyTTL,
	}

	ttls := []struct {
		key string
		dst *time.Duration
	}{
		{accessTTLEnvVar, &cfg.AccessTokenTTL},
		{verifyTTLEnvVar, &cfg.VerifyTokenTTL},
		{resetTTLEnvVar, &cfg.ResetTokenTTL},
	}
	for _, ttl := range ttls {
		v := os.Getenv(ttl.key)
		if v == "" {
			continue
		}
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			return Config{}, fmt.Errorf("invalid %s: %q", ttl.key, v)
		}
		*ttl.dst = time.Duration(minutes) * time.Minute
	}

	if v := os.Getenv(shutdownSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownSecondsEnvVar, err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(shutdownDurationEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownDurationEnvVar, err)
		}
		cfg.ShutdownPeriod = d
	}

	if v := os.Getenv(idemTTLSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", idemTTLSecondsEnvVar, err)
		}
		cfg.IdempotencyTTL = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(idemTTLDurEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", idemTTLDurEnvVar, err)
		}
		cfg.IdempotencyTTL = d
	}

	if cfg.SecretKey == "" {
		return Config{}, fmt.Errorf("%s must be set", secretKeyEnvVar)
	}

	if cfg.DatabaseURL == "" && !cfg.IsDev() {
		return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
	}

	return cfg, nil
}

// IsDev reports whether the service runs in a development environment, where
// the in-memory repository and logging mailer substitute for real backends.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
