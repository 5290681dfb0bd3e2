package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// defaultJWTSecret is only acceptable outside production.
const defaultJWTSecret = "change-me"

const (
	// EnvDevelopment is the default environment.
	EnvDevelopment = "development"
	// EnvProduction enables secure cookies and hides internal error details.
	EnvProduction = "production"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Env        string
	ServerPort string

	MySQLDSN  string
	RedisAddr string
	RedisDB   int
	RedisPass string

	JWTSecret string
	// JWTExpiresIn is the lifetime of a session token.
	JWTExpiresIn time.Duration
	// JWTCookieExpiresIn is the lifetime of the jwt cookie in days.
	JWTCookieExpiresIn int
	PasswordResetTTL   time.Duration

	EmailFrom    string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	StripeSecretKey string
	PublicBaseURL   string
	SwaggerHost     string

	LogLevel string
	LogDev   bool
	ResetDB  bool
}

// Load builds Config from environment with sensible defaults. Values from
// config.env or .env are picked up when present; real environment wins.
func Load() *Config {
	_ = godotenv.Load("config.env")
	_ = godotenv.Load()

	return &Config{
		Env:                getEnv("APP_ENV", EnvDevelopment),
		ServerPort:         getEnv("SERVER_PORT", "3000"),
		MySQLDSN:           getEnv("MYSQL_DSN", "natours:natours@tcp(localhost:3306)/natours?charset=utf8mb4&parseTime=True&loc=UTC"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		RedisPass:          os.Getenv("REDIS_PASSWORD"),
		JWTSecret:          getEnv("JWT_SECRET", defaultJWTSecret),
		JWTExpiresIn:       getEnvDuration("JWT_EXPIRES_IN", 90*24*time.Hour),
		JWTCookieExpiresIn: getEnvInt("JWT_COOKIE_EXPIRES_IN", 90),
		PasswordResetTTL:   getEnvDuration("PASSWORD_RESET_TTL", 10*time.Minute),
		EmailFrom:          getEnv("EMAIL_FROM", "Natours <hello@natours.io>"),
		SMTPHost:           os.Getenv("SMTP_HOST"),
		SMTPPort:           getEnvInt("SMTP_PORT", 587),
		SMTPUsername:       os.Getenv("SMTP_USERNAME"),
		SMTPPassword:       os.Getenv("SMTP_PASSWORD"),
		StripeSecretKey:    os.Getenv("STRIPE_SECRET_KEY"),
		PublicBaseURL:      os.Getenv("PUBLIC_BASE_URL"),
		SwaggerHost:        os.Getenv("SWAGGER_HOST"),
		LogLevel:           os.Getenv("LOG_LEVEL"),
		LogDev:             os.Getenv("LOG_DEV") == "1",
		ResetDB:            os.Getenv("RESET_DB") == "true",
	}
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Validate rejects settings that are unsafe in production. Reset links and
// checkout URLs must not be derived from the request Host header there.
func (c *Config) Validate() error {
	if !c.IsProduction() {
		return nil
	}
	if c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.PublicBaseURL == "" {
		return errors.New("PUBLIC_BASE_URL must be set in production")
	}
	return nil
}

// CookieLifetime returns how long the jwt cookie stays in the browser.
func (c *Config) CookieLifetime() time.Duration {
	return time.Duration(c.JWTCookieExpiresIn) * 24 * time.Hour
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

// getEnvDuration accepts Go durations ("90m", "2160h") and a bare number of days ("90d").
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n := len(v); n > 1 && v[n-1] == 'd' {
		if days, err := strconv.Atoi(v[:n-1]); err == nil {
			return time.Duration(days) * 24 * time.Hour
		}
		return def
	}
	if parsed, err := time.ParseDuration(v); err == nil {
		return parsed
	}
	return def
}
