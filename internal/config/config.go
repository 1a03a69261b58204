package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is built once at startup and passed around by reference; nothing
// reads the environment after Load returns.
type Config struct {
	ServerPort              string
	ServerReadHeaderTimeout time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	RequestTimeout          time.Duration

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	JWTSecret     string
	JWTIssuer     string
	JWTAudience   string
	JWTAccessTTL  time.Duration
	JWTConfirmTTL time.Duration

	RefreshTTLLogin   time.Duration
	RefreshTTLRefresh time.Duration
	ResetTokenTTL     time.Duration

	LegacyClientPassword string
	ConfirmEmailURL      string
	ResetPasswordURL     string

	SyncBaseURL string
	SyncTimeout time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	TemplatesDir string

	AvatarRoot string

	CORSOrigins      []string
	RateLimitRPM     int
	AuthRateLimitRPM int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:              getEnv("SERVER_PORT", "8080"),
		ServerReadHeaderTimeout: getDuration("SERVER_READ_HEADER_TIMEOUT", 15*time.Second),
		ServerWriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:          getDuration("REQUEST_TIMEOUT", 30*time.Second),
		DatabaseURL:             strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:              int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:              int32(getInt("DB_MIN_CONNS", 2)),
		JWTSecret:               strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:               getEnv("JWT_ISSUER", "identity-api"),
		JWTAudience:             getEnv("JWT_AUDIENCE", "identity-api-clients"),
		JWTAccessTTL:            getDuration("JWT_ACCESS_TTL", 15*time.Minute),
		JWTConfirmTTL:           getDuration("JWT_CONFIRM_TTL", 10*time.Minute),
		RefreshTTLLogin:         getDuration("REFRESH_TTL_LOGIN", 168*time.Hour),
		RefreshTTLRefresh:       getDuration("REFRESH_TTL_REFRESH", 24*time.Hour),
		ResetTokenTTL:           getDuration("RESET_TOKEN_TTL", time.Hour),
		LegacyClientPassword:    strings.TrimSpace(os.Getenv("LEGACY_CLIENT_PASSWORD")),
		ConfirmEmailURL:         getEnv("CONFIRM_EMAIL_URL", "http://localhost:8080/api/v1/account/confirm-email"),
		ResetPasswordURL:        getEnv("RESET_PASSWORD_URL", "http://localhost:3000/reset-password"),
		SyncBaseURL:             strings.TrimSpace(os.Getenv("SYNC_BASE_URL")),
		SyncTimeout:             getDuration("SYNC_TIMEOUT", 10*time.Second),
		SMTPHost:                strings.TrimSpace(os.Getenv("SMTP_HOST")),
		SMTPPort:                getEnv("SMTP_PORT", "587"),
		SMTPUsername:            strings.TrimSpace(os.Getenv("SMTP_USERNAME")),
		SMTPPassword:            os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:                getEnv("SMTP_FROM", "no-reply@localhost"),
		TemplatesDir:            getEnv("TEMPLATES_DIR", "./web/templates"),
		AvatarRoot:              getEnv("AVATAR_ROOT", "./state/avatars"),
		CORSOrigins:             splitCSV(getEnv("CORS_ORIGINS", "*")),
		RateLimitRPM:            getInt("RATE_LIMIT_RPM", 100),
		AuthRateLimitRPM:        getInt("AUTH_RATE_LIMIT_RPM", 10),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if strings.TrimSpace(c.SyncBaseURL) == "" {
		return fmt.Errorf("SYNC_BASE_URL is required")
	}

	if strings.TrimSpace(c.SMTPHost) == "" {
		return fmt.Errorf("SMTP_HOST is required")
	}

	if c.JWTAccessTTL <= 0 || c.JWTConfirmTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}

	if c.RefreshTTLLogin <= 0 || c.RefreshTTLRefresh <= 0 {
		return fmt.Errorf("refresh TTLs must be positive")
	}

	if c.ResetTokenTTL <= 0 {
		return fmt.Errorf("RESET_TOKEN_TTL must be positive")
	}

	if strings.TrimSpace(c.AvatarRoot) == "" {
		return fmt.Errorf("AVATAR_ROOT cannot be empty")
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
