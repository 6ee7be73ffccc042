// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for the admin read API.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	IsDevelopment() bool
	GetEnv() string
}

// CRMConfig provides settings for outbound CRM webhook delivery.
type CRMConfig interface {
	GetCRMWebhookURL() string
	GetCRMResidentialWebhookURL() string
	GetCRMWebhookTimeout() time.Duration
	GetA2PCampaignID() string
}

// IntakeConfig provides business settings for the assessment intake.
type IntakeConfig interface {
	GetIPCooldown() time.Duration
	GetCooldownSweepInterval() time.Duration
	GetMinB2BUnits() int
	IsDevelopment() bool
}

// SchedulerConfig provides settings for the asynq task queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// EmailConfig provides settings for SMTP sales alerts.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	GetSalesAlertEmail() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                      string
	HTTPAddr                 string
	DatabaseURL              string
	JWTAccessSecret          string
	CORSAllowAll             bool
	CORSOrigins              []string
	CORSAllowCreds           bool
	CRMWebhookURL            string
	CRMResidentialWebhookURL string
	CRMWebhookTimeout        time.Duration
	A2PCampaignID            string
	IPCooldown               time.Duration
	CooldownSweepInterval    time.Duration
	MinB2BUnits              int
	RedisURL                 string
	RedisTLSInsecure         bool
	AsynqQueueName           string
	AsynqConcurrency         int
	SMTPHost                 string
	SMTPPort                 int
	SMTPUsername             string
	SMTPPassword             string
	EmailFromName            string
	EmailFromAddress         string
	SalesAlertEmail          string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }
func (c *Config) GetEnv() string           { return c.Env }
func (c *Config) IsDevelopment() bool      { return strings.EqualFold(c.Env, "development") }

// CRMConfig implementation
func (c *Config) GetCRMWebhookURL() string            { return c.CRMWebhookURL }
func (c *Config) GetCRMResidentialWebhookURL() string { return c.CRMResidentialWebhookURL }
func (c *Config) GetCRMWebhookTimeout() time.Duration { return c.CRMWebhookTimeout }
func (c *Config) GetA2PCampaignID() string            { return c.A2PCampaignID }

// IntakeConfig implementation
func (c *Config) GetIPCooldown() time.Duration            { return c.IPCooldown }
func (c *Config) GetCooldownSweepInterval() time.Duration { return c.CooldownSweepInterval }
func (c *Config) GetMinB2BUnits() int                     { return c.MinB2BUnits }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool       { return c.SMTPHost != "" && c.SalesAlertEmail != "" }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) GetSalesAlertEmail() string  { return c.SalesAlertEmail }

// IsDatabaseEnabled reports whether submissions are persisted to Postgres.
func (c *Config) IsDatabaseEnabled() bool { return c.DatabaseURL != "" }

// IsRedisEnabled reports whether Redis backs the cooldown guard and delivery queue.
func (c *Config) IsRedisEnabled() bool { return c.RedisURL != "" }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                      getEnv("APP_ENV", "development"),
		HTTPAddr:                 getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		JWTAccessSecret:          getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:             corsAllowAll,
		CORSOrigins:              corsOrigins,
		CORSAllowCreds:           strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		CRMWebhookURL:            getEnv("CRM_WEBHOOK_URL", ""),
		CRMResidentialWebhookURL: getEnv("CRM_RESIDENTIAL_WEBHOOK_URL", ""),
		CRMWebhookTimeout:        mustDuration(getEnv("CRM_WEBHOOK_TIMEOUT", "10s"), 10*time.Second),
		A2PCampaignID:            getEnv("A2P_CAMPAIGN_ID", ""),
		IPCooldown:               mustDuration(getEnv("IP_COOLDOWN", "24h"), 24*time.Hour),
		CooldownSweepInterval:    mustDuration(getEnv("COOLDOWN_SWEEP_INTERVAL", "5m"), 5*time.Minute),
		MinB2BUnits:              mustInt(getEnv("MIN_B2B_UNITS", "10"), 10),
		RedisURL:                 getEnv("REDIS_URL", ""),
		RedisTLSInsecure:         strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:           getEnv("ASYNQ_QUEUE", "crm"),
		AsynqConcurrency:         mustInt(getEnv("ASYNQ_CONCURRENCY", "5"), 5),
		SMTPHost:                 getEnv("SMTP_HOST", ""),
		SMTPPort:                 mustInt(getEnv("SMTP_PORT", "587"), 587),
		SMTPUsername:             getEnv("SMTP_USERNAME", ""),
		SMTPPassword:             getEnv("SMTP_PASSWORD", ""),
		EmailFromName:            getEnv("EMAIL_FROM_NAME", "Assessment Intake"),
		EmailFromAddress:         getEnv("EMAIL_FROM_ADDRESS", ""),
		SalesAlertEmail:          getEnv("SALES_ALERT_EMAIL", ""),
	}

	if cfg.MinB2BUnits < 0 {
		return nil, fmt.Errorf("MIN_B2B_UNITS must not be negative")
	}
	if cfg.IPCooldown < 0 {
		return nil, fmt.Errorf("IP_COOLDOWN must not be negative")
	}
	if cfg.GetEmailEnabled() && cfg.EmailFromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when SMTP_HOST and SALES_ALERT_EMAIL are set")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if !cfg.CORSAllowAll && len(cfg.CORSOrigins) == 0 {
		return nil, fmt.Errorf("CORS_ORIGINS must list at least one origin unless CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func mustInt(value string, fallback int) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
