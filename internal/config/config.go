package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Email     EmailConfig     `yaml:"email"`
	Payment   PaymentConfig   `yaml:"payment"`
	Booking   BookingConfig   `yaml:"booking"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// BaseURL is the externally reachable root used in emailed links
	// and payment redirect URLs, e.g. https://booking.example.com
	BaseURL string `yaml:"base_url"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// EmailConfig contains SendGrid delivery settings
type EmailConfig struct {
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	FromEmail      string `yaml:"from_email"`
	FromName       string `yaml:"from_name"`
}

// PaymentConfig contains payment provider settings
type PaymentConfig struct {
	AccessToken string `yaml:"access_token"`
	Currency    string `yaml:"currency"`
	// Mock skips the real provider and fabricates approved sessions,
	// for local development only.
	Mock bool `yaml:"mock"`
}

// BookingConfig contains reservation lifecycle settings
type BookingConfig struct {
	DepositRate            float64 `yaml:"deposit_rate"`
	BalanceDueOffsetDays   int     `yaml:"balance_due_offset_days"`
	TokenTTLDays           int     `yaml:"token_ttl_days"`
	MaxReminders           int     `yaml:"max_reminders"`
	FirstReminderDelayHrs  int     `yaml:"first_reminder_delay_hours"`
	RepeatReminderDelayHrs int     `yaml:"repeat_reminder_delay_hours"`
}

// SchedulerConfig contains cron specs and the job trigger credential
type SchedulerConfig struct {
	PaymentReminders string `yaml:"payment_reminders"`
	BalanceReminders string `yaml:"balance_reminders"`
	CompleteElapsed  string `yaml:"complete_elapsed"`
	// TriggerToken protects the HTTP batch-job endpoints
	TriggerToken string `yaml:"trigger_token"`
	// AdminToken protects the operator endpoints
	AdminToken string `yaml:"admin_token"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Booking.DepositRate == 0 {
		c.Booking.DepositRate = 0.30
	}
	if c.Booking.BalanceDueOffsetDays == 0 {
		c.Booking.BalanceDueOffsetDays = 1
	}
	if c.Booking.TokenTTLDays == 0 {
		c.Booking.TokenTTLDays = 7
	}
	if c.Booking.MaxReminders == 0 {
		c.Booking.MaxReminders = 2
	}
	if c.Booking.FirstReminderDelayHrs == 0 {
		c.Booking.FirstReminderDelayHrs = 2
	}
	if c.Booking.RepeatReminderDelayHrs == 0 {
		c.Booking.RepeatReminderDelayHrs = 24
	}
	if c.Payment.Currency == "" {
		c.Payment.Currency = "EUR"
	}
	if c.Scheduler.PaymentReminders == "" {
		c.Scheduler.PaymentReminders = "0 0 * * * *"
	}
	if c.Scheduler.BalanceReminders == "" {
		c.Scheduler.BalanceReminders = "0 30 * * * *"
	}
	if c.Scheduler.CompleteElapsed == "" {
		c.Scheduler.CompleteElapsed = "0 0 3 * * *"
	}
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Email
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.SendGridAPIKey = val
	}
	if val := os.Getenv("EMAIL_FROM"); val != "" {
		c.Email.FromEmail = val
	}

	// Payment
	if val := os.Getenv("MERCADOPAGO_ACCESS_TOKEN"); val != "" {
		c.Payment.AccessToken = val
	}
	if val := os.Getenv("PAYMENT_GATEWAY_MOCK"); val != "" {
		c.Payment.Mock = val == "1" || val == "true" || val == "yes"
	}

	// Scheduler credentials
	if val := os.Getenv("JOB_TRIGGER_TOKEN"); val != "" {
		c.Scheduler.TriggerToken = val
	}
	if val := os.Getenv("ADMIN_TOKEN"); val != "" {
		c.Scheduler.AdminToken = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}
	if val := os.Getenv("SERVER_BASE_URL"); val != "" {
		c.Server.BaseURL = val
	}
}

// Validate checks that required settings are present and coherent
func (c *Config) Validate() error {
	if c.Database.Host == "" || c.Database.Database == "" {
		return fmt.Errorf("database host and name are required")
	}
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server base_url is required (used in emailed links)")
	}
	if c.Booking.DepositRate <= 0 || c.Booking.DepositRate >= 1 {
		return fmt.Errorf("booking deposit_rate must be between 0 and 1, got %v", c.Booking.DepositRate)
	}
	if c.Booking.TokenTTLDays <= 0 {
		return fmt.Errorf("booking token_ttl_days must be positive")
	}
	if c.Scheduler.TriggerToken == "" {
		return fmt.Errorf("scheduler trigger_token is required")
	}
	return nil
}

// GetDatabaseConnectionString builds a lib/pq connection string
func (c *Config) GetDatabaseConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password, c.Database.Database, sslMode)
}
