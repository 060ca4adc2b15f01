package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Business  BusinessConfig  `mapstructure:"business"`
	Health    HealthConfig    `mapstructure:"health"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	Env          string        `mapstructure:"env"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host          string        `mapstructure:"host"`
	Port          string        `mapstructure:"port"`
	Password      string        `mapstructure:"password"`
	DB            int           `mapstructure:"db"`
	SettingsTTL   time.Duration `mapstructure:"settings_ttl"`
	ChannelPrefix string        `mapstructure:"channel_prefix"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	Issuer    string        `mapstructure:"issuer"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type SchedulerConfig struct {
	ReminderSpec   string        `mapstructure:"reminder_spec"`
	ReminderWindow time.Duration `mapstructure:"reminder_window"`
	Timezone       string        `mapstructure:"timezone"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// BusinessConfig holds process-level fallbacks. Admin-tunable parameters live in system_settings.
type BusinessConfig struct {
	BaseCreditLimit string `mapstructure:"base_credit_limit"`
	DefaultTermDays int    `mapstructure:"default_term_days"`
}

type HealthConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads configuration from environment variables and files.
// Keys map to variables by upper-casing and replacing dots, e.g. server.port is SERVER_PORT.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "xp_lending")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.settings_ttl", "5m")
	v.SetDefault("redis.channel_prefix", "notifications")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "xp-lending")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("scheduler.reminder_spec", "0 0 9 * * *")
	v.SetDefault("scheduler.reminder_window", "72h")
	v.SetDefault("scheduler.timezone", "UTC")
	v.SetDefault("logging.level", "info")
	v.SetDefault("business.base_credit_limit", "10000")
	v.SetDefault("business.default_term_days", 30)
	v.SetDefault("health.timeout", "5s")

	// Read from environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Try to read from .env file (optional)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = v.ReadInConfig()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" && c.Database.Host == "" {
		return fmt.Errorf("DATABASE_URL or DATABASE_HOST is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required")
	}

	if c.Business.DefaultTermDays <= 0 {
		return fmt.Errorf("BUSINESS_DEFAULT_TERM_DAYS must be greater than 0")
	}

	limit, err := decimal.NewFromString(c.Business.BaseCreditLimit)
	if err != nil {
		return fmt.Errorf("BUSINESS_BASE_CREDIT_LIMIT must be a valid decimal: %w", err)
	}
	if !limit.IsPositive() {
		return fmt.Errorf("BUSINESS_BASE_CREDIT_LIMIT must be greater than 0")
	}

	if c.Scheduler.ReminderWindow <= 0 {
		return fmt.Errorf("SCHEDULER_REMINDER_WINDOW must be a positive duration")
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid location: %w", err)
	}

	return nil
}

// DSN returns the Postgres connection string, preferring DATABASE_URL when set.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// Addr returns the Redis host:port pair
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// GetBaseCreditLimit returns the per-level credit limit as decimal
func (c *Config) GetBaseCreditLimit() decimal.Decimal {
	limit, _ := decimal.NewFromString(c.Business.BaseCreditLimit)
	return limit
}

// GetSchedulerLocation returns the scheduler timezone
func (c *Config) GetSchedulerLocation() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
