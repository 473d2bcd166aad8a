package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Assistant AssistantConfig
	Payment   PaymentConfig
	Provider  ProviderConfig
	Security  SecurityConfig
	Logging   LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string
	Environment     string
	ShutdownTimeout time.Duration
	Timezone        string // IANA name used for check-in day boundaries
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds key-value store configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AssistantConfig holds consultation assistant configuration
type AssistantConfig struct {
	APIKey string
	Model  string
}

// PaymentConfig holds payment gateway client configuration
type PaymentConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// ProviderConfig holds fitness data provider client configuration
type ProviderConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// SecurityConfig holds encryption configuration
type SecurityConfig struct {
	// TranscriptKey is the 32-byte key for transcript cache encryption.
	// Leave empty to store transcripts unencrypted (development only).
	TranscriptKey string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// Load reads configuration from environment variables with defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.shutdowntimeout", 30*time.Second)
	v.SetDefault("server.timezone", "Local")

	v.SetDefault("database.maxopenconns", 25)
	v.SetDefault("database.connmaxlifetime", 5*time.Minute)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("assistant.model", "gpt-4o-mini")

	v.SetDefault("payment.timeout", 15*time.Second)
	v.SetDefault("provider.timeout", 15*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.environment", "ENV", "ENVIRONMENT")
	v.BindEnv("server.timezone", "CHECKIN_TIMEZONE")

	v.BindEnv("database.url", "DATABASE_URL")

	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")

	v.BindEnv("assistant.apikey", "OPENAI_API_KEY")
	v.BindEnv("assistant.model", "OPENAI_MODEL")

	v.BindEnv("payment.baseurl", "PAYMENT_GATEWAY_URL")
	v.BindEnv("payment.apikey", "PAYMENT_GATEWAY_API_KEY")

	v.BindEnv("provider.baseurl", "FITNESS_PROVIDER_URL")
	v.BindEnv("provider.apikey", "FITNESS_PROVIDER_API_KEY")

	v.BindEnv("security.transcriptkey", "TRANSCRIPT_ENCRYPTION_KEY")

	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.format", "LOG_FORMAT")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}

	if c.Assistant.APIKey == "" {
		return fmt.Errorf("assistant.apikey is required")
	}

	if c.Security.TranscriptKey != "" && len(c.Security.TranscriptKey) != 32 {
		return fmt.Errorf("security.transcriptkey must be exactly 32 bytes")
	}

	if _, err := time.LoadLocation(c.Server.Timezone); err != nil {
		return fmt.Errorf("invalid server.timezone %q: %w", c.Server.Timezone, err)
	}

	return nil
}
