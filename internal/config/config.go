package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Bot      BotConfig      `mapstructure:"bot" validate:"required"`
	Policy   PolicyConfig   `mapstructure:"policy"`
	Cache    CacheConfig    `mapstructure:"cache"`
	OTel     OTelConfig     `mapstructure:"otel"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// LogFormat selects the local slog handler; ignored when logs are exported over OTLP.
	LogFormat       string        `mapstructure:"log_format" validate:"required,oneof=json text"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url" validate:"required"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gte=1"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
	BCryptCost                  int    `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
}

// BotConfig points at the notification bot.
type BotConfig struct {
	BaseURL       string        `mapstructure:"base_url" validate:"required,url"`
	HealthTimeout time.Duration `mapstructure:"health_timeout" validate:"gt=0"`
	SendTimeout   time.Duration `mapstructure:"send_timeout" validate:"gt=0"`
}

// PolicyConfig locates an optional override of the built-in policy table.
type PolicyConfig struct {
	File string `mapstructure:"file"`
}

// CacheConfig configures the catalog cache. An empty RedisURL disables it.
type CacheConfig struct {
	RedisURL string        `mapstructure:"redis_url" validate:"omitempty,url"`
	TTL      time.Duration `mapstructure:"ttl" validate:"gt=0"`
}

// OTelConfig configures trace and log export. An empty Endpoint disables it.
type OTelConfig struct {
	Endpoint       string `mapstructure:"endpoint" validate:"omitempty,url"`
	Headers        string `mapstructure:"headers"`
	ServiceName    string `mapstructure:"service_name" validate:"required"`
	ServiceVersion string `mapstructure:"service_version"`
}

// Enabled reports whether telemetry export is configured.
func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}
