// Package config handles application configuration loading and validation using Viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	CheckIn   CheckInConfig   `mapstructure:"checkin"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Admin     AdminConfig     `mapstructure:"admin"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig contains database connection settings for PostgreSQL and Redis.
type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig contains PostgreSQL database connection and pool settings.
type PostgresConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string `mapstructure:"migrations_path"`
}

// RedisConfig contains Redis cache connection and pool settings.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
	CacheTTL int    `mapstructure:"cache_ttl"` // seconds
}

// CheckInConfig contains the weigh-in window and validation settings.
type CheckInConfig struct {
	Timezone  string  `mapstructure:"timezone"`   // fixed reference timezone for week boundaries
	CloseHour int     `mapstructure:"close_hour"` // Monday hour at which the window closes
	MinWeight float64 `mapstructure:"min_weight"` // kg
	MaxWeight float64 `mapstructure:"max_weight"` // kg
}

// SchedulerConfig contains weekly settlement scheduler settings.
type SchedulerConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Time     string `mapstructure:"time"` // "HH:MM", fires every Monday
	Timezone string `mapstructure:"timezone"`
}

// MetricsConfig contains metrics exporter settings.
type MetricsConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig contains Prometheus metrics exporter settings.
type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig contains application logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// AdminConfig contains settings for the administrative trigger endpoints.
type AdminConfig struct {
	Secret string `mapstructure:"secret"`
}

// Load reads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/slimcircle/")
	}

	setDefaults(v)

	// Bind specific environment variables (explicit bindings for 12-factor app compliance)
	// Server configuration
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.environment", "SERVER_ENVIRONMENT")

	// PostgreSQL configuration
	_ = v.BindEnv("database.postgres.host", "POSTGRES_HOST")
	_ = v.BindEnv("database.postgres.port", "POSTGRES_PORT")
	_ = v.BindEnv("database.postgres.database", "POSTGRES_DB")
	_ = v.BindEnv("database.postgres.user", "POSTGRES_USER")
	_ = v.BindEnv("database.postgres.password", "POSTGRES_PASSWORD")
	_ = v.BindEnv("database.postgres.ssl_mode", "POSTGRES_SSL_MODE")
	_ = v.BindEnv("database.postgres.max_open_conns", "POSTGRES_MAX_OPEN_CONNS")
	_ = v.BindEnv("database.postgres.max_idle_conns", "POSTGRES_MAX_IDLE_CONNS")
	_ = v.BindEnv("database.postgres.conn_max_lifetime", "POSTGRES_CONN_MAX_LIFETIME")
	_ = v.BindEnv("database.postgres.migrations_path", "POSTGRES_MIGRATIONS_PATH")

	// Redis configuration
	_ = v.BindEnv("database.redis.host", "REDIS_HOST")
	_ = v.BindEnv("database.redis.port", "REDIS_PORT")
	_ = v.BindEnv("database.redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("database.redis.db", "REDIS_DB")
	_ = v.BindEnv("database.redis.pool_size", "REDIS_POOL_SIZE")
	_ = v.BindEnv("database.redis.cache_ttl", "REDIS_CACHE_TTL")

	// Check-in configuration
	_ = v.BindEnv("checkin.timezone", "CHECKIN_TIMEZONE")
	_ = v.BindEnv("checkin.close_hour", "CHECKIN_CLOSE_HOUR")
	_ = v.BindEnv("checkin.min_weight", "CHECKIN_MIN_WEIGHT")
	_ = v.BindEnv("checkin.max_weight", "CHECKIN_MAX_WEIGHT")

	// Scheduler configuration
	_ = v.BindEnv("scheduler.enabled", "SCHEDULER_ENABLED")
	_ = v.BindEnv("scheduler.time", "SCHEDULER_TIME")
	_ = v.BindEnv("scheduler.timezone", "SCHEDULER_TIMEZONE")

	// Logging configuration
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")
	_ = v.BindEnv("logging.output", "LOG_OUTPUT")

	// Admin configuration
	_ = v.BindEnv("admin.secret", "ADMIN_SECRET")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")
	v.SetDefault("checkin.timezone", "Asia/Shanghai")
	v.SetDefault("checkin.close_hour", 20)
	v.SetDefault("checkin.min_weight", 30)
	v.SetDefault("checkin.max_weight", 200)
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.time", "21:00")
	v.SetDefault("scheduler.timezone", "Asia/Shanghai")
	v.SetDefault("database.redis.cache_ttl", 60)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if c.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if c.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}
	if c.Database.Redis.Host == "" {
		return fmt.Errorf("database.redis.host is required")
	}
	if c.CheckIn.CloseHour < 1 || c.CheckIn.CloseHour > 23 {
		return fmt.Errorf("checkin.close_hour must be between 1 and 23")
	}
	if c.CheckIn.MinWeight <= 0 || c.CheckIn.MaxWeight <= c.CheckIn.MinWeight {
		return fmt.Errorf("checkin weight bounds are invalid")
	}
	if _, err := time.LoadLocation(c.CheckIn.Timezone); err != nil {
		return fmt.Errorf("checkin.timezone %q is invalid: %w", c.CheckIn.Timezone, err)
	}
	if c.Scheduler.Enabled {
		if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
			return fmt.Errorf("scheduler.timezone %q is invalid: %w", c.Scheduler.Timezone, err)
		}
	}
	return nil
}

// GetLocation returns the reference timezone location for week boundaries.
func (c *CheckInConfig) GetLocation() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// GetLocation returns the timezone location the scheduler fires in.
func (c *SchedulerConfig) GetLocation() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
