// Package config handles application configuration loading and validation using Viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	Server       ServerConfig        `mapstructure:"server"`
	Database     DatabaseConfig      `mapstructure:"database"`
	Energy       EnergyConfig        `mapstructure:"energy"`
	Matchmaking  MatchmakingConfig   `mapstructure:"matchmaking"`
	Scheduler    SchedulerConfig     `mapstructure:"scheduler"`
	Metrics      MetricsConfig       `mapstructure:"metrics"`
	Logging      LoggingConfig       `mapstructure:"logging"`
	Notifier     NotifierConfig      `mapstructure:"notifier"`
	Achievements []AchievementConfig `mapstructure:"achievements"`
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
}

// RedisConfig contains Redis connection and pool settings for the match
// session store.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// EnergyConfig contains energy gate settings.
type EnergyConfig struct {
	MaxEnergy     int `mapstructure:"max_energy"`     // default capacity for authenticated users
	RegenInterval int `mapstructure:"regen_interval"` // seconds per regenerated unit
	UploadBonus   int `mapstructure:"upload_bonus"`   // energy credited on photo registration
	AnonymousSeed int `mapstructure:"anonymous_seed"` // advertised client-side trial balance
}

// RegenDuration returns the regeneration interval as a duration.
func (c *EnergyConfig) RegenDuration() time.Duration {
	return time.Duration(c.RegenInterval) * time.Second
}

// MatchmakingConfig contains fair-match selection settings.
type MatchmakingConfig struct {
	PoolSize       int `mapstructure:"pool_size"`        // least-exposed candidates considered per draw
	SessionTTL     int `mapstructure:"session_ttl"`      // seconds a minted match stays valid
	MaxExcludedIDs int `mapstructure:"max_excluded_ids"` // cap on client-supplied exclusions
}

// SessionDuration returns the match session TTL as a duration.
func (c *MatchmakingConfig) SessionDuration() time.Duration {
	return time.Duration(c.SessionTTL) * time.Second
}

// SchedulerConfig contains achievement recomputation scheduling settings.
type SchedulerConfig struct {
	Enabled                   bool   `mapstructure:"enabled"`
	AchievementEvaluationTime string `mapstructure:"achievement_evaluation_time"` // cron expression
	Timezone                  string `mapstructure:"timezone"`
}

// GetLocation returns the timezone location.
func (c *SchedulerConfig) GetLocation() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
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

// NotifierConfig contains webhook notification settings for achievement
// unlocks.
type NotifierConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Enabled    bool   `mapstructure:"enabled"`
}

// AchievementConfig seeds one catalog entry at startup.
type AchievementConfig struct {
	Name          string `mapstructure:"name"`
	Description   string `mapstructure:"description"`
	Icon          string `mapstructure:"icon"`
	CriteriaType  string `mapstructure:"criteria_type"`
	CriteriaValue int    `mapstructure:"criteria_value"`
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
		v.AddConfigPath("/etc/photo-arena/")
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

	// Redis configuration
	_ = v.BindEnv("database.redis.host", "REDIS_HOST")
	_ = v.BindEnv("database.redis.port", "REDIS_PORT")
	_ = v.BindEnv("database.redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("database.redis.db", "REDIS_DB")
	_ = v.BindEnv("database.redis.pool_size", "REDIS_POOL_SIZE")

	// Energy gate configuration
	_ = v.BindEnv("energy.max_energy", "ENERGY_MAX")
	_ = v.BindEnv("energy.regen_interval", "ENERGY_REGEN_INTERVAL")
	_ = v.BindEnv("energy.upload_bonus", "ENERGY_UPLOAD_BONUS")

	// Matchmaking configuration
	_ = v.BindEnv("matchmaking.pool_size", "MATCHMAKING_POOL_SIZE")
	_ = v.BindEnv("matchmaking.session_ttl", "MATCHMAKING_SESSION_TTL")

	// Notifier configuration
	_ = v.BindEnv("notifier.webhook_url", "NOTIFIER_WEBHOOK_URL")
	_ = v.BindEnv("notifier.enabled", "NOTIFIER_ENABLED")

	// Logging configuration
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")
	_ = v.BindEnv("logging.output", "LOG_OUTPUT")

	// Scheduler configuration
	_ = v.BindEnv("scheduler.enabled", "SCHEDULER_ENABLED")
	_ = v.BindEnv("scheduler.achievement_evaluation_time", "SCHEDULER_ACHIEVEMENT_EVALUATION_TIME")
	_ = v.BindEnv("scheduler.timezone", "SCHEDULER_TIMEZONE")

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

// setDefaults applies defaults for optional settings.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("energy.max_energy", 10)
	v.SetDefault("energy.regen_interval", 300)
	v.SetDefault("energy.upload_bonus", 5)
	v.SetDefault("energy.anonymous_seed", 5)
	v.SetDefault("matchmaking.pool_size", 20)
	v.SetDefault("matchmaking.session_ttl", 600)
	v.SetDefault("matchmaking.max_excluded_ids", 10)
	v.SetDefault("scheduler.timezone", "UTC")
	v.SetDefault("metrics.prometheus.path", "/metrics")
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
	if c.Energy.MaxEnergy <= 0 {
		return fmt.Errorf("energy.max_energy must be positive")
	}
	if c.Energy.RegenInterval <= 0 {
		return fmt.Errorf("energy.regen_interval must be positive")
	}
	if c.Matchmaking.PoolSize < 2 {
		return fmt.Errorf("matchmaking.pool_size must be at least 2")
	}
	for _, a := range c.Achievements {
		if a.Name == "" || a.CriteriaType == "" {
			return fmt.Errorf("achievements entries require name and criteria_type")
		}
	}
	return nil
}
