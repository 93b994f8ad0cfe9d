// Package config loads httpbatch configuration from a TOML/YAML file, a .env
// file and HTTPBATCH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/Sternrassler/httpbatch/pkg/batch"
	"github.com/Sternrassler/httpbatch/pkg/cache"
	"github.com/Sternrassler/httpbatch/pkg/client"
	"github.com/Sternrassler/httpbatch/pkg/logging"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override (batch.max_connection -> HTTPBATCH_BATCH_MAX_CONNECTION).
const EnvPrefix = "HTTPBATCH"

// Config holds all configuration values.
type Config struct {
	Batch batch.Settings `mapstructure:"batch"`
	HTTP  HTTPConfig     `mapstructure:"http"`
	Cache CacheConfig    `mapstructure:"cache"`
	Log   LogConfig      `mapstructure:"log"`
	Ops   OpsConfig      `mapstructure:"ops"`
	GIS   GISConfig      `mapstructure:"gis"`
}

// HTTPConfig configures the per-run HTTP client.
type HTTPConfig struct {
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// CacheConfig configures the optional Redis response cache.
type CacheConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// OpsConfig configures the ops HTTP server. An empty Listen disables it.
type OpsConfig struct {
	Listen string `mapstructure:"listen"`
}

// GISConfig configures the GIS geocoding and routing commands.
type GISConfig struct {
	APIURL   string `mapstructure:"api_url"`
	APIKey   string `mapstructure:"api_key"`
	Provider string `mapstructure:"provider"`
	Profile  string `mapstructure:"profile"`
}

func setDefaults(v *viper.Viper) {
	defaults := batch.DefaultSettings()
	v.SetDefault("batch.max_connection", defaults.MaxConnection)
	v.SetDefault("batch.main_queue_size", defaults.MainQueueSize)
	v.SetDefault("batch.dlq_sleep", defaults.DLQSleep)
	v.SetDefault("batch.dlq_consumer_num", defaults.DLQConsumerNum)
	v.SetDefault("batch.max_attempts", defaults.MaxAttempts)

	v.SetDefault("http.user_agent", "httpbatch/1.0")
	v.SetDefault("http.timeout", 30*time.Second)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.ttl", cache.DefaultTTL)

	v.SetDefault("log.level", string(logging.LevelInfo))
	v.SetDefault("log.pretty", false)

	v.SetDefault("ops.listen", "")

	v.SetDefault("gis.api_url", "")
	v.SetDefault("gis.api_key", "")
	v.SetDefault("gis.provider", "ptv")
	v.SetDefault("gis.profile", "Truck_40t")
}

// Load reads the configuration.
//
// path names an explicit config file; when empty, httpbatch.{toml,yaml,...}
// is looked up in . and ./config and is optional. A .env file in the working
// directory is loaded first and never overrides variables already set.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("httpbatch")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if err := c.Batch.Validate(); err != nil {
		return err
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be > 0 (got %v)", c.HTTP.Timeout)
	}
	if c.Cache.Enabled {
		if c.Cache.RedisAddr == "" {
			return errors.New("cache.redis_addr is required when the cache is enabled")
		}
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be > 0 (got %v)", c.Cache.TTL)
		}
	}
	return nil
}

// ValidateGIS checks the settings the GIS commands need.
func (c *Config) ValidateGIS() error {
	if c.GIS.APIURL == "" {
		return errors.New("gis.api_url is required")
	}
	if c.GIS.Provider == "" {
		return errors.New("gis.provider is required")
	}
	return nil
}

// ClientConfig returns the HTTP client template for batch runs.
// The cache is attached separately once a Redis connection exists.
func (c *Config) ClientConfig() client.Config {
	cfg := client.DefaultConfig(c.HTTP.UserAgent)
	cfg.MaxConnections = c.Batch.MaxConnection
	cfg.DefaultTimeout = c.HTTP.Timeout
	return cfg
}

// LoggingConfig returns the logger configuration.
func (c *Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(c.Log.Level)
	cfg.Pretty = c.Log.Pretty
	return cfg
}

// RedisOptions returns the connection options for the response cache.
func (c *Config) RedisOptions() *redis.Options {
	return &redis.Options{
		Addr:     c.Cache.RedisAddr,
		Password: c.Cache.RedisPassword,
		DB:       c.Cache.RedisDB,
	}
}
