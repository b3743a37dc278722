package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	pkglogger "github.com/damoang/angple-messenger/pkg/logger"
	"gopkg.in/yaml.v3"
)

// Config application configuration (configs/config.<env>.yaml, overridden by env vars)
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	CORS      CORSConfig      `yaml:"cors"`
	Storage   StorageConfig   `yaml:"storage"`
	Messaging MessagingConfig `yaml:"messaging"`
}

type ServerConfig struct {
	Port     int    `yaml:"port" env:"SERVER_PORT"`
	Mode     string `yaml:"mode" env:"GIN_MODE"`
	Env      string `yaml:"env" env:"APP_ENV"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
}

// DatabaseConfig driver is "mysql" or "sqlite"
type DatabaseConfig struct {
	Driver          string        `yaml:"driver" env:"DB_DRIVER"`
	Host            string        `yaml:"host" env:"DB_HOST"`
	Port            int           `yaml:"port" env:"DB_PORT"`
	User            string        `yaml:"user" env:"DB_USER"`
	Password        string        `yaml:"password" env:"DB_PASSWORD"`
	DBName          string        `yaml:"dbname" env:"DB_NAME"`
	SQLitePath      string        `yaml:"sqlite_path" env:"DB_SQLITE_PATH"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED"`
	Host     string `yaml:"host" env:"REDIS_HOST"`
	Port     int    `yaml:"port" env:"REDIS_PORT"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
	PoolSize int    `yaml:"pool_size" env:"REDIS_POOL_SIZE"`
}

type JWTConfig struct {
	Secret    string `yaml:"secret" env:"JWT_SECRET"`
	ExpiresIn int    `yaml:"expires_in" env:"JWT_EXPIRES_IN"`
}

type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins" env:"CORS_ALLOW_ORIGINS"`
}

type StorageConfig struct {
	Enabled         bool   `yaml:"enabled" env:"STORAGE_ENABLED"`
	Endpoint        string `yaml:"endpoint" env:"STORAGE_ENDPOINT"`
	Region          string `yaml:"region" env:"STORAGE_REGION"`
	AccessKeyID     string `yaml:"access_key_id" env:"STORAGE_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"STORAGE_SECRET_ACCESS_KEY"`
	Bucket          string `yaml:"bucket" env:"STORAGE_BUCKET"`
	CDNURL          string `yaml:"cdn_url" env:"STORAGE_CDN_URL"`
	BasePath        string `yaml:"base_path" env:"STORAGE_BASE_PATH"`
	ForcePathStyle  bool   `yaml:"force_path_style" env:"STORAGE_FORCE_PATH_STYLE"`
	MaxUploadBytes  int64  `yaml:"max_upload_bytes" env:"STORAGE_MAX_UPLOAD_BYTES"`
}

// MessagingConfig tunables for the direct message engine
type MessagingConfig struct {
	DeepLinkBase           string        `yaml:"deep_link_base" env:"DM_DEEP_LINK_BASE"`
	MaxContentLength       int           `yaml:"max_content_length" env:"DM_MAX_CONTENT_LENGTH"`
	NotifyWorkers          int           `yaml:"notify_workers" env:"DM_NOTIFY_WORKERS"`
	NotifyQueueSize        int           `yaml:"notify_queue_size" env:"DM_NOTIFY_QUEUE_SIZE"`
	NotifyTimeout          time.Duration `yaml:"notify_timeout" env:"DM_NOTIFY_TIMEOUT"`
	SendRateLimitPerMinute int           `yaml:"send_rate_limit_per_minute" env:"DM_SEND_RATE_LIMIT"`
	UserSummaryTTL         time.Duration `yaml:"user_summary_ttl" env:"DM_USER_SUMMARY_TTL"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8090, Mode: "debug", Env: "local", LogLevel: "info"},
		Database: DatabaseConfig{
			Driver:          "sqlite",
			Port:            3306,
			SQLitePath:      "messenger.db",
			MaxIdleConns:    10,
			MaxOpenConns:    50,
			ConnMaxLifetime: time.Hour,
		},
		Redis: RedisConfig{Host: "localhost", Port: 6379, PoolSize: 20},
		JWT:   JWTConfig{ExpiresIn: 900},
		Storage: StorageConfig{
			Region:         "auto",
			BasePath:       "dm/",
			MaxUploadBytes: 20 << 20,
		},
		Messaging: MessagingConfig{
			DeepLinkBase:           "http://localhost:3000",
			MaxContentLength:       5000,
			NotifyWorkers:          4,
			NotifyQueueSize:        1024,
			NotifyTimeout:          5 * time.Second,
			SendRateLimitPerMinute: 60,
			UserSummaryTTL:         5 * time.Minute,
		},
	}
}

// Load reads the YAML file at path (missing file is allowed) and applies env overrides
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// env-only configuration
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("jwt.secret (JWT_SECRET) is required")
	}
	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Messaging.NotifyWorkers < 1 {
		c.Messaging.NotifyWorkers = 1
	}
	if c.Messaging.NotifyQueueSize < 1 {
		c.Messaging.NotifyQueueSize = 1
	}
	if c.Messaging.MaxContentLength < 1 {
		c.Messaging.MaxContentLength = Default().Messaging.MaxContentLength
	}
	return nil
}

// MySQLDSN builds the go-sql-driver DSN
func (c *DatabaseConfig) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// IsDevelopment reports whether the app runs in a local/dev environment
func (c *Config) IsDevelopment() bool {
	switch c.Server.Env {
	case "", "local", "dev", "development":
		return true
	}
	return false
}

// LogResolved logs the effective configuration without secrets
func LogResolved(cfg *Config) {
	pkglogger.GetLogger().Info().
		Str("env", cfg.Server.Env).
		Int("port", cfg.Server.Port).
		Str("db_driver", cfg.Database.Driver).
		Bool("redis", cfg.Redis.Enabled).
		Bool("storage", cfg.Storage.Enabled).
		Int("notify_workers", cfg.Messaging.NotifyWorkers).
		Msg("configuration resolved")
}
