package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/xxxsen/common/logger"
)

const (
	EnvDev  = "dev"
	EnvTest = "test"
	EnvProd = "prod"

	minSecretKeyBytes = 32
)

type Config struct {
	Env              string           `json:"env" env:"ENV"`
	Port             int              `json:"port" env:"PORT"`
	Database         DatabaseConfig   `json:"database" envPrefix:"POSTGRES_"`
	Auth             AuthConfig       `json:"auth"`
	LogConfig        logger.LogConfig `json:"log_config"`
	CORSAllowOrigins []string         `json:"cors_allow_origins" env:"CORS_ALLOW_ORIGINS" envSeparator:","`
	// Minimum spacing between /register and /token calls from one client, 0 disables.
	AuthRateLimitMs int    `json:"auth_rate_limit_ms" env:"AUTH_RATE_LIMIT_MS"`
	DBStatsCron     string `json:"db_stats_cron" env:"DB_STATS_CRON"`
}

type DatabaseConfig struct {
	DSN                    string `json:"dsn" env:"DSN"`
	Host                   string `json:"host" env:"HOST"`
	Port                   int    `json:"port" env:"PORT"`
	User                   string `json:"user" env:"USER"`
	Password               string `json:"password" env:"PASSWORD"`
	DBName                 string `json:"dbname" env:"DB"`
	SSLMode                string `json:"sslmode" env:"SSLMODE"`
	MaxOpenConns           int    `json:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns           int    `json:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	ConnMaxLifetimeMinutes int    `json:"conn_max_lifetime_minutes" env:"CONN_MAX_LIFETIME_MINUTES"`
	AcquireTimeoutMs       int    `json:"acquire_timeout_ms" env:"ACQUIRE_TIMEOUT_MS"`
}

type AuthConfig struct {
	SecretKey                string `json:"secret_key" env:"SECRET_KEY"`
	Algorithm                string `json:"algorithm" env:"ALGORITHM"`
	AccessTokenExpireMinutes int    `json:"access_token_expire_minutes" env:"ACCESS_TOKEN_EXPIRE_MINUTES"`
	PasswordAlgorithm        string `json:"password_algorithm" env:"PASSWORD_ALGORITHM"`
	CacheSize                int    `json:"cache_size" env:"AUTH_CACHE_SIZE"`
	CacheTTLSeconds          int    `json:"cache_ttl_seconds" env:"AUTH_CACHE_TTL_SECONDS"`
}

func (c DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeMinutes) * time.Minute
}

func (c DatabaseConfig) AcquireTimeout() time.Duration {
	return time.Duration(c.AcquireTimeoutMs) * time.Millisecond
}

func (c AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

func (c AuthConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Load reads the optional JSON file at path, then applies environment overrides.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()
		if err := json.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() error {
	if c.Env == "" {
		c.Env = EnvDev
	}
	switch c.Env {
	case EnvDev, EnvTest, EnvProd:
	default:
		return fmt.Errorf("env must be one of dev, test, prod")
	}
	if c.Port == 0 {
		return fmt.Errorf("port is required")
	}
	if c.Database.DSN == "" {
		if c.Database.Host == "" {
			c.Database.Host = "localhost"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.DBName == "" || c.Database.User == "" {
			return fmt.Errorf("database.dbname and database.user are required when database.dsn is empty")
		}
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns <= 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		c.Database.MaxIdleConns = c.Database.MaxOpenConns
	}
	if c.Database.ConnMaxLifetimeMinutes <= 0 {
		c.Database.ConnMaxLifetimeMinutes = 30
	}
	if c.Database.AcquireTimeoutMs <= 0 {
		c.Database.AcquireTimeoutMs = 3000
	}
	if len(c.Auth.SecretKey) < minSecretKeyBytes {
		return fmt.Errorf("auth.secret_key must be at least %d characters", minSecretKeyBytes)
	}
	if c.Auth.Algorithm == "" {
		c.Auth.Algorithm = "HS256"
	}
	c.Auth.Algorithm = strings.ToUpper(c.Auth.Algorithm)
	if c.Auth.AccessTokenExpireMinutes <= 0 {
		c.Auth.AccessTokenExpireMinutes = 30
	}
	if c.Auth.PasswordAlgorithm == "" {
		c.Auth.PasswordAlgorithm = "argon2id"
	}
	if c.Auth.CacheSize < 0 {
		c.Auth.CacheSize = 0
	}
	if c.Auth.CacheTTLSeconds <= 0 {
		c.Auth.CacheTTLSeconds = 60
	}
	if c.LogConfig.Level == "" {
		c.LogConfig.Level = "info"
		if c.Env == EnvDev {
			c.LogConfig.Level = "debug"
		}
	}
	if c.DBStatsCron == "" {
		c.DBStatsCron = "*/5 * * * *"
	}
	return nil
}

func (c DatabaseConfig) ConnString() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
