package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENV", "PORT", "CORS_ALLOW_ORIGINS", "AUTH_RATE_LIMIT_MS", "DB_STATS_CRON",
		"POSTGRES_DSN", "POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD",
		"POSTGRES_DB", "POSTGRES_SSLMODE", "SECRET_KEY", "ALGORITHM", "ACCESS_TOKEN_EXPIRE_MINUTES",
		"PASSWORD_ALGORITHM", "AUTH_CACHE_SIZE", "AUTH_CACHE_TTL_SECONDS",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileWithDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"port": 8080,
		"database": {"dbname": "zapisstavy", "user": "app", "password": "pw"},
		"auth": {"secret_key": "`+testSecret+`"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, EnvDev, cfg.Env)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "localhost", cfg.Database.Host)
	require.Equal(t, 5432, cfg.Database.Port)
	require.Equal(t, "disable", cfg.Database.SSLMode)
	require.Equal(t, 25, cfg.Database.MaxOpenConns)
	require.Equal(t, 25, cfg.Database.MaxIdleConns)
	require.Equal(t, 3*time.Second, cfg.Database.AcquireTimeout())
	require.Equal(t, "HS256", cfg.Auth.Algorithm)
	require.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL())
	require.Equal(t, "argon2id", cfg.Auth.PasswordAlgorithm)
	require.Equal(t, "debug", cfg.LogConfig.Level)
	require.Equal(t,
		"host=localhost port=5432 user=app password=pw dbname=zapisstavy sslmode=disable",
		cfg.Database.ConnString())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `{
		"port": 8080,
		"database": {"dbname": "file_db", "user": "app"},
		"auth": {"secret_key": "`+testSecret+`", "algorithm": "HS256"}
	}`)
	t.Setenv("ENV", "prod")
	t.Setenv("POSTGRES_DB", "env_db")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("ALGORITHM", "hs512")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "15")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, EnvProd, cfg.Env)
	require.Equal(t, "env_db", cfg.Database.DBName)
	require.Equal(t, "db.internal", cfg.Database.Host)
	require.Equal(t, "app", cfg.Database.User)
	require.Equal(t, "HS512", cfg.Auth.Algorithm)
	require.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL())
	require.Equal(t, "info", cfg.LogConfig.Level)
}

func TestLoadEnvOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("POSTGRES_DSN", "postgres://app@localhost/zapisstavy?sslmode=disable")
	t.Setenv("SECRET_KEY", testSecret)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.Port)
	require.Equal(t, "postgres://app@localhost/zapisstavy?sslmode=disable", cfg.Database.ConnString())
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"missing port":   `{"database": {"dbname": "d", "user": "u"}, "auth": {"secret_key": "` + testSecret + `"}}`,
		"missing db":     `{"port": 1, "auth": {"secret_key": "` + testSecret + `"}}`,
		"short secret":   `{"port": 1, "database": {"dbname": "d", "user": "u"}, "auth": {"secret_key": "short"}}`,
		"bad env":        `{"env": "staging", "port": 1, "database": {"dbname": "d", "user": "u"}, "auth": {"secret_key": "` + testSecret + `"}}`,
		"malformed json": `{"port": `,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
