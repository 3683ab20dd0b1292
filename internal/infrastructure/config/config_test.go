package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"AUDITOR_APP_NAME":                os.Getenv("AUDITOR_APP_NAME"),
		"AUDITOR_APP_ENV":                 os.Getenv("AUDITOR_APP_ENV"),
		"AUDITOR_APP_PORT":                os.Getenv("AUDITOR_APP_PORT"),
		"AUDITOR_DATABASE_DRIVER":         os.Getenv("AUDITOR_DATABASE_DRIVER"),
		"AUDITOR_DATABASE_HOST":           os.Getenv("AUDITOR_DATABASE_HOST"),
		"AUDITOR_DATABASE_PORT":           os.Getenv("AUDITOR_DATABASE_PORT"),
		"AUDITOR_DATABASE_USER":           os.Getenv("AUDITOR_DATABASE_USER"),
		"AUDITOR_DATABASE_PASSWORD":       os.Getenv("AUDITOR_DATABASE_PASSWORD"),
		"AUDITOR_DATABASE_DBNAME":         os.Getenv("AUDITOR_DATABASE_DBNAME"),
		"AUDITOR_DATABASE_SSLMODE":        os.Getenv("AUDITOR_DATABASE_SSLMODE"),
		"AUDITOR_DATABASE_MAX_OPEN_CONNS": os.Getenv("AUDITOR_DATABASE_MAX_OPEN_CONNS"),
		"AUDITOR_DATABASE_MAX_IDLE_CONNS": os.Getenv("AUDITOR_DATABASE_MAX_IDLE_CONNS"),
		"AUDITOR_JWT_SECRET":              os.Getenv("AUDITOR_JWT_SECRET"),
		"AUDITOR_WILDBERRIES_API_KEY":     os.Getenv("AUDITOR_WILDBERRIES_API_KEY"),
		"AUDITOR_OZON_CLIENT_ID":          os.Getenv("AUDITOR_OZON_CLIENT_ID"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "auditor-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "auditor", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)

		assert.Equal(t, "https://content-api.wildberries.ru", cfg.Wildberries.APIBaseURL)
		assert.Equal(t, "https://api-seller.ozon.ru", cfg.Ozon.APIBaseURL)
		assert.Equal(t, 1000, cfg.Wildberries.PageSize)
		assert.Equal(t, "https://pub.fsa.gov.ru/api/v1", cfg.FSA.APIBaseURL)
		assert.Equal(t, "https://markirovka.crpt.ru/api/v3", cfg.CRPT.APIBaseURL)

		assert.Equal(t, 3, cfg.Audit.MinPhotos)
		assert.Equal(t, 300, cfg.Audit.MinDescriptionLength)
		assert.Equal(t, 4.0, cfg.Audit.MinRating)
		assert.Equal(t, 0.20, cfg.Audit.MaxLogisticsShare)
		assert.Equal(t, 10*time.Minute, cfg.Audit.RunLockTTL)
	})

	t.Run("loads values from environment variables with AUDITOR prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("AUDITOR_APP_NAME", "test-app")
		os.Setenv("AUDITOR_APP_ENV", "testing")
		os.Setenv("AUDITOR_APP_PORT", "9000")
		os.Setenv("AUDITOR_DATABASE_HOST", "testdb.local")
		os.Setenv("AUDITOR_DATABASE_PORT", "5433")
		os.Setenv("AUDITOR_DATABASE_USER", "testuser")
		os.Setenv("AUDITOR_DATABASE_PASSWORD", "testpass")
		os.Setenv("AUDITOR_DATABASE_DBNAME", "testdb")
		os.Setenv("AUDITOR_DATABASE_SSLMODE", "require")
		os.Setenv("AUDITOR_WILDBERRIES_API_KEY", "wb-token")
		os.Setenv("AUDITOR_OZON_CLIENT_ID", "12345")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, "wb-token", cfg.Wildberries.APIKey)
		assert.Equal(t, "12345", cfg.Ozon.ClientID)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("AUDITOR_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("AUDITOR_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv()
		os.Setenv("AUDITOR_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		// 0 is treated as "not set", so default (25) is used
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearEnv()
		os.Setenv("AUDITOR_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := map[string]string{
		"AUDITOR_APP_ENV":           os.Getenv("AUDITOR_APP_ENV"),
		"AUDITOR_JWT_SECRET":        os.Getenv("AUDITOR_JWT_SECRET"),
		"AUDITOR_DATABASE_DRIVER":   os.Getenv("AUDITOR_DATABASE_DRIVER"),
		"AUDITOR_DATABASE_PASSWORD": os.Getenv("AUDITOR_DATABASE_PASSWORD"),
		"AUDITOR_DATABASE_SSLMODE":  os.Getenv("AUDITOR_DATABASE_SSLMODE"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	setValidProductionBase := func() {
		os.Setenv("AUDITOR_APP_ENV", "production")
		os.Setenv("AUDITOR_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		os.Setenv("AUDITOR_DATABASE_PASSWORD", "secure-password")
		os.Setenv("AUDITOR_DATABASE_SSLMODE", "require")
	}

	t.Run("requires jwt.secret in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("AUDITOR_APP_ENV", "production")
		os.Setenv("AUDITOR_DATABASE_PASSWORD", "secure-password")
		os.Setenv("AUDITOR_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret is required in production")
	})

	t.Run("requires jwt.secret at least 32 characters in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("AUDITOR_JWT_SECRET", "short-secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret must be at least 32 characters")
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("AUDITOR_APP_ENV", "production")
		os.Setenv("AUDITOR_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		os.Setenv("AUDITOR_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("AUDITOR_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("rejects sqlite in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("AUDITOR_DATABASE_DRIVER", "sqlite")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be 'sqlite' in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		// URL-encoded password should be in the DSN
		assert.Contains(t, dsn, "pass%40word%23123")
	})

	t.Run("sqlite DSN is the file path", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver: "sqlite",
			Path:   "auditor.db",
		}

		assert.Equal(t, "auditor.db", cfg.DSN())
	})
}
