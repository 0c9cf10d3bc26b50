package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"investor-desk/request-portal-backend/internal/reports/scheduler"
)

// unsetEnv clears key for the test and restores it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig("")

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "en", cfg.Timeline.DefaultLanguage)
	assert.False(t, cfg.Transitions.RetryOnConflict)
	assert.Equal(t, time.Minute, cfg.Reports.SummaryCacheTTL)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.GetServerAddr())
}

func TestLoadConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	unsetEnv(t, "LOG_FORMAT")
	unsetEnv(t, "TIMELINE_DEFAULT_LANGUAGE")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("TRANSITIONS_RETRY_ON_CONFLICT", "true")

	writeFile(t, dir, ".env", "LOG_FORMAT=console\nTIMELINE_DEFAULT_LANGUAGE=ar-SA\nJWT_SECRET=from-dotenv\n")
	path := writeFile(t, dir, "config.json", `{
		"server": {"port": 7070},
		"database": {"db_name": "desk_test"},
		"logging": {"level": "debug", "format": "json"},
		"reports": {
			"output_dir": "/var/reports",
			"schedules": [{"name": "daily", "cron": "0 6 * * *", "format": "csv", "query": "status=approved"}]
		}
	}`)

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port, "environment wins over the file")
	assert.Equal(t, "desk_test", cfg.Database.DBName)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format, ".env fills unset variables")
	assert.Equal(t, "from-env", cfg.Security.JWTSecret, ".env never overrides real environment")
	assert.Equal(t, "ar", cfg.Timeline.DefaultLanguage)
	assert.True(t, cfg.Transitions.RetryOnConflict)
	require.Len(t, cfg.Reports.Schedules, 1)
	assert.Equal(t, "daily", cfg.Reports.Schedules[0].Name)
	assert.Equal(t, "/var/reports", cfg.Reports.OutputDir)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Chdir(t.TempDir())
	unsetEnv(t, "JWT_SECRET")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func TestLoadConfigBadEnvValue(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("SERVER_PORT", "eighty")

	_, err := LoadConfig("")
	assert.ErrorContains(t, err, "SERVER_PORT")
}

func TestLoadConfigMalformedFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("JWT_SECRET", "s")

	_, err := LoadConfig(writeFile(t, dir, "config.json", "{not json"))
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestValidateSchedules(t *testing.T) {
	cfg := defaults()
	cfg.Security.JWTSecret = "s"
	cfg.Reports.Schedules = nil
	require.NoError(t, cfg.Validate())

	cfg.Reports.Schedules = append(cfg.Reports.Schedules,
		scheduleFor("weekly", "docx"),
	)
	assert.ErrorContains(t, cfg.Validate(), "unsupported export format")

	cfg.Reports.Schedules[0].Format = "pdf"
	cfg.Reports.Schedules = append(cfg.Reports.Schedules, scheduleFor("weekly", "csv"))
	assert.ErrorContains(t, cfg.Validate(), "duplicate report schedule")
}

func TestGetDatabaseURL(t *testing.T) {
	db := DatabaseConfig{User: "desk", Password: "pw", Host: "db", Port: 5433, DBName: "desk", SSLMode: "require"}
	assert.Equal(t, "postgres://desk:pw@db:5433/desk?sslmode=require", db.GetDatabaseURL())

	db.URL = "postgres://override"
	assert.Equal(t, "postgres://override", db.GetDatabaseURL())
}

func scheduleFor(name, format string) scheduler.Schedule {
	return scheduler.Schedule{Name: name, CronExpression: "@weekly", Format: format}
}

func TestNewLogger(t *testing.T) {
	logger, err := LoggingConfig{Level: "warn", Format: "console"}.NewLogger()
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	_, err = LoggingConfig{Level: "loud", Format: "json"}.NewLogger()
	assert.Error(t, err)
}
