package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecrets struct {
	values map[string]string
	err    error
	name   string
}

func (f *fakeSecrets) GetSecretMap(_ context.Context, name string) (map[string]string, error) {
	f.name = name
	return f.values, f.err
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("DB_USER", "pastel")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000/, https://pastel360.example")
	t.Setenv("MAIL_BACKOFF", "250ms")

	cfg, err := LoadConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, "pastel360", cfg.DB.DBName)
	assert.Equal(t, []string{"http://localhost:3000", "https://pastel360.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 250*time.Millisecond, cfg.MailBackoff)
	assert.Equal(t, 3, cfg.MailAttempts)
	assert.True(t, cfg.WorkerEnabled)
	assert.False(t, cfg.MetricsOn)
}

func TestLoadConfig_RequiresDBCredentials(t *testing.T) {
	t.Setenv("DB_USER", "")
	t.Setenv("DB_PASSWORD", "")

	_, err := LoadConfig(context.Background())
	assert.ErrorContains(t, err, "DB_USER")
}

func TestApplyDBSecret_OverridesPresentKeys(t *testing.T) {
	cfg := configFromEnv()
	cfg.DB.User = "env-user"
	cfg.DB.Host = "env-host"

	sm := &fakeSecrets{values: map[string]string{"username": "rds-user", "password": "rds-pass"}}
	applyDBSecret(context.Background(), cfg, sm)

	assert.Equal(t, dbSecretName, sm.name)
	assert.Equal(t, "rds-user", cfg.DB.User)
	assert.Equal(t, "rds-pass", cfg.DB.Password)
	assert.Equal(t, "env-host", cfg.DB.Host)
}

func TestApplyDBSecret_FallsBackOnError(t *testing.T) {
	cfg := configFromEnv()
	cfg.DB.User = "env-user"

	applyDBSecret(context.Background(), cfg, &fakeSecrets{err: errors.New("AccessDenied")})
	assert.Equal(t, "env-user", cfg.DB.User)
}

func TestGetters_IgnoreMalformedValues(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_DUR", "soon")

	assert.Equal(t, 7, getInt("X_INT", 7))
	assert.True(t, getBool("X_BOOL", true))
	assert.Equal(t, time.Second, getDuration("X_DUR", time.Second))
}
