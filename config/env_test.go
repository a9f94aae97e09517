package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "geofencing-task", cfg.TaskName)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 500.0, cfg.DynamicRadius)
	assert.Equal(t, 30*time.Second, cfg.PositionTimeout)
	assert.Equal(t, time.Second, cfg.NotificationDelay)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.RegionsFile)
	assert.Empty(t, cfg.Recipients())
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("TASK_NAME", "florence-watch")
	t.Setenv("DYNAMIC_RADIUS", "250")
	t.Setenv("POSITION_TIMEOUT", "5s")
	t.Setenv("NOTIFICATION_DELAY", "2s")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "florence-watch", cfg.TaskName)
	assert.Equal(t, 250.0, cfg.DynamicRadius)
	assert.Equal(t, 5*time.Second, cfg.PositionTimeout)
	assert.Equal(t, 2*time.Second, cfg.NotificationDelay)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"non-positive radius", "DYNAMIC_RADIUS", "0", "DYNAMIC_RADIUS must be positive"},
		{"non-positive timeout", "POSITION_TIMEOUT", "0s", "POSITION_TIMEOUT must be positive"},
		{"negative delay", "NOTIFICATION_DELAY", "-1s", "NOTIFICATION_DELAY must not be negative"},
		{"unparseable radius", "DYNAMIC_RADIUS", "wide", "failed to load environment variables"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRecipients(t *testing.T) {
	cfg := &Config{NotifyRecipients: " a@example.com, ,b@example.com "}
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.Recipients())
}
