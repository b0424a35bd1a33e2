package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, "./data/moodtrack.db", cfg.Database.Path)
	assert.False(t, cfg.Auth.Required)
	assert.Empty(t, cfg.Detector.URL, "detection is off until a service is configured")
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("DATABASE_PATH", "/tmp/moods.db")
	t.Setenv("AUTH_REQUIRED", "true")
	t.Setenv("DETECTOR_URL", "http://analyzer:8001/analyze")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "/tmp/moods.db", cfg.Database.Path)
	assert.True(t, cfg.Auth.Required)
	assert.Equal(t, "http://analyzer:8001/analyze", cfg.Detector.URL)
}

func TestAPIBase(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 8080
	assert.Equal(t, "http://localhost:8080", cfg.APIBase())

	cfg.Client.APIBaseURL = "https://moods.example.com"
	assert.Equal(t, "https://moods.example.com", cfg.APIBase())
}
