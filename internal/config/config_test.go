package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GCP_PROJECT_ID", "grow-test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "firestore", cfg.DataStore)
	assert.Equal(t, "firebase", cfg.Auth.Mode)
	assert.Equal(t, "grow-test", cfg.Auth.Audience)
	assert.Equal(t, "https://securetoken.google.com/grow-test", cfg.Auth.Issuer)
	assert.Equal(t, "(default)", cfg.Firestore.Database)
	assert.Equal(t, time.Hour, cfg.Assets.SignedURLTTL)
	assert.Equal(t, 30*time.Minute, cfg.Game.SessionTimeout)

	loc, err := cfg.Game.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATASTORE", "memory")
	t.Setenv("AUTH_MODE", "noop")
	t.Setenv("SESSION_IDLE_TIMEOUT", "5m")
	t.Setenv("GAME_TIMEZONE", "Europe/Paris")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.DataStore)
	assert.Equal(t, "noop", cfg.Auth.Mode)
	assert.Equal(t, 5*time.Minute, cfg.Game.SessionTimeout)

	loc, err := cfg.Game.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", loc.String())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "unknown datastore", key: "DATASTORE", val: "postgres"},
		{name: "unknown auth mode", key: "AUTH_MODE", val: "clerk"},
		{name: "bad duration", key: "SESSION_IDLE_TIMEOUT", val: "soon"},
		{name: "unknown log level", key: "LOG_LEVEL", val: "verbose"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoadGameIgnoresServerSettings(t *testing.T) {
	t.Setenv("DATASTORE", "postgres")
	t.Setenv("QUIZ_BANK_PATH", "/etc/grow/bank.yaml")
	t.Setenv("GAME_TIMEZONE", "Europe/Paris")

	game, err := LoadGame()
	require.NoError(t, err)
	assert.Equal(t, "/etc/grow/bank.yaml", game.QuizBankPath)
	assert.Equal(t, "data/daymarkers.db", game.DayMarkerPath)

	loc, err := game.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", loc.String())
}
