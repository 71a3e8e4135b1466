package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, 12, cfg.MaxParticipants)
	assert.Equal(t, []int{4, 3, 3, 2, 2, 2, 1, 1}, cfg.RewardSequence)
	assert.Equal(t, 60, cfg.DrawBatchesPerSecond)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TURN_SECONDS", "45")
	t.Setenv("REWARD_SEQUENCE", "6, 5, 4")
	t.Setenv("MAX_PARTICIPANTS", "-3")
	t.Setenv("LOG_PRETTY", "true")

	cfg := Load()
	assert.Equal(t, 45, cfg.TurnSeconds)
	assert.Equal(t, []int{6, 5, 4}, cfg.RewardSequence)
	assert.Equal(t, 12, cfg.MaxParticipants, "non-positive values keep the default")
	assert.True(t, cfg.LogPretty)

	settings := cfg.RoomSettings()
	assert.Equal(t, 45*time.Second, settings.Turn)
	assert.Equal(t, 20*time.Second, settings.ThemeSelection)
}

func TestLoadRejectsMalformedSequence(t *testing.T) {
	t.Setenv("REWARD_SEQUENCE", "4,x,2")
	cfg := Load()
	assert.Equal(t, Default().RewardSequence, cfg.RewardSequence)
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestLoadDotEnvKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("WIN_SCORE=9\nFAKE_VOTE_SECONDS=11\n"), 0o644))
	t.Setenv("WIN_SCORE", "7")
	t.Setenv("FAKE_VOTE_SECONDS", "")
	require.NoError(t, os.Unsetenv("FAKE_VOTE_SECONDS"))

	require.NoError(t, LoadDotEnv(path))
	t.Cleanup(func() { _ = os.Unsetenv("FAKE_VOTE_SECONDS") })

	cfg := Load()
	assert.Equal(t, 7, cfg.WinScore)
	assert.Equal(t, 11, cfg.FakeVoteSeconds)
}

func TestDBPool(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("DB_CONN_MAX_IDLE_SECONDS", "5")

	pool := Load().DBPool()
	assert.Equal(t, 20, pool.MaxOpenConns)
	assert.Equal(t, 10, pool.MaxIdleConns)
	assert.Equal(t, 5*time.Second, pool.ConnMaxIdleTime)
	assert.Equal(t, 5*time.Minute, pool.ConnMaxLifetime)
}
