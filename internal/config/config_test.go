package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetGlobals() {
	cfg = nil
	v = nil
}

func TestInit(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")

	configContent := `
game:
  map:
    width: 22
    height: 13
  spawn:
    interval: 5
    count: 2
  units:
    soldier:
      health: 4
server:
  match_server:
    port: 8080
`

	err := os.WriteFile(configFile, []byte(configContent), 0644)
	require.NoError(t, err)

	resetGlobals()
	err = Init(configFile)
	require.NoError(t, err)

	c := Get()
	assert.Equal(t, 22, c.Game.Map.Width)
	assert.Equal(t, 13, c.Game.Map.Height)
	assert.Equal(t, 5, c.Game.Spawn.Interval)
	assert.Equal(t, 2, c.Game.Spawn.Count)
	assert.Equal(t, 4, c.Game.Units.Soldier.Health)
	// untouched keys keep their defaults
	assert.Equal(t, 2, c.Game.Units.Soldier.Vision)
	assert.Equal(t, 8080, c.Server.MatchServer.Port)
}

func TestInitWithDefaults(t *testing.T) {
	resetGlobals()

	err := Init("/non/existent/path/config.yaml")
	require.NoError(t, err)

	c := Get()
	require.NotNil(t, c)
	assert.Equal(t, 36, c.Game.Map.Width)
	assert.Equal(t, 21, c.Game.Map.Height)
	assert.Equal(t, 7, c.Game.Map.RatioX)
	assert.Equal(t, 4, c.Game.Map.RatioY)
	assert.Equal(t, 10, c.Game.Spawn.Interval)
	assert.Equal(t, 3, c.Game.Spawn.Count)
	assert.Equal(t, 1, c.Game.ActionPoints)
	assert.Equal(t, UnitStatsConfig{Health: 100, Vision: 2, Hit: 1, Attack: 5}, c.Game.Units.Tower)
	assert.Equal(t, UnitStatsConfig{Health: 150, Vision: 3, Hit: 1, Attack: 5}, c.Game.Units.Fort)
	assert.Equal(t, UnitStatsConfig{Health: 3, Vision: 2, Hit: 1, Attack: 1}, c.Game.Units.Soldier)
	assert.Equal(t, "none", c.Replay.Type)
	assert.Equal(t, "replays", c.Replay.BaseDir)
	assert.False(t, c.Server.Spectator.Enabled)
	assert.Equal(t, 8080, c.Server.Spectator.Port)
	assert.Equal(t, int64(0), c.Server.Game.Seed)
}

func TestEnvironmentVariables(t *testing.T) {
	resetGlobals()

	t.Setenv("MOBAI_GAME_SPAWN_INTERVAL", "7")
	t.Setenv("MOBAI_SERVER_MATCH_SERVER_PORT", "9090")

	err := Init("")
	require.NoError(t, err)

	c := Get()
	assert.Equal(t, 7, c.Game.Spawn.Interval)
	assert.Equal(t, 9090, c.Server.MatchServer.Port)
}

func TestInit_InvalidConfig_ReturnsError(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "width not divisible by ratio",
			content: "game:\n  map:\n    width: 30\n",
		},
		{
			name:    "odd width",
			content: "game:\n  map:\n    width: 15\n",
		},
		{
			name:    "zero spawn interval",
			content: "game:\n  spawn:\n    interval: 0\n",
		},
		{
			name:    "non-positive health",
			content: "game:\n  units:\n    tower:\n      health: 0\n",
		},
		{
			name:    "unknown replay type",
			content: "replay:\n  type: s3\n",
		},
		{
			name:    "file replay without directory",
			content: "replay:\n  type: file\n  base_dir: \"\"\n",
		},
		{
			name:    "port out of range",
			content: "server:\n  match_server:\n    port: 70000\n",
		},
		{
			name:    "enabled spectator without port",
			content: "server:\n  spectator:\n    enabled: true\n    port: 0\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(configFile, []byte(tt.content), 0644))

			resetGlobals()
			err := Init(configFile)
			assert.Error(t, err)
		})
	}
}

func TestSet(t *testing.T) {
	resetGlobals()

	err := Init("")
	require.NoError(t, err)

	Set("game.spawn.count", 5)
	Set("server.match_server.max_matches", 3)

	c := Get()
	assert.Equal(t, 5, c.Game.Spawn.Count)
	assert.Equal(t, 3, c.Server.MatchServer.MaxMatches)
}

func TestGetHelpers(t *testing.T) {
	resetGlobals()

	err := Init("")
	require.NoError(t, err)

	Set("test.string", "hello")
	Set("test.int", 42)
	Set("test.bool", true)

	assert.Equal(t, "hello", GetString("test.string"))
	assert.Equal(t, 42, GetInt("test.int"))
	assert.Equal(t, true, GetBool("test.bool"))
}

func TestLoadEnvironmentConfig(t *testing.T) {
	tmpDir := t.TempDir()

	baseConfig := filepath.Join(tmpDir, "config.yaml")
	baseContent := `
game:
  spawn:
    interval: 10
server:
  match_server:
    port: 50051
`
	err := os.WriteFile(baseConfig, []byte(baseContent), 0644)
	require.NoError(t, err)

	envConfig := filepath.Join(tmpDir, "config.prod.yaml")
	envContent := `
game:
  spawn:
    interval: 20
server:
  match_server:
    port: 8080
    log_level: "error"
`
	err = os.WriteFile(envConfig, []byte(envContent), 0644)
	require.NoError(t, err)

	oldWd, _ := os.Getwd()
	_ = os.Chdir(tmpDir)
	defer func() { _ = os.Chdir(oldWd) }()

	resetGlobals()
	err = Init(baseConfig)
	require.NoError(t, err)

	err = LoadEnvironmentConfig("prod")
	require.NoError(t, err)

	c := Get()
	assert.Equal(t, 20, c.Game.Spawn.Interval)
	assert.Equal(t, 8080, c.Server.MatchServer.Port)
	assert.Equal(t, "error", c.Server.MatchServer.LogLevel)
}

func TestLoadEnvironmentConfig_MissingOverlay(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, Init(""))
	assert.NoError(t, LoadEnvironmentConfig("staging"))
	assert.Equal(t, 10, Get().Game.Spawn.Interval)
}
