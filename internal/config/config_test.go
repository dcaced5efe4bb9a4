package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"CIVICSIM_SEED", "CIVICSIM_ADMIN_KEY", "ANTHROPIC_API_KEY", "CIVICSIM_DB", "CORS_ORIGINS", "PORT"} {
		t.Setenv(k, "")
	}
}

func TestLoadWritesDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	path := filepath.Join("conf", "civicsim.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.FileExists(t, path)

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadReadsYAML(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("c.yaml", []byte(`
campaign:
  seed: 99
  country: DEU
  player_runs_for_mayor: true
engine:
  month_interval: 2s
server:
  port: 9000
`), 0o644))

	cfg, err := Load("c.yaml")
	require.NoError(t, err)
	assert.Equal(t, int64(99), cfg.Campaign.Seed)
	assert.Equal(t, "DEU", cfg.Campaign.Country)
	assert.True(t, cfg.Campaign.PlayerRunsForMayor)
	assert.Equal(t, 2*time.Second, cfg.MonthDuration())
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "data/civicsim.db", cfg.Database.Path, "unset keys keep defaults")
	require.NoError(t, cfg.Validate())
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("CIVICSIM_SEED", "7")
	t.Setenv("CIVICSIM_ADMIN_KEY", "secret")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("CIVICSIM_DB", "/tmp/x.db")

	cfg, err := Load("c.yaml")
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Campaign.Seed)
	assert.Equal(t, "secret", cfg.Server.AdminKey)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "/tmp/x.db", cfg.Database.Path)

	t.Setenv("CIVICSIM_SEED", "seven")
	_, err = Load("c.yaml")
	assert.Error(t, err)
}

func TestDotEnvIsLoaded(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	os.Unsetenv("CIVICSIM_ADMIN_KEY")
	require.NoError(t, os.WriteFile(".env", []byte("CIVICSIM_ADMIN_KEY=from-dotenv\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("CIVICSIM_ADMIN_KEY") })

	cfg, err := Load("c.yaml")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Server.AdminKey)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Campaign.StartDate = "next tuesday"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Engine.MonthInterval = "soon"
	assert.Equal(t, 10*time.Second, cfg.MonthDuration())
}

func TestOrigins(t *testing.T) {
	cfg := DefaultConfig()
	assert.Empty(t, cfg.Origins())

	cfg.Server.CORSOrigins = "https://a.example.com, ,https://b.example.com "
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Origins())
}
