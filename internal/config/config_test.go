package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillbridge/learnmatch/internal/apperr"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "data/learnmatch.db", cfg.Storage.SQLitePath)
	assert.Equal(t, 200, cfg.Ranking.FetchCap)
	assert.Equal(t, 5, cfg.Ranking.DefaultLimit)
	assert.Equal(t, 0.4, cfg.Weights.SkillMatch)
	assert.Equal(t, 0.1, cfg.Weights.Compensation)
}

func TestLoadFileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  address: ":9090"
weights:
  skill_match: 0.5
  education: 0.2
  location: 0.2
  compensation: 0.1
`), 0o644))
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 0.5, cfg.Weights.SkillMatch)
	assert.Equal(t, 0.2, cfg.Weights.Education)
	assert.Equal(t, "data/learnmatch.db", cfg.Storage.SQLitePath, "untouched keys keep their defaults")
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LEARNMATCH_SERVER_ADDRESS", ":7070")
	t.Setenv("LEARNMATCH_RANKING_FETCH_CAP", "50")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.Equal(t, 50, cfg.Ranking.FetchCap)
}

func TestLoadRejectsBadWeights(t *testing.T) {
	t.Setenv("LEARNMATCH_WEIGHTS_SKILL_MATCH", "-0.5")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidConfig(err))
}
