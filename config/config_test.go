package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/pipeline"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 20, cfg.Recommend.NumRecommendations)
	assert.Equal(t, 0.3, cfg.Recommend.DiversityFactor)
	assert.Equal(t, 10, cfg.Recommend.NeighborsPerFilm)
	assert.Equal(t, 2*time.Second, cfg.Recommend.SourceTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)

	var rc core.RecommendConfig = cfg.Recommend
	assert.Equal(t, 10, rc.DefaultMaxSeedFilms())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filmtaste.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  backend: sqlite
  sqlite_path: /tmp/films.db
recommend:
  num_recommendations: 5
  source_timeout: 500ms
logging:
  level: debug
`), 0o600))

	t.Setenv("FILMTASTE_RECOMMEND_DIVERSITY_FACTOR", "0.8")
	t.Setenv("FILMTASTE_STORE_CACHE_TTL", "60")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "/tmp/films.db", cfg.Store.SQLitePath)
	assert.Equal(t, 5, cfg.Recommend.NumRecommendations)
	assert.Equal(t, 500*time.Millisecond, cfg.Recommend.SourceTimeout)
	assert.Equal(t, 0.8, cfg.Recommend.DiversityFactor)
	assert.Equal(t, 60, cfg.Store.CacheTTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// 未覆盖的默认值保留
	assert.Equal(t, 10, cfg.Recommend.MaxSeedFilms)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "unknown backend", mutate: func(c *Config) { c.Store.Backend = "mongo" }},
		{name: "sqlite without path", mutate: func(c *Config) { c.Store.Backend = "sqlite" }},
		{name: "redis without addr", mutate: func(c *Config) { c.Store.Backend = "redis" }},
		{name: "diversity out of range", mutate: func(c *Config) { c.Recommend.DiversityFactor = 1.5 }},
		{name: "zero recommendations", mutate: func(c *Config) { c.Recommend.NumRecommendations = 0 }},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "loud" }},
		{name: "bad scoring url", mutate: func(c *Config) { c.Collaborators.ScoringURL = "not a url" }},
	}
	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	assert.Equal(t, "store.sqlite_path", envTransformFunc("FILMTASTE_STORE_SQLITE_PATH"))
	assert.Equal(t, "recommend.max_seed_films", envTransformFunc("FILMTASTE_RECOMMEND_MAX_SEED_FILMS"))
	assert.Equal(t, "", envTransformFunc("FILMTASTE_CONFIG"))
}

func TestRegistry(t *testing.T) {
	Register("test.noop", func(map[string]any, *Resources) (pipeline.Node, error) {
		return &pipeline.NodeFunc{NodeName: "noop"}, nil
	})
	Register("", nil)
	assert.Contains(t, SupportedTypes(), "test.noop")

	cfg := &pipeline.Config{}
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{{Type: "test.noop"}}
	require.NoError(t, ValidatePipelineConfig(cfg))

	p, err := BuildPipeline(cfg, nil)
	require.NoError(t, err)
	assert.Len(t, p.Nodes, 1)

	cfg.Pipeline.Nodes = append(cfg.Pipeline.Nodes, pipeline.NodeConfig{Type: "rank.magic"})
	err = ValidatePipelineConfig(cfg)
	assert.ErrorContains(t, err, `unsupported node type "rank.magic"`)
	assert.NoError(t, ValidatePipelineConfig(nil))
}
