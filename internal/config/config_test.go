package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aventuro.yaml")
	err := os.WriteFile(path, []byte(`
logging:
  level: debug
  format: json
game:
  save_dir: /tmp/ludoj
  seed: 42
ui:
  plain: true
  wrap_width: 60
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/tmp/ludoj", cfg.Game.SaveDir)
	assert.Equal(t, int64(42), cfg.Game.Seed)
	assert.Equal(t, 100, cfg.Game.MaxCarryWeight)
	assert.True(t, cfg.UI.Plain)
	assert.Equal(t, 60, cfg.UI.WrapWidth)
	assert.False(t, cfg.UI.Trace)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("AVENTURO_GAME_SEED", "7")
	t.Setenv("AVENTURO_UI_TRACE", "true")
	t.Setenv("AVENTURO_LOGGING_LEVEL", "error")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Game.Seed)
	assert.True(t, cfg.UI.Trace)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoad_InvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/aventuro.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aventuro.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: trace\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"save dir", func(c *Config) { c.Game.SaveDir = "" }, "game.save_dir"},
		{"seed", func(c *Config) { c.Game.Seed = -1 }, "game.seed"},
		{"carry weight", func(c *Config) { c.Game.MaxCarryWeight = 0 }, "game.max_carry_weight"},
		{"wrap width", func(c *Config) { c.UI.WrapWidth = 5 }, "ui.wrap_width"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_ReportsAll(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "xml"
	cfg.Game.MaxCarryWeight = -3
	cfg.UI.WrapWidth = 1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.format")
	assert.Contains(t, err.Error(), "game.max_carry_weight")
	assert.Contains(t, err.Error(), "ui.wrap_width")
}

func TestPropertyWrapWidth(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		w := rapid.IntRange(-100, 500).Draw(t, "wrap_width")
		cfg := Default()
		cfg.UI.WrapWidth = w
		err := cfg.Validate()
		valid := w == 0 || w >= MinWrapWidth
		if valid && err != nil {
			t.Fatalf("valid width %d rejected: %v", w, err)
		}
		if !valid && err == nil {
			t.Fatalf("invalid width %d accepted", w)
		}
	})
}
