package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRepoConfig(t *testing.T) {
	t.Run("Valid config file", func(t *testing.T) {
		dir := t.TempDir()
		content := `focus_areas:
  - security
  - error handling
max_chunk_lines: 150
custom_instructions:
  - "Ignore generated files."
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".reviewkit.yml"), []byte(content), 0o600))

		cfg, err := LoadRepoConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"security", "error handling"}, cfg.FocusAreas)
		assert.Equal(t, 150, cfg.MaxChunkLines)
		assert.Equal(t, []string{"Ignore generated files."}, cfg.CustomInstructions)
	})

	t.Run("Missing file returns defaults", func(t *testing.T) {
		cfg, err := LoadRepoConfig(t.TempDir())
		assert.ErrorIs(t, err, ErrConfigNotFound)
		require.NotNil(t, cfg)
		assert.Empty(t, cfg.FocusAreas)
		assert.Zero(t, cfg.MaxChunkLines)
	})

	t.Run("Invalid yaml", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".reviewkit.yml"), []byte("focus_areas: [unclosed"), 0o600))

		_, err := LoadRepoConfig(dir)
		assert.ErrorIs(t, err, ErrConfigParsing)
	})
}

func TestConfigValidate(t *testing.T) {
	valid := Config{
		DefaultModel:  "default-model",
		FallbackModel: "cheap-model",
		MaxTokens:     4096,
		ChunkMaxLines: 200,
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "Valid config", mutate: func(*Config) {}, wantErr: false},
		{name: "Missing default model", mutate: func(c *Config) { c.DefaultModel = "" }, wantErr: true},
		{name: "Missing fallback model", mutate: func(c *Config) { c.FallbackModel = "" }, wantErr: true},
		{name: "Zero max tokens", mutate: func(c *Config) { c.MaxTokens = 0 }, wantErr: true},
		{name: "Negative chunk lines", mutate: func(c *Config) { c.ChunkMaxLines = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := cfg.validate(); (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
