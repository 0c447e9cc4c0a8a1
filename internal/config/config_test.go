package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the user config at an empty directory and clears env overrides.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, key := range []string{
		"CODESIFT_LOG_LEVEL",
		"CODESIFT_LOG_FILE",
		"CODESIFT_DEFAULT_LIMIT",
		"CODESIFT_READ_WORKERS",
		"CODESIFT_SPLIT_IDENTIFIERS",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewConfig_ReturnsDefaults(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, 1, cfg.Version)

	assert.Empty(t, cfg.Index.ExtraExtensions)
	assert.Empty(t, cfg.Index.ExtraSkipDirs)
	assert.Equal(t, int64(10*1024*1024), cfg.Index.MaxFileSize)
	assert.Equal(t, min(runtime.NumCPU(), 8), cfg.Index.ReadWorkers)
	assert.True(t, cfg.Index.SplitIdentifiers)
	assert.Equal(t, 4096, cfg.Index.VectorCacheSize)

	assert.Equal(t, 5, cfg.Search.DefaultLimit)
	assert.Equal(t, 100, cfg.Search.MaxLimit)
	assert.Equal(t, 200, cfg.Search.SnippetChars)
	assert.Equal(t, 4, cfg.Search.ScorePrecision)

	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Empty(t, cfg.Server.LogFile)

	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoFilesUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), cfg)
}

func TestLoad_ProjectConfigOverridesDefaults(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".codesift.yaml"), `
index:
  extra_extensions: [".rb", "proto"]
  extra_skip_dirs: ["generated"]
  split_identifiers: false
search:
  default_limit: 10
  snippet_chars: 80
server:
  log_level: debug
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{".rb", "proto"}, cfg.Index.ExtraExtensions)
	assert.Equal(t, []string{"generated"}, cfg.Index.ExtraSkipDirs)
	assert.False(t, cfg.Index.SplitIdentifiers, "explicit false must survive the merge")
	assert.Equal(t, 10, cfg.Search.DefaultLimit)
	assert.Equal(t, 80, cfg.Search.SnippetChars)
	assert.Equal(t, 100, cfg.Search.MaxLimit, "untouched keys keep defaults")
	assert.Equal(t, "debug", cfg.Server.LogLevel)
}

func TestLoad_YAMLTakesPrecedenceOverYML(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".codesift.yml"), "search:\n  default_limit: 7\n")
	assert.Equal(t, filepath.Join(dir, ".codesift.yml"), FindProjectConfig(dir))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Search.DefaultLimit)

	writeFile(t, filepath.Join(dir, ".codesift.yaml"), "search:\n  default_limit: 9\n")
	cfg, err = Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Search.DefaultLimit)
}

func TestLoad_Layering(t *testing.T) {
	isolate(t)
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	assert.Equal(t, filepath.Join(xdg, "codesift", "config.yaml"), GetUserConfigPath())

	writeFile(t, GetUserConfigPath(), `
search:
  default_limit: 3
  snippet_chars: 50
server:
  log_level: warn
`)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".codesift.yaml"), "search:\n  default_limit: 8\n")
	t.Setenv("CODESIFT_LOG_LEVEL", "error")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Search.DefaultLimit, "project beats user")
	assert.Equal(t, 50, cfg.Search.SnippetChars, "user beats default")
	assert.Equal(t, "error", cfg.Server.LogLevel, "env beats everything")
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("CODESIFT_LOG_FILE", "/tmp/codesift.log")
	t.Setenv("CODESIFT_DEFAULT_LIMIT", "12")
	t.Setenv("CODESIFT_READ_WORKERS", " 2 ")
	t.Setenv("CODESIFT_SPLIT_IDENTIFIERS", "false")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "/tmp/codesift.log", cfg.Server.LogFile)
	assert.Equal(t, 12, cfg.Search.DefaultLimit)
	assert.Equal(t, 2, cfg.Index.ReadWorkers)
	assert.False(t, cfg.Index.SplitIdentifiers)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantErr string
	}{
		{name: "malformed yaml", yaml: "search: [unclosed", wantErr: "failed to parse"},
		{name: "wrong type", yaml: "search:\n  default_limit: lots\n", wantErr: "failed to parse"},
		{name: "bad log level", yaml: "server:\n  log_level: loud\n", wantErr: "server.log_level"},
		{name: "default above max", yaml: "search:\n  default_limit: 500\n", wantErr: "search.default_limit"},
		{name: "bad env int", env: map[string]string{"CODESIFT_DEFAULT_LIMIT": "many"}, wantErr: "CODESIFT_DEFAULT_LIMIT"},
		{name: "bad env bool", env: map[string]string{"CODESIFT_SPLIT_IDENTIFIERS": "maybe"}, wantErr: "CODESIFT_SPLIT_IDENTIFIERS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			dir := t.TempDir()
			if tt.yaml != "" {
				writeFile(t, filepath.Join(dir, ".codesift.yaml"), tt.yaml)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "zero max file size", mutate: func(c *Config) { c.Index.MaxFileSize = 0 }, wantErr: "max_file_size"},
		{name: "zero workers", mutate: func(c *Config) { c.Index.ReadWorkers = 0 }, wantErr: "read_workers"},
		{name: "zero cache", mutate: func(c *Config) { c.Index.VectorCacheSize = 0 }, wantErr: "vector_cache_size"},
		{name: "zero max limit", mutate: func(c *Config) { c.Search.MaxLimit = 0 }, wantErr: "max_limit"},
		{name: "zero default limit", mutate: func(c *Config) { c.Search.DefaultLimit = 0 }, wantErr: "default_limit"},
		{name: "zero snippet", mutate: func(c *Config) { c.Search.SnippetChars = 0 }, wantErr: "snippet_chars"},
		{name: "negative precision", mutate: func(c *Config) { c.Search.ScorePrecision = -1 }, wantErr: "score_precision"},
		{name: "upper-case level is fine", mutate: func(c *Config) { c.Server.LogLevel = "DEBUG" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_WriteYAMLRoundTrip(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	cfg := NewConfig()
	cfg.Search.DefaultLimit = 20
	cfg.Index.ExtraSkipDirs = []string{"third_party"}

	path := filepath.Join(dir, ".codesift.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
