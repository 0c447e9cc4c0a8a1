package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProjectConfigNames lists the project config file names in lookup order.
var ProjectConfigNames = []string{".codesift.yaml", ".codesift.yml"}

// Config represents the complete codesift configuration.
type Config struct {
	Version int          `yaml:"version" json:"version"`
	Index   IndexConfig  `yaml:"index" json:"index"`
	Search  SearchConfig `yaml:"search" json:"search"`
	Server  ServerConfig `yaml:"server" json:"server"`
}

// IndexConfig configures file collection and the ranking index.
type IndexConfig struct {
	// ExtraExtensions are accepted in addition to the built-in allow-list.
	ExtraExtensions []string `yaml:"extra_extensions" json:"extra_extensions"`

	// ExtraSkipDirs are pruned in addition to the built-in deny-list.
	ExtraSkipDirs []string `yaml:"extra_skip_dirs" json:"extra_skip_dirs"`

	// MaxFileSize is the largest file read, in bytes. Larger files are skipped.
	MaxFileSize int64 `yaml:"max_file_size" json:"max_file_size"`

	// ReadWorkers bounds concurrent file reads during build_index.
	ReadWorkers int `yaml:"read_workers" json:"read_workers"`

	// SplitIdentifiers also indexes the snake_case and camelCase parts of identifiers.
	SplitIdentifiers bool `yaml:"split_identifiers" json:"split_identifiers"`

	// VectorCacheSize is the number of per-document tf-idf vectors kept in memory.
	VectorCacheSize int `yaml:"vector_cache_size" json:"vector_cache_size"`
}

// SearchConfig configures result shaping.
type SearchConfig struct {
	DefaultLimit   int `yaml:"default_limit" json:"default_limit"`
	MaxLimit       int `yaml:"max_limit" json:"max_limit"`
	SnippetChars   int `yaml:"snippet_chars" json:"snippet_chars"`
	ScorePrecision int `yaml:"score_precision" json:"score_precision"`
}

// ServerConfig configures the stdio server process.
type ServerConfig struct {
	LogLevel string `yaml:"log_level" json:"log_level"`

	// LogFile is an optional rotating log file. Empty logs to stderr only.
	LogFile string `yaml:"log_file" json:"log_file"`
}

// NewConfig returns a configuration with all defaults applied.
func NewConfig() *Config {
	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}

	return &Config{
		Version: 1,
		Index: IndexConfig{
			ExtraExtensions:  []string{},
			ExtraSkipDirs:    []string{},
			MaxFileSize:      10 * 1024 * 1024,
			ReadWorkers:      workers,
			SplitIdentifiers: true,
			VectorCacheSize:  4096,
		},
		Search: SearchConfig{
			DefaultLimit:   5,
			MaxLimit:       100,
			SnippetChars:   200,
			ScorePrecision: 4,
		},
		Server: ServerConfig{
			LogLevel: "info",
		},
	}
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/codesift/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/codesift/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "codesift", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "codesift", "config.yaml")
	}
	return filepath.Join(home, ".config", "codesift", "config.yaml")
}

// Load loads configuration for the given working directory.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/codesift/config.yaml)
//  3. Project config (.codesift.yaml in dir)
//  4. Environment variables (CODESIFT_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userPath := GetUserConfigPath(); fileExists(userPath) {
		if err := cfg.loadYAML(userPath); err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
	}

	if projectPath := FindProjectConfig(dir); projectPath != "" {
		if err := cfg.loadYAML(projectPath); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// FindProjectConfig returns the project config file in dir, or "" if there is none.
// .codesift.yaml takes precedence over .codesift.yml.
func FindProjectConfig(dir string) string {
	for _, name := range ProjectConfigNames {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// loadYAML decodes a YAML file on top of the current values.
// Keys absent from the file keep their current value, so explicit false and 0 survive.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies CODESIFT_* environment variables.
// Malformed numeric or boolean values are reported rather than ignored.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("CODESIFT_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("CODESIFT_LOG_FILE"); v != "" {
		c.Server.LogFile = v
	}
	if v := os.Getenv("CODESIFT_DEFAULT_LIMIT"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("CODESIFT_DEFAULT_LIMIT: %w", err)
		}
		c.Search.DefaultLimit = n
	}
	if v := os.Getenv("CODESIFT_READ_WORKERS"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("CODESIFT_READ_WORKERS: %w", err)
		}
		c.Index.ReadWorkers = n
	}
	if v := os.Getenv("CODESIFT_SPLIT_IDENTIFIERS"); v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("CODESIFT_SPLIT_IDENTIFIERS: %w", err)
		}
		c.Index.SplitIdentifiers = b
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Index.MaxFileSize <= 0 {
		return fmt.Errorf("index.max_file_size must be positive, got %d", c.Index.MaxFileSize)
	}
	if c.Index.ReadWorkers <= 0 {
		return fmt.Errorf("index.read_workers must be positive, got %d", c.Index.ReadWorkers)
	}
	if c.Index.VectorCacheSize <= 0 {
		return fmt.Errorf("index.vector_cache_size must be positive, got %d", c.Index.VectorCacheSize)
	}

	if c.Search.MaxLimit <= 0 {
		return fmt.Errorf("search.max_limit must be positive, got %d", c.Search.MaxLimit)
	}
	if c.Search.DefaultLimit <= 0 || c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf("search.default_limit must be between 1 and max_limit (%d), got %d",
			c.Search.MaxLimit, c.Search.DefaultLimit)
	}
	if c.Search.SnippetChars <= 0 {
		return fmt.Errorf("search.snippet_chars must be positive, got %d", c.Search.SnippetChars)
	}
	if c.Search.ScorePrecision < 0 || c.Search.ScorePrecision > 15 {
		return fmt.Errorf("search.score_precision must be between 0 and 15, got %d", c.Search.ScorePrecision)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return fmt.Errorf("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file, creating parent directories.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
