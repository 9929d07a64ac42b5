package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the medrag API configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Redis   RedisConfig   `yaml:"redis"`
	SQL     SQLConfig     `yaml:"sql"`
	OpenAI  OpenAIConfig  `yaml:"openai"`
	Retry   RetryConfig   `yaml:"retry"`
	Index   IndexConfig   `yaml:"index"`
	Storage StorageConfig `yaml:"storage"`
	Seed    SeedConfig    `yaml:"seed"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// RedisConfig holds settings for the vector index and summary cache store.
type RedisConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SQLConfig holds relational document store settings.
type SQLConfig struct {
	Path string `yaml:"path"` // SQLite database file, ":memory:" for ephemeral
}

// OpenAIConfig holds provider settings shared by embedding and extraction.
type OpenAIConfig struct {
	APIKey     string           `yaml:"api_key"`
	BaseURL    string           `yaml:"base_url"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Extraction ExtractionConfig `yaml:"extraction"`
}

// EmbeddingConfig holds embedding model settings.
type EmbeddingConfig struct {
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// ExtractionConfig holds structured extraction model settings.
type ExtractionConfig struct {
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
}

// RetryConfig holds the provider retry policy settings.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	BaseDelayMS int `yaml:"base_delay_ms"`
}

// IndexConfig holds vector index settings.
type IndexConfig struct {
	DefaultTopK int `yaml:"default_top_k"`
	MaxTopK     int `yaml:"max_top_k"`
}

// StorageConfig holds key namespace settings for the redis store.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// SeedConfig holds document seeding settings.
type SeedConfig struct {
	NotesDir string `yaml:"notes_dir"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Extraction round-trips to the model can take a while.
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Redis.ReadinessTimeout <= 0 {
		c.Redis.ReadinessTimeout = 10
	}
	if c.SQL.Path == "" {
		c.SQL.Path = "medrag.db"
	}
	if c.OpenAI.Embedding.Model == "" {
		c.OpenAI.Embedding.Model = "text-embedding-3-small"
	}
	if c.OpenAI.Embedding.Dimensions <= 0 {
		c.OpenAI.Embedding.Dimensions = 1536
	}
	if c.OpenAI.Extraction.Model == "" {
		c.OpenAI.Extraction.Model = "gpt-4o"
	}
	if c.OpenAI.Extraction.Temperature <= 0 {
		c.OpenAI.Extraction.Temperature = 0.2
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.BaseDelayMS <= 0 {
		c.Retry.BaseDelayMS = 500
	}
	if c.Index.DefaultTopK <= 0 {
		c.Index.DefaultTopK = 3
	}
	if c.Index.MaxTopK <= 0 {
		c.Index.MaxTopK = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "medrag:"
	}
	if c.Seed.NotesDir == "" {
		c.Seed.NotesDir = "notes"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Redis.Addrs) == 0 {
		return fmt.Errorf("redis.addrs is required")
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required")
	}
	if c.Index.DefaultTopK > c.Index.MaxTopK {
		return fmt.Errorf(
			"index.default_top_k (%d) must not exceed index.max_top_k (%d)",
			c.Index.DefaultTopK, c.Index.MaxTopK,
		)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
