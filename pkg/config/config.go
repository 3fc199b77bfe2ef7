package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the Studydrive retriever
type Config struct {
	// Studydrive API settings
	Studydrive StudydriveConfig `yaml:"studydrive" json:"studydrive"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// StudydriveConfig holds Studydrive-specific configuration. The protocol
// header values identify the mobile client the private API expects.
type StudydriveConfig struct {
	BaseURL   string `yaml:"base_url" json:"base_url"`
	WarmupURL string `yaml:"warmup_url" json:"warmup_url"`
	Platform  string `yaml:"platform" json:"platform"`
	Build     string `yaml:"build" json:"build"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
	Email     string `yaml:"email" json:"email"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// DefaultRetryAfter is used when a 429 response carries no usable
	// retry-after header
	DefaultRetryAfter time.Duration `yaml:"default_retry_after" json:"default_retry_after"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	ChunkSize  int           `yaml:"chunk_size" json:"chunk_size"`
	APITimeout time.Duration `yaml:"api_timeout" json:"api_timeout"`
	PreferPDF  bool          `yaml:"prefer_pdf" json:"prefer_pdf"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Studydrive: StudydriveConfig{
			BaseURL:   "https://gateway.production-01.studydrive.net",
			WarmupURL: "https://www.studydrive.net/app-api-version",
			Platform:  "Android",
			Build:     "773",
			UserAgent: "Studydrive/3.18.1 (com.studydrive.app; build:2019; iOS 17.2.1) Alamofire/5.4.4",
		},
		RateLimit: RateLimitConfig{
			DefaultRetryAfter: 60 * time.Second,
		},
		Download: DownloadConfig{
			ChunkSize:  8192,
			APITimeout: 30 * time.Second,
			PreferPDF:  false,
		},
		Output: OutputConfig{
			BaseDirectory: ".",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if baseURL := os.Getenv("STUDYSNATCHER_BASE_URL"); baseURL != "" {
		c.Studydrive.BaseURL = baseURL
	}
	if email := os.Getenv("STUDYSNATCHER_EMAIL"); email != "" {
		c.Studydrive.Email = email
	}
	if outputDir := os.Getenv("STUDYSNATCHER_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if logLevel := os.Getenv("STUDYSNATCHER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if retryAfter := os.Getenv("STUDYSNATCHER_DEFAULT_RETRY_AFTER"); retryAfter != "" {
		if d, err := time.ParseDuration(retryAfter); err == nil && d > 0 {
			c.RateLimit.DefaultRetryAfter = d
		}
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".studysnatcher.yaml",
		".studysnatcher.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "studysnatcher", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "studysnatcher", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Studydrive.BaseURL == "" {
		errs = append(errs, errors.New("studydrive base URL is required"))
	}
	if c.Studydrive.UserAgent == "" {
		errs = append(errs, errors.New("user agent is required"))
	}
	if c.RateLimit.DefaultRetryAfter <= 0 {
		errs = append(errs, errors.New("default retry-after must be positive"))
	}
	if c.Download.ChunkSize <= 0 {
		errs = append(errs, errors.New("chunk size must be positive"))
	}
	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if email, ok := flags["email"].(string); ok && email != "" {
		c.Studydrive.Email = email
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if preferPDF, ok := flags["pdf"].(bool); ok {
		c.Download.PreferPDF = preferPDF
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: command line flags > environment variables > .env
// file > config file > defaults.
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".studysnatcher.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
