package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperengineering/lexicon/internal/engine"
	"github.com/hyperengineering/lexicon/internal/types"
)

// Config is the root configuration structure.
// It is read-only after Load() returns and thread-safe for concurrent reads.
type Config struct {
	Vault  VaultConfig  `yaml:"vault"`
	Paths  PathsConfig  `yaml:"paths"`
	Sync   SyncConfig   `yaml:"sync"`
	Server ServerConfig `yaml:"server"`
	Auth   AuthConfig   `yaml:"auth"`
	Log    LogConfig    `yaml:"log"`
	Backup BackupConfig `yaml:"backup"`
}

// VaultConfig locates the notes folder all paths are relative to.
type VaultConfig struct {
	Root string `yaml:"root"`
}

// PathsConfig contains vault-relative file locations.
type PathsConfig struct {
	MarkdownFolder string `yaml:"markdown_folder"`
	AssetsFolder   string `yaml:"assets_folder"`
	Document       string `yaml:"document"`
	StoreFile      string `yaml:"store_file"`
	DictionaryFile string `yaml:"dictionary_file"`
}

// SyncConfig contains sync behaviour settings.
type SyncConfig struct {
	SortOrder          string `yaml:"sort_order"`
	DictionaryOptional bool   `yaml:"dictionary_optional"`
	// Schedule is a cron expression for syncs run by the server. Empty
	// disables scheduled syncs.
	Schedule string `yaml:"schedule"`
	Timezone string `yaml:"timezone"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	APIKey string `yaml:"-"` // env-only, never in YAML
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// BackupConfig contains S3-compatible backup storage settings.
// An empty bucket disables backups.
type BackupConfig struct {
	Bucket    string   `yaml:"bucket"`
	Endpoint  string   `yaml:"endpoint"`
	Region    string   `yaml:"region"`
	UseSSL    *bool    `yaml:"use_ssl"`
	Prefix    string   `yaml:"prefix"`
	AccessKey string   `yaml:"-"` // env-only
	SecretKey string   `yaml:"-"` // env-only
	URLExpiry Duration `yaml:"url_expiry"`
}

// Duration is a wrapper around time.Duration that supports YAML string parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Load loads configuration with precedence: defaults → YAML file → env vars.
// Returns an immutable Config suitable for concurrent read access.
func Load() (*Config, error) {
	cfg := newDefaults()

	configPath := getEnv("LEXICON_CONFIG_PATH", "config/lexicon.yaml")

	// Missing file is not an error
	if err := loadYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific path.
// Used by the --config flag and in tests.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newDefaults returns a Config with all default values.
func newDefaults() *Config {
	defaults := engine.DefaultSettings()
	return &Config{
		Vault: VaultConfig{
			Root: ".",
		},
		Paths: PathsConfig{
			MarkdownFolder: defaults.MarkdownFolder,
			AssetsFolder:   defaults.AssetsFolder,
			Document:       defaults.DocumentName,
			StoreFile:      defaults.StoreFile,
			DictionaryFile: defaults.DictionaryFile,
		},
		Sync: SyncConfig{
			SortOrder: string(defaults.SortOrder),
			Timezone:  "UTC",
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Backup: BackupConfig{
			Prefix:    "lexicon",
			URLExpiry: Duration(15 * time.Minute),
		},
	}
}

// loadYAMLFile loads configuration from a YAML file if it exists.
// Missing file is not an error; we just use defaults.
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Only non-empty env vars override config values.
func applyEnvOverrides(cfg *Config) {
	// Vault and paths
	if v := os.Getenv("LEXICON_VAULT_ROOT"); v != "" {
		cfg.Vault.Root = v
	}
	if v := os.Getenv("LEXICON_MARKDOWN_FOLDER"); v != "" {
		cfg.Paths.MarkdownFolder = v
	}
	if v := os.Getenv("LEXICON_ASSETS_FOLDER"); v != "" {
		cfg.Paths.AssetsFolder = v
	}

	// Sync
	if v := os.Getenv("LEXICON_SORT_ORDER"); v != "" {
		cfg.Sync.SortOrder = v
	}
	if v := os.Getenv("LEXICON_DICTIONARY_OPTIONAL"); v != "" {
		cfg.Sync.DictionaryOptional = v == "true" || v == "1"
	}
	if v := os.Getenv("LEXICON_SYNC_SCHEDULE"); v != "" {
		cfg.Sync.Schedule = v
	}
	if v := os.Getenv("LEXICON_TIMEZONE"); v != "" {
		cfg.Sync.Timezone = v
	}

	// Server
	if v := os.Getenv("LEXICON_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LEXICON_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = Duration(d)
		}
	}
	if v := os.Getenv("LEXICON_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = Duration(d)
		}
	}
	if v := os.Getenv("LEXICON_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ShutdownTimeout = Duration(d)
		}
	}

	// Auth
	if v := os.Getenv("LEXICON_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}

	// Log
	if v := os.Getenv("LEXICON_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LEXICON_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	// Backup
	if v := os.Getenv("LEXICON_BACKUP_BUCKET"); v != "" {
		cfg.Backup.Bucket = v
	}
	if v := os.Getenv("LEXICON_S3_ENDPOINT"); v != "" {
		cfg.Backup.Endpoint = v
	}
	if v := os.Getenv("LEXICON_S3_REGION"); v != "" {
		cfg.Backup.Region = v
	}
	if v := os.Getenv("LEXICON_S3_ACCESS_KEY"); v != "" {
		cfg.Backup.AccessKey = v
	}
	if v := os.Getenv("LEXICON_S3_SECRET_KEY"); v != "" {
		cfg.Backup.SecretKey = v
	}
	if v := os.Getenv("LEXICON_S3_USE_SSL"); v != "" {
		useSSL := v == "true" || v == "1"
		cfg.Backup.UseSSL = &useSSL
	}
	if v := os.Getenv("LEXICON_S3_URL_EXPIRY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Backup.URLExpiry = Duration(d)
		}
	}
}

// validate checks that configuration values are usable.
func (c *Config) validate() error {
	if strings.TrimSpace(c.Vault.Root) == "" {
		return errors.New("vault.root is required")
	}
	if c.Paths.Document == "" || c.Paths.StoreFile == "" || c.Paths.DictionaryFile == "" {
		return errors.New("paths.document, paths.store_file and paths.dictionary_file are required")
	}
	if _, err := types.ParseSortOrder(c.Sync.SortOrder); err != nil {
		return fmt.Errorf("sync.sort_order: %w", err)
	}
	if _, err := time.LoadLocation(c.Sync.Timezone); err != nil {
		return fmt.Errorf("sync.timezone: %w", err)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format %q: must be json or text", c.Log.Format)
	}
	if c.Backup.Bucket != "" && c.Backup.Endpoint == "" {
		return errors.New("backup.endpoint is required when backup.bucket is set")
	}
	return nil
}

// ValidateServe checks the settings only the HTTP server needs.
// In dev mode (LEXICON_DEV_MODE=true), API key validation is skipped.
func (c *Config) ValidateServe() error {
	if os.Getenv("LEXICON_DEV_MODE") == "true" {
		return nil
	}
	if c.Auth.APIKey == "" {
		return errors.New("LEXICON_API_KEY is required")
	}
	return nil
}

// Settings returns the engine settings described by the configuration.
func (c *Config) Settings() engine.Settings {
	order, err := types.ParseSortOrder(c.Sync.SortOrder)
	if err != nil {
		order = types.SortTimestamp
	}
	return engine.Settings{
		SortOrder:          order,
		MarkdownFolder:     c.Paths.MarkdownFolder,
		AssetsFolder:       c.Paths.AssetsFolder,
		DocumentName:       c.Paths.Document,
		StoreFile:          c.Paths.StoreFile,
		DictionaryFile:     c.Paths.DictionaryFile,
		DictionaryOptional: c.Sync.DictionaryOptional,
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
