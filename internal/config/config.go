// Package config loads server settings from environment variables and an
// optional config.yaml, using viper.
//
// Every key can be set through the environment by its upper-case name
// (db_path → DB_PATH). Environment values win over the file, and the file
// wins over defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sakif/recipe-api/internal/storage"
)

// MinSecretLength is the shortest accepted JWT_SECRET.
const MinSecretLength = 16

type Config struct {
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
	DBPath   string `mapstructure:"db_path"`

	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`

	MediaRoot      string `mapstructure:"media_root"`
	MediaURL       string `mapstructure:"media_url"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
	StorageDriver  string `mapstructure:"storage_driver"`

	S3Bucket   string `mapstructure:"s3_bucket"`
	S3Region   string `mapstructure:"s3_region"`
	S3Key      string `mapstructure:"s3_key"`
	S3Secret   string `mapstructure:"s3_secret"`
	S3Endpoint string `mapstructure:"s3_endpoint"`
	S3URL      string `mapstructure:"s3_url"`

	GitHubClientID     string `mapstructure:"github_client_id"`
	GitHubClientSecret string `mapstructure:"github_client_secret"`
	GitHubCallbackURL  string `mapstructure:"github_callback_url"`
}

var defaults = map[string]any{
	"port":      8080,
	"log_level": "info",
	"db_path":   "data/recipes.db",

	"jwt_secret": "",
	"token_ttl":  "24h",

	"media_root":       "media",
	"media_url":        "/media",
	"max_upload_bytes": 10 << 20,
	"storage_driver":   "local",

	"s3_bucket":   "",
	"s3_region":   "us-east-1",
	"s3_key":      "",
	"s3_secret":   "",
	"s3_endpoint": "",
	"s3_url":      "",

	"github_client_id":     "",
	"github_client_secret": "",
	"github_callback_url":  "",
}

// Load reads configuration. configFile may name a YAML file explicitly;
// when empty, config.yaml is looked up in . and ./config and is optional.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only applies to keys viper already knows, so every key
	// gets a default, even an empty one.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}

	if cfg.GitHubCallbackURL == "" {
		cfg.GitHubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port)
	}

	return &cfg, nil
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid PORT %d", c.Port)
	}
	if len(c.JWTSecret) < MinSecretLength {
		return fmt.Errorf("config: JWT_SECRET must be at least %d characters", MinSecretLength)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("config: MAX_UPLOAD_BYTES must be positive")
	}
	switch strings.ToLower(c.StorageDriver) {
	case "local":
		if c.MediaRoot == "" {
			return fmt.Errorf("config: MEDIA_ROOT is required for the local storage driver")
		}
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("config: S3_BUCKET is required for the s3 storage driver")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	return nil
}

// GitHubEnabled reports whether GitHub sign-in is configured.
func (c *Config) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// SlogLevel maps LOG_LEVEL to a slog level. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Driver:    c.StorageDriver,
		LocalRoot: c.MediaRoot,
		LocalURL:  c.MediaURL,
		S3: storage.S3Options{
			Bucket:   c.S3Bucket,
			Region:   c.S3Region,
			Key:      c.S3Key,
			Secret:   c.S3Secret,
			Endpoint: c.S3Endpoint,
			BaseURL:  c.S3URL,
		},
	}
}
