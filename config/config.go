// Package config loads the process-wide settings with layered precedence:
// built-in defaults, then an optional YAML file, then environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "STREAMWAVE_CONFIG"

// DefaultConfigPaths are searched in order when no override is set.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/streamwave/config.yaml",
}

// Settings is the full process configuration.
type Settings struct {
	Server ServerConfig `koanf:"server"`
	Data   DataConfig   `koanf:"data"`
	Auth   AuthConfig   `koanf:"auth"`
	Log    LogConfig    `koanf:"log"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	ListenAddr string `koanf:"listen_addr"`
}

// DataConfig locates the backing file for each entity kind.
type DataConfig struct {
	Dir           string `koanf:"dir"`
	UsersFile     string `koanf:"users_file"`
	MediaFile     string `koanf:"media_file"`
	PlaylistsFile string `koanf:"playlists_file"`
}

// AuthConfig holds the token signing parameters and hashing cost.
type AuthConfig struct {
	Secret          string `koanf:"secret"`
	Algorithm       string `koanf:"algorithm"`
	TokenTTLMinutes int    `koanf:"token_ttl_minutes"`
	BcryptCost      int    `koanf:"bcrypt_cost"`
}

// LogConfig controls structured log output. When File is set, output rotates
// via lumberjack instead of going to stderr.
type LogConfig struct {
	Level      string `koanf:"level"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
}

// UsersPath returns the principals backing file location.
func (s *Settings) UsersPath() string { return filepath.Join(s.Data.Dir, s.Data.UsersFile) }

// MediaPath returns the media backing file location.
func (s *Settings) MediaPath() string { return filepath.Join(s.Data.Dir, s.Data.MediaFile) }

// PlaylistsPath returns the playlists backing file location.
func (s *Settings) PlaylistsPath() string { return filepath.Join(s.Data.Dir, s.Data.PlaylistsFile) }

// TokenTTL returns the configured token lifetime.
func (s *Settings) TokenTTL() time.Duration {
	return time.Duration(s.Auth.TokenTTLMinutes) * time.Minute
}

func defaultSettings() *Settings {
	return &Settings{
		Server: ServerConfig{
			ListenAddr: ":8000",
		},
		Data: DataConfig{
			Dir:           "data",
			UsersFile:     "users.json",
			MediaFile:     "media.json",
			PlaylistsFile: "playlists.json",
		},
		Auth: AuthConfig{
			Algorithm:       "HS256",
			TokenTTLMinutes: 30,
			BcryptCost:      0, // 0 selects the bcrypt default cost
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  20,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// envVars maps supported environment variables to their koanf paths.
var envVars = map[string]string{
	"STREAMWAVE_LISTEN_ADDR":       "server.listen_addr",
	"STREAMWAVE_DATA_DIR":          "data.dir",
	"STREAMWAVE_USERS_FILE":        "data.users_file",
	"STREAMWAVE_MEDIA_FILE":        "data.media_file",
	"STREAMWAVE_PLAYLISTS_FILE":    "data.playlists_file",
	"STREAMWAVE_SECRET":            "auth.secret",
	"STREAMWAVE_ALGORITHM":         "auth.algorithm",
	"STREAMWAVE_TOKEN_TTL_MINUTES": "auth.token_ttl_minutes",
	"STREAMWAVE_BCRYPT_COST":       "auth.bcrypt_cost",
	"STREAMWAVE_LOG_LEVEL":         "log.level",
	"STREAMWAVE_LOG_FILE":          "log.file",
}

// Load builds Settings from defaults, the first config file found, and
// environment variable overrides, then validates the result.
func Load() (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultSettings(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("STREAMWAVE_", ".", func(key string) string {
		return envVars[key]
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Settings{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants the services rely on at construction time.
func (s *Settings) Validate() error {
	if s.Auth.Secret == "" {
		return fmt.Errorf("config: auth.secret is required (set STREAMWAVE_SECRET)")
	}
	if len(s.Auth.Secret) < 32 {
		return fmt.Errorf("config: auth.secret must be at least 32 characters")
	}
	if s.Auth.TokenTTLMinutes <= 0 {
		return fmt.Errorf("config: auth.token_ttl_minutes must be positive")
	}
	if s.Data.Dir == "" {
		return fmt.Errorf("config: data.dir is required")
	}
	return nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
