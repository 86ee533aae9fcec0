package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xxxsen/retrolib/internal/constant"
)

// Config describes the application level configuration loaded from json.
type Config struct {
	RomDir         string    `json:"rom_dir"`
	CollectionsDir string    `json:"collections_dir"`
	ThemeDir       string    `json:"theme_dir"`
	SettingsFile   string    `json:"settings_file"`
	MameDat        string    `json:"mame_dat"`
	ExcludeNames   []string  `json:"exclude_names"`
	NonGameSystems []string  `json:"non_game_systems"`
	IncludeUnknown bool      `json:"include_unknown"`
	DB             DBConfig  `json:"db"`
	Log            LogConfig `json:"log"`
	S3             S3Config  `json:"s3"`
}

// DBConfig locates the play history database.
type DBConfig struct {
	Path string `json:"path"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	File  string `json:"file"`
	Level string `json:"level"`
}

// S3Config holds the options for accessing the object store.
type S3Config struct {
	Host            string `json:"host"`
	Bucket          string `json:"bucket"`
	Region          string `json:"region"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	SessionToken    string `json:"session_token"`
	ForcePathStyle  bool   `json:"force_path_style"`
	Prefix          string `json:"prefix"`
}

var defaultConfig *Config

// SetDefault assigns the global configuration.
func SetDefault(c *Config) {
	defaultConfig = c
}

// Default returns the global configuration, nil before loading.
func Default() *Config {
	return defaultConfig
}

// LoadFirst tries to load configuration from the given paths, returning the
// first successfully decoded configuration. If none of the paths contain a
// readable config, an error is returned.
func LoadFirst(paths ...string) (*Config, error) {
	var lastErr error
	for _, path := range paths {
		if path == "" {
			continue
		}
		cfg, err := Load(path)
		if errors.Is(err, os.ErrNotExist) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("config not found in paths: %v", paths)
	}
	return nil, lastErr
}

// Load reads configuration from a single json file path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	c.RomDir = strings.TrimSpace(c.RomDir)
	if c.CollectionsDir == "" && c.RomDir != "" {
		c.CollectionsDir = filepath.Join(c.RomDir, constant.DefaultCollectionDir)
	}
	if c.SettingsFile == "" && c.CollectionsDir != "" {
		c.SettingsFile = filepath.Join(c.CollectionsDir, constant.DefaultSettingsFile)
	}
	if c.DB.Path == "" && c.CollectionsDir != "" {
		c.DB.Path = filepath.Join(c.CollectionsDir, constant.DefaultHistoryDBFile)
	}
	if c.ExcludeNames == nil {
		c.ExcludeNames = []string{"kodi"}
	}
	if c.NonGameSystems == nil {
		c.NonGameSystems = []string{"retropie"}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate performs basic validation of the configuration.
func (c *Config) Validate() error {
	if c.RomDir == "" {
		return errors.New("config.rom_dir must be set")
	}
	if c.CollectionsDir == "" {
		return errors.New("config.collections_dir must be set")
	}
	return nil
}

// Validate checks the object store section, required only by backup commands.
func (c *S3Config) Validate() error {
	if c.Host == "" {
		return errors.New("config.s3.host must be set")
	}
	if c.Bucket == "" {
		return errors.New("config.s3.bucket must be set")
	}
	return nil
}
