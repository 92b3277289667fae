package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"modelwatch/pkg/types"
)

// Storage backends.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultAddr               = ":8080"
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "console"
	DefaultLoadThreads        = 1
	DefaultFastLoadTimeoutSec = 300
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	Addr        string             `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel    string             `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat   string             `json:"log_format" yaml:"log_format" toml:"log_format"`
	LoadThreads uint32             `json:"load_threads" yaml:"load_threads" toml:"load_threads"`
	Storage     StorageConfig      `json:"storage" yaml:"storage" toml:"storage"`
	Source      types.SourceConfig `json:"source" yaml:"source" toml:"source"`
	FastLoad    FastLoadConfig     `json:"fast_load" yaml:"fast_load" toml:"fast_load"`
	CORS        CORSConfig         `json:"cors" yaml:"cors" toml:"cors"`
}

// StorageConfig selects the filesystem backend servable paths live on.
type StorageConfig struct {
	Backend string   `json:"backend" yaml:"backend" toml:"backend"`
	S3      S3Config `json:"s3" yaml:"s3" toml:"s3"`
}

// S3Config configures an S3-compatible object store.
type S3Config struct {
	Endpoint       string `json:"endpoint" yaml:"endpoint" toml:"endpoint"`
	Bucket         string `json:"bucket" yaml:"bucket" toml:"bucket"`
	AccessKey      string `json:"access_key" yaml:"access_key" toml:"access_key"`
	SecretKey      string `json:"secret_key" yaml:"secret_key" toml:"secret_key"`
	Secure         bool   `json:"secure" yaml:"secure" toml:"secure"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`
}

// FastLoadConfig enables a boosted initial load. Threads of zero disables it.
type FastLoadConfig struct {
	Threads        uint32                  `json:"threads" yaml:"threads" toml:"threads"`
	TimeoutSeconds int                     `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`
	Servables      []types.ServableRequest `json:"servables" yaml:"servables" toml:"servables"`
}

// CORSConfig controls the optional CORS middleware.
type CORSConfig struct {
	Enabled        bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins"`
	AllowedMethods []string `json:"allowed_methods" yaml:"allowed_methods" toml:"allowed_methods"`
	AllowedHeaders []string `json:"allowed_headers" yaml:"allowed_headers" toml:"allowed_headers"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.LoadThreads == 0 {
		c.LoadThreads = DefaultLoadThreads
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendLocal
	}
	if c.FastLoad.TimeoutSeconds <= 0 {
		c.FastLoad.TimeoutSeconds = DefaultFastLoadTimeoutSec
	}
	if c.CORS.Enabled && len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "OPTIONS"}
	}
}
