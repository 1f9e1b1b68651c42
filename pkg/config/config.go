// Package config loads Draftboard configuration from a TOML file, layered
// over built-in defaults. Every field is optional; an absent file yields the
// defaults unchanged.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"draftboard/pkg/errors"
)

// Config is the application configuration.
type Config struct {
	Server  Server  `toml:"server"`
	Storage Storage `toml:"storage"`
	Editor  Editor  `toml:"editor"`
	Export  Export  `toml:"export"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"` // listen address, host:port
}

// Storage selects and configures a persistence backend.
type Storage struct {
	Backend string `toml:"backend"` // file, memory, redis, mongo
	Dir     string `toml:"dir"`     // file backend directory

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Editor configures canvas defaults for new diagrams.
type Editor struct {
	GridSize int  `toml:"grid_size"`
	ShowGrid bool `toml:"show_grid"`
}

// Export configures the render cache.
type Export struct {
	CacheDir string   `toml:"cache_dir"` // empty uses the user cache directory
	CacheTTL duration `toml:"cache_ttl"`
	NoCache  bool     `toml:"no_cache"`
}

// duration lets TTLs be written as "24h" or "30m" in the TOML file.
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// TTL returns the cache TTL as a time.Duration.
func (e Export) TTL() time.Duration { return time.Duration(e.CacheTTL) }

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:  Server{Addr: "127.0.0.1:8437"},
		Storage: Storage{Backend: "file"},
		Editor:  Editor{GridSize: 20, ShowGrid: true},
		Export:  Export{CacheTTL: duration(24 * time.Hour)},
	}
}

// DefaultPath returns the conventional config file location,
// ~/.config/draftboard/config.toml (or the platform equivalent).
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "draftboard", "config.toml"), nil
}

// Load reads the config file at path over the defaults. An empty path loads
// DefaultPath; a missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeStorage, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Storage.Backend {
	case "file", "memory", "redis", "mongo":
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput, "unknown storage backend: %s", c.Storage.Backend)
}
