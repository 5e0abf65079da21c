package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
		// Prefix is prepended to API routes; "/" mounts them at the root.
		Prefix    string `yaml:"prefix"`
		PublicURL string `yaml:"publicUrl"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	History struct {
		Driver string `yaml:"driver"`
		Path   string `yaml:"path"`
	} `yaml:"history"`
	Questions struct {
		File string `yaml:"file"`
		Bank string `yaml:"bank"`
		TTL  string `yaml:"ttl"`
	} `yaml:"questions"`
}

// History drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Load reads YAML config from path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "5000"
	}
	if c.Server.Prefix == "" {
		c.Server.Prefix = "/api"
	}
	if c.Server.Prefix == "/" {
		c.Server.Prefix = ""
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.History.Path == "" {
		switch c.History.Driver {
		case DriverSQLite:
			c.History.Path = "history.db"
		default:
			c.History.Path = "data.json"
		}
	}
	if c.Questions.Bank == "" {
		c.Questions.Bank = "default"
	}
}

// HistoryDriver resolves the history backend: an explicit driver wins, then
// Redis, then Postgres, then the JSON file.
func (c Config) HistoryDriver() string {
	switch {
	case c.History.Driver != "":
		return c.History.Driver
	case c.Redis.Addr != "":
		return DriverRedis
	case c.Postgres.URL != "":
		return DriverPostgres
	default:
		return DriverFile
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
