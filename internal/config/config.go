// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type RealtimeConfig struct {
	URL               string        `yaml:"url"`
	HandshakeTimeout  time.Duration `yaml:"handshake_timeout"`
	PingInterval      time.Duration `yaml:"ping_interval"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	MaxMessageSize    int64         `yaml:"max_message_size"`
	ReconnectAttempts int           `yaml:"reconnect_attempts"`
	ReconnectBackoff  time.Duration `yaml:"reconnect_backoff"`
	ReplyTimeout      time.Duration `yaml:"reply_timeout"` // 0 disables
}

type SessionConfig struct {
	CookieName      string        `yaml:"cookie_name"`
	RefreshInterval time.Duration `yaml:"refresh_interval"` // 0 disables
}

type StorageConfig struct {
	Driver  string `yaml:"driver"` // file | redis
	Path    string `yaml:"path"`   // file driver
	Profile string `yaml:"profile"`
	// EncryptionKey seals the persisted session token; empty stores it as is.
	EncryptionKey string `yaml:"encryption_key"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	File     string `yaml:"file"`     // empty logs to stderr
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DebugConfig struct {
	Port int `yaml:"port"` // 0 disables the debug server
}

type Config struct {
	API      APIConfig      `yaml:"api"`
	Realtime RealtimeConfig `yaml:"realtime"`
	Session  SessionConfig  `yaml:"session"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
	Debug    DebugConfig    `yaml:"debug"`
	Workers  int            `yaml:"workers"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path (defaults only when path is empty),
// applies defaults and validates the result.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	applyDefaults(&cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:5000/api"
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = 15 * time.Second
	}

	if cfg.Realtime.URL == "" {
		cfg.Realtime.URL = "ws://localhost:5000/ws"
	}
	cfg.Realtime.HandshakeTimeout = normalize(cfg.Realtime.HandshakeTimeout, 10*time.Second)
	cfg.Realtime.PingInterval = normalize(cfg.Realtime.PingInterval, 30*time.Second)
	cfg.Realtime.WriteTimeout = normalize(cfg.Realtime.WriteTimeout, 10*time.Second)
	cfg.Realtime.ReadTimeout = normalize(cfg.Realtime.ReadTimeout, 60*time.Second)
	cfg.Realtime.ReconnectBackoff = normalize(cfg.Realtime.ReconnectBackoff, 500*time.Millisecond)
	if cfg.Realtime.MaxMessageSize <= 0 {
		cfg.Realtime.MaxMessageSize = 1 << 20
	}
	if cfg.Realtime.ReconnectAttempts < 0 {
		cfg.Realtime.ReconnectAttempts = 0
	}
	if cfg.Realtime.ReplyTimeout < 0 {
		cfg.Realtime.ReplyTimeout = 0
	}

	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "token"
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "file"
	}
	cfg.Storage.Driver = strings.ToLower(cfg.Storage.Driver)
	if cfg.Storage.Profile == "" {
		cfg.Storage.Profile = "default"
	}
	if cfg.Storage.Driver == "file" && cfg.Storage.Path == "" {
		cfg.Storage.Path = defaultStatePath()
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
}

func (c *Config) validate() error {
	if _, err := url.ParseRequestURI(c.API.BaseURL); err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	u, err := url.Parse(c.Realtime.URL)
	if err != nil {
		return fmt.Errorf("realtime.url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return errors.New("realtime.url must use ws or wss")
	}
	switch c.Storage.Driver {
	case "file":
	case "redis":
		if c.Redis.URL == "" {
			return errors.New("redis.url is required when storage.driver=redis")
		}
	default:
		return fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver)
	}
	return nil
}

func normalize(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".lexa-state.json"
	}
	return dir + string(os.PathSeparator) + "lexa" + string(os.PathSeparator) + "state.json"
}
