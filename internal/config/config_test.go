//go:build !integration

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("empty path yields defaults", func(t *testing.T) {
		cfg, err := LoadConfig("", true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.API.BaseURL != "http://localhost:5000/api" {
			t.Errorf("unexpected base url %q", cfg.API.BaseURL)
		}
		if cfg.Storage.Driver != "file" || cfg.Storage.Path == "" {
			t.Errorf("unexpected storage %+v", cfg.Storage)
		}
		if cfg.Session.CookieName != "token" {
			t.Errorf("unexpected cookie name %q", cfg.Session.CookieName)
		}
		if !cfg.Runtime.Dev {
			t.Error("expected dev runtime flag")
		}
		if cfg.Realtime.ReplyTimeout != 0 {
			t.Errorf("expected reply timeout disabled by default, got %v", cfg.Realtime.ReplyTimeout)
		}
	})

	t.Run("yaml values override defaults", func(t *testing.T) {
		path := writeConfig(t, `
api:
  base_url: https://chat.example.com/api/
  timeout: 5s
realtime:
  url: wss://chat.example.com/ws
  reply_timeout: 45s
  reconnect_attempts: 3
storage:
  driver: REDIS
  profile: work
redis:
  url: localhost:6379
log:
  level: debug
  format: console
workers: 2
`)
		cfg, err := LoadConfig(path, false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.API.BaseURL != "https://chat.example.com/api" {
			t.Errorf("expected trailing slash trimmed, got %q", cfg.API.BaseURL)
		}
		if cfg.API.Timeout != 5*time.Second || cfg.Realtime.ReplyTimeout != 45*time.Second {
			t.Errorf("unexpected durations %v %v", cfg.API.Timeout, cfg.Realtime.ReplyTimeout)
		}
		if cfg.Storage.Driver != "redis" || cfg.Storage.Profile != "work" {
			t.Errorf("unexpected storage %+v", cfg.Storage)
		}
		if cfg.Realtime.ReconnectAttempts != 3 || cfg.Workers != 2 {
			t.Errorf("unexpected values %+v workers=%d", cfg.Realtime, cfg.Workers)
		}
	})

	t.Run("validation failures", func(t *testing.T) {
		cases := map[string]string{
			"redis without url": "storage:\n  driver: redis\n",
			"unknown driver":    "storage:\n  driver: s3\n",
			"http realtime url": "realtime:\n  url: http://localhost/ws\n",
		}
		for name, body := range cases {
			t.Run(name, func(t *testing.T) {
				if _, err := LoadConfig(writeConfig(t, body), false); err == nil {
					t.Fatal("expected an error")
				}
			})
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), false); err == nil {
			t.Fatal("expected an error")
		}
	})
}
