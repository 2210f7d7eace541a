package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danmuck/zkctl/internal/zk"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zkwatch.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadWatchConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
servers = ["zk1:2181", " ", "zk2:2181"]
session_timeout = "12s"
paths = ["/app/leader", "/app/members"]
auth_scheme = "digest"
auth_credential = "user:secret"
replay_watches = false
`)
	cfg, err := loadWatchConfig(path, zk.DefaultConfig())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Session.Servers) != 2 || cfg.Session.Servers[1] != "zk2:2181" {
		t.Fatalf("servers = %v", cfg.Session.Servers)
	}
	if cfg.Session.SessionTimeout != 12*time.Second {
		t.Fatalf("session timeout = %s", cfg.Session.SessionTimeout)
	}
	if cfg.Session.ReplayWatches {
		t.Fatalf("replay_watches override lost")
	}
	if len(cfg.Paths) != 2 || cfg.Paths[0] != "/app/leader" {
		t.Fatalf("paths = %v", cfg.Paths)
	}
	if cfg.AuthScheme != "digest" || cfg.AuthCredential != "user:secret" {
		t.Fatalf("auth = %q %q", cfg.AuthScheme, cfg.AuthCredential)
	}
}

func TestLoadWatchConfigKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `servers = ["localhost:2181"]`)
	cfg, err := loadWatchConfig(path, zk.DefaultConfig())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Session.SessionTimeout != 30*time.Second {
		t.Fatalf("default session timeout = %s", cfg.Session.SessionTimeout)
	}
	if !cfg.Session.ReplayWatches {
		t.Fatalf("replay watches should default on")
	}
}

func TestLoadWatchConfigSessionTimeoutMS(t *testing.T) {
	path := writeConfig(t, `
servers = ["localhost:2181"]
session_timeout_ms = 8000
`)
	cfg, err := loadWatchConfig(path, zk.DefaultConfig())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Session.SessionTimeout != 8*time.Second {
		t.Fatalf("session timeout = %s", cfg.Session.SessionTimeout)
	}
}

func TestLoadWatchConfigRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, `session_timeout = "soon"`)
	if _, err := loadWatchConfig(path, zk.DefaultConfig()); err == nil {
		t.Fatalf("expected parse error")
	}
}
