package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadClientConfig(t *testing.T) {
	path := writeConfig(t, `
servers = ["zk1:2181", "zk2:2181"]
session_timeout_ms = 10000
replay_watches = false

[backoff]
initial_delay_ms = 100
multiplier = 1.5
max_delay_ms = 2000
`)
	cfg, err := LoadClientConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sess := cfg.SessionConfig()
	if len(sess.Servers) != 2 || sess.Servers[0] != "zk1:2181" {
		t.Fatalf("servers = %v", sess.Servers)
	}
	if sess.SessionTimeout != 10*time.Second {
		t.Fatalf("session timeout = %s", sess.SessionTimeout)
	}
	if sess.ReplayWatches {
		t.Fatalf("replay_watches override lost")
	}
	if sess.Backoff.InitialDelay != 100*time.Millisecond || sess.Backoff.Multiplier != 1.5 {
		t.Fatalf("backoff = %+v", sess.Backoff)
	}
}

func TestLoadClientConfigDefaults(t *testing.T) {
	path := writeConfig(t, `servers = ["localhost:2181"]`)
	cfg, err := LoadClientConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sess := cfg.SessionConfig()
	if sess.SessionTimeout != 30*time.Second {
		t.Fatalf("default session timeout = %s", sess.SessionTimeout)
	}
	if !sess.ReplayWatches {
		t.Fatalf("replay watches should default on")
	}
	if sess.Backoff.InitialDelay != 250*time.Millisecond {
		t.Fatalf("default backoff = %+v", sess.Backoff)
	}
}

func TestLoadClientConfigRejectsMissingServers(t *testing.T) {
	path := writeConfig(t, `session_timeout_ms = 10000`)
	if _, err := LoadClientConfig(path); err == nil {
		t.Fatalf("expected error for missing servers")
	}
}

func TestLoadClientConfigRejectsTLSWithoutCA(t *testing.T) {
	path := writeConfig(t, `
servers = ["zk1:2181"]

[tls]
enabled = true
`)
	if _, err := LoadClientConfig(path); err == nil {
		t.Fatalf("expected error for tls without ca_file")
	}
}
