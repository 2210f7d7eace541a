package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/zkctl/internal/zk"
)

type fileConfig struct {
	Servers          []string `toml:"servers"`
	SessionTimeout   string   `toml:"session_timeout"`
	SessionTimeoutMS int64    `toml:"session_timeout_ms"`
	Paths            []string `toml:"paths"`
	AuthScheme       string   `toml:"auth_scheme"`
	AuthCredential   string   `toml:"auth_credential"`
	ReadOnly         bool     `toml:"read_only"`
	ReplayWatches    bool     `toml:"replay_watches"`
}

type watchConfig struct {
	Session        zk.Config
	Paths          []string
	AuthScheme     string
	AuthCredential string
}

// loadWatchConfig overlays the file's defined keys onto base. Keys the
// file leaves out keep their base values.
func loadWatchConfig(path string, base zk.Config) (watchConfig, error) {
	cfg := watchConfig{Session: base}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return watchConfig{}, fmt.Errorf("load watch config: %w", err)
	}

	if meta.IsDefined("servers") {
		cfg.Session.Servers = normalizeList(raw.Servers)
	}

	if meta.IsDefined("session_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.SessionTimeout))
		if err != nil {
			return watchConfig{}, fmt.Errorf("parse session_timeout: %w", err)
		}
		cfg.Session.SessionTimeout = d
	}

	if meta.IsDefined("session_timeout_ms") {
		cfg.Session.SessionTimeout = time.Duration(raw.SessionTimeoutMS) * time.Millisecond
	}

	if meta.IsDefined("read_only") {
		cfg.Session.ReadOnly = raw.ReadOnly
	}

	if meta.IsDefined("replay_watches") {
		cfg.Session.ReplayWatches = raw.ReplayWatches
	}

	if meta.IsDefined("paths") {
		cfg.Paths = normalizeList(raw.Paths)
	}

	if meta.IsDefined("auth_scheme") {
		cfg.AuthScheme = strings.TrimSpace(raw.AuthScheme)
	}

	if meta.IsDefined("auth_credential") {
		cfg.AuthCredential = strings.TrimSpace(raw.AuthCredential)
	}

	return cfg, nil
}

func normalizeList(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
