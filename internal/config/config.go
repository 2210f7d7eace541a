// Package config loads client configuration from TOML.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/danmuck/zkctl/internal/frame"
	"github.com/danmuck/zkctl/internal/zk"
)

type ClientConfig struct {
	Servers          []string      `toml:"servers"`
	SessionTimeoutMS int           `toml:"session_timeout_ms"`
	ConnectTimeoutMS int           `toml:"connect_timeout_ms"`
	ReplayWatches    *bool         `toml:"replay_watches"`
	ReadOnly         bool          `toml:"read_only"`
	MaxFrameBytes    int32         `toml:"max_frame_bytes"`
	Backoff          BackoffConfig `toml:"backoff"`
	TLS              TLSConfig     `toml:"tls"`
}

type BackoffConfig struct {
	InitialDelayMS int     `toml:"initial_delay_ms"`
	Multiplier     float64 `toml:"multiplier"`
	MaxDelayMS     int     `toml:"max_delay_ms"`
	Jitter         *bool   `toml:"jitter"`
}

type TLSConfig struct {
	Enabled            bool   `toml:"enabled"`
	CAFile             string `toml:"ca_file"`
	CertFile           string `toml:"cert_file"`
	KeyFile            string `toml:"key_file"`
	ServerName         string `toml:"server_name"`
	InsecureSkipVerify bool   `toml:"insecure_skip_verify"`
}

func LoadClientConfig(path string) (ClientConfig, error) {
	var cfg ClientConfig
	if err := loadToml(path, &cfg); err != nil {
		return ClientConfig{}, err
	}
	if err := ValidateClientConfig(cfg); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateClientConfig(cfg ClientConfig) error {
	if len(cfg.Servers) == 0 {
		return fmt.Errorf("client config missing servers")
	}
	for i, s := range cfg.Servers {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("servers[%d] is empty", i)
		}
	}
	if cfg.SessionTimeoutMS < 0 {
		return fmt.Errorf("session_timeout_ms must not be negative")
	}
	if cfg.TLS.Enabled && strings.TrimSpace(cfg.TLS.CAFile) == "" && !cfg.TLS.InsecureSkipVerify {
		return fmt.Errorf("tls enabled but ca_file missing")
	}
	return nil
}

// SessionConfig converts the file shape into session settings, filling
// defaults for anything unset.
func (c ClientConfig) SessionConfig() zk.Config {
	out := zk.DefaultConfig()
	out.Servers = c.Servers
	out.ReadOnly = c.ReadOnly
	if c.SessionTimeoutMS > 0 {
		out.SessionTimeout = time.Duration(c.SessionTimeoutMS) * time.Millisecond
	}
	if c.ConnectTimeoutMS > 0 {
		out.ConnectTimeout = time.Duration(c.ConnectTimeoutMS) * time.Millisecond
	}
	if c.ReplayWatches != nil {
		out.ReplayWatches = *c.ReplayWatches
	}
	if c.MaxFrameBytes > 0 {
		out.Limits = frame.Limits{MaxFrameBytes: c.MaxFrameBytes}
	}
	if c.Backoff.InitialDelayMS > 0 {
		out.Backoff.InitialDelay = time.Duration(c.Backoff.InitialDelayMS) * time.Millisecond
	}
	if c.Backoff.Multiplier > 0 {
		out.Backoff.Multiplier = c.Backoff.Multiplier
	}
	if c.Backoff.MaxDelayMS > 0 {
		out.Backoff.MaxDelay = time.Duration(c.Backoff.MaxDelayMS) * time.Millisecond
	}
	if c.Backoff.Jitter != nil {
		out.Backoff.Jitter = *c.Backoff.Jitter
	}
	out.TLS = zk.TLSConfig{
		Enabled:            c.TLS.Enabled,
		CAFile:             c.TLS.CAFile,
		CertFile:           c.TLS.CertFile,
		KeyFile:            c.TLS.KeyFile,
		ServerName:         c.TLS.ServerName,
		InsecureSkipVerify: c.TLS.InsecureSkipVerify,
	}
	return out
}
