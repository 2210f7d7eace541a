package zk

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/danmuck/zkctl/internal/frame"
)

var (
	ErrInvalidSessionTimeout = errors.New("zk: invalid session timeout")
	ErrTLSCAFileRequired     = errors.New("zk: tls ca file required")
	ErrTLSKeyFileRequired    = errors.New("zk: tls key file required")
)

// BackoffConfig defines reconnect backoff behavior.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

// TLSConfig enables TLS on the client connection. Mutual authentication
// is used when a cert/key pair is set.
type TLSConfig struct {
	Enabled            bool
	CAFile             string
	CertFile           string
	KeyFile            string
	ServerName         string
	InsecureSkipVerify bool
}

// Config defines one client session.
type Config struct {
	// Servers are host:port ensemble members, tried round-robin.
	Servers []string

	// SessionTimeout is the timeout requested during the handshake. The
	// server may negotiate it down; Conn.SessionTimeout reports the
	// granted value.
	SessionTimeout time.Duration

	ConnectTimeout time.Duration

	// ReplayWatches re-arms live watches after a reconnect within the
	// same session.
	ReplayWatches bool

	// ReadOnly permits the handshake to land on a read-only server.
	ReadOnly bool

	Backoff BackoffConfig
	TLS     TLSConfig
	Limits  frame.Limits
}

// DefaultConfig returns the reliability defaults.
func DefaultConfig() Config {
	return Config{
		SessionTimeout: 30 * time.Second,
		ConnectTimeout: 5 * time.Second,
		ReplayWatches:  true,
		Backoff: BackoffConfig{
			InitialDelay: 250 * time.Millisecond,
			Multiplier:   2.0,
			MaxDelay:     5 * time.Second,
			Jitter:       true,
		},
		Limits: frame.DefaultLimits(),
	}
}

func (c Config) Validate() error {
	if len(c.Servers) == 0 {
		return ErrNoServers
	}
	for i, s := range c.Servers {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: servers[%d] is empty", ErrNoServers, i)
		}
	}
	if c.SessionTimeout < time.Second {
		return fmt.Errorf("%w: %s", ErrInvalidSessionTimeout, c.SessionTimeout)
	}
	if c.TLS.Enabled {
		if strings.TrimSpace(c.TLS.CAFile) == "" && !c.TLS.InsecureSkipVerify {
			return ErrTLSCAFileRequired
		}
		if c.TLS.CertFile != "" && strings.TrimSpace(c.TLS.KeyFile) == "" {
			return ErrTLSKeyFileRequired
		}
	}
	return nil
}

// tlsClientConfig builds the tls.Config for dialing, or nil when TLS is
// disabled.
func (c Config) tlsClientConfig() (*tls.Config, error) {
	if !c.TLS.Enabled {
		return nil, nil
	}
	out := &tls.Config{
		ServerName:         c.TLS.ServerName,
		InsecureSkipVerify: c.TLS.InsecureSkipVerify,
		MinVersion:         tls.VersionTLS12,
	}
	if c.TLS.CAFile != "" {
		pem, err := os.ReadFile(c.TLS.CAFile)
		if err != nil {
			return nil, fmt.Errorf("zk: read ca file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("zk: no certificates in %s", c.TLS.CAFile)
		}
		out.RootCAs = pool
	}
	if c.TLS.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(c.TLS.CertFile, c.TLS.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("zk: load keypair: %w", err)
		}
		out.Certificates = []tls.Certificate{cert}
	}
	return out, nil
}
