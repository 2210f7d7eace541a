package zk

import (
	"net"
	"strings"
	"sync"
)

// hostProvider hands out ensemble members round-robin. Failures advance
// the cursor so the next dial tries a different member; a successful
// connection resets the consecutive-failure count used for backoff.
type hostProvider struct {
	mu       sync.Mutex
	hosts    []string
	next     int
	failures int
}

func newHostProvider(servers []string) (*hostProvider, error) {
	hosts := make([]string, 0, len(servers))
	for _, s := range servers {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, _, err := net.SplitHostPort(s); err != nil {
			s = net.JoinHostPort(s, "2181")
		}
		hosts = append(hosts, s)
	}
	if len(hosts) == 0 {
		return nil, ErrNoServers
	}
	return &hostProvider{hosts: hosts}, nil
}

// Next returns the host to dial and the 1-based attempt count since the
// last successful connection.
func (h *hostProvider) Next() (string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	host := h.hosts[h.next]
	h.next = (h.next + 1) % len(h.hosts)
	h.failures++
	return host, h.failures
}

// Connected marks the current host good and resets the failure count.
func (h *hostProvider) Connected() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failures = 0
}
