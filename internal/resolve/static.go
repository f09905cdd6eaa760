package resolve

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

// ErrNotFound is the failure a Static resolver reports for unknown hosts.
var ErrNotFound = errors.New("host not found")

// Static resolves from a fixed host table: hosts-file semantics. IP literals
// resolve to themselves. Unknown hosts fail with ErrNotFound. A per-host
// delay can be configured to exercise out-of-order completion, and lookups
// are counted so callers can assert how often resolution was consulted.
type Static struct {
	mu     sync.Mutex
	hosts  map[string]string
	delays map[string]time.Duration
	calls  int
}

// NewStatic creates a resolver over a copy of the given host table.
func NewStatic(hosts map[string]string) *Static {
	s := &Static{
		hosts:  make(map[string]string, len(hosts)),
		delays: make(map[string]time.Duration),
	}
	for h, a := range hosts {
		s.hosts[h] = a
	}
	return s
}

// Add registers or replaces one host mapping.
func (s *Static) Add(host, addr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hosts[host] = addr
}

// SetDelay makes lookups for host settle only after d has elapsed.
func (s *Static) SetDelay(host string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[host] = d
}

// Calls returns how many lookups have been issued so far.
func (s *Static) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *Static) Lookup(ctx context.Context, host string) <-chan Result {
	s.mu.Lock()
	s.calls++
	addr, ok := s.hosts[host]
	delay := s.delays[host]
	s.mu.Unlock()

	if !ok && net.ParseIP(host) != nil {
		addr, ok = host, true
	}

	out := make(chan Result, 1)
	go func() {
		if delay > 0 {
			timer := time.NewTimer(delay)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				out <- Result{Err: ctx.Err()}
				return
			}
		}
		if !ok {
			out <- Result{Err: fmt.Errorf("%w: %s", ErrNotFound, host)}
			return
		}
		out <- Result{Address: addr}
	}()
	return out
}
