// Package resolve is the asynchronous name-resolution facility consumed by
// the predicate library. Lookups return immediately with a channel that
// settles exactly once; the suspension bridge parks a logical thread on that
// channel while the rest of the application keeps running.
package resolve

import (
	"context"
	"net"
	"time"
)

// Result is the settled outcome of one lookup. An empty Address with a nil
// Err means the lookup succeeded but produced no usable address; predicates
// with a loopback fallback treat that the same as a failure.
type Result struct {
	Address string
	Err     error
}

// Resolver issues asynchronous name lookups.
type Resolver interface {
	Lookup(ctx context.Context, host string) <-chan Result
}

// System resolves through the standard library resolver.
type System struct {
	// Timeout bounds each lookup. Zero means no bound beyond ctx.
	Timeout time.Duration
	// Inner overrides the net.Resolver used. Nil means net.DefaultResolver.
	Inner *net.Resolver
}

func (s *System) Lookup(ctx context.Context, host string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		if s.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.Timeout)
			defer cancel()
		}
		r := s.Inner
		if r == nil {
			r = net.DefaultResolver
		}
		addrs, err := r.LookupHost(ctx, host)
		if err != nil {
			out <- Result{Err: err}
			return
		}
		out <- Result{Address: pick(addrs)}
	}()
	return out
}

// pick prefers an IPv4 address, which is what PAC scripts written against
// classic resolvers expect from dnsResolve.
func pick(addrs []string) string {
	if len(addrs) == 0 {
		return ""
	}
	for _, a := range addrs {
		if ip := net.ParseIP(a); ip != nil && ip.To4() != nil {
			return a
		}
	}
	return addrs[0]
}
