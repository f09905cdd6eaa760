package pac

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/proxykit/paceval/internal/clock"
	"github.com/proxykit/paceval/internal/monitoring"
	"github.com/proxykit/paceval/internal/netid"
	"github.com/proxykit/paceval/internal/resolve"
	"github.com/proxykit/paceval/internal/suspend"
)

// hostBindings are the capabilities the predicate library consumes. They are
// shared read-only across all runtimes of an Evaluator.
type hostBindings struct {
	resolver resolve.Resolver
	clock    clock.Clock
	localIP  func() (string, error)
	metrics  *monitoring.Metrics
}

// predicates binds the resolution-dependent part of the PAC library to one
// runtime. cur is the logical thread of the evaluation currently holding the
// runtime; a runtime serves one evaluation at a time, so no locking applies.
type predicates struct {
	hostBindings
	cur *suspend.Thread
}

// resolveHost issues an asynchronous lookup and suspends the current logical
// thread until it settles. Cancellation of the evaluation's context comes
// back as the bare context error; lookup failures are wrapped in
// ResolutionError.
func (p *predicates) resolveHost(host string) (string, error) {
	addr, err := p.cur.Await(p.resolver.Lookup(p.cur.Context(), host))
	p.metrics.RecordResolution(err)
	if err != nil {
		if p.cancelled(err) {
			return "", p.cur.Context().Err()
		}
		return "", &ResolutionError{Host: host, Err: err}
	}
	return addr, nil
}

// cancelled reports whether err stems from the evaluation's context being
// done rather than from the lookup itself. Fallback predicates swallow
// lookup failures but never cancellation: a cancelled evaluation must
// reject, not fabricate a loopback answer.
func (p *predicates) cancelled(err error) bool {
	ctxErr := p.cur.Context().Err()
	return ctxErr != nil && errors.Is(err, ctxErr)
}

// dnsResolve returns the resolved address, or loopback when the lookup fails
// or yields nothing.
func (p *predicates) dnsResolve(host string) (string, error) {
	addr, err := p.resolveHost(host)
	if err != nil {
		if p.cancelled(err) {
			return "", err
		}
		return "127.0.0.1", nil
	}
	if addr == "" {
		return "127.0.0.1", nil
	}
	return addr, nil
}

// isResolvable swallows resolution failure as false.
func (p *predicates) isResolvable(host string) (bool, error) {
	addr, err := p.resolveHost(host)
	if err != nil {
		if p.cancelled(err) {
			return false, err
		}
		return false, nil
	}
	return addr != "", nil
}

// isInNet resolves host (with the dnsResolve loopback fallback) and tests
// containment in the pattern/mask block.
func (p *predicates) isInNet(host, pattern, mask string) (bool, error) {
	addr, err := p.dnsResolve(host)
	if err != nil {
		return false, err
	}
	return netid.Contains(pattern, mask, addr)
}

// myIpAddress reports the local outbound address, falling back to loopback
// when the host has no route.
func (p *predicates) myIpAddress() string {
	addr, err := p.localIP()
	if err != nil || addr == "" {
		return "127.0.0.1"
	}
	return addr
}

func isPlainHostName(host string) bool {
	return !strings.Contains(host, ".")
}

// dnsDomainIs is a bare suffix compare, with no boundary normalization:
// dnsDomainIs("www.example.com", ".com") is true, but so is
// dnsDomainIs("flycom", "com"). Classic PAC behavior.
func dnsDomainIs(host, domain string) bool {
	return strings.HasSuffix(host, domain)
}

func localHostOrDomainIs(host, hostdom string) bool {
	if !isPlainHostName(host) {
		return host == hostdom
	}
	prefix, _, _ := strings.Cut(hostdom, ".")
	return host == prefix
}

func dnsDomainLevels(host string) int {
	return strings.Count(host, ".")
}

func shExpMatch(str, shexp string) (bool, error) {
	re, err := compileShExp(shexp)
	if err != nil {
		return false, err
	}
	return re.MatchString(str), nil
}

// compileShExp converts a shell glob into an anchored regexp. Only '?' and
// '*' are translated; every other character passes through untouched, so
// regexp metacharacters like '.' or '+' keep their regexp meaning. That
// matches the classic PAC implementations this library mirrors.
func compileShExp(shexp string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteByte('^')
	for _, r := range shexp {
		switch r {
		case '?':
			b.WriteByte('.')
		case '*':
			b.WriteString(".*")
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('$')
	return regexp.Compile(b.String())
}

var weekdayNames = map[string]time.Weekday{
	"SUN": time.Sunday,
	"MON": time.Monday,
	"TUE": time.Tuesday,
	"WED": time.Wednesday,
	"THU": time.Thursday,
	"FRI": time.Friday,
	"SAT": time.Saturday,
}

// weekdayRange implements weekdayRange(day1[, day2][, "GMT"]). A two-day
// range is inclusive and wraps across the week boundary when day1 > day2.
func weekdayRange(snap clock.Snapshot, args []string) bool {
	fields, args := zoneFields(snap, args)
	switch len(args) {
	case 1:
		day, ok := weekdayNames[args[0]]
		return ok && fields.Weekday == day
	case 2:
		lo, okLo := weekdayNames[args[0]]
		hi, okHi := weekdayNames[args[1]]
		if !okLo || !okHi {
			return false
		}
		if lo <= hi {
			return fields.Weekday >= lo && fields.Weekday <= hi
		}
		return fields.Weekday >= lo || fields.Weekday <= hi
	default:
		return false
	}
}

// timeRange compares elapsed seconds since midnight. Arities:
//
//	timeRange(h)                  current hour equals h
//	timeRange(h1, h2)             h1 <= hour < h2
//	timeRange(h1, m1, h2, m2)     upper bound gets :59 seconds
//	timeRange(h1, m1, s1, h2, m2, s2)
//
// Any other arity is false. A trailing "GMT" argument (stripped by the
// caller into gmt) selects the UTC fields.
func timeRange(snap clock.Snapshot, args []int, gmt bool) bool {
	fields := snap.Local
	if gmt {
		fields = snap.UTC
	}
	now := fields.SecondsSinceMidnight()

	switch len(args) {
	case 1:
		return fields.Hour == args[0]
	case 2:
		return now >= args[0]*3600 && now < args[1]*3600
	case 4:
		lo := args[0]*3600 + args[1]*60
		hi := args[2]*3600 + args[3]*60 + 59
		return now >= lo && now <= hi
	case 6:
		lo := args[0]*3600 + args[1]*60 + args[2]
		hi := args[3]*3600 + args[4]*60 + args[5]
		return now >= lo && now <= hi
	default:
		return false
	}
}

// zoneFields selects local or UTC fields depending on a trailing "GMT".
func zoneFields(snap clock.Snapshot, args []string) (clock.Fields, []string) {
	if n := len(args); n > 0 && args[n-1] == "GMT" {
		return snap.UTC, args[:n-1]
	}
	return snap.Local, args
}
