package pac

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by Evaluate after Close.
var ErrClosed = errors.New("pac: evaluator is closed")

// errNoDirective marks a decision function that returned null or undefined
// instead of a proxy directive string.
var errNoDirective = errors.New("FindProxyForURL returned no directive")

// MalformedScriptError reports a script that failed to parse, failed while
// running its top-level statements, or does not expose a callable
// FindProxyForURL. It is terminal for that script; every later Evaluate call
// returns the same error.
type MalformedScriptError struct {
	Script string
	Reason string
	Err    error
}

func (e *MalformedScriptError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pac: malformed script %q: %s: %v", e.Script, e.Reason, e.Err)
	}
	return fmt.Sprintf("pac: malformed script %q: %s", e.Script, e.Reason)
}

func (e *MalformedScriptError) Unwrap() error { return e.Err }

// ResolutionError reports a failed name lookup inside a predicate. The
// fallback predicates (isResolvable, isInNet, dnsResolve) swallow it; when a
// script lets it escape, it surfaces to the Evaluate caller.
type ResolutionError struct {
	Host string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("pac: resolve %q: %v", e.Host, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// EvaluationError reports a runtime failure inside one FindProxyForURL
// invocation. It is local to that call; concurrent and later evaluations are
// unaffected.
type EvaluationError struct {
	Script string
	URL    string
	Host   string
	Err    error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("pac: script %q failed for %q (host %q): %v", e.Script, e.URL, e.Host, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }
