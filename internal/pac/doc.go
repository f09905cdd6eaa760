/*
Package pac evaluates Proxy Auto-Configuration scripts.

A PAC script is untrusted JavaScript exposing FindProxyForURL(url, host).
The package compiles a script once, runs it inside a goja VM whose only
host-provided globals are the PAC standard library (isPlainHostName,
dnsResolve, shExpMatch, weekdayRange, and the rest), and answers per-request
proxy decisions:

	ev := pac.New(pac.Script{Name: "corp.pac", Source: text}, pac.Config{})
	directive, err := ev.Evaluate(ctx, "https://example.com/", "example.com")

PAC scripts assume synchronous name resolution, but the resolver here is
asynchronous. Every evaluation therefore runs on its own logical thread
(internal/suspend): a predicate that needs an address parks only that thread
until the lookup settles, while other evaluations and the host application
keep running. Because a goja VM is single-threaded, each in-flight evaluation
owns a VM from an internal pool for its whole duration; the pool grows on
demand rather than queueing.

Compilation is memoized per Evaluator. A script that fails to parse, fails
while running its top-level statements, or lacks a callable FindProxyForURL
is rejected with MalformedScriptError, and that failure is cached: the
script is never retried. Per-call failures inside the decision function are
reported as EvaluationError and leave other evaluations untouched.
*/
package pac
