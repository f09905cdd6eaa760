package pac

import (
	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/proxykit/paceval/internal/logging"
	"github.com/proxykit/paceval/internal/suspend"
)

// runtime wraps one goja VM prepared for PAC evaluation: globals locked
// down, the predicate library installed, the script body executed, and
// FindProxyForURL extracted. A runtime serves at most one evaluation at a
// time; the pool hands them out and takes them back.
type runtime struct {
	vm    *goja.Runtime
	fn    goja.Callable
	preds *predicates
}

// newRuntime builds and initializes a VM on the caller's logical thread.
// Top-level script statements run here and may suspend on name resolution.
func newRuntime(prog *goja.Program, script string, binds hostBindings, log *logging.Logger, thread *suspend.Thread) (*runtime, error) {
	r := &runtime{
		vm:    goja.New(),
		preds: &predicates{hostBindings: binds},
	}
	r.setupGlobals(script, log)

	r.preds.cur = thread
	defer func() { r.preds.cur = nil }()

	if _, err := r.vm.RunProgram(prog); err != nil {
		return nil, &MalformedScriptError{Script: script, Reason: "script body failed", Err: err}
	}

	v := r.vm.Get("FindProxyForURL")
	if v == nil {
		return nil, &MalformedScriptError{Script: script, Reason: "FindProxyForURL is not defined"}
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil, &MalformedScriptError{Script: script, Reason: "FindProxyForURL is not callable"}
	}
	r.fn = fn
	return r, nil
}

// findProxy runs the decision function for one request on the given logical
// thread. Predicate calls that need resolution suspend that thread only.
func (r *runtime) findProxy(thread *suspend.Thread, url, host string) (string, error) {
	r.preds.cur = thread
	defer func() { r.preds.cur = nil }()

	v, err := r.fn(goja.Undefined(), r.vm.ToValue(url), r.vm.ToValue(host))
	if err != nil {
		return "", err
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return "", errNoDirective
	}
	return v.String(), nil
}

// setupGlobals removes ambient host capabilities and installs the predicate
// library. The script sees the PAC standard library, the JS builtins goja
// ships, and nothing else.
func (r *runtime) setupGlobals(script string, log *logging.Logger) {
	vm := r.vm

	vm.Set("require", goja.Undefined())
	vm.Set("process", goja.Undefined())
	vm.Set("module", goja.Undefined())
	vm.Set("exports", goja.Undefined())

	vm.Set("isPlainHostName", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(isPlainHostName(stringArg(call, 0)))
	})
	vm.Set("dnsDomainIs", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(dnsDomainIs(stringArg(call, 0), stringArg(call, 1)))
	})
	vm.Set("localHostOrDomainIs", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(localHostOrDomainIs(stringArg(call, 0), stringArg(call, 1)))
	})
	vm.Set("dnsDomainLevels", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(dnsDomainLevels(stringArg(call, 0)))
	})
	vm.Set("shExpMatch", func(call goja.FunctionCall) goja.Value {
		ok, err := shExpMatch(stringArg(call, 0), stringArg(call, 1))
		if err != nil {
			r.throw(err)
		}
		return vm.ToValue(ok)
	})

	vm.Set("isResolvable", func(call goja.FunctionCall) goja.Value {
		ok, err := r.preds.isResolvable(stringArg(call, 0))
		if err != nil {
			r.abort(err)
		}
		return vm.ToValue(ok)
	})
	vm.Set("dnsResolve", func(call goja.FunctionCall) goja.Value {
		addr, err := r.preds.dnsResolve(stringArg(call, 0))
		if err != nil {
			r.abort(err)
		}
		return vm.ToValue(addr)
	})
	vm.Set("isInNet", func(call goja.FunctionCall) goja.Value {
		ok, err := r.preds.isInNet(stringArg(call, 0), stringArg(call, 1), stringArg(call, 2))
		if err != nil {
			if r.preds.cancelled(err) {
				r.abort(err)
			}
			r.throw(err)
		}
		return vm.ToValue(ok)
	})
	vm.Set("myIpAddress", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(r.preds.myIpAddress())
	})

	vm.Set("weekdayRange", func(call goja.FunctionCall) goja.Value {
		args := make([]string, len(call.Arguments))
		for i, a := range call.Arguments {
			args[i] = a.String()
		}
		return vm.ToValue(weekdayRange(r.preds.clock.Now(), args))
	})
	vm.Set("timeRange", func(call goja.FunctionCall) goja.Value {
		args := call.Arguments
		gmt := false
		if n := len(args); n > 0 && args[n-1].String() == "GMT" {
			gmt = true
			args = args[:n-1]
		}
		nums := make([]int, len(args))
		for i, a := range args {
			nums[i] = int(a.ToInteger())
		}
		return vm.ToValue(timeRange(r.preds.clock.Now(), nums, gmt))
	})
	// dateRange is an intentionally unimplemented predicate: it evaluates to
	// false for every overload.
	vm.Set("dateRange", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(false)
	})

	vm.Set("alert", func(call goja.FunctionCall) goja.Value {
		log.Info("pac alert",
			zap.String("script", script),
			zap.String("message", stringArg(call, 0)),
		)
		return goja.Undefined()
	})
}

// throw raises err as a JS exception at the predicate call site, so the
// script's own try/catch works on it.
func (r *runtime) throw(err error) {
	panic(r.vm.NewGoError(err))
}

// abort ends the whole evaluation. The interrupt flag is raised before this
// host function returns, so the script cannot run further, not even a catch
// block around the predicate call.
func (r *runtime) abort(err error) {
	r.vm.Interrupt(err)
	panic(r.vm.NewGoError(err))
}

func stringArg(call goja.FunctionCall, i int) string {
	if i >= len(call.Arguments) {
		return ""
	}
	return call.Arguments[i].String()
}
