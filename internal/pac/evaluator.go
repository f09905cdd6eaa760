package pac

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/proxykit/paceval/internal/clock"
	"github.com/proxykit/paceval/internal/logging"
	"github.com/proxykit/paceval/internal/monitoring"
	"github.com/proxykit/paceval/internal/netid"
	"github.com/proxykit/paceval/internal/resolve"
	"github.com/proxykit/paceval/internal/suspend"
)

// Script is an immutable PAC script with an optional name for diagnostics.
type Script struct {
	Name   string
	Source string
}

// Config wires an Evaluator's collaborators. Zero values select the system
// resolver, the system clock, the outbound-address probe, a no-op logger,
// and no metrics.
type Config struct {
	Resolver resolve.Resolver
	Clock    clock.Clock
	LocalIP  func() (string, error)
	Logger   *logging.Logger
	Metrics  *monitoring.Metrics
	PoolSize int
}

// Evaluator compiles a PAC script once and evaluates its FindProxyForURL
// for (url, host) pairs. All methods are safe for concurrent use.
type Evaluator struct {
	script Script
	binds  hostBindings
	log    *logging.Logger

	compileOnce sync.Once
	compileErr  error
	prog        *goja.Program

	state lifecycleMachine
	pool  *pool

	mu     sync.Mutex
	closed bool
}

// lifecycleMachine is the slice of go-fsm the evaluator uses.
type lifecycleMachine interface {
	Transition(state string) error
	GetState() string
}

// New creates an Evaluator for script. Nothing is compiled until the first
// Compile or Evaluate call.
func New(script Script, cfg Config) *Evaluator {
	if cfg.Resolver == nil {
		cfg.Resolver = &resolve.System{}
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System{}
	}
	if cfg.LocalIP == nil {
		cfg.LocalIP = netid.LocalAddr
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}

	e := &Evaluator{
		script: script,
		log:    cfg.Logger.Named("pac"),
		binds: hostBindings{
			resolver: cfg.Resolver,
			clock:    cfg.Clock,
			localIP:  cfg.LocalIP,
			metrics:  cfg.Metrics,
		},
	}
	state, err := newLifecycle()
	if err != nil {
		// The transition table is static; this cannot happen at runtime.
		panic(err)
	}
	e.state = state
	e.pool = newPool(cfg.PoolSize, func(t *suspend.Thread) (*runtime, error) {
		return newRuntime(e.prog, e.script.Name, e.binds, e.log, t)
	})
	return e
}

// State reports the lifecycle state: uninitialized, compiling, ready, or
// failed.
func (e *Evaluator) State() string { return e.state.GetState() }

// Compile parses the script, runs its top-level statements, and validates
// that it exposes a callable FindProxyForURL. It runs at most once per
// Evaluator: concurrent callers share the same settled result, and a failure
// is cached without retry.
func (e *Evaluator) Compile(ctx context.Context) error {
	e.compileOnce.Do(func() { e.compileErr = e.compile(ctx) })
	return e.compileErr
}

func (e *Evaluator) compile(ctx context.Context) error {
	e.transition(StateCompiling)
	start := time.Now()

	prog, err := goja.Compile(e.script.Name, e.script.Source, false)
	if err != nil {
		err = &MalformedScriptError{Script: e.script.Name, Reason: "parse failed", Err: err}
		return e.finishCompile(start, err)
	}
	e.prog = prog

	// The script body may itself call suspending predicates, so validation
	// runs on its own logical thread. The validated runtime is kept for the
	// first evaluation.
	rt, err := suspend.Run(ctx, func(t *suspend.Thread) (*runtime, error) {
		return newRuntime(e.prog, e.script.Name, e.binds, e.log, t)
	}).Wait()
	if err != nil {
		return e.finishCompile(start, err)
	}
	e.pool.seed(rt)
	return e.finishCompile(start, nil)
}

func (e *Evaluator) finishCompile(start time.Time, err error) error {
	e.binds.metrics.RecordCompile(err)
	if err != nil {
		e.transition(StateFailed)
		e.log.Warn("script compilation failed",
			zap.String("script", e.script.Name),
			zap.Error(err),
		)
		return err
	}
	e.transition(StateReady)
	e.log.Info("script compiled",
		zap.String("script", e.script.Name),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// Evaluate runs the decision function for one request and returns its proxy
// directive, e.g. "DIRECT" or "PROXY proxy.example.com:8080; DIRECT". Each
// call runs on its own logical thread; concurrent calls proceed
// independently and may complete out of submission order.
func (e *Evaluator) Evaluate(ctx context.Context, url, host string) (string, error) {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return "", ErrClosed
	}

	if err := e.Compile(ctx); err != nil {
		return "", err
	}

	id := uuid.NewString()
	start := time.Now()

	directive, err := suspend.Run(ctx, func(t *suspend.Thread) (string, error) {
		rt, err := e.pool.acquire(t)
		if err != nil {
			return "", err
		}
		defer e.pool.release(rt)

		stop := watchInterrupt(ctx, rt.vm)
		defer stop()
		directive, err := rt.findProxy(t, url, host)
		if err != nil && ctx.Err() != nil {
			// A cancelled evaluation rejects with the context error, not
			// with whatever state the interrupted script was left in.
			return "", ctx.Err()
		}
		return directive, err
	}).Wait()

	e.binds.metrics.RecordEvaluation(time.Since(start), err)
	if err != nil {
		err = e.wrapEvaluationError(url, host, err)
		e.log.Debug("evaluation failed",
			zap.String("evaluation_id", id),
			zap.String("host", host),
			zap.Error(err),
		)
		return "", err
	}

	e.log.Debug("evaluated",
		zap.String("evaluation_id", id),
		zap.String("host", host),
		zap.String("directive", directive),
		zap.Duration("duration", time.Since(start)),
	)
	return directive, nil
}

// wrapEvaluationError attaches request context to per-call failures while
// leaving terminal and sentinel errors as they are.
func (e *Evaluator) wrapEvaluationError(url, host string, err error) error {
	var malformed *MalformedScriptError
	if errors.As(err, &malformed) || errors.Is(err, ErrClosed) {
		return err
	}
	return &EvaluationError{Script: e.script.Name, URL: url, Host: host, Err: err}
}

// Close releases the pooled runtimes. Later Evaluate calls return ErrClosed;
// in-flight evaluations finish normally.
func (e *Evaluator) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.pool.close()
	return nil
}

// PoolStats reports idle and in-use runtime counts.
func (e *Evaluator) PoolStats() (idle, inUse int) {
	return e.pool.stats()
}

func (e *Evaluator) transition(state string) {
	if err := e.state.Transition(state); err != nil {
		e.log.Warn("lifecycle transition rejected",
			zap.String("to", state),
			zap.Error(err),
		)
	}
}

// watchInterrupt interrupts the VM when ctx is cancelled, so a script stuck
// in a loop is abandoned the same way a suspended lookup is. stop waits for
// the watcher to exit: any Interrupt it issues lands before the runtime is
// released back to the pool, never on a later evaluation reusing the VM.
func watchInterrupt(ctx context.Context, vm *goja.Runtime) (stop func()) {
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()
	return func() {
		close(done)
		<-exited
	}
}
