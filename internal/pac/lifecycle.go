package pac

import (
	"log/slog"

	"github.com/robbyt/go-fsm"
)

// Evaluator lifecycle states.
const (
	StateUninitialized = "uninitialized"
	StateCompiling     = "compiling"
	StateReady         = "ready"
	StateFailed        = "failed"
)

// lifecycleTransitions defines the valid evaluator state transitions. Both
// ready and failed are terminal: a script compiles at most once and a
// failure is never retried.
var lifecycleTransitions = map[string][]string{
	StateUninitialized: {StateCompiling},
	StateCompiling:     {StateReady, StateFailed},
	StateReady:         {},
	StateFailed:        {},
}

func newLifecycle() (*fsm.Machine, error) {
	return fsm.New(slog.DiscardHandler, StateUninitialized, lifecycleTransitions)
}
