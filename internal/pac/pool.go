package pac

import (
	"sync"

	"github.com/proxykit/paceval/internal/suspend"
)

// pool recycles runtimes between evaluations. goja VMs are single-threaded,
// so every in-flight evaluation owns a runtime for its whole duration,
// including while suspended on a lookup. When no idle runtime is available
// the pool builds a fresh one instead of queueing: evaluations never wait on
// each other.
type pool struct {
	build func(*suspend.Thread) (*runtime, error)

	mu     sync.Mutex
	idle   chan *runtime
	inUse  int
	closed bool
}

func newPool(size int, build func(*suspend.Thread) (*runtime, error)) *pool {
	if size <= 0 {
		size = 4
	}
	return &pool{
		build: build,
		idle:  make(chan *runtime, size),
	}
}

// seed stores an already-built runtime, e.g. the one used for compile-time
// validation.
func (p *pool) seed(rt *runtime) {
	select {
	case p.idle <- rt:
	default:
	}
}

// acquire returns an idle runtime, or builds one on the calling thread.
func (p *pool) acquire(thread *suspend.Thread) (*runtime, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	p.inUse++
	p.mu.Unlock()

	select {
	case rt := <-p.idle:
		return rt, nil
	default:
	}

	rt, err := p.build(thread)
	if err != nil {
		p.mu.Lock()
		p.inUse--
		p.mu.Unlock()
		return nil, err
	}
	return rt, nil
}

// release returns a runtime for reuse. Runtimes beyond the idle capacity are
// dropped for the garbage collector.
func (p *pool) release(rt *runtime) {
	p.mu.Lock()
	p.inUse--
	closed := p.closed
	p.mu.Unlock()

	if closed {
		return
	}
	rt.vm.ClearInterrupt()
	select {
	case p.idle <- rt:
	default:
	}
}

func (p *pool) close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	for {
		select {
		case <-p.idle:
		default:
			return
		}
	}
}

// stats reports idle and in-use runtime counts.
func (p *pool) stats() (idle, inUse int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle), p.inUse
}
