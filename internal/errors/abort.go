// internal/errors/abort.go
package errors

import "sync"

// Abort is a first-error-wins termination signal shared by every stage of
// a run. The first Fail records its error, closes Done and runs the
// registered hooks. Later failures are dropped.
type Abort struct {
	mu      sync.Mutex
	err     error
	hooks   []func()
	done    chan struct{}
	aborted bool
}

func NewAbort() *Abort {
	return &Abort{done: make(chan struct{})}
}

// OnAbort registers fn to run once when the run is aborted. If the abort
// already happened fn runs immediately.
func (a *Abort) OnAbort(fn func()) {
	a.mu.Lock()
	if !a.aborted {
		a.hooks = append(a.hooks, fn)
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()
	fn()
}

// Fail records err unless an earlier error was already recorded. It
// reports whether this call was the one that aborted the run.
func (a *Abort) Fail(err error) bool {
	if err == nil {
		return false
	}

	a.mu.Lock()
	if a.aborted {
		a.mu.Unlock()
		return false
	}
	a.aborted = true
	a.err = err
	hooks := a.hooks
	a.hooks = nil
	close(a.done)
	a.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	return true
}

// Err returns the recorded error, or nil while the run is healthy.
func (a *Abort) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Done is closed when the first error is recorded.
func (a *Abort) Done() <-chan struct{} {
	return a.done
}

func (a *Abort) Aborted() bool {
	select {
	case <-a.done:
		return true
	default:
		return false
	}
}
