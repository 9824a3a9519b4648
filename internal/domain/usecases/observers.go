package usecases

import "sync"

// observers is a list of change callbacks. Callbacks run on the caller's goroutine
// after the state lock is released, so they may read controller state freely.
type observers struct {
	mu  sync.Mutex
	fns []func()
}

func (o *observers) add(fn func()) {
	if fn == nil {
		return
	}
	o.mu.Lock()
	o.fns = append(o.fns, fn)
	o.mu.Unlock()
}

func (o *observers) notify() {
	o.mu.Lock()
	fns := make([]func(), len(o.fns))
	copy(fns, o.fns)
	o.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
