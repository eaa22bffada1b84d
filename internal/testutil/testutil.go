// Package testutil provides in-memory stores and fakes for service and handler tests.
package testutil

import (
	"sync"
	"time"
)

// Clock hands out strictly increasing timestamps so ordering in tests is deterministic.
type Clock struct {
	mu   sync.Mutex
	last time.Time
}

// Now returns a time at least one millisecond after the previous call.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	if !now.After(c.last.Add(time.Millisecond)) {
		now = c.last.Add(time.Millisecond)
	}
	c.last = now
	return now
}

// faults lets a test make a named store method fail.
type faults struct {
	mu     sync.Mutex
	errs   map[string]error
	calls  map[string]int
	before map[string]func()
}

// FailOn makes every subsequent call to method return err. A nil err clears it.
func (f *faults) FailOn(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errs == nil {
		f.errs = map[string]error{}
	}
	if err == nil {
		delete(f.errs, method)
		return
	}
	f.errs[method] = err
}

// Calls returns how many times method was invoked.
func (f *faults) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// Before runs fn at the start of every subsequent call to method, before the
// store does any work. fn may call back into the store.
func (f *faults) Before(method string, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.before == nil {
		f.before = map[string]func(){}
	}
	f.before[method] = fn
}

func (f *faults) hit(method string) error {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[method]++
	err, fn := f.errs[method], f.before[method]
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
	return err
}
