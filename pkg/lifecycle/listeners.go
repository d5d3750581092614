package lifecycle

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// listenerList is a copy-on-write listener registry. Writers replace the
// slice under mu; dispatch iterates whatever slice was current when it began.
type listenerList struct {
	mu   sync.Mutex
	list atomic.Pointer[[]Listener]
}

func (r *listenerList) add(l Listener) {
	if l == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.snapshot()
	next := make([]Listener, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, l)
	r.list.Store(&next)
}

// remove drops the first registration of l and reports whether one was found.
func (r *listenerList) remove(l Listener) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.snapshot()
	for i, existing := range cur {
		if !sameListener(existing, l) {
			continue
		}
		next := make([]Listener, 0, len(cur)-1)
		next = append(next, cur[:i]...)
		next = append(next, cur[i+1:]...)
		r.list.Store(&next)
		return true
	}
	return false
}

// snapshot returns the current listeners. The slice must not be modified.
func (r *listenerList) snapshot() []Listener {
	if p := r.list.Load(); p != nil {
		return *p
	}
	return nil
}

func (r *listenerList) fire(event Event) error {
	for _, l := range r.snapshot() {
		if err := l.LifecycleEvent(event); err != nil {
			return err
		}
	}
	return nil
}

// sameListener compares listeners without panicking on dynamic types that
// are not comparable (such listeners can only be matched by nothing).
func sameListener(a, b Listener) bool {
	ta := reflect.TypeOf(a)
	if ta == nil || ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
