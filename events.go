package deepcall

import (
	"slices"
	"sync"
)

type EventKind int

const (
	ComponentRegistered EventKind = iota + 1
	ComponentReplaced
	ComponentUnregistered
)

func (k EventKind) String() string {
	switch k {
	case ComponentRegistered:
		return "registered"
	case ComponentReplaced:
		return "replaced"
	case ComponentUnregistered:
		return "unregistered"
	default:
		return "unknown"
	}
}

// Event describes a completed registry mutation. For ComponentUnregistered,
// Methods holds the bag that was removed.
type Event struct {
	Kind    EventKind
	ID      string
	Methods Methods
}

type observer struct {
	fn func(Event)
}

// Subscribe adds fn to the observers notified after every successful
// Register and Unregister. Events reach every observer in the order the
// mutations were applied. Observers run outside the lock, in subscription
// order, after the change is visible to readers. A mutation made from inside
// an observer, or concurrently with a delivery, is queued and delivered by
// the goroutine already delivering once the current event has reached every
// observer.
func (r *Registry) Subscribe(fn func(Event)) (unsubscribe func()) {
	o := &observer{fn: fn}

	r.mu.Lock()
	r.observers = append(r.observers, o)
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.observers = slices.DeleteFunc(r.observers, func(x *observer) bool { return x == o })
		})
	}
}

// notify drains the pending queue unless another call is already doing so.
func (r *Registry) notify() {
	r.mu.Lock()
	if r.delivering {
		r.mu.Unlock()
		return
	}
	r.delivering = true
	drained := false
	defer func() {
		// an observer panicked; let the next mutation resume delivery
		if !drained {
			r.mu.Lock()
			r.delivering = false
			r.mu.Unlock()
		}
	}()

	for len(r.pending) > 0 {
		e := r.pending[0]
		r.pending = r.pending[1:]
		observers := slices.Clone(r.observers)
		r.mu.Unlock()

		for _, o := range observers {
			o.fn(e)
		}

		r.mu.Lock()
	}
	r.delivering = false
	drained = true
	r.mu.Unlock()
}
