// Package state implements the async resource state machine every list and
// entity fetch goes through: Idle -> Loading -> Success | Error, with
// re-entry into Loading on a new request. A generation counter guarantees
// that when requests overlap, only the most recently issued one may apply
// its result.
package state

import "sync"

// Phase is the active tag of a Resource.
type Phase int

const (
	Idle Phase = iota
	Loading
	Success
	Error
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	}
	return "unknown"
}

// Snapshot is a point-in-time copy of a Resource. Value is meaningful only
// in Success, Err only in Error.
type Snapshot[T any] struct {
	Phase Phase
	Value T
	Err   error
}

// Ticket identifies one issued request. A resolve presenting a stale ticket
// is discarded.
type Ticket struct {
	gen uint64
}

// Resource is the state holder for one asynchronous fetch. The zero value
// is not usable; use NewResource. Safe for concurrent use.
type Resource[T any] struct {
	mu    sync.Mutex
	phase Phase
	value T
	err   error
	gen   uint64
	subs  []func(Snapshot[T])
}

func NewResource[T any]() *Resource[T] {
	return &Resource[T]{phase: Idle}
}

// Begin marks the start of a request and returns its ticket. The phase
// becomes Loading from any state; Idle is never re-entered afterwards.
// Beginning while already Loading does not cancel anything, it only makes
// the in-flight request stale.
func (r *Resource[T]) Begin() Ticket {
	r.mu.Lock()
	r.gen++
	t := Ticket{gen: r.gen}
	r.phase = Loading
	snap := r.snapshotLocked()
	subs := r.subs
	r.mu.Unlock()
	notify(subs, snap)
	return t
}

// Resolve completes the request identified by t. With a nil err the phase
// becomes Success carrying value; otherwise Error carrying err. Returns
// false when t is stale, in which case nothing is applied.
func (r *Resource[T]) Resolve(t Ticket, value T, err error) bool {
	r.mu.Lock()
	if t.gen != r.gen {
		r.mu.Unlock()
		return false
	}
	if err != nil {
		r.phase = Error
		r.err = err
	} else {
		r.phase = Success
		r.value = value
		r.err = nil
	}
	snap := r.snapshotLocked()
	subs := r.subs
	r.mu.Unlock()
	notify(subs, snap)
	return true
}

// Snapshot returns the current state.
func (r *Resource[T]) Snapshot() Snapshot[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Subscribe registers fn to be called after every transition. fn runs on
// the goroutine driving the transition and must not call back into the
// Resource.
func (r *Resource[T]) Subscribe(fn func(Snapshot[T])) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, fn)
}

func (r *Resource[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{Phase: r.phase, Value: r.value, Err: r.err}
}

func notify[T any](subs []func(Snapshot[T]), snap Snapshot[T]) {
	for _, fn := range subs {
		fn(snap)
	}
}
