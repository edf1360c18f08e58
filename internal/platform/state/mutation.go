package state

import "sync"

// Outcome is the tri-state signal of a mutation, distinct from the fetch
// phase: Unset until a mutation resolves, then Succeeded or Failed. It is
// reset to Unset when a new mutation begins so a stale success cannot be
// misread.
type Outcome int

const (
	Unset Outcome = iota
	Succeeded
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unset"
}

// Mutation tracks one create/update/delete operation. Safe for concurrent
// use.
type Mutation struct {
	mu      sync.Mutex
	phase   Phase
	outcome Outcome
	err     error
	subs    []func(Outcome, error)
}

func NewMutation() *Mutation {
	return &Mutation{phase: Idle}
}

// Begin enters Loading and clears the outcome back to Unset.
func (m *Mutation) Begin() {
	m.mu.Lock()
	m.phase = Loading
	m.outcome = Unset
	m.err = nil
	m.mu.Unlock()
}

// Resolve records the result of the in-flight mutation and notifies
// subscribers.
func (m *Mutation) Resolve(err error) {
	m.mu.Lock()
	if err != nil {
		m.phase = Error
		m.outcome = Failed
		m.err = err
	} else {
		m.phase = Success
		m.outcome = Succeeded
	}
	outcome, subs := m.outcome, m.subs
	m.mu.Unlock()
	for _, fn := range subs {
		fn(outcome, err)
	}
}

// Outcome returns the current signal and the error when Failed.
func (m *Mutation) Outcome() (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outcome, m.err
}

// Consume reads the outcome and resets it to Unset. Listeners that react to
// a completed mutation (close the edit surface, refresh the list) use this
// so the signal fires once.
func (m *Mutation) Consume() Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := m.outcome
	m.outcome = Unset
	return o
}

// Subscribe registers fn to run after every Resolve.
func (m *Mutation) Subscribe(fn func(Outcome, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}
