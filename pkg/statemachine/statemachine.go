package statemachine

import "fmt"

// Table is an immutable set of allowed transitions between states of type S.
// Build one with NewBuilder and share it between any number of machines.
type Table[S comparable] struct {
	allowed map[S]map[S]struct{}
}

// Can reports whether moving from one state to another is allowed.
func (t *Table[S]) Can(from, to S) bool {
	if t == nil {
		return false
	}
	_, ok := t.allowed[from][to]
	return ok
}

// Targets returns the states reachable from the given state in one step.
func (t *Table[S]) Targets(from S) []S {
	if t == nil {
		return nil
	}
	out := make([]S, 0, len(t.allowed[from]))
	for to := range t.allowed[from] {
		out = append(out, to)
	}
	return out
}

// Machine tracks the current state of one entity against a Table.
// A Machine is not safe for concurrent use; callers guard it with the lock
// that protects the owning entity.
type Machine[S comparable] struct {
	table   *Table[S]
	current S
	hooks   []Hook[S]
}

// Hook observes a completed transition.
type Hook[S comparable] func(from, to S)

// NewMachine returns a machine positioned at the initial state.
func NewMachine[S comparable](table *Table[S], initial S, hooks ...Hook[S]) *Machine[S] {
	return &Machine[S]{table: table, current: initial, hooks: hooks}
}

func (m *Machine[S]) Current() S {
	return m.current
}

// Fire moves the machine to the target state, or returns
// *ErrTransitionNotAllowed and leaves the state unchanged.
func (m *Machine[S]) Fire(to S) error {
	from := m.current
	if !m.table.Can(from, to) {
		return &ErrTransitionNotAllowed{From: fmt.Sprint(from), To: fmt.Sprint(to)}
	}
	m.current = to
	for _, h := range m.hooks {
		h(from, to)
	}
	return nil
}

// MustFire is Fire for transitions the caller has already proven legal.
// It panics on an illegal transition, which always indicates a programming error.
func (m *Machine[S]) MustFire(to S) {
	if err := m.Fire(to); err != nil {
		panic(err)
	}
}
