// Package statemachine provides small, typed finite state machines built from
// an immutable transition table.
//
//	table := statemachine.NewBuilder[Status]().
//		From(Idle).To(Pending).
//		From(Pending).To(Success, Failed).
//		From(Success, Failed).To(Pending).
//		Build()
//
//	m := statemachine.NewMachine(table, Idle)
//	if err := m.Fire(Success); err != nil {
//		// *ErrTransitionNotAllowed: idle cannot jump to success
//	}
//
// Tables are safe to share. Machines are not synchronized; the owner of the
// entity a machine describes is expected to hold its own lock.
package statemachine
