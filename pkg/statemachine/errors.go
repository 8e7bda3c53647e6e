package statemachine

import "fmt"

// ErrTransitionNotAllowed indicates the table has no edge between two states.
type ErrTransitionNotAllowed struct {
	From string
	To   string
}

func (e *ErrTransitionNotAllowed) Error() string {
	return fmt.Sprintf("statemachine: transition from '%s' to '%s' is not allowed", e.From, e.To)
}
