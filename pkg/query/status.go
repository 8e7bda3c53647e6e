package query

import "github.com/dmitrymomot/ledgerchat/pkg/statemachine"

// Status is the lifecycle state of a cache entry.
type Status uint8

const (
	StatusIdle Status = iota
	StatusPending
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// transitions is the entry lifecycle. Nothing leads back to idle: an entry
// returns there only by leaving the cache.
var transitions = statemachine.NewBuilder[Status]().
	From(StatusIdle).To(StatusPending).
	From(StatusPending).To(StatusSuccess, StatusError).
	From(StatusSuccess, StatusError).To(StatusPending).
	Build()
