package query

import "errors"

var (
	// ErrAuthMissing disables a query whose operation needs a token while
	// nobody is signed in. It never surfaces as a fetch error.
	ErrAuthMissing = errors.New("query.auth_missing")

	// ErrParameterMissing disables a query while a required parameter, such
	// as the selected company id, is absent.
	ErrParameterMissing = errors.New("query.parameter_missing")

	// ErrDisabled is reported when the caller turned the query off.
	ErrDisabled = errors.New("query.disabled")

	ErrClosed         = errors.New("query.client_closed")
	ErrObserverClosed = errors.New("query.observer_closed")
)
