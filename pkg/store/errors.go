package store

import "errors"

var (
	// ErrInvalidSelection is returned by SelectCompany when the company is not
	// in the current user's company list. The state is left unchanged.
	ErrInvalidSelection = errors.New("store.invalid_selection")

	ErrTokenRequired = errors.New("store.token_required")
	ErrUserRequired  = errors.New("store.user_required")
	ErrNoSession     = errors.New("store.no_session")
	ErrUnknownAction = errors.New("store.unknown_action")
	ErrClosed        = errors.New("store.closed")
)
