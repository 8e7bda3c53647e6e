// Package store holds the session state of one client: bearer token, user
// profile and selected company.
//
// The Store is a reducer over a closed set of actions (SetUserData, ClearUser,
// SelectCompany, DeselectCompany, UpdateUser). Dispatch is the only way to
// change state. Each applied transition produces a new immutable *State
// snapshot, runs the registered hooks synchronously (the persistence mirror
// is one) and then notifies subscribers.
//
//	s := store.New(store.WithHook(m.Hook()))
//	_ = s.Dispatch(ctx, store.SetUserData{User: user, Token: token})
//	if err := s.Dispatch(ctx, store.SelectCompany{CompanyID: "c1"}); errors.Is(err, store.ErrInvalidSelection) {
//		// the user does not belong to c1; state is unchanged
//	}
//
// The store performs no I/O of its own.
package store
