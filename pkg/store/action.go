package store

import "fmt"

// Action is a named store transition. The set of actions is closed: only the
// types declared in this package implement it.
type Action interface {
	ActionName() string
	action()
}

// SetUserData starts a session: token and profile are replaced together.
// A previously selected company survives only if the new profile still lists it.
type SetUserData struct {
	User  *User
	Token string
}

// ClearUser ends the session. Token, profile and selected company are all cleared.
type ClearUser struct{}

// SelectCompany selects one of the user's companies. An empty CompanyID
// clears the selection.
type SelectCompany struct {
	CompanyID string
}

// DeselectCompany clears the selected company and keeps the session.
type DeselectCompany struct{}

// UpdateUser replaces the profile of the current session, for example after a
// users/me refetch. The selection is dropped if the company disappeared.
type UpdateUser struct {
	User *User
}

func (SetUserData) ActionName() string     { return "set_user_data" }
func (ClearUser) ActionName() string       { return "clear_user" }
func (SelectCompany) ActionName() string   { return "select_company" }
func (DeselectCompany) ActionName() string { return "deselect_company" }
func (UpdateUser) ActionName() string      { return "update_user" }

func (SetUserData) action()     {}
func (ClearUser) action()       {}
func (SelectCompany) action()   {}
func (DeselectCompany) action() {}
func (UpdateUser) action()      {}

// reduce computes the next state. It returns prev itself when the action does
// not change anything.
func reduce(prev *State, a Action) (*State, error) {
	switch a := a.(type) {
	case SetUserData:
		if a.Token == "" {
			return prev, ErrTokenRequired
		}
		if a.User == nil {
			return prev, ErrUserRequired
		}
		user := a.User.clone()
		next := &State{Token: a.Token, User: user, Version: prev.Version + 1}
		// a selection survives only a new profile of the same user
		if prev.SelectedCompany != nil && prev.User != nil && prev.User.ID == user.ID {
			next.SelectedCompany = user.Company(prev.SelectedCompany.ID)
		}
		return next, nil

	case ClearUser:
		if prev.Token == "" && prev.User == nil && prev.SelectedCompany == nil {
			return prev, nil
		}
		return &State{Version: prev.Version + 1}, nil

	case SelectCompany:
		if a.CompanyID == "" {
			return reduce(prev, DeselectCompany{})
		}
		if prev.User == nil {
			return prev, fmt.Errorf("%w: no user profile loaded", ErrInvalidSelection)
		}
		company := prev.User.Company(a.CompanyID)
		if company == nil {
			return prev, fmt.Errorf("%w: company %q is not available to user %q", ErrInvalidSelection, a.CompanyID, prev.User.ID)
		}
		if company == prev.SelectedCompany {
			return prev, nil
		}
		next := *prev
		next.SelectedCompany = company
		next.Version++
		return &next, nil

	case DeselectCompany:
		if prev.SelectedCompany == nil {
			return prev, nil
		}
		next := *prev
		next.SelectedCompany = nil
		next.Version++
		return &next, nil

	case UpdateUser:
		if a.User == nil {
			return prev, ErrUserRequired
		}
		if prev.Token == "" {
			return prev, ErrNoSession
		}
		user := a.User.clone()
		next := &State{Token: prev.Token, User: user, Version: prev.Version + 1}
		if prev.SelectedCompany != nil {
			next.SelectedCompany = user.Company(prev.SelectedCompany.ID)
		}
		return next, nil

	default:
		return prev, fmt.Errorf("%w: %T", ErrUnknownAction, a)
	}
}
