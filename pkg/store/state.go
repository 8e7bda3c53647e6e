package store

// State is an immutable snapshot of the session. A new snapshot is created
// for every transition that changes anything, so pointer equality on *State
// (or on the User/SelectedCompany it holds) means "nothing changed".
type State struct {
	// Token is the opaque bearer token; empty means no session.
	Token string

	User *User

	// SelectedCompany points into User.Companies.
	SelectedCompany *Company

	// Version increases by one with every applied transition.
	Version uint64
}

var emptyState = &State{}

// HasSession reports whether a token is present.
func (s *State) HasSession() bool {
	return s != nil && s.Token != ""
}

// HasCompany reports whether a company is selected.
func (s *State) HasCompany() bool {
	return s != nil && s.SelectedCompany != nil
}

// normalize repairs a seeded state so it satisfies the store invariants:
// no user or company without a token, and a selected company that belongs to
// the user.
func normalize(s *State) *State {
	if s == nil || s.Token == "" {
		return &State{}
	}
	user := s.User.clone()
	next := &State{Token: s.Token, User: user, Version: s.Version}
	if s.SelectedCompany != nil {
		next.SelectedCompany = user.Company(s.SelectedCompany.ID)
	}
	return next
}
