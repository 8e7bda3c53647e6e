package mirror

import "context"

// Durable flag names. They are a projection of the store, never a source of truth.
const (
	FlagAuthToken          = "auth_token"
	FlagHasSelectedCompany = "has_selected_company"
)

// presentValue is written for presence-only flags.
const presentValue = "true"

// FlagWriter persists durable flags.
type FlagWriter interface {
	WriteFlag(ctx context.Context, name, value string) error
	ClearFlag(ctx context.Context, name string) error
}

// FlagReader answers presence questions for code outside the store, such as
// route guards.
type FlagReader interface {
	// ReadFlag returns the flag value and whether it is present.
	ReadFlag(ctx context.Context, name string) (string, bool, error)
}

// FlagStore is a backend that can both write and read flags.
type FlagStore interface {
	FlagWriter
	FlagReader
}

// SessionActive reports whether the auth_token flag is present.
func SessionActive(ctx context.Context, r FlagReader) (bool, error) {
	_, ok, err := r.ReadFlag(ctx, FlagAuthToken)
	return ok, err
}

// CompanySelected reports whether the has_selected_company flag is present.
func CompanySelected(ctx context.Context, r FlagReader) (bool, error) {
	_, ok, err := r.ReadFlag(ctx, FlagHasSelectedCompany)
	return ok, err
}
