package mirror

import "context"

// Sealer encrypts and decrypts flag values. *secrets.Sealer implements it.
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

// SealedFlags keeps the auth_token value encrypted in the wrapped backend.
// Presence-only flags pass through unchanged. A token that cannot be opened
// reads as absent, like a forged signed cookie.
type SealedFlags struct {
	next   FlagStore
	sealer Sealer
}

func NewSealedFlags(next FlagStore, s Sealer) *SealedFlags {
	return &SealedFlags{next: next, sealer: s}
}

func (f *SealedFlags) WriteFlag(ctx context.Context, name, value string) error {
	if name == FlagAuthToken {
		sealed, err := f.sealer.Seal(value)
		if err != nil {
			return err
		}
		value = sealed
	}
	return f.next.WriteFlag(ctx, name, value)
}

func (f *SealedFlags) ClearFlag(ctx context.Context, name string) error {
	return f.next.ClearFlag(ctx, name)
}

func (f *SealedFlags) ReadFlag(ctx context.Context, name string) (string, bool, error) {
	value, ok, err := f.next.ReadFlag(ctx, name)
	if err != nil || !ok || name != FlagAuthToken {
		return value, ok, err
	}
	plain, err := f.sealer.Open(value)
	if err != nil {
		return "", false, nil
	}
	return plain, true, nil
}
