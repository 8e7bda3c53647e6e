package fetch

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenFunc returns the current bearer token, or "" when signed out.
type TokenFunc func() string

// tokenSource reads the token on every request so a new login or logout is
// picked up without rebuilding the client.
type tokenSource struct {
	token TokenFunc
}

func (s tokenSource) Token() (*oauth2.Token, error) {
	t := s.token()
	if t == "" {
		return nil, ErrAuthMissing
	}
	return &oauth2.Token{AccessToken: t, TokenType: "Bearer"}, nil
}

type tokenKey struct{}

// WithToken makes calls made with ctx use token instead of the executor's
// token function, for example to load the profile while signing in.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey{}).(string)
	return t
}
