package fetch

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthMissing is returned without any network call when an
	// authenticated endpoint is called while no token is available.
	ErrAuthMissing = errors.New("fetch.auth_missing")

	// ErrNetworkFailure covers transport failures and non-2xx responses.
	// Expired credentials are not told apart from other failures.
	ErrNetworkFailure = errors.New("fetch.network_failure")

	ErrDecode              = errors.New("fetch.decode_failed")
	ErrMissingPathParam    = errors.New("fetch.missing_path_param")
	ErrUnknownRoot         = errors.New("fetch.unknown_root")
	ErrInvalidConfig       = errors.New("fetch.invalid_config")
	ErrInvalidRequestInput = errors.New("fetch.invalid_request")
)

// StatusError is a non-2xx response.
type StatusError struct {
	Method string
	URL    string
	Code   int
	// Body is the start of the response body, single line.
	Body string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.Code)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Unwrap makes every StatusError match ErrNetworkFailure.
func (e *StatusError) Unwrap() error {
	return ErrNetworkFailure
}
