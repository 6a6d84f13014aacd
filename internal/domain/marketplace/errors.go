package marketplace

import "errors"

// Upstream API errors
var (
	// ErrUnauthorized is returned when the marketplace rejects the token.
	// Callers deactivate every credential of the user on this error.
	ErrUnauthorized    = errors.New("marketplace: unauthorized")
	ErrRateLimited     = errors.New("marketplace: rate limited")
	ErrUnavailable     = errors.New("marketplace: service unavailable")
	ErrInvalidResponse = errors.New("marketplace: invalid response")
	ErrRequestFailed   = errors.New("marketplace: request failed")
)

