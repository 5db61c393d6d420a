package domain

import "errors"

var (
	// ErrInvalidRequest means the caller omitted a required field.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidCredentials means no user holds the submitted terminal credential.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized means the session token is missing, malformed or stale.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrMalformedToken is returned by the session codec for tokens it cannot decode.
	ErrMalformedToken = errors.New("malformed session token")

	// ErrStorage means the repository was unavailable or rejected a write.
	ErrStorage = errors.New("storage failure")

	// ErrNotFound is returned by repositories when a lookup matches nothing.
	ErrNotFound = errors.New("not found")
)

// RequestError says which required input was missing. It matches ErrInvalidRequest.
type RequestError struct {
	Reason string
}

func (e *RequestError) Error() string { return "invalid request: " + e.Reason }

// Is reports whether target is ErrInvalidRequest
func (e *RequestError) Is(target error) bool { return target == ErrInvalidRequest }

// InvalidRequest returns a RequestError with reason
func InvalidRequest(reason string) error {
	return &RequestError{Reason: reason}
}
