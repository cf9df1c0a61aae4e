package adapter

import "errors"

// Transport errors returned by every [ServerAdapter] method. The service
// layer decides on retries by matching them with [errors.Is].
var (
	// ErrNetwork is returned when the server could not be reached or the
	// connection broke before a response arrived.
	ErrNetwork = errors.New("network error")

	// ErrUnauthorized is returned for HTTP 401 and 403.
	ErrUnauthorized = errors.New("client unauthorized")

	// ErrVersionConflict is returned for HTTP 409.
	ErrVersionConflict = errors.New("version conflict")

	// ErrValidation is returned for HTTP 400 and 422. The server applied
	// nothing.
	ErrValidation = errors.New("request rejected by server")

	// ErrNotFound is returned for HTTP 404.
	ErrNotFound = errors.New("not found on server")

	// ErrServer is returned for HTTP 5xx.
	ErrServer = errors.New("server error")

	// ErrInvalidResponse is returned when a 2xx body cannot be decoded.
	ErrInvalidResponse = errors.New("invalid server response")
)
