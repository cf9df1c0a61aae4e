// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// Sentinel errors used by the authentication middleware when parsing the
// "Authorization" HTTP header. Callers can match against them with [errors.Is].
var (
	// ErrInvalidAuthorizationHeader is returned when the "Authorization"
	// header is present but is not of the form "Bearer <token>".
	ErrInvalidAuthorizationHeader = errors.New("invalid `Authorization` header")

	// ErrAuthNotConfigured is returned when a request carries a bearer token
	// but the server has no key to verify it with.
	ErrAuthNotConfigured = errors.New("bearer tokens are not accepted by this server")

	// ErrMissingBillID is returned when the {id} route parameter is empty.
	ErrMissingBillID = errors.New("bill id is required")
)
