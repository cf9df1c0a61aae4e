// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared application-layer constants used across the
// bill-keeper server handlers, middleware and the client adapter.
//
// All Msg* constants are human-readable message strings that are written into
// HTTP response bodies or log entries to describe the outcome of an operation.
// The client matches some of them to tell failures apart, so the wording is
// part of the wire contract.
package app

const (
	// MsgInvalidDataProvided is returned when the request body cannot be
	// decoded as JSON.
	MsgInvalidDataProvided = "invalid data provided"

	// MsgInternalServerError is returned when an unexpected server-side
	// failure occurs that the client cannot resolve.
	MsgInternalServerError = "internal server error"

	// MsgTokenIsExpiredOrInvalid is returned when a JWT bearer token is
	// either expired or cannot be verified (e.g. wrong signature).
	MsgTokenIsExpiredOrInvalid = "token is expired or invalid"

	// MsgIntegrityCheckFailed is returned when the HashSHA256 header does
	// not match the request body.
	MsgIntegrityCheckFailed = "integrity check failed"

	// MsgBillNotFound is returned when the bill id or share code is unknown.
	MsgBillNotFound = "bill not found"

	// MsgShareCodeExhausted is returned when no free share code could be
	// allocated for a new bill.
	MsgShareCodeExhausted = "could not allocate a share code"

	// MsgVersionIsNotSpecified is returned when the server has no version
	// to report.
	MsgVersionIsNotSpecified = "version is not specified"

	// MsgStorageUnavailable is returned by the health check when the
	// storage does not answer.
	MsgStorageUnavailable = "storage unavailable"
)
