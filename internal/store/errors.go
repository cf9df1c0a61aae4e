// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "errors"

// Sentinel errors returned by storage methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrBillNotFound is returned when no bill matches the requested id or
	// share code.
	ErrBillNotFound = errors.New("bill was not found")

	// ErrEntityNotFound is returned when an update or delete targets a child
	// row that does not exist in the locked bill.
	ErrEntityNotFound = errors.New("bill entity was not found")

	// ErrConcurrentWrite is returned when a competing transaction for the same
	// bill committed first: a serialization failure, a deadlock, a duplicate
	// sync receipt or a lost version compare-and-set.
	ErrConcurrentWrite = errors.New("concurrent write to the bill")

	// ErrReceiptNotFound is returned when no sync receipt matches a request
	// fingerprint.
	ErrReceiptNotFound = errors.New("sync receipt was not found")

	// ErrShareCodeTaken is returned when a generated share code collides with
	// an existing bill.
	ErrShareCodeTaken = errors.New("share code already exists")

	// ErrMemberAlreadyClaimed is returned when a user is linked to a second
	// member of the same bill.
	ErrMemberAlreadyClaimed = errors.New("user already claimed a member of this bill")

	// ErrLocalBillNotFound is returned by the client ledger repository.
	ErrLocalBillNotFound = errors.New("local bill was not found")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")

	// ErrEncodingState is returned when a local bill document cannot be
	// marshalled or unmarshalled.
	ErrEncodingState = errors.New("failed to encode local bill state")
)
