// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package ledger

import "errors"

var (
	// ErrBillNotFound is returned when no local bill has the given ID.
	ErrBillNotFound = errors.New("local bill not found")

	// ErrEntityNotFound is returned when a transition targets a member,
	// expense, item or settlement the bill does not contain.
	ErrEntityNotFound = errors.New("entity not found in bill")

	// ErrInvalidReference is returned when a payer, participant, parent
	// expense or settlement party does not belong to the bill.
	ErrInvalidReference = errors.New("reference to an entity outside the bill")

	// ErrInvalidInput is returned for values no sync request may carry.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNothingToSync is returned by BeginSync when the prepared request is
	// empty.
	ErrNothingToSync = errors.New("nothing to sync")

	// ErrNoSyncInFlight is returned when a sync outcome is applied to a bill
	// without an in-flight request.
	ErrNoSyncInFlight = errors.New("no sync in flight")

	// ErrPersisting is returned when the repository rejects the next state.
	// The in-memory state is left unchanged.
	ErrPersisting = errors.New("failed to persist local bill")
)
