// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidBaseVersion      = errors.New("base version must not be negative")
	ErrEmptyName               = errors.New("name is required")
	ErrNameTooLong             = errors.New("name is too long")
	ErrEmptyLocalID            = errors.New("local id is required")
	ErrDuplicateLocalID        = errors.New("duplicate local id")
	ErrEmptyRemoteID           = errors.New("remote id is required")
	ErrDuplicateRemoteID       = errors.New("duplicate remote id")
	ErrInvalidDisplayOrder     = errors.New("display order must not be negative")
	ErrNegativeAmount          = errors.New("amount must not be negative")
	ErrInvalidServiceFee       = errors.New("service fee percent must be between 0 and 100")
	ErrInvalidParticipants     = errors.New("participants must be distinct non-empty references")
	ErrEmptyReference          = errors.New("reference is required")
	ErrSelfSettlement          = errors.New("settlement must be between two different members")
	ErrInvalidSettlementAmount = errors.New("settlement amount must be positive")
	ErrNoFieldsToUpdate        = errors.New("at least one field must be provided for update")
)
