// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package grpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/MKhiriev/go-bill-keeper/internal/app"
	"github.com/MKhiriev/go-bill-keeper/internal/service"
	"github.com/MKhiriev/go-bill-keeper/internal/store"
)

var (
	errMissingBillID              = status.Error(codes.InvalidArgument, "bill id is required")
	errInvalidAuthorizationHeader = status.Error(codes.Unauthenticated, "invalid authorization header")
	errAuthNotConfigured          = status.Error(codes.Unauthenticated, "authentication is not configured")
	errTokenRejected              = status.Error(codes.Unauthenticated, app.MsgTokenIsExpiredOrInvalid)
	errInternal                   = status.Error(codes.Internal, app.MsgInternalServerError)
)

// toStatus converts a service error into a gRPC status error. Messages match
// the ones the HTTP transport puts into its error bodies.
func toStatus(err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrBillNotFound), errors.Is(err, store.ErrBillNotFound):
		return status.Error(codes.NotFound, app.MsgBillNotFound)
	case errors.Is(err, store.ErrConcurrentWrite):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, service.ErrStorageUnavailable):
		return status.Error(codes.Unavailable, app.MsgStorageUnavailable)
	case errors.Is(err, service.ErrShareCodeExhausted):
		return status.Error(codes.Internal, app.MsgShareCodeExhausted)
	default:
		return errInternal
	}
}
