// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"strings"

	"github.com/MKhiriev/go-bill-keeper/internal/adapter"
	"github.com/MKhiriev/go-bill-keeper/internal/app"
)

// mapAdapterError translates the adapter's transport error into a service business error
func mapAdapterError(err error) error {
	if err == nil {
		return nil
	}

	msg := extractBody(err)

	switch {
	case errors.Is(err, adapter.ErrNotFound):
		if msg == app.MsgBillNotFound {
			return ErrBillNotFound
		}

	case errors.Is(err, adapter.ErrUnauthorized):
		if msg == app.MsgTokenIsExpiredOrInvalid {
			return ErrTokenIsExpiredOrInvalid
		}

	case errors.Is(err, adapter.ErrValidation):
		if msg == app.MsgIntegrityCheckFailed {
			return ErrIntegrityCheckFailed
		}
		return errors.Join(ErrValidation, err)
	}

	return err
}

// extractBody extracts the body from a message of the form "bill not found: <body>"
func extractBody(err error) string {
	msg := err.Error()
	if idx := strings.LastIndex(msg, ": "); idx != -1 {
		return msg[idx+2:]
	}
	return msg
}
