// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for communicating with
// the bill-keeper server.
//
// The primary abstraction is [ServerAdapter], which decouples the sync client
// from the underlying protocol. The package ships an HTTP/REST implementation
// ([NewHTTPServerAdapter]) on top of resty, with bill update events streamed
// over a websocket.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling (e.g. [ErrVersionConflict] for 409, [ErrUnauthorized] for 401).
package adapter

import (
	"context"
	"encoding/json"

	"github.com/MKhiriev/go-bill-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// ServerAdapter defines transport-agnostic communication with the bill-keeper
// server. Implementations are responsible for authentication headers, the
// body integrity hash and mapping transport-level errors to the sentinel
// values defined in this package.
type ServerAdapter interface {
	// SetToken stores the bearer token attached to every subsequent request.
	// An empty token makes the client a guest identified by its client ID.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter.
	Token() string

	// FullSync posts an encoded [models.FullSyncRequest]. The body is sent as
	// is, so a resent request is byte-identical to the first attempt.
	FullSync(ctx context.Context, body json.RawMessage) (models.FullSyncResponse, error)

	// DeltaSync posts an encoded [models.DeltaSyncRequest] for billID.
	DeltaSync(ctx context.Context, billID string, body json.RawMessage) (models.DeltaSyncResponse, error)

	// GetBill fetches the current server state of billID.
	GetBill(ctx context.Context, billID string) (models.Bill, error)

	// GetBillByShareCode fetches the bill behind a share code.
	GetBillByShareCode(ctx context.Context, shareCode string) (models.Bill, error)

	// GetBalances fetches the balances the server computes for billID.
	GetBalances(ctx context.Context, billID string) (models.Balances, error)

	// Ping reports whether the server is reachable and healthy.
	Ping(ctx context.Context) error

	// SubscribeBillEvents streams update events of billID. The channel is
	// closed when ctx is done or the connection drops.
	SubscribeBillEvents(ctx context.Context, billID string) (<-chan models.BillUpdatedEvent, error)
}
