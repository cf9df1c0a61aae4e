// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys, hashing,
// HTTP response writing, HTTP client initialization, JWT token generation
// and validation, identifier and share code generation.
package utils

import (
	"context"

	"github.com/MKhiriev/go-bill-keeper/models"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

var (
	// UserIDCtxKey stores the verified user identifier (JWT subject).
	UserIDCtxKey = contextKey("userID")
	// ClientIDCtxKey stores the X-Client-ID of a guest installation.
	ClientIDCtxKey = contextKey("clientID")
)

// GetUserIDFromContext retrieves the user identifier from the context.
//
// ok is false when the value is missing or has an unexpected type.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	return userID, ok && userID != ""
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDCtxKey, userID)
}

// WithClientID returns a copy of ctx carrying the guest client id.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, ClientIDCtxKey, clientID)
}

// ActorFromContext assembles the actor of the current request.
func ActorFromContext(ctx context.Context) models.Actor {
	userID, _ := GetUserIDFromContext(ctx)
	clientID, _ := ctx.Value(ClientIDCtxKey).(string)
	return models.Actor{UserID: userID, ClientID: clientID}
}
