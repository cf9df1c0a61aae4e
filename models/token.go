// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Token wraps a verified JWT of a registered user.
//
// Guests never carry a token; a bill edited by a guest has no owner and the
// guest is identified by its client ID only.
type Token struct {
	// Token is the underlying parsed JWT.
	*jwt.Token `json:"-"`

	jwt.RegisteredClaims

	// SignedString is the compact JWS representation of the token.
	SignedString string `json:"-"`

	// UserID is the identity from the "sub" claim.
	UserID string `json:"-"`
}

// GetUserID returns the "sub" claim of the token.
func (t *Token) GetUserID() (string, error) {
	userID, err := t.GetSubject()
	if err != nil {
		return "", fmt.Errorf("error extracting UserID from token: %w", err)
	}
	if userID == "" {
		return "", errors.New("token subject is empty")
	}

	return userID, nil
}

// String returns the compact JWS serialization of the token.
func (t *Token) String() string {
	return t.SignedString
}

// Actor identifies who performed a write: a registered user, a guest client,
// or both.
type Actor struct {
	UserID   string
	ClientID string
}

// ID returns the identity reported to peers: the user when authenticated,
// the client otherwise.
func (a Actor) ID() string {
	if a.UserID != "" {
		return a.UserID
	}
	if a.ClientID != "" {
		return a.ClientID
	}
	return "guest"
}
