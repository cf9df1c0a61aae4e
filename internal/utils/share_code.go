// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// ShareCodeLength is the length of a bill share code.
const ShareCodeLength = 8

// shareCodeAlphabet omits 0/O and 1/I/L.
const shareCodeAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// GenerateShareCode returns a random share code of [ShareCodeLength]
// characters drawn with crypto/rand.
func GenerateShareCode() (string, error) {
	limit := big.NewInt(int64(len(shareCodeAlphabet)))
	code := make([]byte, ShareCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("error generating share code: %w", err)
		}
		code[i] = shareCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
