// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks sync requests before the reconciler touches
// storage. Validators know nothing about transport or persistence.
package validators

import "context"

// Validator reports whether a request is acceptable. fields, when given,
// narrow the check to the named parts of the value.
type Validator interface {
	Validate(ctx context.Context, value any, fields ...string) error
}
