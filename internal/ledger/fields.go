// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package ledger

import (
	"slices"
	"time"

	"github.com/MKhiriev/go-bill-keeper/models"
)

// Updatable fields per collection, in wire order.
var (
	MemberFields = []string{
		models.FieldName, models.FieldOriginalName, models.FieldDisplayOrder,
		models.FieldUserID, models.FieldClaimedAt,
	}
	ExpenseFields = []string{
		models.FieldName, models.FieldAmount, models.FieldServiceFeePercent,
		models.FieldIsItemized, models.FieldPaidBy, models.FieldParticipants,
	}
	ItemFields = []string{
		models.FieldName, models.FieldAmount, models.FieldPaidBy, models.FieldParticipants,
	}
)

func memberFieldEqual(field string, a, b models.LocalMember) bool {
	switch field {
	case models.FieldName:
		return a.Name == b.Name
	case models.FieldOriginalName:
		return equalPtr(a.OriginalName, b.OriginalName)
	case models.FieldDisplayOrder:
		return a.DisplayOrder == b.DisplayOrder
	case models.FieldUserID:
		return equalPtr(a.UserID, b.UserID)
	case models.FieldClaimedAt:
		return equalTime(a.ClaimedAt, b.ClaimedAt)
	}
	return true
}

func copyMemberField(field string, dst *models.LocalMember, src models.LocalMember) {
	switch field {
	case models.FieldName:
		dst.Name = src.Name
	case models.FieldOriginalName:
		dst.OriginalName = src.OriginalName
	case models.FieldDisplayOrder:
		dst.DisplayOrder = src.DisplayOrder
	case models.FieldUserID:
		dst.UserID = src.UserID
	case models.FieldClaimedAt:
		dst.ClaimedAt = src.ClaimedAt
	}
}

func expenseFieldEqual(field string, a, b models.LocalExpense) bool {
	switch field {
	case models.FieldName:
		return a.Name == b.Name
	case models.FieldAmount:
		return a.Amount.Equal(b.Amount)
	case models.FieldServiceFeePercent:
		return a.ServiceFeePercent.Equal(b.ServiceFeePercent)
	case models.FieldIsItemized:
		return a.IsItemized == b.IsItemized
	case models.FieldPaidBy:
		return a.PaidBy == b.PaidBy
	case models.FieldParticipants:
		return slices.Equal(a.Participants, b.Participants)
	}
	return true
}

func copyExpenseField(field string, dst *models.LocalExpense, src models.LocalExpense) {
	switch field {
	case models.FieldName:
		dst.Name = src.Name
	case models.FieldAmount:
		dst.Amount = src.Amount
	case models.FieldServiceFeePercent:
		dst.ServiceFeePercent = src.ServiceFeePercent
	case models.FieldIsItemized:
		dst.IsItemized = src.IsItemized
	case models.FieldPaidBy:
		dst.PaidBy = src.PaidBy
	case models.FieldParticipants:
		dst.Participants = slices.Clone(src.Participants)
	}
}

func itemFieldEqual(field string, a, b models.LocalItem) bool {
	switch field {
	case models.FieldName:
		return a.Name == b.Name
	case models.FieldAmount:
		return a.Amount.Equal(b.Amount)
	case models.FieldPaidBy:
		return a.PaidBy == b.PaidBy
	case models.FieldParticipants:
		return slices.Equal(a.Participants, b.Participants)
	}
	return true
}

func copyItemField(field string, dst *models.LocalItem, src models.LocalItem) {
	switch field {
	case models.FieldName:
		dst.Name = src.Name
	case models.FieldAmount:
		dst.Amount = src.Amount
	case models.FieldPaidBy:
		dst.PaidBy = src.PaidBy
	case models.FieldParticipants:
		dst.Participants = slices.Clone(src.Participants)
	}
}

// changed returns the fields of candidates whose values differ between a and
// b according to eq.
func changed[T any](candidates []string, a, b T, eq func(string, T, T) bool) []string {
	out := make([]string, 0, len(candidates))
	for _, f := range candidates {
		if !eq(f, a, b) {
			out = append(out, f)
		}
	}
	return out
}

// unchanged is the complement of changed.
func unchanged[T any](candidates []string, a, b T, eq func(string, T, T) bool) []string {
	out := make([]string, 0, len(candidates))
	for _, f := range candidates {
		if eq(f, a, b) {
			out = append(out, f)
		}
	}
	return out
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
