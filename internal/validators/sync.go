// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/MKhiriev/go-bill-keeper/models"
	"github.com/shopspring/decimal"
)

// Field name constants used to restrict validation to a subset of checks.
const (
	// FieldBaseVersion targets the version the client last saw.
	FieldBaseVersion = "base_version"
	// FieldName targets the display name of a bill or an entity.
	FieldName = "name"
	// FieldLocalID targets the client-chosen temporary identity.
	FieldLocalID = "local_id"
	// FieldRemoteID targets the server identity of an update.
	FieldRemoteID = "remote_id"
	// FieldLocalIDs enforces unique local ids inside one collection.
	FieldLocalIDs = "local_ids"
	// FieldRemoteIDs enforces that an entity is updated at most once per
	// request.
	FieldRemoteIDs = "remote_ids"
	// FieldEntities validates every nested payload.
	FieldEntities = "entities"
	// FieldDisplayOrder targets the member display order.
	FieldDisplayOrder = "display_order"
	// FieldAmount targets a non-negative amount.
	FieldAmount = "amount"
	// FieldServiceFee targets the expense service fee percentage.
	FieldServiceFee = "service_fee"
	// FieldParticipants targets payer and participant references.
	FieldParticipants = "participants"
	// FieldExpenseRef targets the parent reference of an item.
	FieldExpenseRef = "expense_ref"
	// FieldSettlement targets the members and amount of a settlement.
	FieldSettlement = "settlement"
	// FieldChanges requires an update to carry at least one field.
	FieldChanges = "changes"
)

// MaxNameLength bounds bill and entity names, in runes.
const MaxNameLength = 128

var hundred = decimal.NewFromInt(100)

// SyncRequestValidator checks the shape of sync requests before any storage
// access. Referential integrity against the stored bill is the reconciler's
// job.
type SyncRequestValidator struct {
}

func NewSyncRequestValidator() Validator {
	return &SyncRequestValidator{}
}

func (v *SyncRequestValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.FullSyncRequest:
		return v.validateFullSync(ctx, value, fields...)
	case *models.FullSyncRequest:
		return v.validateFullSync(ctx, *value, fields...)

	case models.DeltaSyncRequest:
		return v.validateDeltaSync(ctx, value, fields...)
	case *models.DeltaSyncRequest:
		return v.validateDeltaSync(ctx, *value, fields...)

	case models.MemberPayload:
		return v.validateMember(value, fields...)
	case models.ExpensePayload:
		return v.validateExpense(value, fields...)
	case models.ItemPayload:
		return v.validateItem(value, fields...)
	case models.SettlementPayload:
		return v.validateSettlement(value, fields...)

	case models.MemberUpdate:
		return v.validateMemberUpdate(value, fields...)
	case models.ExpenseUpdate:
		return v.validateExpenseUpdate(value, fields...)
	case models.ItemUpdate:
		return v.validateItemUpdate(value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func (v *SyncRequestValidator) validateFullSync(ctx context.Context, request models.FullSyncRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldBaseVersion, FieldName, FieldLocalIDs, FieldEntities}
	}

	for _, f := range fields {
		switch f {
		case FieldBaseVersion:
			if request.BaseVersion < 0 {
				return ErrInvalidBaseVersion
			}
		case FieldName:
			if err := validateName(request.Name); err != nil {
				return fmt.Errorf("bill: %w", err)
			}
		case FieldLocalIDs:
			if err := uniqueIDs("members", request.Members, func(m models.MemberPayload) string { return m.LocalID }); err != nil {
				return err
			}
			if err := uniqueIDs("expenses", request.Expenses, func(e models.ExpensePayload) string { return e.LocalID }); err != nil {
				return err
			}
			if err := uniqueIDs("items", request.Items, func(i models.ItemPayload) string { return i.LocalID }); err != nil {
				return err
			}
			if err := uniqueIDs("settlements", request.Settlements, func(s models.SettlementPayload) string { return s.LocalID }); err != nil {
				return err
			}
		case FieldEntities:
			if err := v.validateAdds(ctx, request.Members, request.Expenses, request.Items, request.Settlements); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *SyncRequestValidator) validateDeltaSync(ctx context.Context, request models.DeltaSyncRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldBaseVersion, FieldName, FieldLocalIDs, FieldRemoteIDs, FieldEntities}
	}

	for _, f := range fields {
		switch f {
		case FieldBaseVersion:
			if request.BaseVersion < 0 {
				return ErrInvalidBaseVersion
			}
		case FieldName:
			if request.Bill != nil && request.Bill.Name != nil {
				if err := validateName(*request.Bill.Name); err != nil {
					return fmt.Errorf("bill: %w", err)
				}
			}
		case FieldLocalIDs:
			if err := uniqueIDs("members.add", request.Members.Add, func(m models.MemberPayload) string { return m.LocalID }); err != nil {
				return err
			}
			if err := uniqueIDs("expenses.add", request.Expenses.Add, func(e models.ExpensePayload) string { return e.LocalID }); err != nil {
				return err
			}
			if err := uniqueIDs("items.add", request.Items.Add, func(i models.ItemPayload) string { return i.LocalID }); err != nil {
				return err
			}
			if err := uniqueIDs("settlements.add", request.Settlements.Add, func(s models.SettlementPayload) string { return s.LocalID }); err != nil {
				return err
			}
		case FieldRemoteIDs:
			if err := uniqueRemoteIDs("members.update", request.Members.Update, func(u models.MemberUpdate) string { return u.RemoteID }); err != nil {
				return err
			}
			if err := uniqueRemoteIDs("expenses.update", request.Expenses.Update, func(u models.ExpenseUpdate) string { return u.RemoteID }); err != nil {
				return err
			}
			if err := uniqueRemoteIDs("items.update", request.Items.Update, func(u models.ItemUpdate) string { return u.RemoteID }); err != nil {
				return err
			}
			deletes := []struct {
				name string
				ids  []string
			}{
				{"members.delete", request.Members.Delete},
				{"expenses.delete", request.Expenses.Delete},
				{"items.delete", request.Items.Delete},
				{"settlements.delete", request.Settlements.Delete},
			}
			for _, d := range deletes {
				if err := uniqueRemoteIDs(d.name, d.ids, func(id string) string { return id }); err != nil {
					return err
				}
			}
		case FieldEntities:
			if err := v.validateAdds(ctx, request.Members.Add, request.Expenses.Add, request.Items.Add, request.Settlements.Add); err != nil {
				return err
			}
			if err := validateEach("members.update", request.Members.Update, func(u models.MemberUpdate) error { return v.validateMemberUpdate(u) }); err != nil {
				return err
			}
			if err := validateEach("expenses.update", request.Expenses.Update, func(u models.ExpenseUpdate) error { return v.validateExpenseUpdate(u) }); err != nil {
				return err
			}
			if err := validateEach("items.update", request.Items.Update, func(u models.ItemUpdate) error { return v.validateItemUpdate(u) }); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *SyncRequestValidator) validateAdds(_ context.Context, members []models.MemberPayload, expenses []models.ExpensePayload,
	items []models.ItemPayload, settlements []models.SettlementPayload) error {
	if err := validateEach("members", members, func(m models.MemberPayload) error { return v.validateMember(m) }); err != nil {
		return err
	}
	if err := validateEach("expenses", expenses, func(e models.ExpensePayload) error { return v.validateExpense(e) }); err != nil {
		return err
	}
	if err := validateEach("items", items, func(i models.ItemPayload) error { return v.validateItem(i) }); err != nil {
		return err
	}
	return validateEach("settlements", settlements, func(s models.SettlementPayload) error { return v.validateSettlement(s) })
}

func (v *SyncRequestValidator) validateMember(member models.MemberPayload, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldLocalID, FieldName, FieldDisplayOrder}
	}

	for _, f := range fields {
		switch f {
		case FieldLocalID:
			if member.LocalID == "" {
				return ErrEmptyLocalID
			}
		case FieldName:
			if err := validateName(member.Name); err != nil {
				return err
			}
		case FieldDisplayOrder:
			if member.DisplayOrder < 0 {
				return ErrInvalidDisplayOrder
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *SyncRequestValidator) validateExpense(expense models.ExpensePayload, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldLocalID, FieldName, FieldAmount, FieldServiceFee, FieldParticipants}
	}

	for _, f := range fields {
		switch f {
		case FieldLocalID:
			if expense.LocalID == "" {
				return ErrEmptyLocalID
			}
		case FieldName:
			if err := validateName(expense.Name); err != nil {
				return err
			}
		case FieldAmount:
			if expense.Amount.IsNegative() {
				return ErrNegativeAmount
			}
		case FieldServiceFee:
			if err := validateServiceFee(expense.ServiceFeePercent); err != nil {
				return err
			}
		case FieldParticipants:
			if err := validateReferences(expense.PaidBy, expense.Participants); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *SyncRequestValidator) validateItem(item models.ItemPayload, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldLocalID, FieldExpenseRef, FieldName, FieldAmount, FieldParticipants}
	}

	for _, f := range fields {
		switch f {
		case FieldLocalID:
			if item.LocalID == "" {
				return ErrEmptyLocalID
			}
		case FieldExpenseRef:
			if item.ExpenseRef == "" {
				return ErrEmptyReference
			}
		case FieldName:
			if err := validateName(item.Name); err != nil {
				return err
			}
		case FieldAmount:
			if item.Amount.IsNegative() {
				return ErrNegativeAmount
			}
		case FieldParticipants:
			if err := validateReferences(item.PaidBy, item.Participants); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *SyncRequestValidator) validateSettlement(settlement models.SettlementPayload, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldLocalID, FieldSettlement}
	}

	for _, f := range fields {
		switch f {
		case FieldLocalID:
			if settlement.LocalID == "" {
				return ErrEmptyLocalID
			}
		case FieldSettlement:
			if settlement.FromMember == "" || settlement.ToMember == "" {
				return ErrEmptyReference
			}
			if settlement.FromMember == settlement.ToMember {
				return ErrSelfSettlement
			}
			if !settlement.Amount.IsPositive() {
				return ErrInvalidSettlementAmount
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *SyncRequestValidator) validateMemberUpdate(update models.MemberUpdate, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldRemoteID, FieldName, FieldDisplayOrder, FieldChanges}
	}

	for _, f := range fields {
		switch f {
		case FieldRemoteID:
			if update.RemoteID == "" {
				return ErrEmptyRemoteID
			}
		case FieldName:
			if update.Name != nil {
				if err := validateName(*update.Name); err != nil {
					return err
				}
			}
		case FieldDisplayOrder:
			if update.DisplayOrder != nil && *update.DisplayOrder < 0 {
				return ErrInvalidDisplayOrder
			}
		case FieldChanges:
			if update.Name == nil && update.OriginalName == nil && update.DisplayOrder == nil &&
				update.UserID == nil && update.ClaimedAt == nil {
				return ErrNoFieldsToUpdate
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *SyncRequestValidator) validateExpenseUpdate(update models.ExpenseUpdate, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldRemoteID, FieldName, FieldAmount, FieldServiceFee, FieldParticipants, FieldChanges}
	}

	for _, f := range fields {
		switch f {
		case FieldRemoteID:
			if update.RemoteID == "" {
				return ErrEmptyRemoteID
			}
		case FieldName:
			if update.Name != nil {
				if err := validateName(*update.Name); err != nil {
					return err
				}
			}
		case FieldAmount:
			if update.Amount != nil && update.Amount.IsNegative() {
				return ErrNegativeAmount
			}
		case FieldServiceFee:
			if update.ServiceFeePercent != nil {
				if err := validateServiceFee(*update.ServiceFeePercent); err != nil {
					return err
				}
			}
		case FieldParticipants:
			if update.Participants != nil {
				if err := validateReferences(nil, *update.Participants); err != nil {
					return err
				}
			}
		case FieldChanges:
			if update.Name == nil && update.Amount == nil && update.ServiceFeePercent == nil &&
				update.IsItemized == nil && update.PaidBy == nil && update.Participants == nil {
				return ErrNoFieldsToUpdate
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *SyncRequestValidator) validateItemUpdate(update models.ItemUpdate, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldRemoteID, FieldName, FieldAmount, FieldParticipants, FieldChanges}
	}

	for _, f := range fields {
		switch f {
		case FieldRemoteID:
			if update.RemoteID == "" {
				return ErrEmptyRemoteID
			}
		case FieldName:
			if update.Name != nil {
				if err := validateName(*update.Name); err != nil {
					return err
				}
			}
		case FieldAmount:
			if update.Amount != nil && update.Amount.IsNegative() {
				return ErrNegativeAmount
			}
		case FieldParticipants:
			if update.Participants != nil {
				if err := validateReferences(nil, *update.Participants); err != nil {
					return err
				}
			}
		case FieldChanges:
			if update.Name == nil && update.Amount == nil && update.PaidBy == nil && update.Participants == nil {
				return ErrNoFieldsToUpdate
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func validateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

func validateServiceFee(fee decimal.Decimal) error {
	if fee.IsNegative() || fee.GreaterThan(hundred) {
		return ErrInvalidServiceFee
	}
	return nil
}

func validateReferences(paidBy *string, participants []string) error {
	if paidBy != nil && *paidBy == "" {
		return ErrEmptyReference
	}

	seen := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		if p == "" {
			return ErrInvalidParticipants
		}
		if _, dup := seen[p]; dup {
			return ErrInvalidParticipants
		}
		seen[p] = struct{}{}
	}
	return nil
}

func validateEach[T any](collection string, list []T, check func(T) error) error {
	for i, item := range list {
		if err := check(item); err != nil {
			return fmt.Errorf("validation error at %s[%d]: %w", collection, i, err)
		}
	}
	return nil
}

func uniqueIDs[T any](collection string, list []T, id func(T) string) error {
	seen := make(map[string]struct{}, len(list))
	for i, item := range list {
		key := id(item)
		if key == "" {
			return fmt.Errorf("validation error at %s[%d]: %w", collection, i, ErrEmptyLocalID)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("validation error at %s[%d]: %w %q", collection, i, ErrDuplicateLocalID, key)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func uniqueRemoteIDs[T any](collection string, list []T, id func(T) string) error {
	seen := make(map[string]struct{}, len(list))
	for i, item := range list {
		key := id(item)
		if key == "" {
			return fmt.Errorf("validation error at %s[%d]: %w", collection, i, ErrEmptyRemoteID)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("validation error at %s[%d]: %w %q", collection, i, ErrDuplicateRemoteID, key)
		}
		seen[key] = struct{}{}
	}
	return nil
}
