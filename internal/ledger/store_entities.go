// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package ledger

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MKhiriev/go-bill-keeper/models"
)

var hundred = decimal.NewFromInt(100)

// MemberInput describes a member to add.
type MemberInput struct {
	Name         string
	OriginalName *string
	DisplayOrder int
	UserID       *string
}

// MemberPatch lists member fields to change; nil means unchanged.
type MemberPatch struct {
	Name         *string
	OriginalName *string
	DisplayOrder *int
	UserID       *string
	ClaimedAt    *time.Time
}

// ExpenseInput describes an expense to add. References are local IDs.
type ExpenseInput struct {
	Name              string
	Amount            decimal.Decimal
	ServiceFeePercent decimal.Decimal
	IsItemized        bool
	PaidBy            string
	Participants      []string
}

// ExpensePatch lists expense fields to change; nil means unchanged and an
// empty PaidBy clears the payer.
type ExpensePatch struct {
	Name              *string
	Amount            *decimal.Decimal
	ServiceFeePercent *decimal.Decimal
	IsItemized        *bool
	PaidBy            *string
	Participants      *[]string
}

// ItemInput describes a line item of an itemized expense.
type ItemInput struct {
	ExpenseID    string
	Name         string
	Amount       decimal.Decimal
	PaidBy       string
	Participants []string
}

// ItemPatch lists item fields to change; nil means unchanged.
type ItemPatch struct {
	Name         *string
	Amount       *decimal.Decimal
	PaidBy       *string
	Participants *[]string
}

// SettlementInput records that FromMember paid ToMember.
type SettlementInput struct {
	FromMember string
	ToMember   string
	Amount     decimal.Decimal
}

// ── members ─────────────────────────────────────────────────────────────────

func (s *Store) AddMember(ctx context.Context, billID string, in MemberInput) (models.LocalMember, error) {
	var added models.LocalMember
	_, err := s.mutate(ctx, billID, func(b *models.LocalBill) error {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return fmt.Errorf("%w: member name is empty", ErrInvalidInput)
		}
		if in.DisplayOrder < 0 {
			return fmt.Errorf("%w: negative display order", ErrInvalidInput)
		}
		if in.UserID != nil && claimed(b.State, *in.UserID, "") {
			return fmt.Errorf("%w: user already claimed a member", ErrInvalidInput)
		}

		added = models.LocalMember{
			LocalID:      s.ids.Generate(),
			Name:         name,
			OriginalName: in.OriginalName,
			DisplayOrder: in.DisplayOrder,
			UserID:       in.UserID,
			Seq:          nextSeq(&b.State),
		}
		if in.UserID != nil {
			now := s.now()
			added.ClaimedAt = &now
		}
		b.State.Members[added.LocalID] = added
		RecordAdd(&b.Pending, models.EntityMember, added.LocalID)
		settleStatus(b)
		return nil
	})
	return added, err
}

func (s *Store) UpdateMember(ctx context.Context, billID, memberID string, patch MemberPatch) (models.LocalMember, error) {
	var updated models.LocalMember
	_, err := s.mutate(ctx, billID, func(b *models.LocalBill) error {
		m, ok := b.State.Members[memberID]
		if !ok {
			return fmt.Errorf("%w: member %s", ErrEntityNotFound, memberID)
		}
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return fmt.Errorf("%w: member name is empty", ErrInvalidInput)
			}
			m.Name = name
		}
		if patch.OriginalName != nil {
			m.OriginalName = patch.OriginalName
		}
		if patch.DisplayOrder != nil {
			if *patch.DisplayOrder < 0 {
				return fmt.Errorf("%w: negative display order", ErrInvalidInput)
			}
			m.DisplayOrder = *patch.DisplayOrder
		}
		if patch.UserID != nil {
			if claimed(b.State, *patch.UserID, memberID) {
				return fmt.Errorf("%w: user already claimed a member", ErrInvalidInput)
			}
			m.UserID = patch.UserID
		}
		if patch.ClaimedAt != nil {
			m.ClaimedAt = patch.ClaimedAt
		}

		editMember(b, m)
		updated = m
		return nil
	})
	return updated, err
}

// ClaimMember links a member to a registered user. The pre-claim name is kept
// as the original name.
func (s *Store) ClaimMember(ctx context.Context, billID, memberID, userID, displayName string) (models.LocalMember, error) {
	if userID == "" {
		return models.LocalMember{}, fmt.Errorf("%w: user ID is empty", ErrInvalidInput)
	}

	var claimedMember models.LocalMember
	_, err := s.mutate(ctx, billID, func(b *models.LocalBill) error {
		m, ok := b.State.Members[memberID]
		if !ok {
			return fmt.Errorf("%w: member %s", ErrEntityNotFound, memberID)
		}
		if claimed(b.State, userID, memberID) {
			return fmt.Errorf("%w: user already claimed a member", ErrInvalidInput)
		}

		if m.OriginalName == nil {
			original := m.Name
			m.OriginalName = &original
		}
		if name := strings.TrimSpace(displayName); name != "" {
			m.Name = name
		}
		now := s.now()
		m.UserID = &userID
		m.ClaimedAt = &now

		editMember(b, m)
		claimedMember = m
		return nil
	})
	return claimedMember, err
}

// DeleteMember removes a member together with the expenses and items it
// alone paid for or shared, strips it from other participant sets and drops
// its settlements.
func (s *Store) DeleteMember(ctx context.Context, billID, memberID string) (models.LocalBill, error) {
	return s.mutate(ctx, billID, func(b *models.LocalBill) error {
		if _, ok := b.State.Members[memberID]; !ok {
			return fmt.Errorf("%w: member %s", ErrEntityNotFound, memberID)
		}
		removeMember(b, memberID)
		settleStatus(b)
		return nil
	})
}

// ── expenses ────────────────────────────────────────────────────────────────

func (s *Store) AddExpense(ctx context.Context, billID string, in ExpenseInput) (models.LocalExpense, error) {
	var added models.LocalExpense
	_, err := s.mutate(ctx, billID, func(b *models.LocalBill) error {
		e := models.LocalExpense{
			LocalID:           s.ids.Generate(),
			Name:              strings.TrimSpace(in.Name),
			Amount:            in.Amount,
			ServiceFeePercent: in.ServiceFeePercent,
			IsItemized:        in.IsItemized,
			PaidBy:            in.PaidBy,
			Participants:      slices.Clone(in.Participants),
		}
		if e.Participants == nil {
			e.Participants = []string{}
		}
		if err := validateExpense(b.State, e); err != nil {
			return err
		}

		e.Seq = nextSeq(&b.State)
		b.State.Expenses[e.LocalID] = e
		RecordAdd(&b.Pending, models.EntityExpense, e.LocalID)
		settleStatus(b)
		added = e
		return nil
	})
	return added, err
}

func (s *Store) UpdateExpense(ctx context.Context, billID, expenseID string, patch ExpensePatch) (models.LocalExpense, error) {
	var updated models.LocalExpense
	_, err := s.mutate(ctx, billID, func(b *models.LocalBill) error {
		e, ok := b.State.Expenses[expenseID]
		if !ok {
			return fmt.Errorf("%w: expense %s", ErrEntityNotFound, expenseID)
		}
		if patch.Name != nil {
			e.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Amount != nil {
			e.Amount = *patch.Amount
		}
		if patch.ServiceFeePercent != nil {
			e.ServiceFeePercent = *patch.ServiceFeePercent
		}
		if patch.IsItemized != nil {
			e.IsItemized = *patch.IsItemized
		}
		if patch.PaidBy != nil {
			e.PaidBy = *patch.PaidBy
		}
		if patch.Participants != nil {
			e.Participants = slices.Clone(*patch.Participants)
			if e.Participants == nil {
				e.Participants = []string{}
			}
		}
		if err := validateExpense(b.State, e); err != nil {
			return err
		}

		editExpense(b, e)
		updated = e
		return nil
	})
	return updated, err
}

// DeleteExpense removes an expense and its items.
func (s *Store) DeleteExpense(ctx context.Context, billID, expenseID string) (models.LocalBill, error) {
	return s.mutate(ctx, billID, func(b *models.LocalBill) error {
		if _, ok := b.State.Expenses[expenseID]; !ok {
			return fmt.Errorf("%w: expense %s", ErrEntityNotFound, expenseID)
		}
		removeExpense(b, expenseID)
		settleStatus(b)
		return nil
	})
}

// ── items ───────────────────────────────────────────────────────────────────

func (s *Store) AddItem(ctx context.Context, billID string, in ItemInput) (models.LocalItem, error) {
	var added models.LocalItem
	_, err := s.mutate(ctx, billID, func(b *models.LocalBill) error {
		it := models.LocalItem{
			LocalID:      s.ids.Generate(),
			ExpenseID:    in.ExpenseID,
			Name:         strings.TrimSpace(in.Name),
			Amount:       in.Amount,
			PaidBy:       in.PaidBy,
			Participants: slices.Clone(in.Participants),
		}
		if it.Participants == nil {
			it.Participants = []string{}
		}
		if err := validateItem(b.State, it); err != nil {
			return err
		}

		it.Seq = nextSeq(&b.State)
		b.State.Items[it.LocalID] = it
		RecordAdd(&b.Pending, models.EntityItem, it.LocalID)
		settleStatus(b)
		added = it
		return nil
	})
	return added, err
}

func (s *Store) UpdateItem(ctx context.Context, billID, itemID string, patch ItemPatch) (models.LocalItem, error) {
	var updated models.LocalItem
	_, err := s.mutate(ctx, billID, func(b *models.LocalBill) error {
		it, ok := b.State.Items[itemID]
		if !ok {
			return fmt.Errorf("%w: item %s", ErrEntityNotFound, itemID)
		}
		if patch.Name != nil {
			it.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Amount != nil {
			it.Amount = *patch.Amount
		}
		if patch.PaidBy != nil {
			it.PaidBy = *patch.PaidBy
		}
		if patch.Participants != nil {
			it.Participants = slices.Clone(*patch.Participants)
			if it.Participants == nil {
				it.Participants = []string{}
			}
		}
		if err := validateItem(b.State, it); err != nil {
			return err
		}

		editItem(b, it)
		updated = it
		return nil
	})
	return updated, err
}

func (s *Store) DeleteItem(ctx context.Context, billID, itemID string) (models.LocalBill, error) {
	return s.mutate(ctx, billID, func(b *models.LocalBill) error {
		if _, ok := b.State.Items[itemID]; !ok {
			return fmt.Errorf("%w: item %s", ErrEntityNotFound, itemID)
		}
		removeItem(b, itemID)
		settleStatus(b)
		return nil
	})
}

// ── settlements ─────────────────────────────────────────────────────────────

func (s *Store) AddSettlement(ctx context.Context, billID string, in SettlementInput) (models.LocalSettlement, error) {
	var added models.LocalSettlement
	_, err := s.mutate(ctx, billID, func(b *models.LocalBill) error {
		if _, ok := b.State.Members[in.FromMember]; !ok {
			return fmt.Errorf("%w: member %s", ErrInvalidReference, in.FromMember)
		}
		if _, ok := b.State.Members[in.ToMember]; !ok {
			return fmt.Errorf("%w: member %s", ErrInvalidReference, in.ToMember)
		}
		if in.FromMember == in.ToMember {
			return fmt.Errorf("%w: member cannot settle with itself", ErrInvalidInput)
		}
		if !in.Amount.IsPositive() {
			return fmt.Errorf("%w: settlement amount must be positive", ErrInvalidInput)
		}

		added = models.LocalSettlement{
			LocalID:    s.ids.Generate(),
			FromMember: in.FromMember,
			ToMember:   in.ToMember,
			Amount:     in.Amount,
			SettledAt:  s.now(),
			Seq:        nextSeq(&b.State),
		}
		b.State.Settlements[added.LocalID] = added
		RecordAdd(&b.Pending, models.EntitySettlement, added.LocalID)
		settleStatus(b)
		return nil
	})
	return added, err
}

func (s *Store) DeleteSettlement(ctx context.Context, billID, settlementID string) (models.LocalBill, error) {
	return s.mutate(ctx, billID, func(b *models.LocalBill) error {
		if _, ok := b.State.Settlements[settlementID]; !ok {
			return fmt.Errorf("%w: settlement %s", ErrEntityNotFound, settlementID)
		}
		removeSettlement(b, settlementID)
		settleStatus(b)
		return nil
	})
}

// ── shared edit helpers ─────────────────────────────────────────────────────

func editMember(b *models.LocalBill, after models.LocalMember) {
	before := b.State.Members[after.LocalID]
	touched := changed(MemberFields, before, after, memberFieldEqual)
	b.State.Members[after.LocalID] = after

	var reverted []string
	if base, ok := baseline(b).Members[after.LocalID]; ok {
		reverted = unchanged(touched, after, base, memberFieldEqual)
	}
	track(b, models.EntityMember, after.LocalID, after.RemoteID, touched, reverted)
}

func editExpense(b *models.LocalBill, after models.LocalExpense) {
	before := b.State.Expenses[after.LocalID]
	touched := changed(ExpenseFields, before, after, expenseFieldEqual)
	b.State.Expenses[after.LocalID] = after

	var reverted []string
	if base, ok := baseline(b).Expenses[after.LocalID]; ok {
		reverted = unchanged(touched, after, base, expenseFieldEqual)
	}
	track(b, models.EntityExpense, after.LocalID, after.RemoteID, touched, reverted)
}

func editItem(b *models.LocalBill, after models.LocalItem) {
	before := b.State.Items[after.LocalID]
	touched := changed(ItemFields, before, after, itemFieldEqual)
	b.State.Items[after.LocalID] = after

	var reverted []string
	if base, ok := baseline(b).Items[after.LocalID]; ok {
		reverted = unchanged(touched, after, base, itemFieldEqual)
	}
	track(b, models.EntityItem, after.LocalID, after.RemoteID, touched, reverted)
}

// track records the touched fields that differ from the baseline and forgets
// those that returned to it.
func track(b *models.LocalBill, entity models.EntityType, localID, remoteID string, touched, reverted []string) {
	key := Key(remoteID, localID)
	differing := slices.DeleteFunc(slices.Clone(touched), func(f string) bool { return slices.Contains(reverted, f) })

	RecordUpdate(&b.Pending, entity, localID, key, differing...)
	DropUpdate(&b.Pending, entity, key, reverted...)
	settleStatus(b)
}

// removeMember deletes a member together with what depends on it. For a
// synced member the server runs the same cascade and keeps or drops it with
// the member, so dependents it would remove anyway are forgotten instead of
// sent as deletes of their own. The last synced state decides what the
// server would remove.
func removeMember(b *models.LocalBill, memberID string) {
	m := b.State.Members[memberID]
	base := baseline(b)
	cascades := m.RemoteID != ""

	for _, e := range SortedExpenses(b.State) {
		switch {
		case e.PaidBy == memberID || soleParticipant(e.Participants, memberID):
			if prev, ok := base.Expenses[e.LocalID]; cascades && ok && owns(prev.PaidBy, prev.Participants, memberID) {
				discardExpense(b, e.LocalID)
				continue
			}
			removeExpense(b, e.LocalID)
		case slices.Contains(e.Participants, memberID):
			e.Participants = without(e.Participants, memberID)
			editExpense(b, e)
			if prev, ok := base.Expenses[e.LocalID]; cascades && ok && slices.Equal(without(prev.Participants, memberID), e.Participants) {
				DropUpdate(&b.Pending, models.EntityExpense, Key(e.RemoteID, e.LocalID), models.FieldParticipants)
			}
		}
	}
	for _, it := range SortedItems(b.State) {
		switch {
		case it.PaidBy == memberID || soleParticipant(it.Participants, memberID):
			if prev, ok := base.Items[it.LocalID]; cascades && ok && owns(prev.PaidBy, prev.Participants, memberID) {
				discardItem(b, it.LocalID)
				continue
			}
			removeItem(b, it.LocalID)
		case slices.Contains(it.Participants, memberID):
			it.Participants = without(it.Participants, memberID)
			editItem(b, it)
			if prev, ok := base.Items[it.LocalID]; cascades && ok && slices.Equal(without(prev.Participants, memberID), it.Participants) {
				DropUpdate(&b.Pending, models.EntityItem, Key(it.RemoteID, it.LocalID), models.FieldParticipants)
			}
		}
	}
	for _, st := range SortedSettlements(b.State) {
		if st.FromMember != memberID && st.ToMember != memberID {
			continue
		}
		if _, ok := base.Settlements[st.LocalID]; cascades && ok {
			delete(b.State.Settlements, st.LocalID)
			Forget(&b.Pending, models.EntitySettlement, st.LocalID, Key(st.RemoteID, st.LocalID))
			continue
		}
		removeSettlement(b, st.LocalID)
	}

	delete(b.State.Members, memberID)
	RecordDelete(&b.Pending, models.EntityMember, memberID, Key(m.RemoteID, memberID))
}

// discardExpense removes an expense and its items from the state without
// recording deletes.
func discardExpense(b *models.LocalBill, expenseID string) {
	for _, it := range SortedItems(b.State) {
		if it.ExpenseID == expenseID {
			discardItem(b, it.LocalID)
		}
	}
	e := b.State.Expenses[expenseID]
	delete(b.State.Expenses, expenseID)
	Forget(&b.Pending, models.EntityExpense, expenseID, Key(e.RemoteID, expenseID))
}

func discardItem(b *models.LocalBill, itemID string) {
	it := b.State.Items[itemID]
	delete(b.State.Items, itemID)
	Forget(&b.Pending, models.EntityItem, itemID, Key(it.RemoteID, itemID))
}

func removeExpense(b *models.LocalBill, expenseID string) {
	for _, it := range SortedItems(b.State) {
		if it.ExpenseID == expenseID {
			removeItem(b, it.LocalID)
		}
	}
	e := b.State.Expenses[expenseID]
	delete(b.State.Expenses, expenseID)
	RecordDelete(&b.Pending, models.EntityExpense, expenseID, Key(e.RemoteID, expenseID))
}

func removeItem(b *models.LocalBill, itemID string) {
	it := b.State.Items[itemID]
	delete(b.State.Items, itemID)
	RecordDelete(&b.Pending, models.EntityItem, itemID, Key(it.RemoteID, itemID))
}

func removeSettlement(b *models.LocalBill, settlementID string) {
	st := b.State.Settlements[settlementID]
	delete(b.State.Settlements, settlementID)
	RecordDelete(&b.Pending, models.EntitySettlement, settlementID, Key(st.RemoteID, settlementID))
}

// ── validation ──────────────────────────────────────────────────────────────

func validateExpense(s models.LedgerState, e models.LocalExpense) error {
	if e.Name == "" {
		return fmt.Errorf("%w: expense name is empty", ErrInvalidInput)
	}
	if e.Amount.IsNegative() {
		return fmt.Errorf("%w: negative expense amount", ErrInvalidInput)
	}
	if e.ServiceFeePercent.IsNegative() || e.ServiceFeePercent.GreaterThan(hundred) {
		return fmt.Errorf("%w: service fee must be within 0..100", ErrInvalidInput)
	}
	return validateRefs(s, e.PaidBy, e.Participants)
}

func validateItem(s models.LedgerState, it models.LocalItem) error {
	parent, ok := s.Expenses[it.ExpenseID]
	if !ok {
		return fmt.Errorf("%w: expense %s", ErrInvalidReference, it.ExpenseID)
	}
	if !parent.IsItemized {
		return fmt.Errorf("%w: expense %s is not itemized", ErrInvalidReference, it.ExpenseID)
	}
	if it.Name == "" {
		return fmt.Errorf("%w: item name is empty", ErrInvalidInput)
	}
	if it.Amount.IsNegative() {
		return fmt.Errorf("%w: negative item amount", ErrInvalidInput)
	}
	return validateRefs(s, it.PaidBy, it.Participants)
}

func validateRefs(s models.LedgerState, paidBy string, participants []string) error {
	if paidBy != "" {
		if _, ok := s.Members[paidBy]; !ok {
			return fmt.Errorf("%w: payer %s", ErrInvalidReference, paidBy)
		}
	}
	seen := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		if _, ok := s.Members[p]; !ok {
			return fmt.Errorf("%w: participant %s", ErrInvalidReference, p)
		}
		if _, dup := seen[p]; dup {
			return fmt.Errorf("%w: duplicate participant %s", ErrInvalidInput, p)
		}
		seen[p] = struct{}{}
	}
	return nil
}

func claimed(s models.LedgerState, userID, exceptID string) bool {
	for id, m := range s.Members {
		if id != exceptID && m.UserID != nil && *m.UserID == userID {
			return true
		}
	}
	return false
}

func nextSeq(s *models.LedgerState) int64 {
	s.NextSeq++
	return s.NextSeq
}

func soleParticipant(participants []string, memberID string) bool {
	return len(participants) == 1 && participants[0] == memberID
}

// owns reports whether memberID pays for an entry or is its only participant.
func owns(paidBy string, participants []string, memberID string) bool {
	return paidBy == memberID || soleParticipant(participants, memberID)
}

func without(ids []string, id string) []string {
	return slices.DeleteFunc(slices.Clone(ids), func(x string) bool { return x == id })
}
