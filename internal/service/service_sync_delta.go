package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/MKhiriev/go-bill-keeper/internal/store"
	"github.com/MKhiriev/go-bill-keeper/models"
)

// deltaMerge applies one delta to a locked bill.
//
// When the client base is behind the bill (careful merge), an entity written
// after the base keeps its whole server state: every differing incoming field
// is dropped and reported as a server_wins conflict, and a delete becomes
// manual_required. Adds are always accepted.
type deltaMerge struct {
	tx  store.BillTx
	ids IDGenerator

	// bill is the working copy, kept equal to what the transaction wrote.
	bill    models.Bill
	base    int64
	version int64
	careful bool

	mappings  models.IDMappings
	conflicts []models.Conflict
	applied   int
}

func newDeltaMerge(tx store.BillTx, ids IDGenerator, bill models.Bill, base int64) *deltaMerge {
	return &deltaMerge{
		tx:       tx,
		ids:      ids,
		bill:     bill.Clone(),
		base:     base,
		version:  bill.Version + 1,
		careful:  base < bill.Version,
		mappings: models.NewIDMappings(),
	}
}

func (m *deltaMerge) apply(ctx context.Context, req models.DeltaSyncRequest) error {
	steps := []func(context.Context, models.DeltaSyncRequest) error{
		m.applyBill,
		m.addMembers,
		m.addExpenses,
		m.addItems,
		m.addSettlements,
		m.updateMembers,
		m.updateExpenses,
		m.updateItems,
		m.deleteSettlements,
		m.deleteItems,
		m.deleteExpenses,
		m.deleteMembers,
	}
	for _, step := range steps {
		if err := step(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// stale reports whether an entity written at modified must be protected
// from the incoming change.
func (m *deltaMerge) stale(modified int64) bool {
	return m.careful && modified > m.base
}

func (m *deltaMerge) conflict(entity models.EntityType, id, field string, local, server any, resolution models.Resolution) {
	m.conflicts = append(m.conflicts, models.Conflict{
		EntityType:  entity,
		EntityID:    id,
		Field:       field,
		LocalValue:  rawJSON(local),
		ServerValue: rawJSON(server),
		Resolution:  resolution,
	})
}

// ── bill ──

func (m *deltaMerge) applyBill(ctx context.Context, req models.DeltaSyncRequest) error {
	if req.Bill == nil || req.Bill.Name == nil || *req.Bill.Name == m.bill.Name {
		return nil
	}
	if m.stale(m.bill.NameVersion) {
		m.conflict(models.EntityBill, m.bill.ID, models.FieldName, *req.Bill.Name, m.bill.Name, models.ResolutionServerWins)
		return nil
	}
	if err := m.tx.UpdateBillName(ctx, m.bill.ID, *req.Bill.Name, m.version); err != nil {
		return err
	}
	m.bill.Name, m.bill.NameVersion = *req.Bill.Name, m.version
	m.applied++
	return nil
}

// ── adds ──

func (m *deltaMerge) addMembers(ctx context.Context, req models.DeltaSyncRequest) error {
	for i, p := range req.Members.Add {
		if p.UserID != nil && m.claimedBy(*p.UserID, "") {
			return fmt.Errorf("members.add[%d]: %w: %w", i, ErrValidation, ErrMemberAlreadyClaimed)
		}
		member := models.Member{
			ID:              m.ids.Generate(),
			BillID:          m.bill.ID,
			Name:            p.Name,
			OriginalName:    p.OriginalName,
			DisplayOrder:    p.DisplayOrder,
			UserID:          p.UserID,
			ClaimedAt:       p.ClaimedAt,
			ModifiedVersion: m.version,
		}
		if err := m.tx.InsertMember(ctx, member); err != nil {
			return fmt.Errorf("members.add[%d]: %w", i, err)
		}
		m.bill.Members = append(m.bill.Members, member)
		m.mappings.Members[p.LocalID] = member.ID
		m.applied++
	}
	return nil
}

func (m *deltaMerge) addExpenses(ctx context.Context, req models.DeltaSyncRequest) error {
	for i, p := range req.Expenses.Add {
		paidBy, participants, err := m.resolveShares(models.EntityExpense, p.LocalID, p.PaidBy, p.Participants)
		if err != nil {
			return fmt.Errorf("expenses.add[%d]: %w", i, err)
		}
		expense := models.Expense{
			ID:                m.ids.Generate(),
			BillID:            m.bill.ID,
			Name:              p.Name,
			Amount:            p.Amount,
			ServiceFeePercent: p.ServiceFeePercent,
			IsItemized:        p.IsItemized,
			PaidBy:            paidBy,
			Participants:      participants,
			ModifiedVersion:   m.version,
		}
		if err := m.tx.InsertExpense(ctx, expense); err != nil {
			return fmt.Errorf("expenses.add[%d]: %w", i, err)
		}
		m.bill.Expenses = append(m.bill.Expenses, expense)
		m.mappings.Expenses[p.LocalID] = expense.ID
		m.applied++
	}
	return nil
}

func (m *deltaMerge) addItems(ctx context.Context, req models.DeltaSyncRequest) error {
	for i, p := range req.Items.Add {
		expenseID, ok, err := m.lookup(models.EntityExpense, p.ExpenseRef)
		if err != nil {
			return fmt.Errorf("items.add[%d]: %w", i, err)
		}
		if !ok {
			m.conflict(models.EntityItem, p.LocalID, models.FieldAll, p, nil, models.ResolutionServerWins)
			continue
		}
		if parent, _ := m.bill.Expense(expenseID); !parent.IsItemized {
			return fmt.Errorf("items.add[%d]: %w: %w", i, ErrValidation, ErrItemParentNotItemized)
		}
		paidBy, participants, err := m.resolveShares(models.EntityItem, p.LocalID, p.PaidBy, p.Participants)
		if err != nil {
			return fmt.Errorf("items.add[%d]: %w", i, err)
		}
		item := models.ExpenseItem{
			ID:              m.ids.Generate(),
			BillID:          m.bill.ID,
			ExpenseID:       expenseID,
			Name:            p.Name,
			Amount:          p.Amount,
			PaidBy:          paidBy,
			Participants:    participants,
			ModifiedVersion: m.version,
		}
		if err := m.tx.InsertItem(ctx, item); err != nil {
			return fmt.Errorf("items.add[%d]: %w", i, err)
		}
		m.bill.Items = append(m.bill.Items, item)
		m.mappings.Items[p.LocalID] = item.ID
		m.applied++
	}
	return nil
}

func (m *deltaMerge) addSettlements(ctx context.Context, req models.DeltaSyncRequest) error {
	for i, p := range req.Settlements.Add {
		from, fromOK, err := m.lookup(models.EntityMember, p.FromMember)
		if err != nil {
			return fmt.Errorf("settlements.add[%d]: %w", i, err)
		}
		to, toOK, err := m.lookup(models.EntityMember, p.ToMember)
		if err != nil {
			return fmt.Errorf("settlements.add[%d]: %w", i, err)
		}
		if !fromOK || !toOK {
			m.conflict(models.EntitySettlement, p.LocalID, models.FieldAll, p, nil, models.ResolutionServerWins)
			continue
		}
		settledAt := p.SettledAt
		if settledAt.IsZero() {
			settledAt = time.Now().UTC()
		}
		settlement := models.SettledTransfer{
			ID:              m.ids.Generate(),
			BillID:          m.bill.ID,
			FromMember:      from,
			ToMember:        to,
			Amount:          p.Amount,
			SettledAt:       settledAt,
			ModifiedVersion: m.version,
		}
		if err := m.tx.InsertSettlement(ctx, settlement); err != nil {
			return fmt.Errorf("settlements.add[%d]: %w", i, err)
		}
		m.bill.Settlements = append(m.bill.Settlements, settlement)
		m.mappings.Settlements[p.LocalID] = settlement.ID
		m.applied++
	}
	return nil
}

// ── updates ──

// fieldChange is one incoming field differing from the stored value.
type fieldChange struct {
	field         string
	local, server any
}

func (m *deltaMerge) updateMembers(ctx context.Context, req models.DeltaSyncRequest) error {
	for i, u := range req.Members.Update {
		idx := slices.IndexFunc(m.bill.Members, func(x models.Member) bool { return x.ID == u.RemoteID })
		if idx < 0 {
			m.conflict(models.EntityMember, u.RemoteID, models.FieldAll, u, nil, models.ResolutionServerWins)
			continue
		}
		current := m.bill.Members[idx]
		next := current

		var changes []fieldChange
		if u.Name != nil && *u.Name != current.Name {
			changes = append(changes, fieldChange{models.FieldName, *u.Name, current.Name})
			next.Name = *u.Name
		}
		if u.OriginalName != nil && !equalPtr(u.OriginalName, current.OriginalName) {
			changes = append(changes, fieldChange{models.FieldOriginalName, *u.OriginalName, current.OriginalName})
			next.OriginalName = u.OriginalName
		}
		if u.DisplayOrder != nil && *u.DisplayOrder != current.DisplayOrder {
			changes = append(changes, fieldChange{models.FieldDisplayOrder, *u.DisplayOrder, current.DisplayOrder})
			next.DisplayOrder = *u.DisplayOrder
		}
		if u.UserID != nil && !equalPtr(u.UserID, current.UserID) {
			changes = append(changes, fieldChange{models.FieldUserID, *u.UserID, current.UserID})
			next.UserID = u.UserID
		}
		if u.ClaimedAt != nil && (current.ClaimedAt == nil || !u.ClaimedAt.Equal(*current.ClaimedAt)) {
			changes = append(changes, fieldChange{models.FieldClaimedAt, *u.ClaimedAt, current.ClaimedAt})
			next.ClaimedAt = u.ClaimedAt
		}
		if !m.accept(models.EntityMember, current.ID, current.ModifiedVersion, changes) {
			continue
		}

		if next.UserID != nil && m.claimedBy(*next.UserID, next.ID) {
			return fmt.Errorf("members.update[%d]: %w: %w", i, ErrValidation, ErrMemberAlreadyClaimed)
		}
		next.ModifiedVersion = m.version
		if err := m.tx.UpdateMember(ctx, next); err != nil {
			return fmt.Errorf("members.update[%d]: %w", i, err)
		}
		m.bill.Members[idx] = next
		m.applied++
	}
	return nil
}

func (m *deltaMerge) updateExpenses(ctx context.Context, req models.DeltaSyncRequest) error {
	const entity = models.EntityExpense
	for i, u := range req.Expenses.Update {
		idx := slices.IndexFunc(m.bill.Expenses, func(x models.Expense) bool { return x.ID == u.RemoteID })
		if idx < 0 {
			m.conflict(models.EntityExpense, u.RemoteID, models.FieldAll, u, nil, models.ResolutionServerWins)
			continue
		}
		current := m.bill.Expenses[idx]
		next := current

		var changes []fieldChange
		if u.Name != nil && *u.Name != current.Name {
			changes = append(changes, fieldChange{models.FieldName, *u.Name, current.Name})
			next.Name = *u.Name
		}
		if u.Amount != nil && !u.Amount.Equal(current.Amount) {
			changes = append(changes, fieldChange{models.FieldAmount, *u.Amount, current.Amount})
			next.Amount = *u.Amount
		}
		if u.ServiceFeePercent != nil && !u.ServiceFeePercent.Equal(current.ServiceFeePercent) {
			changes = append(changes, fieldChange{models.FieldServiceFeePercent, *u.ServiceFeePercent, current.ServiceFeePercent})
			next.ServiceFeePercent = *u.ServiceFeePercent
		}
		if u.IsItemized != nil && *u.IsItemized != current.IsItemized {
			changes = append(changes, fieldChange{models.FieldIsItemized, *u.IsItemized, current.IsItemized})
			next.IsItemized = *u.IsItemized
		}
		if u.PaidBy != nil {
			paidBy, ok, err := m.resolvePayer(*u.PaidBy)
			switch {
			case err != nil:
				return fmt.Errorf("expenses.update[%d]: %w", i, err)
			case !ok:
				m.conflict(entity, current.ID, models.FieldPaidBy, *u.PaidBy, current.PaidBy, models.ResolutionServerWins)
			case !equalPtr(paidBy, current.PaidBy):
				changes = append(changes, fieldChange{models.FieldPaidBy, *u.PaidBy, current.PaidBy})
				next.PaidBy = paidBy
			}
		}
		if u.Participants != nil {
			participants, dropped, err := m.resolveParticipants(*u.Participants)
			switch {
			case err != nil:
				return fmt.Errorf("expenses.update[%d]: %w", i, err)
			case dropped:
				m.conflict(entity, current.ID, models.FieldParticipants, *u.Participants, current.Participants, models.ResolutionServerWins)
			case !slices.Equal(participants, current.Participants):
				changes = append(changes, fieldChange{models.FieldParticipants, *u.Participants, current.Participants})
				next.Participants = participants
			}
		}
		if !m.accept(entity, current.ID, current.ModifiedVersion, changes) {
			continue
		}

		next.ModifiedVersion = m.version
		if err := m.tx.UpdateExpense(ctx, next); err != nil {
			return fmt.Errorf("expenses.update[%d]: %w", i, err)
		}
		m.bill.Expenses[idx] = next
		m.applied++
	}
	return nil
}

func (m *deltaMerge) updateItems(ctx context.Context, req models.DeltaSyncRequest) error {
	const entity = models.EntityItem
	for i, u := range req.Items.Update {
		idx := slices.IndexFunc(m.bill.Items, func(x models.ExpenseItem) bool { return x.ID == u.RemoteID })
		if idx < 0 {
			m.conflict(models.EntityItem, u.RemoteID, models.FieldAll, u, nil, models.ResolutionServerWins)
			continue
		}
		current := m.bill.Items[idx]
		next := current

		var changes []fieldChange
		if u.Name != nil && *u.Name != current.Name {
			changes = append(changes, fieldChange{models.FieldName, *u.Name, current.Name})
			next.Name = *u.Name
		}
		if u.Amount != nil && !u.Amount.Equal(current.Amount) {
			changes = append(changes, fieldChange{models.FieldAmount, *u.Amount, current.Amount})
			next.Amount = *u.Amount
		}
		if u.PaidBy != nil {
			paidBy, ok, err := m.resolvePayer(*u.PaidBy)
			switch {
			case err != nil:
				return fmt.Errorf("items.update[%d]: %w", i, err)
			case !ok:
				m.conflict(entity, current.ID, models.FieldPaidBy, *u.PaidBy, current.PaidBy, models.ResolutionServerWins)
			case !equalPtr(paidBy, current.PaidBy):
				changes = append(changes, fieldChange{models.FieldPaidBy, *u.PaidBy, current.PaidBy})
				next.PaidBy = paidBy
			}
		}
		if u.Participants != nil {
			participants, dropped, err := m.resolveParticipants(*u.Participants)
			switch {
			case err != nil:
				return fmt.Errorf("items.update[%d]: %w", i, err)
			case dropped:
				m.conflict(entity, current.ID, models.FieldParticipants, *u.Participants, current.Participants, models.ResolutionServerWins)
			case !slices.Equal(participants, current.Participants):
				changes = append(changes, fieldChange{models.FieldParticipants, *u.Participants, current.Participants})
				next.Participants = participants
			}
		}
		if !m.accept(entity, current.ID, current.ModifiedVersion, changes) {
			continue
		}

		next.ModifiedVersion = m.version
		if err := m.tx.UpdateItem(ctx, next); err != nil {
			return fmt.Errorf("items.update[%d]: %w", i, err)
		}
		m.bill.Items[idx] = next
		m.applied++
	}
	return nil
}

// accept decides whether changes to an entity are written. A stale entity
// reports every change as a server_wins conflict instead.
func (m *deltaMerge) accept(entity models.EntityType, id string, modified int64, changes []fieldChange) bool {
	if len(changes) == 0 {
		return false
	}
	if !m.stale(modified) {
		return true
	}
	for _, c := range changes {
		m.conflict(entity, id, c.field, c.local, c.server, models.ResolutionServerWins)
	}
	return false
}

// ── deletes ──

func (m *deltaMerge) deleteSettlements(ctx context.Context, req models.DeltaSyncRequest) error {
	for _, id := range req.Settlements.Delete {
		s, ok := m.bill.Settlement(id)
		if !m.deletable(models.EntitySettlement, id, ok, s.ModifiedVersion, s) {
			continue
		}
		if err := m.removeSettlement(ctx, id); err != nil {
			return err
		}
		m.applied++
	}
	return nil
}

func (m *deltaMerge) deleteItems(ctx context.Context, req models.DeltaSyncRequest) error {
	for _, id := range req.Items.Delete {
		it, ok := m.bill.Item(id)
		if !m.deletable(models.EntityItem, id, ok, it.ModifiedVersion, it) {
			continue
		}
		if err := m.removeItem(ctx, id); err != nil {
			return err
		}
		m.applied++
	}
	return nil
}

func (m *deltaMerge) deleteExpenses(ctx context.Context, req models.DeltaSyncRequest) error {
	for _, id := range req.Expenses.Delete {
		e, ok := m.bill.Expense(id)
		if !m.deletable(models.EntityExpense, id, ok, e.ModifiedVersion, e) {
			continue
		}
		if err := m.removeExpense(ctx, id); err != nil {
			return err
		}
		m.applied++
	}
	return nil
}

func (m *deltaMerge) deleteMembers(ctx context.Context, req models.DeltaSyncRequest) error {
	for _, id := range req.Members.Delete {
		member, ok := m.bill.Member(id)
		if !m.deletable(models.EntityMember, id, ok, member.ModifiedVersion, member) {
			continue
		}
		if err := m.removeMember(ctx, id); err != nil {
			return err
		}
		m.applied++
	}
	return nil
}

// deletable reports whether a requested delete goes ahead. A missing entity
// means the deletion already stands; an entity written by somebody else since
// the base needs a human decision and is kept.
func (m *deltaMerge) deletable(entity models.EntityType, id string, found bool, modified int64, server any) bool {
	if !found {
		m.conflict(entity, id, models.FieldAll, nil, nil, models.ResolutionServerWins)
		return false
	}
	if m.stale(modified) {
		m.conflict(entity, id, models.FieldAll, nil, server, models.ResolutionManualRequired)
		return false
	}
	return true
}

// removeMember deletes the member with its cascade: expenses and items paid
// by the member or shared by nobody else go away, the member leaves every
// other participant set, settlements involving the member are dropped.
func (m *deltaMerge) removeMember(ctx context.Context, memberID string) error {
	for _, s := range slices.Clone(m.bill.Settlements) {
		if s.FromMember == memberID || s.ToMember == memberID {
			if err := m.removeSettlement(ctx, s.ID); err != nil {
				return err
			}
		}
	}

	for _, it := range slices.Clone(m.bill.Items) {
		switch {
		case owns(it.PaidBy, it.Participants, memberID):
			if err := m.removeItem(ctx, it.ID); err != nil {
				return err
			}
		case slices.Contains(it.Participants, memberID):
			it.Participants = slices.DeleteFunc(slices.Clone(it.Participants), func(p string) bool { return p == memberID })
			it.ModifiedVersion = m.version
			if err := m.tx.UpdateItem(ctx, it); err != nil {
				return err
			}
			m.replaceItem(it)
		}
	}

	for _, e := range slices.Clone(m.bill.Expenses) {
		switch {
		case owns(e.PaidBy, e.Participants, memberID):
			if err := m.removeExpense(ctx, e.ID); err != nil {
				return err
			}
		case slices.Contains(e.Participants, memberID):
			e.Participants = slices.DeleteFunc(slices.Clone(e.Participants), func(p string) bool { return p == memberID })
			e.ModifiedVersion = m.version
			if err := m.tx.UpdateExpense(ctx, e); err != nil {
				return err
			}
			m.replaceExpense(e)
		}
	}

	if err := m.tx.DeleteMember(ctx, m.bill.ID, memberID); err != nil {
		return err
	}
	m.bill.Members = slices.DeleteFunc(m.bill.Members, func(x models.Member) bool { return x.ID == memberID })
	return nil
}

func (m *deltaMerge) removeExpense(ctx context.Context, expenseID string) error {
	if err := m.tx.DeleteExpense(ctx, m.bill.ID, expenseID); err != nil {
		return err
	}
	m.bill.Expenses = slices.DeleteFunc(m.bill.Expenses, func(x models.Expense) bool { return x.ID == expenseID })
	m.bill.Items = slices.DeleteFunc(m.bill.Items, func(x models.ExpenseItem) bool { return x.ExpenseID == expenseID })
	return nil
}

func (m *deltaMerge) removeItem(ctx context.Context, itemID string) error {
	if err := m.tx.DeleteItem(ctx, m.bill.ID, itemID); err != nil {
		return err
	}
	m.bill.Items = slices.DeleteFunc(m.bill.Items, func(x models.ExpenseItem) bool { return x.ID == itemID })
	return nil
}

func (m *deltaMerge) removeSettlement(ctx context.Context, settlementID string) error {
	if err := m.tx.DeleteSettlement(ctx, m.bill.ID, settlementID); err != nil {
		return err
	}
	m.bill.Settlements = slices.DeleteFunc(m.bill.Settlements, func(x models.SettledTransfer) bool { return x.ID == settlementID })
	return nil
}

func (m *deltaMerge) replaceItem(it models.ExpenseItem) {
	if i := slices.IndexFunc(m.bill.Items, func(x models.ExpenseItem) bool { return x.ID == it.ID }); i >= 0 {
		m.bill.Items[i] = it
	}
}

func (m *deltaMerge) replaceExpense(e models.Expense) {
	if i := slices.IndexFunc(m.bill.Expenses, func(x models.Expense) bool { return x.ID == e.ID }); i >= 0 {
		m.bill.Expenses[i] = e
	}
}

// ── references ──

// resolve maps a reference to a server id. It may name an entity of the bill
// or the local id of an entity added earlier in the same delta.
func (m *deltaMerge) resolve(entity models.EntityType, ref string) (string, error) {
	if id, ok := m.mappings.For(entity)[ref]; ok {
		return id, nil
	}

	var found bool
	switch entity {
	case models.EntityMember:
		_, found = m.bill.Member(ref)
	case models.EntityExpense:
		_, found = m.bill.Expense(ref)
	case models.EntityItem:
		_, found = m.bill.Item(ref)
	case models.EntitySettlement:
		_, found = m.bill.Settlement(ref)
	}
	if !found {
		return "", fmt.Errorf("%w: %w: %s %q", ErrValidation, ErrUnknownReference, entity, ref)
	}
	return ref, nil
}

// lookup is resolve for a careful merge, where a reference that does not
// resolve names an entity another writer removed after the base. It reports
// ok=false instead of failing. With the base at the bill version the client
// saw everything the server holds, so the reference is invalid.
func (m *deltaMerge) lookup(entity models.EntityType, ref string) (string, bool, error) {
	id, err := m.resolve(entity, ref)
	switch {
	case err == nil:
		return id, true, nil
	case m.careful:
		return "", false, nil
	default:
		return "", false, err
	}
}

// resolvePayer resolves a payer reference; an empty one clears the payer.
func (m *deltaMerge) resolvePayer(ref string) (*string, bool, error) {
	if ref == "" {
		return nil, true, nil
	}
	id, ok, err := m.lookup(models.EntityMember, ref)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &id, true, nil
}

// resolveParticipants resolves member references, leaving out the members
// removed by another writer. dropped reports whether any were left out.
func (m *deltaMerge) resolveParticipants(refs []string) ([]string, bool, error) {
	out := make([]string, 0, len(refs))
	dropped := false
	for _, ref := range refs {
		id, ok, err := m.lookup(models.EntityMember, ref)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			dropped = true
			continue
		}
		if slices.Contains(out, id) {
			return nil, false, fmt.Errorf("%w: duplicate participant %q", ErrValidation, ref)
		}
		out = append(out, id)
	}
	return out, dropped, nil
}

// resolveShares resolves payer and participants of an added entity. Members
// removed by another writer are left out and reported against localID, the
// same way the client drops them when it rebases.
func (m *deltaMerge) resolveShares(entity models.EntityType, localID string, paidBy *string, participants []string) (*string, []string, error) {
	var payer *string
	if paidBy != nil {
		id, ok, err := m.resolvePayer(*paidBy)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			m.conflict(entity, localID, models.FieldPaidBy, *paidBy, nil, models.ResolutionServerWins)
		}
		payer = id
	}
	resolved, dropped, err := m.resolveParticipants(participants)
	if err != nil {
		return nil, nil, err
	}
	if dropped {
		m.conflict(entity, localID, models.FieldParticipants, participants, resolved, models.ResolutionServerWins)
	}
	return payer, resolved, nil
}

func (m *deltaMerge) claimedBy(userID, exceptID string) bool {
	return slices.ContainsFunc(m.bill.Members, func(x models.Member) bool {
		return x.ID != exceptID && x.UserID != nil && *x.UserID == userID
	})
}

// owns reports whether memberID is the payer or the only participant.
func owns(paidBy *string, participants []string, memberID string) bool {
	if paidBy != nil && *paidBy == memberID {
		return true
	}
	return len(participants) == 1 && participants[0] == memberID
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
