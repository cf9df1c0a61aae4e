package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/MKhiriev/go-bill-keeper/internal/store"
	"github.com/MKhiriev/go-bill-keeper/models"
)

// fullReplace writes a complete client view over a locked (or freshly
// created) bill. Entities carrying a RemoteID are updated, entities without
// one are inserted and mapped, and server entities missing from the request
// are deleted. References may only point at entities of the request.
type fullReplace struct {
	tx  store.BillTx
	ids IDGenerator

	bill     models.Bill
	mappings models.IDMappings
	// refs resolves request references (local or remote ids) to server ids.
	refs map[models.EntityType]map[string]string
}

func newFullReplace(tx store.BillTx, ids IDGenerator, bill models.Bill) *fullReplace {
	return &fullReplace{
		tx:       tx,
		ids:      ids,
		bill:     bill,
		mappings: models.NewIDMappings(),
		refs: map[models.EntityType]map[string]string{
			models.EntityMember:     {},
			models.EntityExpense:    {},
			models.EntityItem:       {},
			models.EntitySettlement: {},
		},
	}
}

func (r *fullReplace) apply(ctx context.Context, req models.FullSyncRequest) error {
	version := r.bill.Version

	if req.Name != r.bill.Name {
		if err := r.tx.UpdateBillName(ctx, r.bill.ID, req.Name, version); err != nil {
			return err
		}
	}

	if err := r.releaseClaims(ctx, req.Members); err != nil {
		return err
	}

	keepMembers := make(map[string]struct{}, len(req.Members))
	for i, p := range req.Members {
		id, err := r.identify(models.EntityMember, p.LocalID, p.RemoteID, has(r.bill.Member))
		if err != nil {
			return fmt.Errorf("members[%d]: %w", i, err)
		}
		m := models.Member{
			ID:              id,
			BillID:          r.bill.ID,
			Name:            p.Name,
			OriginalName:    p.OriginalName,
			DisplayOrder:    p.DisplayOrder,
			UserID:          p.UserID,
			ClaimedAt:       p.ClaimedAt,
			ModifiedVersion: version,
		}
		keepMembers[id] = struct{}{}

		if p.RemoteID != "" {
			err = r.tx.UpdateMember(ctx, m)
		} else {
			err = r.tx.InsertMember(ctx, m)
		}
		if err != nil {
			return fmt.Errorf("members[%d]: %w", i, err)
		}
	}

	keepExpenses := make(map[string]struct{}, len(req.Expenses))
	itemized := make(map[string]bool, len(req.Expenses))
	for i, p := range req.Expenses {
		id, err := r.identify(models.EntityExpense, p.LocalID, p.RemoteID, has(r.bill.Expense))
		if err != nil {
			return fmt.Errorf("expenses[%d]: %w", i, err)
		}
		paidBy, participants, err := r.resolveShares(p.PaidBy, p.Participants)
		if err != nil {
			return fmt.Errorf("expenses[%d]: %w", i, err)
		}
		e := models.Expense{
			ID:                id,
			BillID:            r.bill.ID,
			Name:              p.Name,
			Amount:            p.Amount,
			ServiceFeePercent: p.ServiceFeePercent,
			IsItemized:        p.IsItemized,
			PaidBy:            paidBy,
			Participants:      participants,
			ModifiedVersion:   version,
		}
		keepExpenses[id] = struct{}{}
		itemized[id] = p.IsItemized

		if p.RemoteID != "" {
			err = r.tx.UpdateExpense(ctx, e)
		} else {
			err = r.tx.InsertExpense(ctx, e)
		}
		if err != nil {
			return fmt.Errorf("expenses[%d]: %w", i, err)
		}
	}

	keepItems := make(map[string]struct{}, len(req.Items))
	for i, p := range req.Items {
		id, err := r.identify(models.EntityItem, p.LocalID, p.RemoteID, has(r.bill.Item))
		if err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
		expenseID, err := r.resolve(models.EntityExpense, p.ExpenseRef)
		if err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
		if !itemized[expenseID] {
			return fmt.Errorf("items[%d]: %w: %w", i, ErrValidation, ErrItemParentNotItemized)
		}
		paidBy, participants, err := r.resolveShares(p.PaidBy, p.Participants)
		if err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
		it := models.ExpenseItem{
			ID:              id,
			BillID:          r.bill.ID,
			ExpenseID:       expenseID,
			Name:            p.Name,
			Amount:          p.Amount,
			PaidBy:          paidBy,
			Participants:    participants,
			ModifiedVersion: version,
		}
		keepItems[id] = struct{}{}

		if p.RemoteID != "" {
			err = r.tx.UpdateItem(ctx, it)
		} else {
			err = r.tx.InsertItem(ctx, it)
		}
		if err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
	}

	keepSettlements := make(map[string]struct{}, len(req.Settlements))
	for i, p := range req.Settlements {
		id, err := r.identify(models.EntitySettlement, p.LocalID, p.RemoteID, has(r.bill.Settlement))
		if err != nil {
			return fmt.Errorf("settlements[%d]: %w", i, err)
		}
		keepSettlements[id] = struct{}{}
		if p.RemoteID != "" {
			// settlements are immutable
			continue
		}

		from, err := r.resolve(models.EntityMember, p.FromMember)
		if err != nil {
			return fmt.Errorf("settlements[%d]: %w", i, err)
		}
		to, err := r.resolve(models.EntityMember, p.ToMember)
		if err != nil {
			return fmt.Errorf("settlements[%d]: %w", i, err)
		}
		settledAt := p.SettledAt
		if settledAt.IsZero() {
			settledAt = time.Now().UTC()
		}
		err = r.tx.InsertSettlement(ctx, models.SettledTransfer{
			ID:              id,
			BillID:          r.bill.ID,
			FromMember:      from,
			ToMember:        to,
			Amount:          p.Amount,
			SettledAt:       settledAt,
			ModifiedVersion: version,
		})
		if err != nil {
			return fmt.Errorf("settlements[%d]: %w", i, err)
		}
	}

	return r.prune(ctx, keepMembers, keepExpenses, keepItems, keepSettlements)
}

// releaseClaims clears the claims the request moves to another member or
// drops, so the member writes never link one user twice. A user claiming two
// members of the request is a validation error.
func (r *fullReplace) releaseClaims(ctx context.Context, members []models.MemberPayload) error {
	claims := make(map[string]*string, len(members))
	users := make(map[string]struct{}, len(members))
	for i, p := range members {
		if p.UserID != nil {
			if _, dup := users[*p.UserID]; dup {
				return fmt.Errorf("members[%d]: %w: %w", i, ErrValidation, ErrMemberAlreadyClaimed)
			}
			users[*p.UserID] = struct{}{}
		}
		if p.RemoteID != "" {
			claims[p.RemoteID] = p.UserID
		}
	}

	for _, m := range r.bill.Members {
		if m.UserID == nil {
			continue
		}
		if next, listed := claims[m.ID]; listed && equalPtr(next, m.UserID) {
			continue
		}
		m.UserID, m.ClaimedAt = nil, nil
		if err := r.tx.UpdateMember(ctx, m); err != nil {
			return fmt.Errorf("releasing claim of member %s: %w", m.ID, err)
		}
	}
	return nil
}

// prune deletes server entities the request no longer lists, children first.
func (r *fullReplace) prune(ctx context.Context, members, expenses, items, settlements map[string]struct{}) error {
	for _, s := range r.bill.Settlements {
		if _, ok := settlements[s.ID]; !ok {
			if err := r.tx.DeleteSettlement(ctx, r.bill.ID, s.ID); err != nil {
				return err
			}
		}
	}
	for _, it := range r.bill.Items {
		_, keep := items[it.ID]
		_, parentKept := expenses[it.ExpenseID]
		// items of a dropped expense go with it
		if !keep && parentKept {
			if err := r.tx.DeleteItem(ctx, r.bill.ID, it.ID); err != nil {
				return err
			}
		}
	}
	for _, e := range r.bill.Expenses {
		if _, ok := expenses[e.ID]; !ok {
			if err := r.tx.DeleteExpense(ctx, r.bill.ID, e.ID); err != nil {
				return err
			}
		}
	}
	for _, m := range r.bill.Members {
		if _, ok := members[m.ID]; !ok {
			if err := r.tx.DeleteMember(ctx, r.bill.ID, m.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// identify returns the server id of a request entity: its RemoteID when it
// belongs to the bill, a fresh id mapped from LocalID otherwise.
func (r *fullReplace) identify(entity models.EntityType, localID, remoteID string, known func(string) bool) (string, error) {
	if remoteID != "" {
		if !known(remoteID) {
			return "", fmt.Errorf("%w: %w: %s %s", ErrValidation, ErrUnknownEntity, entity, remoteID)
		}
		r.refs[entity][remoteID] = remoteID
		if localID != "" {
			r.refs[entity][localID] = remoteID
		}
		return remoteID, nil
	}

	id := r.ids.Generate()
	r.mappings.For(entity)[localID] = id
	r.refs[entity][localID] = id
	return id, nil
}

func (r *fullReplace) resolve(entity models.EntityType, ref string) (string, error) {
	id, ok := r.refs[entity][ref]
	if !ok {
		return "", fmt.Errorf("%w: %w: %s %q", ErrValidation, ErrUnknownReference, entity, ref)
	}
	return id, nil
}

func (r *fullReplace) resolveShares(paidBy *string, participants []string) (*string, []string, error) {
	var payer *string
	if paidBy != nil {
		id, err := r.resolve(models.EntityMember, *paidBy)
		if err != nil {
			return nil, nil, err
		}
		payer = &id
	}

	resolved := make([]string, 0, len(participants))
	for _, ref := range participants {
		id, err := r.resolve(models.EntityMember, ref)
		if err != nil {
			return nil, nil, err
		}
		if slices.Contains(resolved, id) {
			return nil, nil, fmt.Errorf("%w: duplicate participant %q", ErrValidation, ref)
		}
		resolved = append(resolved, id)
	}
	return payer, resolved, nil
}

func has[T any](lookup func(string) (T, bool)) func(string) bool {
	return func(id string) bool {
		_, ok := lookup(id)
		return ok
	}
}
