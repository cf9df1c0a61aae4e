package service

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/MKhiriev/go-bill-keeper/internal/ledger"
	"github.com/MKhiriev/go-bill-keeper/models"
)

// BuildDeltaRequest renders the pending changes of bill as a delta against
// bill.Version. Values are read from the current state, references use remote
// IDs where known and local IDs otherwise. The second result is false when
// the delta carries nothing.
func BuildDeltaRequest(bill models.LocalBill) (models.DeltaSyncRequest, bool) {
	s := bill.State
	p := bill.Pending
	r := newRefs(s)

	req := models.DeltaSyncRequest{BaseVersion: bill.Version}
	if p.BillName {
		name := s.Name
		req.Bill = &models.BillUpdate{Name: &name}
	}

	for _, m := range ledger.SortedMembers(s) {
		if _, ok := p.Members.Added[m.LocalID]; ok {
			req.Members.Add = append(req.Members.Add, memberPayload(m))
		}
	}
	for _, e := range ledger.SortedExpenses(s) {
		if _, ok := p.Expenses.Added[e.LocalID]; ok {
			req.Expenses.Add = append(req.Expenses.Add, r.expensePayload(e))
		}
	}
	for _, it := range ledger.SortedItems(s) {
		if _, ok := p.Items.Added[it.LocalID]; ok {
			req.Items.Add = append(req.Items.Add, r.itemPayload(it))
		}
	}
	for _, st := range ledger.SortedSettlements(s) {
		if _, ok := p.Settlements.Added[st.LocalID]; ok {
			req.Settlements.Add = append(req.Settlements.Add, r.settlementPayload(st))
		}
	}

	byKey := indexByKey(s)

	for _, key := range sortedKeys(p.Members.Updated) {
		m, ok := s.Members[byKey[models.EntityMember][key]]
		if !ok {
			continue
		}
		req.Members.Update = append(req.Members.Update, memberUpdate(key, m, p.Members.Updated[key]))
	}
	for _, key := range sortedKeys(p.Expenses.Updated) {
		e, ok := s.Expenses[byKey[models.EntityExpense][key]]
		if !ok {
			continue
		}
		req.Expenses.Update = append(req.Expenses.Update, r.expenseUpdate(key, e, p.Expenses.Updated[key]))
	}
	for _, key := range sortedKeys(p.Items.Updated) {
		it, ok := s.Items[byKey[models.EntityItem][key]]
		if !ok {
			continue
		}
		req.Items.Update = append(req.Items.Update, r.itemUpdate(key, it, p.Items.Updated[key]))
	}

	req.Members.Delete = sortedKeys(p.Members.Deleted)
	req.Expenses.Delete = sortedKeys(p.Expenses.Deleted)
	req.Items.Delete = sortedKeys(p.Items.Deleted)
	req.Settlements.Delete = sortedKeys(p.Settlements.Deleted)

	return req, !req.IsEmpty()
}

// BuildFullSyncRequest renders the whole local state of bill.
func BuildFullSyncRequest(bill models.LocalBill) models.FullSyncRequest {
	s := bill.State
	r := newRefs(s)

	req := models.FullSyncRequest{
		LocalID:     bill.LocalID,
		RemoteID:    bill.RemoteID,
		BaseVersion: bill.Version,
		Name:        s.Name,
		Members:     make([]models.MemberPayload, 0, len(s.Members)),
		Expenses:    make([]models.ExpensePayload, 0, len(s.Expenses)),
		Items:       make([]models.ItemPayload, 0, len(s.Items)),
		Settlements: make([]models.SettlementPayload, 0, len(s.Settlements)),
	}
	for _, m := range ledger.SortedMembers(s) {
		req.Members = append(req.Members, memberPayload(m))
	}
	for _, e := range ledger.SortedExpenses(s) {
		req.Expenses = append(req.Expenses, r.expensePayload(e))
	}
	for _, it := range ledger.SortedItems(s) {
		req.Items = append(req.Items, r.itemPayload(it))
	}
	for _, st := range ledger.SortedSettlements(s) {
		req.Settlements = append(req.Settlements, r.settlementPayload(st))
	}
	return req
}

// prepareSyncRequest picks the sync mode of bill and encodes its request.
func prepareSyncRequest(bill models.LocalBill) (models.SyncMode, json.RawMessage, error) {
	if bill.RemoteID == "" {
		body, err := json.Marshal(BuildFullSyncRequest(bill))
		if err != nil {
			return models.SyncModeNone, nil, fmt.Errorf("encode full sync request: %w", err)
		}
		return models.SyncModeFull, body, nil
	}

	req, ok := BuildDeltaRequest(bill)
	if !ok {
		return models.SyncModeNone, nil, nil
	}
	body, err := json.Marshal(req)
	if err != nil {
		return models.SyncModeNone, nil, fmt.Errorf("encode delta sync request: %w", err)
	}
	return models.SyncModeDelta, body, nil
}

// refs renders local references in wire form.
type refs struct {
	members  map[string]string
	expenses map[string]string
}

func newRefs(s models.LedgerState) refs {
	r := refs{
		members:  make(map[string]string, len(s.Members)),
		expenses: make(map[string]string, len(s.Expenses)),
	}
	for id, m := range s.Members {
		r.members[id] = ledger.Key(m.RemoteID, id)
	}
	for id, e := range s.Expenses {
		r.expenses[id] = ledger.Key(e.RemoteID, id)
	}
	return r
}

func (r refs) member(localID string) string {
	if ref, ok := r.members[localID]; ok {
		return ref
	}
	return localID
}

func (r refs) payer(localID string) *string {
	if localID == "" {
		return nil
	}
	ref := r.member(localID)
	return &ref
}

func (r refs) participants(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.member(id))
	}
	return out
}

func (r refs) expense(localID string) string {
	if ref, ok := r.expenses[localID]; ok {
		return ref
	}
	return localID
}

func memberPayload(m models.LocalMember) models.MemberPayload {
	return models.MemberPayload{
		LocalID:      m.LocalID,
		RemoteID:     m.RemoteID,
		Name:         m.Name,
		OriginalName: m.OriginalName,
		DisplayOrder: m.DisplayOrder,
		UserID:       m.UserID,
		ClaimedAt:    m.ClaimedAt,
	}
}

func (r refs) expensePayload(e models.LocalExpense) models.ExpensePayload {
	return models.ExpensePayload{
		LocalID:           e.LocalID,
		RemoteID:          e.RemoteID,
		Name:              e.Name,
		Amount:            e.Amount,
		ServiceFeePercent: e.ServiceFeePercent,
		IsItemized:        e.IsItemized,
		PaidBy:            r.payer(e.PaidBy),
		Participants:      r.participants(e.Participants),
	}
}

func (r refs) itemPayload(it models.LocalItem) models.ItemPayload {
	return models.ItemPayload{
		LocalID:      it.LocalID,
		RemoteID:     it.RemoteID,
		ExpenseRef:   r.expense(it.ExpenseID),
		Name:         it.Name,
		Amount:       it.Amount,
		PaidBy:       r.payer(it.PaidBy),
		Participants: r.participants(it.Participants),
	}
}

func (r refs) settlementPayload(st models.LocalSettlement) models.SettlementPayload {
	return models.SettlementPayload{
		LocalID:    st.LocalID,
		RemoteID:   st.RemoteID,
		FromMember: r.member(st.FromMember),
		ToMember:   r.member(st.ToMember),
		Amount:     st.Amount,
		SettledAt:  st.SettledAt,
	}
}

func memberUpdate(key string, m models.LocalMember, fields map[string]struct{}) models.MemberUpdate {
	u := models.MemberUpdate{RemoteID: key}
	for f := range fields {
		switch f {
		case models.FieldName:
			u.Name = ptrTo(m.Name)
		case models.FieldOriginalName:
			u.OriginalName = ptrTo(derefOr(m.OriginalName))
		case models.FieldDisplayOrder:
			u.DisplayOrder = ptrTo(m.DisplayOrder)
		case models.FieldUserID:
			u.UserID = ptrTo(derefOr(m.UserID))
		case models.FieldClaimedAt:
			u.ClaimedAt = m.ClaimedAt
		}
	}
	return u
}

func (r refs) expenseUpdate(key string, e models.LocalExpense, fields map[string]struct{}) models.ExpenseUpdate {
	u := models.ExpenseUpdate{RemoteID: key}
	for f := range fields {
		switch f {
		case models.FieldName:
			u.Name = ptrTo(e.Name)
		case models.FieldAmount:
			u.Amount = ptrTo(e.Amount)
		case models.FieldServiceFeePercent:
			u.ServiceFeePercent = ptrTo(e.ServiceFeePercent)
		case models.FieldIsItemized:
			u.IsItemized = ptrTo(e.IsItemized)
		case models.FieldPaidBy:
			u.PaidBy = ptrTo("")
			if e.PaidBy != "" {
				u.PaidBy = ptrTo(r.member(e.PaidBy))
			}
		case models.FieldParticipants:
			u.Participants = ptrTo(r.participants(e.Participants))
		}
	}
	return u
}

func (r refs) itemUpdate(key string, it models.LocalItem, fields map[string]struct{}) models.ItemUpdate {
	u := models.ItemUpdate{RemoteID: key}
	for f := range fields {
		switch f {
		case models.FieldName:
			u.Name = ptrTo(it.Name)
		case models.FieldAmount:
			u.Amount = ptrTo(it.Amount)
		case models.FieldPaidBy:
			u.PaidBy = ptrTo("")
			if it.PaidBy != "" {
				u.PaidBy = ptrTo(r.member(it.PaidBy))
			}
		case models.FieldParticipants:
			u.Participants = ptrTo(r.participants(it.Participants))
		}
	}
	return u
}

// indexByKey maps tracker keys to local IDs, per collection.
func indexByKey(s models.LedgerState) map[models.EntityType]map[string]string {
	idx := map[models.EntityType]map[string]string{
		models.EntityMember:  make(map[string]string, len(s.Members)),
		models.EntityExpense: make(map[string]string, len(s.Expenses)),
		models.EntityItem:    make(map[string]string, len(s.Items)),
	}
	for id, m := range s.Members {
		idx[models.EntityMember][ledger.Key(m.RemoteID, id)] = id
	}
	for id, e := range s.Expenses {
		idx[models.EntityExpense][ledger.Key(e.RemoteID, id)] = id
	}
	for id, it := range s.Items {
		idx[models.EntityItem][ledger.Key(it.RemoteID, id)] = id
	}
	return idx
}

func sortedKeys[V any](m map[string]V) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func ptrTo[T any](v T) *T { return &v }

func derefOr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
