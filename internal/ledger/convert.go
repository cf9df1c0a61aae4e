// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package ledger

import (
	"cmp"
	"maps"
	"slices"

	"github.com/MKhiriev/go-bill-keeper/models"
)

// remoteIndex maps remote IDs to local IDs, per collection.
type remoteIndex map[models.EntityType]map[string]string

func indexRemote(s models.LedgerState) remoteIndex {
	idx := remoteIndex{
		models.EntityMember:     make(map[string]string, len(s.Members)),
		models.EntityExpense:    make(map[string]string, len(s.Expenses)),
		models.EntityItem:       make(map[string]string, len(s.Items)),
		models.EntitySettlement: make(map[string]string, len(s.Settlements)),
	}
	for id, m := range s.Members {
		if m.RemoteID != "" {
			idx[models.EntityMember][m.RemoteID] = id
		}
	}
	for id, e := range s.Expenses {
		if e.RemoteID != "" {
			idx[models.EntityExpense][e.RemoteID] = id
		}
	}
	for id, it := range s.Items {
		if it.RemoteID != "" {
			idx[models.EntityItem][it.RemoteID] = id
		}
	}
	for id, st := range s.Settlements {
		if st.RemoteID != "" {
			idx[models.EntitySettlement][st.RemoteID] = id
		}
	}
	return idx
}

// local returns the local ID of a remote entity, adopting the remote ID for
// entities seen for the first time.
func (idx remoteIndex) local(entity models.EntityType, remoteID string) string {
	if id, ok := idx[entity][remoteID]; ok {
		return id
	}
	idx[entity][remoteID] = remoteID
	return remoteID
}

func (idx remoteIndex) ref(entity models.EntityType, remoteID *string) string {
	if remoteID == nil || *remoteID == "" {
		return ""
	}
	return idx.local(entity, *remoteID)
}

func (idx remoteIndex) refs(entity models.EntityType, remoteIDs []string) []string {
	out := make([]string, 0, len(remoteIDs))
	for _, id := range remoteIDs {
		out = append(out, idx.local(entity, id))
	}
	return out
}

// fromServer renders a server bill as a local arena. Entities already known
// locally keep their local IDs.
func fromServer(server models.Bill, idx remoteIndex, nextSeq int64) models.LedgerState {
	state := models.NewLedgerState(server.Name)
	seq := func() int64 {
		nextSeq++
		return nextSeq
	}

	for _, m := range server.Members {
		id := idx.local(models.EntityMember, m.ID)
		state.Members[id] = models.LocalMember{
			LocalID:      id,
			RemoteID:     m.ID,
			Name:         m.Name,
			OriginalName: m.OriginalName,
			DisplayOrder: m.DisplayOrder,
			UserID:       m.UserID,
			ClaimedAt:    m.ClaimedAt,
			Seq:          seq(),
		}
	}
	for _, e := range server.Expenses {
		id := idx.local(models.EntityExpense, e.ID)
		state.Expenses[id] = models.LocalExpense{
			LocalID:           id,
			RemoteID:          e.ID,
			Name:              e.Name,
			Amount:            e.Amount,
			ServiceFeePercent: e.ServiceFeePercent,
			IsItemized:        e.IsItemized,
			PaidBy:            idx.ref(models.EntityMember, e.PaidBy),
			Participants:      idx.refs(models.EntityMember, e.Participants),
			Seq:               seq(),
		}
	}
	for _, it := range server.Items {
		id := idx.local(models.EntityItem, it.ID)
		state.Items[id] = models.LocalItem{
			LocalID:      id,
			RemoteID:     it.ID,
			ExpenseID:    idx.local(models.EntityExpense, it.ExpenseID),
			Name:         it.Name,
			Amount:       it.Amount,
			PaidBy:       idx.ref(models.EntityMember, it.PaidBy),
			Participants: idx.refs(models.EntityMember, it.Participants),
			Seq:          seq(),
		}
	}
	for _, s := range server.Settlements {
		id := idx.local(models.EntitySettlement, s.ID)
		state.Settlements[id] = models.LocalSettlement{
			LocalID:    id,
			RemoteID:   s.ID,
			FromMember: idx.local(models.EntityMember, s.FromMember),
			ToMember:   idx.local(models.EntityMember, s.ToMember),
			Amount:     s.Amount,
			SettledAt:  s.SettledAt,
			Seq:        seq(),
		}
	}
	state.NextSeq = nextSeq

	return state
}

// applyMappings stamps server IDs on the entities of s.
func applyMappings(s *models.LedgerState, mappings models.IDMappings) {
	for localID, remoteID := range mappings.Members {
		if m, ok := s.Members[localID]; ok {
			m.RemoteID = remoteID
			s.Members[localID] = m
		}
	}
	for localID, remoteID := range mappings.Expenses {
		if e, ok := s.Expenses[localID]; ok {
			e.RemoteID = remoteID
			s.Expenses[localID] = e
		}
	}
	for localID, remoteID := range mappings.Items {
		if it, ok := s.Items[localID]; ok {
			it.RemoteID = remoteID
			s.Items[localID] = it
		}
	}
	for localID, remoteID := range mappings.Settlements {
		if st, ok := s.Settlements[localID]; ok {
			st.RemoteID = remoteID
			s.Settlements[localID] = st
		}
	}
}

// SortedMembers returns the members of s in creation order.
func SortedMembers(s models.LedgerState) []models.LocalMember {
	return sortedBySeq(s.Members, func(m models.LocalMember) int64 { return m.Seq })
}

// SortedExpenses returns the expenses of s in creation order.
func SortedExpenses(s models.LedgerState) []models.LocalExpense {
	return sortedBySeq(s.Expenses, func(e models.LocalExpense) int64 { return e.Seq })
}

// SortedItems returns the items of s in creation order.
func SortedItems(s models.LedgerState) []models.LocalItem {
	return sortedBySeq(s.Items, func(it models.LocalItem) int64 { return it.Seq })
}

// SortedSettlements returns the settlements of s in creation order.
func SortedSettlements(s models.LedgerState) []models.LocalSettlement {
	return sortedBySeq(s.Settlements, func(st models.LocalSettlement) int64 { return st.Seq })
}

func sortedBySeq[T any](m map[string]T, seq func(T) int64) []T {
	out := slices.Collect(maps.Values(m))
	slices.SortStableFunc(out, func(a, b T) int { return cmp.Compare(seq(a), seq(b)) })
	return out
}

// ToBill renders a local bill as a server-shaped bill keyed by local IDs, for
// computations that run without the server.
func ToBill(b models.LocalBill) models.Bill {
	s := b.State
	out := models.Bill{
		ID:          b.LocalID,
		Name:        s.Name,
		ShareCode:   b.ShareCode,
		Version:     b.Version,
		Members:     make([]models.Member, 0, len(s.Members)),
		Expenses:    make([]models.Expense, 0, len(s.Expenses)),
		Items:       make([]models.ExpenseItem, 0, len(s.Items)),
		Settlements: make([]models.SettledTransfer, 0, len(s.Settlements)),
		UpdatedAt:   b.UpdatedAt,
	}
	optional := func(id string) *string {
		if id == "" {
			return nil
		}
		return &id
	}

	for _, m := range SortedMembers(s) {
		out.Members = append(out.Members, models.Member{
			ID:           m.LocalID,
			BillID:       b.LocalID,
			Name:         m.Name,
			OriginalName: m.OriginalName,
			DisplayOrder: m.DisplayOrder,
			UserID:       m.UserID,
			ClaimedAt:    m.ClaimedAt,
		})
	}
	for _, e := range SortedExpenses(s) {
		out.Expenses = append(out.Expenses, models.Expense{
			ID:                e.LocalID,
			BillID:            b.LocalID,
			Name:              e.Name,
			Amount:            e.Amount,
			ServiceFeePercent: e.ServiceFeePercent,
			IsItemized:        e.IsItemized,
			PaidBy:            optional(e.PaidBy),
			Participants:      slices.Clone(e.Participants),
		})
	}
	for _, it := range SortedItems(s) {
		out.Items = append(out.Items, models.ExpenseItem{
			ID:           it.LocalID,
			BillID:       b.LocalID,
			ExpenseID:    it.ExpenseID,
			Name:         it.Name,
			Amount:       it.Amount,
			PaidBy:       optional(it.PaidBy),
			Participants: slices.Clone(it.Participants),
		})
	}
	for _, st := range SortedSettlements(s) {
		out.Settlements = append(out.Settlements, models.SettledTransfer{
			ID:         st.LocalID,
			BillID:     b.LocalID,
			FromMember: st.FromMember,
			ToMember:   st.ToMember,
			Amount:     st.Amount,
			SettledAt:  st.SettledAt,
		})
	}

	return out
}
