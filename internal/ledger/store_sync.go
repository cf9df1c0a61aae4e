// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package ledger

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/MKhiriev/go-bill-keeper/models"
)

// PrepareFunc builds the wire request for a bill whose pending changes are
// about to be sent. Returning models.SyncModeNone aborts the round.
type PrepareFunc func(b models.LocalBill) (models.SyncMode, json.RawMessage, error)

// SyncSuccess is an accepted server answer.
type SyncSuccess struct {
	RemoteID  string
	ShareCode string
	Version   int64
	Mappings  models.IDMappings
}

// BeginSync detaches the pending changes into an in-flight request built by
// prepare. A bill that already has a request in flight keeps it, so an
// interrupted round is resent byte for byte.
func (s *Store) BeginSync(ctx context.Context, localID string, prepare PrepareFunc) (models.LocalBill, error) {
	return s.mutate(ctx, localID, func(b *models.LocalBill) error {
		if b.InFlight != nil {
			b.SyncStatus = models.SyncStatusSyncing
			return nil
		}

		mode, request, err := prepare(b.Clone())
		if err != nil {
			return err
		}
		if mode == models.SyncModeNone {
			return ErrNothingToSync
		}

		b.InFlight = &models.InFlightSync{
			Mode:    mode,
			Changes: b.Pending,
			Sent:    b.State.Clone(),
			Request: request,
		}
		b.Pending = models.NewPendingChanges()
		b.SyncStatus = models.SyncStatusSyncing
		b.SyncError = ""
		return nil
	})
}

// ApplySyncSuccess records an accepted request: server IDs are stamped on
// every entity, pending keys are rewritten to them and the sent state
// becomes the new snapshot.
func (s *Store) ApplySyncSuccess(ctx context.Context, localID string, res SyncSuccess) (models.LocalBill, error) {
	return s.mutate(ctx, localID, func(b *models.LocalBill) error {
		if b.InFlight == nil {
			return ErrNoSyncInFlight
		}

		sent := b.InFlight.Sent
		applyMappings(&sent, res.Mappings)
		applyMappings(&b.State, res.Mappings)
		Remap(&b.Pending, res.Mappings)

		// an add the server did not map is not known there; send it again
		for _, entity := range collections {
			mapping := res.Mappings.For(entity)
			for id := range b.InFlight.Changes.For(entity).Added {
				if _, mapped := mapping[id]; mapped || !exists(b.State, entity, id) {
					continue
				}
				c := b.Pending.For(entity)
				delete(c.Updated, id)
				c.Added[id] = struct{}{}
			}
		}

		if res.RemoteID != "" {
			b.RemoteID = res.RemoteID
		}
		if res.ShareCode != "" {
			b.ShareCode = res.ShareCode
		}
		b.Version = res.Version
		b.Snapshot = sent
		b.InFlight = nil
		b.SyncError = ""
		b.SyncStatus = doneStatus(b)

		s.logger.Debug().Str("func", "Store.ApplySyncSuccess").
			Str("bill_id", localID).
			Int64("version", res.Version).
			Int("mappings", res.Mappings.Len()).
			Msg("sync applied")
		return nil
	})
}

// RebaseFromServer replaces the bill with an authoritative server state. The
// in-flight request is discarded; edits made after it was built are replayed
// on top of the server state as far as their targets still exist.
func (s *Store) RebaseFromServer(ctx context.Context, localID string, server models.Bill, mappings models.IDMappings) (models.LocalBill, error) {
	return s.mutate(ctx, localID, func(b *models.LocalBill) error {
		old := b.State.Clone()
		applyMappings(&old, mappings)
		pending := b.Pending.Clone()
		Remap(&pending, mappings)

		known := indexRemote(old)
		lookup := func(entity models.EntityType, key string) string {
			if id, ok := known[entity][key]; ok {
				return id
			}
			return key
		}

		base := fromServer(server, indexRemote(old), old.NextSeq)

		b.SyncStatus = models.SyncStatusConflict
		b.RemoteID = server.ID
		b.ShareCode = server.ShareCode
		b.Version = server.Version
		b.Snapshot = base
		b.State = base.Clone()
		b.Pending = models.NewPendingChanges()
		b.InFlight = nil
		b.SyncError = ""

		if pending.BillName && old.Name != base.Name {
			b.State.Name = old.Name
			b.Pending.BillName = true
		}

		replayAdds(b, old, pending)
		replayUpdates(b, old, pending, lookup)
		replayDeletes(b, pending, lookup)

		b.SyncStatus = doneStatus(b)

		s.logger.Info().Str("func", "Store.RebaseFromServer").
			Str("bill_id", localID).
			Int64("version", server.Version).
			Bool("has_pending", !b.Pending.IsEmpty()).
			Msg("bill rebased onto server state")
		return nil
	})
}

// MarkSyncedEmpty settles a synced bill whose pending set rendered to an
// empty request. Leftover records are dropped.
func (s *Store) MarkSyncedEmpty(ctx context.Context, localID string) (models.LocalBill, error) {
	return s.mutate(ctx, localID, func(b *models.LocalBill) error {
		if b.RemoteID == "" || b.InFlight != nil {
			return nil
		}
		b.Pending = models.NewPendingChanges()
		b.SyncStatus = models.SyncStatusSynced
		b.SyncError = ""
		return nil
	})
}

// MarkError moves the bill to the error state. With keepInFlight the exact
// request is kept for a later resend; otherwise its changes are folded back
// into the pending set.
func (s *Store) MarkError(ctx context.Context, localID, message string, keepInFlight bool) (models.LocalBill, error) {
	return s.mutate(ctx, localID, func(b *models.LocalBill) error {
		if b.InFlight != nil && !keepInFlight {
			b.Pending = Merge(b.InFlight.Changes, b.Pending)
			b.InFlight = nil
		}
		b.SyncStatus = models.SyncStatusError
		b.SyncError = message
		return nil
	})
}

// ReleaseSync ends a round that was not resolved, for example because the
// caller gave up. The in-flight request is kept and the bill is left ready
// for another attempt.
func (s *Store) ReleaseSync(ctx context.Context, localID string) (models.LocalBill, error) {
	return s.mutate(ctx, localID, func(b *models.LocalBill) error {
		if b.SyncStatus == models.SyncStatusSyncing {
			b.SyncStatus = unsyncedStatus(*b)
		}
		return nil
	})
}

// ClearError leaves the error state so the bill can be synced again.
func (s *Store) ClearError(ctx context.Context, localID string) (models.LocalBill, error) {
	return s.mutate(ctx, localID, func(b *models.LocalBill) error {
		if b.SyncStatus != models.SyncStatusError {
			return nil
		}
		b.SyncError = ""
		b.SyncStatus = unsyncedStatus(*b)
		if b.RemoteID != "" && b.InFlight == nil && b.Pending.IsEmpty() {
			b.SyncStatus = models.SyncStatusSynced
		}
		return nil
	})
}

func doneStatus(b *models.LocalBill) models.SyncStatus {
	if b.Pending.IsEmpty() {
		return models.SyncStatusSynced
	}
	return models.SyncStatusModified
}

// ── replay ──────────────────────────────────────────────────────────────────

func replayAdds(b *models.LocalBill, old models.LedgerState, pending models.PendingChanges) {
	for _, m := range SortedMembers(old) {
		if _, ok := pending.Members.Added[m.LocalID]; !ok {
			continue
		}
		m.Seq = nextSeq(&b.State)
		if m.UserID != nil && claimed(b.State, *m.UserID, m.LocalID) {
			m.UserID, m.ClaimedAt = nil, nil
		}
		b.State.Members[m.LocalID] = m
		RecordAdd(&b.Pending, models.EntityMember, m.LocalID)
	}

	for _, e := range SortedExpenses(old) {
		if _, ok := pending.Expenses.Added[e.LocalID]; !ok {
			continue
		}
		e.PaidBy, e.Participants = keepMembers(b.State, e.PaidBy, e.Participants)
		e.Seq = nextSeq(&b.State)
		b.State.Expenses[e.LocalID] = e
		RecordAdd(&b.Pending, models.EntityExpense, e.LocalID)
	}

	for _, it := range SortedItems(old) {
		if _, ok := pending.Items.Added[it.LocalID]; !ok {
			continue
		}
		if parent, ok := b.State.Expenses[it.ExpenseID]; !ok || !parent.IsItemized {
			continue
		}
		it.PaidBy, it.Participants = keepMembers(b.State, it.PaidBy, it.Participants)
		it.Seq = nextSeq(&b.State)
		b.State.Items[it.LocalID] = it
		RecordAdd(&b.Pending, models.EntityItem, it.LocalID)
	}

	for _, st := range SortedSettlements(old) {
		if _, ok := pending.Settlements.Added[st.LocalID]; !ok {
			continue
		}
		_, fromOK := b.State.Members[st.FromMember]
		_, toOK := b.State.Members[st.ToMember]
		if !fromOK || !toOK {
			continue
		}
		st.Seq = nextSeq(&b.State)
		b.State.Settlements[st.LocalID] = st
		RecordAdd(&b.Pending, models.EntitySettlement, st.LocalID)
	}
}

func replayUpdates(b *models.LocalBill, old models.LedgerState, pending models.PendingChanges, lookup func(models.EntityType, string) string) {
	for _, key := range sortedKeys(pending.Members.Updated) {
		id := lookup(models.EntityMember, key)
		cur, ok := b.State.Members[id]
		src, had := old.Members[id]
		if !ok || !had {
			continue
		}
		for f := range pending.Members.Updated[key] {
			copyMemberField(f, &cur, src)
		}
		if cur.UserID != nil && claimed(b.State, *cur.UserID, id) {
			continue
		}
		editMember(b, cur)
	}

	for _, key := range sortedKeys(pending.Expenses.Updated) {
		id := lookup(models.EntityExpense, key)
		cur, ok := b.State.Expenses[id]
		src, had := old.Expenses[id]
		if !ok || !had {
			continue
		}
		for f := range pending.Expenses.Updated[key] {
			copyExpenseField(f, &cur, src)
		}
		cur.PaidBy, cur.Participants = keepMembers(b.State, cur.PaidBy, cur.Participants)
		editExpense(b, cur)
	}

	for _, key := range sortedKeys(pending.Items.Updated) {
		id := lookup(models.EntityItem, key)
		cur, ok := b.State.Items[id]
		src, had := old.Items[id]
		if !ok || !had {
			continue
		}
		for f := range pending.Items.Updated[key] {
			copyItemField(f, &cur, src)
		}
		cur.PaidBy, cur.Participants = keepMembers(b.State, cur.PaidBy, cur.Participants)
		editItem(b, cur)
	}
}

func replayDeletes(b *models.LocalBill, pending models.PendingChanges, lookup func(models.EntityType, string) string) {
	for _, key := range sortedKeys(pending.Items.Deleted) {
		if id := lookup(models.EntityItem, key); exists(b.State, models.EntityItem, id) {
			removeItem(b, id)
		}
	}
	for _, key := range sortedKeys(pending.Expenses.Deleted) {
		if id := lookup(models.EntityExpense, key); exists(b.State, models.EntityExpense, id) {
			removeExpense(b, id)
		}
	}
	for _, key := range sortedKeys(pending.Settlements.Deleted) {
		if id := lookup(models.EntitySettlement, key); exists(b.State, models.EntitySettlement, id) {
			removeSettlement(b, id)
		}
	}
	for _, key := range sortedKeys(pending.Members.Deleted) {
		if id := lookup(models.EntityMember, key); exists(b.State, models.EntityMember, id) {
			removeMember(b, id)
		}
	}
}

// keepMembers drops references to members the state no longer holds.
func keepMembers(s models.LedgerState, paidBy string, participants []string) (string, []string) {
	if _, ok := s.Members[paidBy]; !ok {
		paidBy = ""
	}
	kept := slices.DeleteFunc(slices.Clone(participants), func(id string) bool {
		_, ok := s.Members[id]
		return !ok
	})
	if kept == nil {
		kept = []string{}
	}
	return paidBy, kept
}

func exists(s models.LedgerState, entity models.EntityType, localID string) bool {
	var ok bool
	switch entity {
	case models.EntityMember:
		_, ok = s.Members[localID]
	case models.EntityExpense:
		_, ok = s.Expenses[localID]
	case models.EntityItem:
		_, ok = s.Items[localID]
	case models.EntitySettlement:
		_, ok = s.Settlements[localID]
	}
	return ok
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
