// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-bill-keeper/models"
)

func prepareAs(mode models.SyncMode) PrepareFunc {
	return func(models.LocalBill) (models.SyncMode, json.RawMessage, error) {
		return mode, json.RawMessage(`{"op":"` + string(mode) + `"}`), nil
	}
}

// ── begin ───────────────────────────────────────────────────────────────────

func TestStore_BeginSync_DetachesPending(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	b, err := s.CreateBill(ctx, "Trip")
	require.NoError(t, err)
	m, err := s.AddMember(ctx, b.LocalID, MemberInput{Name: "Alice"})
	require.NoError(t, err)

	var seen models.LocalBill
	got, err := s.BeginSync(ctx, b.LocalID, func(lb models.LocalBill) (models.SyncMode, json.RawMessage, error) {
		seen = lb
		return models.SyncModeFull, json.RawMessage(`{}`), nil
	})
	require.NoError(t, err)

	assert.Contains(t, seen.Pending.Members.Added, m.LocalID)
	assert.Equal(t, models.SyncStatusSyncing, got.SyncStatus)
	assert.True(t, got.Pending.IsEmpty())
	require.NotNil(t, got.InFlight)
	assert.Equal(t, models.SyncModeFull, got.InFlight.Mode)
	assert.True(t, got.InFlight.Changes.BillName)
	assert.Contains(t, got.InFlight.Changes.Members.Added, m.LocalID)
	assert.Contains(t, got.InFlight.Sent.Members, m.LocalID)
}

func TestStore_BeginSync_NothingToSync(t *testing.T) {
	s, repo := newTestStore(t)
	b := importServerBill(t, s)
	saves := repo.saves

	_, err := s.BeginSync(context.Background(), b.LocalID, prepareAs(models.SyncModeNone))
	assert.ErrorIs(t, err, ErrNothingToSync)

	got, _ := s.Get(b.LocalID)
	assert.Nil(t, got.InFlight)
	assert.Equal(t, models.SyncStatusSynced, got.SyncStatus)
	assert.Equal(t, saves, repo.saves)
}

func TestStore_BeginSync_PrepareError(t *testing.T) {
	s, _ := newTestStore(t)
	b, _ := s.CreateBill(context.Background(), "Trip")

	boom := errors.New("boom")
	_, err := s.BeginSync(context.Background(), b.LocalID, func(models.LocalBill) (models.SyncMode, json.RawMessage, error) {
		return "", nil, boom
	})
	assert.ErrorIs(t, err, boom)

	got, _ := s.Get(b.LocalID)
	assert.Equal(t, models.SyncStatusLocal, got.SyncStatus)
	assert.True(t, got.Pending.BillName)
}

func TestStore_BeginSync_ResumesInFlight(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	b, _ := s.CreateBill(ctx, "Trip")

	first, err := s.BeginSync(ctx, b.LocalID, prepareAs(models.SyncModeFull))
	require.NoError(t, err)
	_, err = s.ReleaseSync(ctx, b.LocalID)
	require.NoError(t, err)

	again, err := s.BeginSync(ctx, b.LocalID, func(models.LocalBill) (models.SyncMode, json.RawMessage, error) {
		t.Fatal("prepare must not run while a request is in flight")
		return "", nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, first.InFlight.Request, again.InFlight.Request)
	assert.Equal(t, models.SyncStatusSyncing, again.SyncStatus)
}

// ── success ─────────────────────────────────────────────────────────────────

func TestStore_ApplySyncSuccess_FirstSync(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	b, _ := s.CreateBill(ctx, "Trip")
	alice, _ := s.AddMember(ctx, b.LocalID, MemberInput{Name: "Alice"})
	dinner, _ := s.AddExpense(ctx, b.LocalID, ExpenseInput{Name: "Dinner", Amount: dec(50), PaidBy: alice.LocalID, Participants: []string{alice.LocalID}})

	_, err := s.BeginSync(ctx, b.LocalID, prepareAs(models.SyncModeFull))
	require.NoError(t, err)

	// edited while the request is in flight
	_, err = s.UpdateMember(ctx, b.LocalID, alice.LocalID, MemberPatch{Name: ptr("Alicia")})
	require.NoError(t, err)
	mid, _ := s.Get(b.LocalID)
	assert.Equal(t, models.SyncStatusSyncing, mid.SyncStatus)
	assert.Contains(t, mid.Pending.Members.Updated, alice.LocalID)

	mappings := models.NewIDMappings()
	mappings.Members[alice.LocalID] = "rA"
	mappings.Expenses[dinner.LocalID] = "re1"

	got, err := s.ApplySyncSuccess(ctx, b.LocalID, SyncSuccess{RemoteID: "rb", ShareCode: "CODE1234", Version: 1, Mappings: mappings})
	require.NoError(t, err)

	assert.Equal(t, "rb", got.RemoteID)
	assert.Equal(t, "CODE1234", got.ShareCode)
	assert.Equal(t, int64(1), got.Version)
	assert.Nil(t, got.InFlight)
	assert.Equal(t, models.SyncStatusModified, got.SyncStatus)

	assert.Equal(t, "rA", got.State.Members[alice.LocalID].RemoteID)
	assert.Equal(t, "re1", got.State.Expenses[dinner.LocalID].RemoteID)
	assert.Equal(t, "rA", got.Snapshot.Members[alice.LocalID].RemoteID)
	assert.Equal(t, "Alice", got.Snapshot.Members[alice.LocalID].Name)
	assert.Equal(t, "Alicia", got.State.Members[alice.LocalID].Name)

	assert.Equal(t, fieldSet(models.FieldName), got.Pending.Members.Updated["rA"])
	assert.NotContains(t, got.Pending.Members.Updated, alice.LocalID)
}

func TestStore_ApplySyncSuccess_Clean(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	b := importServerBill(t, s)

	_, err := s.UpdateExpense(ctx, b.LocalID, "re1", ExpensePatch{Amount: ptr(dec(200))})
	require.NoError(t, err)
	_, err = s.BeginSync(ctx, b.LocalID, prepareAs(models.SyncModeDelta))
	require.NoError(t, err)

	got, err := s.ApplySyncSuccess(ctx, b.LocalID, SyncSuccess{Version: 6, Mappings: models.NewIDMappings()})
	require.NoError(t, err)

	assert.Equal(t, models.SyncStatusSynced, got.SyncStatus)
	assert.Equal(t, "rb", got.RemoteID)
	assert.Equal(t, "ABCD1234", got.ShareCode)
	assert.True(t, got.Snapshot.Expenses["re1"].Amount.Equal(dec(200)))
	assert.False(t, got.HasUnsent())
}

func TestStore_ApplySyncSuccess_UnmappedAddIsResent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	b := importServerBill(t, s)

	carol, _ := s.AddMember(ctx, b.LocalID, MemberInput{Name: "Carol"})
	_, err := s.BeginSync(ctx, b.LocalID, prepareAs(models.SyncModeDelta))
	require.NoError(t, err)

	got, err := s.ApplySyncSuccess(ctx, b.LocalID, SyncSuccess{Version: 6, Mappings: models.NewIDMappings()})
	require.NoError(t, err)
	assert.Contains(t, got.Pending.Members.Added, carol.LocalID)
	assert.Equal(t, models.SyncStatusModified, got.SyncStatus)
}

func TestStore_ApplySyncSuccess_NoFlight(t *testing.T) {
	s, _ := newTestStore(t)
	b := importServerBill(t, s)

	_, err := s.ApplySyncSuccess(context.Background(), b.LocalID, SyncSuccess{Version: 6})
	assert.ErrorIs(t, err, ErrNoSyncInFlight)
}

// ── rebase ──────────────────────────────────────────────────────────────────

func TestStore_RebaseFromServer_ReplaysLaterEdits(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	b := importServerBill(t, s)

	// in flight: amount 300
	_, err := s.UpdateExpense(ctx, b.LocalID, "re1", ExpensePatch{Amount: ptr(dec(300))})
	require.NoError(t, err)
	_, err = s.BeginSync(ctx, b.LocalID, prepareAs(models.SyncModeDelta))
	require.NoError(t, err)

	// edited after the request was built
	_, err = s.UpdateExpense(ctx, b.LocalID, "re1", ExpensePatch{Name: ptr("Late dinner")})
	require.NoError(t, err)
	carol, err := s.AddMember(ctx, b.LocalID, MemberInput{Name: "Carol"})
	require.NoError(t, err)
	_, err = s.UpdateExpense(ctx, b.LocalID, "re2", ExpensePatch{Participants: ptr([]string{"rA", carol.LocalID})})
	require.NoError(t, err)

	// another client set the amount to 200
	server := serverBill()
	server.Version = 6
	server.Expenses[0].Amount = dec(200)

	got, err := s.RebaseFromServer(ctx, b.LocalID, server, models.NewIDMappings())
	require.NoError(t, err)

	assert.Equal(t, int64(6), got.Version)
	assert.Nil(t, got.InFlight)
	assert.Equal(t, models.SyncStatusModified, got.SyncStatus)

	dinner := got.State.Expenses["re1"]
	assert.True(t, dinner.Amount.Equal(dec(200)))
	assert.Equal(t, "Late dinner", dinner.Name)
	assert.Equal(t, "Dinner", got.Snapshot.Expenses["re1"].Name)
	assert.True(t, got.Snapshot.Expenses["re1"].Amount.Equal(dec(200)))

	assert.Contains(t, got.State.Members, carol.LocalID)
	assert.Equal(t, []string{"rA", carol.LocalID}, got.State.Expenses["re2"].Participants)

	assert.Equal(t, map[string]struct{}{carol.LocalID: {}}, got.Pending.Members.Added)
	assert.Equal(t, map[string]map[string]struct{}{
		"re1": fieldSet(models.FieldName),
		"re2": fieldSet(models.FieldParticipants),
	}, got.Pending.Expenses.Updated)
}

func TestStore_RebaseFromServer_DropsEditsOfRemovedEntities(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	b := importServerBill(t, s)

	_, err := s.UpdateExpense(ctx, b.LocalID, "re2", ExpensePatch{Name: ptr("Cab")})
	require.NoError(t, err)
	_, err = s.DeleteSettlement(ctx, b.LocalID, "rs1")
	require.NoError(t, err)

	// the taxi and the settlement are gone on the server
	server := serverBill()
	server.Version = 7
	server.Expenses = server.Expenses[:1]
	server.Expenses = append(server.Expenses, serverBill().Expenses[2])
	server.Settlements = nil

	got, err := s.RebaseFromServer(ctx, b.LocalID, server, models.NewIDMappings())
	require.NoError(t, err)

	assert.NotContains(t, got.State.Expenses, "re2")
	assert.True(t, got.Pending.IsEmpty())
	assert.Equal(t, models.SyncStatusSynced, got.SyncStatus)
	assert.Equal(t, got.Snapshot, got.State)
}

func TestStore_RebaseFromServer_AdoptsAcceptedAdds(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	b := importServerBill(t, s)

	dan, _ := s.AddMember(ctx, b.LocalID, MemberInput{Name: "Dan"})
	_, err := s.BeginSync(ctx, b.LocalID, prepareAs(models.SyncModeDelta))
	require.NoError(t, err)

	// the add landed; another new member came from a peer
	server := serverBill()
	server.Version = 7
	server.Members = append(server.Members,
		models.Member{ID: "rD", Name: "Dan", DisplayOrder: 2},
		models.Member{ID: "rE", Name: "Eve", DisplayOrder: 3},
	)
	mappings := models.NewIDMappings()
	mappings.Members[dan.LocalID] = "rD"

	got, err := s.RebaseFromServer(ctx, b.LocalID, server, mappings)
	require.NoError(t, err)

	assert.Equal(t, "rD", got.State.Members[dan.LocalID].RemoteID)
	assert.Equal(t, "rE", got.State.Members["rE"].RemoteID)
	assert.Len(t, got.State.Members, 4)
	assert.True(t, got.Pending.IsEmpty())
	assert.Equal(t, models.SyncStatusSynced, got.SyncStatus)
}

func TestStore_RebaseFromServer_KeepsLocalRename(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	b := importServerBill(t, s)

	_, err := s.RenameBill(ctx, b.LocalID, "Ski trip")
	require.NoError(t, err)

	server := serverBill()
	server.Version = 6
	server.Name = "Trip 2026"

	got, err := s.RebaseFromServer(ctx, b.LocalID, server, models.NewIDMappings())
	require.NoError(t, err)
	assert.Equal(t, "Ski trip", got.State.Name)
	assert.Equal(t, "Trip 2026", got.Snapshot.Name)
	assert.True(t, got.Pending.BillName)
}

// ── errors ──────────────────────────────────────────────────────────────────

func TestStore_MarkError(t *testing.T) {
	tests := []struct {
		name         string
		keepInFlight bool
	}{
		{name: "changes folded back", keepInFlight: false},
		{name: "request kept for resend", keepInFlight: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore(t)
			ctx := context.Background()
			b := importServerBill(t, s)

			_, err := s.UpdateExpense(ctx, b.LocalID, "re1", ExpensePatch{Amount: ptr(dec(120))})
			require.NoError(t, err)
			_, err = s.BeginSync(ctx, b.LocalID, prepareAs(models.SyncModeDelta))
			require.NoError(t, err)

			got, err := s.MarkError(ctx, b.LocalID, "validation failed", tt.keepInFlight)
			require.NoError(t, err)
			assert.Equal(t, models.SyncStatusError, got.SyncStatus)
			assert.Equal(t, "validation failed", got.SyncError)

			if tt.keepInFlight {
				require.NotNil(t, got.InFlight)
				assert.True(t, got.Pending.IsEmpty())
			} else {
				assert.Nil(t, got.InFlight)
				assert.Equal(t, fieldSet(models.FieldAmount), got.Pending.Expenses.Updated["re1"])
			}

			// edits keep the error state until an explicit retry
			_, err = s.UpdateExpense(ctx, b.LocalID, "re1", ExpensePatch{Name: ptr("Supper")})
			require.NoError(t, err)
			still, _ := s.Get(b.LocalID)
			assert.Equal(t, models.SyncStatusError, still.SyncStatus)

			cleared, err := s.ClearError(ctx, b.LocalID)
			require.NoError(t, err)
			assert.Equal(t, models.SyncStatusModified, cleared.SyncStatus)
			assert.Empty(t, cleared.SyncError)
		})
	}
}

func TestStore_ClearError_NothingPending(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	b := importServerBill(t, s)

	_, err := s.MarkError(ctx, b.LocalID, "unauthorized", false)
	require.NoError(t, err)

	got, err := s.ClearError(ctx, b.LocalID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSynced, got.SyncStatus)

	// no-op outside the error state
	again, err := s.ClearError(ctx, b.LocalID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSynced, again.SyncStatus)
}

func TestStore_MarkSyncedEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	b := importServerBill(t, s)

	// a stale record left by an entity that no longer renders
	_, err := s.mutate(ctx, b.LocalID, func(lb *models.LocalBill) error {
		RecordUpdate(&lb.Pending, models.EntityExpense, "gone", "gone", models.FieldName)
		lb.SyncStatus = models.SyncStatusModified
		return nil
	})
	require.NoError(t, err)

	got, err := s.MarkSyncedEmpty(ctx, b.LocalID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSynced, got.SyncStatus)
	assert.True(t, got.Pending.IsEmpty())

	local, _ := s.CreateBill(ctx, "Draft")
	got, err = s.MarkSyncedEmpty(ctx, local.LocalID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusLocal, got.SyncStatus)
}
