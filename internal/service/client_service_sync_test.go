// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-bill-keeper/internal/adapter"
	"github.com/MKhiriev/go-bill-keeper/internal/app"
	"github.com/MKhiriev/go-bill-keeper/internal/config"
	"github.com/MKhiriev/go-bill-keeper/internal/ledger"
	"github.com/MKhiriev/go-bill-keeper/internal/logger"
	"github.com/MKhiriev/go-bill-keeper/internal/mock"
	"github.com/MKhiriev/go-bill-keeper/models"
)

// localIDs issues predictable local IDs.
type localIDs struct {
	mu sync.Mutex
	n  int
}

func (g *localIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("local-%d", g.n)
}

// newTestSyncSvc builds a clientSyncService over a real ledger whose
// repository accepts every write.
func newTestSyncSvc(t *testing.T, ctrl *gomock.Controller) (*clientSyncService, *ledger.Store, *mock.MockServerAdapter) {
	t.Helper()

	mockRepo := mock.NewMockLocalBillRepository(ctrl)
	mockRepo.EXPECT().SaveBill(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockAdapter := mock.NewMockServerAdapter(ctrl)

	st := ledger.NewStore(mockRepo, &localIDs{}, logger.Nop())
	svc := NewClientSyncService(st, mockAdapter, config.ClientSync{
		RetryAttempts:  3,
		RetryBaseDelay: time.Millisecond,
	}, logger.Nop()).(*clientSyncService)

	return svc, st, mockAdapter
}

func amount(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// dinnerBill is a server bill with two members and one expense at version 3.
func dinnerBill(version int64, expenseName string) models.Bill {
	alice, bob := "r-alice", "r-bob"
	return models.Bill{
		ID:        "r-bill",
		Name:      "Dinner",
		ShareCode: "DINR2345",
		Version:   version,
		Members: []models.Member{
			{ID: alice, BillID: "r-bill", Name: "Alice"},
			{ID: bob, BillID: "r-bill", Name: "Bob", DisplayOrder: 1},
		},
		Expenses: []models.Expense{{
			ID:           "r-food",
			BillID:       "r-bill",
			Name:         expenseName,
			Amount:       amount(30),
			PaidBy:       &alice,
			Participants: []string{alice, bob},
		}},
		Items:       []models.ExpenseItem{},
		Settlements: []models.SettledTransfer{},
	}
}

func importDinner(t *testing.T, st *ledger.Store) models.LocalBill {
	t.Helper()
	b, err := st.ImportBill(context.Background(), dinnerBill(3, "Food"))
	require.NoError(t, err)
	return b
}

func renameFood(t *testing.T, st *ledger.Store, billID, name string) {
	t.Helper()
	_, err := st.UpdateExpense(context.Background(), billID, "r-food", ledger.ExpensePatch{Name: &name})
	require.NoError(t, err)
}

func decodeDelta(t *testing.T, body json.RawMessage) models.DeltaSyncRequest {
	t.Helper()
	var req models.DeltaSyncRequest
	require.NoError(t, json.Unmarshal(body, &req))
	return req
}

// ── Sync: full ───────────────────────────────────────────────────────────────

func TestClientSyncService_Sync_FirstSyncIsFull(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, st, mockAdapter := newTestSyncSvc(t, ctrl)
	ctx := context.Background()

	bill, err := st.CreateBill(ctx, "Trip")
	require.NoError(t, err)
	alice, err := st.AddMember(ctx, bill.LocalID, ledger.MemberInput{Name: "Alice"})
	require.NoError(t, err)
	taxi, err := st.AddExpense(ctx, bill.LocalID, ledger.ExpenseInput{
		Name:         "Taxi",
		Amount:       amount(12),
		PaidBy:       alice.LocalID,
		Participants: []string{alice.LocalID},
	})
	require.NoError(t, err)

	mockAdapter.EXPECT().FullSync(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, body json.RawMessage) (models.FullSyncResponse, error) {
			var req models.FullSyncRequest
			require.NoError(t, json.Unmarshal(body, &req))
			assert.Equal(t, bill.LocalID, req.LocalID)
			assert.Empty(t, req.RemoteID)
			assert.Equal(t, "Trip", req.Name)
			require.Len(t, req.Members, 1)
			require.Len(t, req.Expenses, 1)
			require.NotNil(t, req.Expenses[0].PaidBy)
			assert.Equal(t, alice.LocalID, *req.Expenses[0].PaidBy)

			return models.FullSyncResponse{
				RemoteID:  "r-trip",
				ShareCode: "TRIP2345",
				Version:   1,
				IDMappings: models.IDMappings{
					Members:  map[string]string{alice.LocalID: "r-alice"},
					Expenses: map[string]string{taxi.LocalID: "r-taxi"},
				},
			}, nil
		})

	res, err := svc.Sync(ctx, bill.LocalID)
	require.NoError(t, err)

	assert.Equal(t, models.SyncModeFull, res.Mode)
	assert.Equal(t, models.SyncOutcomeSynced, res.Outcome)
	assert.Equal(t, "r-trip", res.RemoteID)
	assert.Equal(t, int64(1), res.Version)
	assert.Equal(t, 1, res.Rounds)

	got, err := st.Get(bill.LocalID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSynced, got.SyncStatus)
	assert.Equal(t, "TRIP2345", got.ShareCode)
	assert.Equal(t, "r-alice", got.State.Members[alice.LocalID].RemoteID)
	assert.Equal(t, "r-taxi", got.State.Expenses[taxi.LocalID].RemoteID)
	assert.Nil(t, got.InFlight)
	assert.True(t, got.Pending.IsEmpty())
}

func TestClientSyncService_Sync_FullConflictRebases(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, st, mockAdapter := newTestSyncSvc(t, ctrl)
	ctx := context.Background()

	bill, err := st.CreateBill(ctx, "Dinner")
	require.NoError(t, err)

	server := dinnerBill(2, "Food")
	mockAdapter.EXPECT().FullSync(gomock.Any(), gomock.Any()).
		Return(models.FullSyncResponse{Conflict: true, Bill: &server}, nil)

	res, err := svc.Sync(ctx, bill.LocalID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncOutcomeMerged, res.Outcome)
	assert.Equal(t, int64(2), res.Version)

	got, err := st.Get(bill.LocalID)
	require.NoError(t, err)
	assert.Equal(t, "r-bill", got.RemoteID)
	assert.Len(t, got.State.Members, 2)
}

// ── Sync: delta ──────────────────────────────────────────────────────────────

func TestClientSyncService_Sync_Delta(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, st, mockAdapter := newTestSyncSvc(t, ctrl)
	ctx := context.Background()

	bill := importDinner(t, st)
	renameFood(t, st, bill.LocalID, "Pizza")

	mockAdapter.EXPECT().DeltaSync(gomock.Any(), "r-bill", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, body json.RawMessage) (models.DeltaSyncResponse, error) {
			req := decodeDelta(t, body)
			assert.Equal(t, int64(3), req.BaseVersion)
			require.Len(t, req.Expenses.Update, 1)
			u := req.Expenses.Update[0]
			assert.Equal(t, "r-food", u.RemoteID)
			require.NotNil(t, u.Name)
			assert.Equal(t, "Pizza", *u.Name)
			assert.Nil(t, u.Amount)
			assert.Empty(t, req.Members.Add)

			return models.DeltaSyncResponse{Success: true, Version: 4, IDMappings: models.NewIDMappings()}, nil
		})

	res, err := svc.Sync(ctx, bill.LocalID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncModeDelta, res.Mode)
	assert.Equal(t, models.SyncOutcomeSynced, res.Outcome)
	assert.Equal(t, int64(4), res.Version)

	got, err := st.Get(bill.LocalID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSynced, got.SyncStatus)
	assert.Equal(t, int64(4), got.Version)
	assert.Equal(t, "Pizza", got.Snapshot.Expenses["r-food"].Name)
}

func TestClientSyncService_Sync_EmptyDeltaSkipsNetwork(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, st, _ := newTestSyncSvc(t, ctrl)
	ctx := context.Background()

	bill := importDinner(t, st)

	// renaming back and forth leaves nothing to send
	renameFood(t, st, bill.LocalID, "Pizza")
	renameFood(t, st, bill.LocalID, "Food")

	res, err := svc.Sync(ctx, bill.LocalID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncOutcomeSkipped, res.Outcome)
	assert.Equal(t, models.SyncModeNone, res.Mode)
	assert.Equal(t, 0, res.Rounds)

	got, err := st.Get(bill.LocalID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSynced, got.SyncStatus)
}

func TestClientSyncService_Sync_ConflictRebases(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, st, mockAdapter := newTestSyncSvc(t, ctrl)
	ctx := context.Background()

	bill := importDinner(t, st)
	renameFood(t, st, bill.LocalID, "Pizza")

	server := dinnerBill(5, "Sushi")
	conflict := models.Conflict{
		EntityType:  models.EntityExpense,
		EntityID:    "r-food",
		Field:       models.FieldName,
		LocalValue:  json.RawMessage(`"Pizza"`),
		ServerValue: json.RawMessage(`"Sushi"`),
		Resolution:  models.ResolutionServerWins,
	}
	mockAdapter.EXPECT().DeltaSync(gomock.Any(), "r-bill", gomock.Any()).Return(models.DeltaSyncResponse{
		Version:    5,
		IDMappings: models.NewIDMappings(),
		Conflicts:  []models.Conflict{conflict},
		Bill:       &server,
	}, nil)

	res, err := svc.Sync(ctx, bill.LocalID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncOutcomeMerged, res.Outcome)
	assert.Equal(t, int64(5), res.Version)
	assert.Equal(t, []models.Conflict{conflict}, res.Conflicts)

	got, err := st.Get(bill.LocalID)
	require.NoError(t, err)
	assert.Equal(t, "Sushi", got.State.Expenses["r-food"].Name)
	assert.Equal(t, models.SyncStatusSynced, got.SyncStatus)
	assert.Equal(t, int64(5), got.Version)
}

// ── Sync: failures ───────────────────────────────────────────────────────────

func TestClientSyncService_Sync_RetriesTransientFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, st, mockAdapter := newTestSyncSvc(t, ctrl)
	ctx := context.Background()

	bill := importDinner(t, st)
	renameFood(t, st, bill.LocalID, "Pizza")

	var bodies []string
	capture := func(_ context.Context, _ string, body json.RawMessage) {
		bodies = append(bodies, string(body))
	}

	gomock.InOrder(
		mockAdapter.EXPECT().DeltaSync(gomock.Any(), "r-bill", gomock.Any()).Do(capture).
			Return(models.DeltaSyncResponse{}, fmt.Errorf("%w: connection reset", adapter.ErrNetwork)),
		mockAdapter.EXPECT().DeltaSync(gomock.Any(), "r-bill", gomock.Any()).Do(capture).
			Return(models.DeltaSyncResponse{}, fmt.Errorf("%w: bad gateway", adapter.ErrServer)),
		mockAdapter.EXPECT().DeltaSync(gomock.Any(), "r-bill", gomock.Any()).Do(capture).
			Return(models.DeltaSyncResponse{Success: true, Version: 4}, nil),
	)

	res, err := svc.Sync(ctx, bill.LocalID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncOutcomeSynced, res.Outcome)

	require.Len(t, bodies, 3)
	assert.Equal(t, bodies[0], bodies[1])
	assert.Equal(t, bodies[0], bodies[2])
}

func TestClientSyncService_Sync_LostCreateRaceResendsSameRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, st, mockAdapter := newTestSyncSvc(t, ctrl)
	ctx := context.Background()

	bill, err := st.CreateBill(ctx, "Trip")
	require.NoError(t, err)
	alice, err := st.AddMember(ctx, bill.LocalID, ledger.MemberInput{Name: "Alice"})
	require.NoError(t, err)

	var bodies []json.RawMessage
	capture := func(_ context.Context, body json.RawMessage) {
		bodies = append(bodies, body)
	}

	gomock.InOrder(
		mockAdapter.EXPECT().FullSync(gomock.Any(), gomock.Any()).Do(capture).
			Return(models.FullSyncResponse{}, fmt.Errorf("%w: concurrent write", adapter.ErrVersionConflict)),
		mockAdapter.EXPECT().FullSync(gomock.Any(), gomock.Any()).Do(capture).
			Return(models.FullSyncResponse{
				RemoteID:   "r-trip",
				ShareCode:  "TRIP2345",
				Version:    1,
				IDMappings: models.IDMappings{Members: map[string]string{alice.LocalID: "r-alice"}},
			}, nil),
	)

	res, err := svc.Sync(ctx, bill.LocalID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncOutcomeSynced, res.Outcome)
	assert.Equal(t, "r-trip", res.RemoteID)

	// the resend is byte-identical so the server replays the winning create
	require.Len(t, bodies, 2)
	assert.Equal(t, []byte(bodies[0]), []byte(bodies[1]))

	got, err := st.Get(bill.LocalID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSynced, got.SyncStatus)
	assert.Equal(t, "r-alice", got.State.Members[alice.LocalID].RemoteID)
	assert.Nil(t, got.InFlight)
}

func TestClientSyncService_Sync_ExhaustedRetriesKeepRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, st, mockAdapter := newTestSyncSvc(t, ctrl)
	ctx := context.Background()

	bill := importDinner(t, st)
	renameFood(t, st, bill.LocalID, "Pizza")

	var first json.RawMessage
	mockAdapter.EXPECT().DeltaSync(gomock.Any(), "r-bill", gomock.Any()).
		Do(func(_ context.Context, _ string, body json.RawMessage) { first = body }).
		Return(models.DeltaSyncResponse{}, fmt.Errorf("%w: timeout", adapter.ErrNetwork)).
		Times(3)

	_, err := svc.Sync(ctx, bill.LocalID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSyncFailed)
	assert.ErrorIs(t, err, adapter.ErrNetwork)

	got, err := st.Get(bill.LocalID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusError, got.SyncStatus)
	assert.NotEmpty(t, got.SyncError)
	require.NotNil(t, got.InFlight)

	// a bill in error is not synced implicitly
	_, err = svc.Sync(ctx, bill.LocalID)
	assert.ErrorIs(t, err, ErrBillNotSyncable)

	// an explicit retry resends the very same request
	mockAdapter.EXPECT().DeltaSync(gomock.Any(), "r-bill", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, body json.RawMessage) (models.DeltaSyncResponse, error) {
			assert.JSONEq(t, string(first), string(body))
			assert.Equal(t, []byte(first), []byte(body))
			return models.DeltaSyncResponse{Success: true, Version: 4}, nil
		})

	res, err := svc.Retry(ctx, bill.LocalID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncOutcomeSynced, res.Outcome)

	got, err = st.Get(bill.LocalID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSynced, got.SyncStatus)
}

func TestClientSyncService_Sync_RejectedRequestRequeuesChanges(t *testing.T) {
	tests := []struct {
		name  string
		cause error
	}{
		{name: "validation", cause: adapter.ErrValidation},
		{name: "unauthorized", cause: adapter.ErrUnauthorized},
		{name: "not found", cause: adapter.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc, st, mockAdapter := newTestSyncSvc(t, ctrl)
			ctx := context.Background()

			bill := importDinner(t, st)
			renameFood(t, st, bill.LocalID, "Pizza")

			// rejected requests are not retried
			mockAdapter.EXPECT().DeltaSync(gomock.Any(), "r-bill", gomock.Any()).
				Return(models.DeltaSyncResponse{}, fmt.Errorf("%w: rejected", tt.cause)).
				Times(1)

			_, err := svc.Sync(ctx, bill.LocalID)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.cause)

			got, err := st.Get(bill.LocalID)
			require.NoError(t, err)
			assert.Equal(t, models.SyncStatusError, got.SyncStatus)
			assert.Nil(t, got.InFlight)
			assert.Contains(t, got.Pending.Expenses.Updated, "r-food")
		})
	}
}

func TestClientSyncService_Retry_NotInError(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, st, _ := newTestSyncSvc(t, ctrl)

	bill := importDinner(t, st)

	_, err := svc.Retry(context.Background(), bill.LocalID)
	assert.ErrorIs(t, err, ErrNotInErrorState)
}

func TestClientSyncService_Sync_CancelledContextReleasesBill(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, st, mockAdapter := newTestSyncSvc(t, ctrl)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bill := importDinner(t, st)
	renameFood(t, st, bill.LocalID, "Pizza")

	mockAdapter.EXPECT().DeltaSync(gomock.Any(), "r-bill", gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ json.RawMessage) (models.DeltaSyncResponse, error) {
			cancel()
			return models.DeltaSyncResponse{}, fmt.Errorf("delta sync request: %w", context.Canceled)
		})

	_, err := svc.Sync(ctx, bill.LocalID)
	assert.ErrorIs(t, err, context.Canceled)

	got, err := st.Get(bill.LocalID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusModified, got.SyncStatus)
	assert.NotNil(t, got.InFlight)
}

func TestClientSyncService_Sync_UnknownBill(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, _, _ := newTestSyncSvc(t, ctrl)

	_, err := svc.Sync(context.Background(), "missing")
	assert.ErrorIs(t, err, ledger.ErrBillNotFound)
}

// ── Sync: concurrency ────────────────────────────────────────────────────────

func TestClientSyncService_Sync_ConcurrentCallersShareFlight(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, st, mockAdapter := newTestSyncSvc(t, ctrl)
	ctx := context.Background()

	bill := importDinner(t, st)
	renameFood(t, st, bill.LocalID, "Pizza")

	started := make(chan struct{})
	release := make(chan struct{})

	gomock.InOrder(
		mockAdapter.EXPECT().DeltaSync(gomock.Any(), "r-bill", gomock.Any()).DoAndReturn(
			func(context.Context, string, json.RawMessage) (models.DeltaSyncResponse, error) {
				close(started)
				<-release
				return models.DeltaSyncResponse{Success: true, Version: 4}, nil
			}),
		mockAdapter.EXPECT().DeltaSync(gomock.Any(), "r-bill", gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, body json.RawMessage) (models.DeltaSyncResponse, error) {
				var req models.DeltaSyncRequest
				assert.NoError(t, json.Unmarshal(body, &req))
				assert.Equal(t, int64(4), req.BaseVersion)
				if assert.Len(t, req.Members.Update, 1) {
					assert.Equal(t, "r-bob", req.Members.Update[0].RemoteID)
				}
				return models.DeltaSyncResponse{Success: true, Version: 5}, nil
			}),
	)

	type outcome struct {
		res models.SyncResult
		err error
	}
	results := make(chan outcome, 2)

	go func() {
		res, err := svc.Sync(ctx, bill.LocalID)
		results <- outcome{res, err}
	}()
	<-started

	// an edit made while the first request is in flight
	name := "Robert"
	_, err := st.UpdateMember(ctx, bill.LocalID, "r-bob", ledger.MemberPatch{Name: &name})
	require.NoError(t, err)

	go func() {
		res, err := svc.Sync(ctx, bill.LocalID)
		results <- outcome{res, err}
	}()
	require.Eventually(t, func() bool {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		f, ok := svc.flights[bill.LocalID]
		return ok && f.resubmit
	}, time.Second, time.Millisecond)

	close(release)

	for range 2 {
		o := <-results
		require.NoError(t, o.err)
		assert.Equal(t, 2, o.res.Rounds)
		assert.Equal(t, int64(5), o.res.Version)
	}

	got, err := st.Get(bill.LocalID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSynced, got.SyncStatus)
	assert.Equal(t, "Robert", got.Snapshot.Members["r-bob"].Name)
}

// ── SyncPending ──────────────────────────────────────────────────────────────

func TestClientSyncService_SyncPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, st, mockAdapter := newTestSyncSvc(t, ctrl)
	ctx := context.Background()

	first, err := st.CreateBill(ctx, "Groceries")
	require.NoError(t, err)
	second, err := st.CreateBill(ctx, "Rent")
	require.NoError(t, err)
	failed, err := st.CreateBill(ctx, "Broken")
	require.NoError(t, err)
	_, err = st.MarkError(ctx, failed.LocalID, "server rejected the bill", false)
	require.NoError(t, err)
	_ = importDinner(t, st) // synced, nothing to do

	mockAdapter.EXPECT().FullSync(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, body json.RawMessage) (models.FullSyncResponse, error) {
			var req models.FullSyncRequest
			assert.NoError(t, json.Unmarshal(body, &req))
			assert.NotEqual(t, failed.LocalID, req.LocalID)
			return models.FullSyncResponse{RemoteID: "r-" + req.LocalID, ShareCode: "CODE2345", Version: 1}, nil
		}).Times(2)

	results, err := svc.SyncPending(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)

	synced := map[string]bool{}
	for _, r := range results {
		synced[r.BillLocalID] = r.Outcome == models.SyncOutcomeSynced
	}
	assert.True(t, synced[first.LocalID])
	assert.True(t, synced[second.LocalID])

	got, err := st.Get(failed.LocalID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusError, got.SyncStatus)
}

func TestClientSyncService_SyncPending_JoinsErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, st, mockAdapter := newTestSyncSvc(t, ctrl)
	ctx := context.Background()

	_, err := st.CreateBill(ctx, "Groceries")
	require.NoError(t, err)

	mockAdapter.EXPECT().FullSync(gomock.Any(), gomock.Any()).
		Return(models.FullSyncResponse{}, fmt.Errorf("%w: bad payload", adapter.ErrValidation))

	results, err := svc.SyncPending(ctx)
	assert.Empty(t, results)
	assert.ErrorIs(t, err, adapter.ErrValidation)
}

// ── Refresh ──────────────────────────────────────────────────────────────────

func TestClientSyncService_Refresh(t *testing.T) {
	tests := []struct {
		name        string
		server      models.Bill
		wantOutcome models.SyncOutcome
		wantName    string
		wantVersion int64
	}{
		{
			name:        "newer server state is adopted",
			server:      dinnerBill(4, "Sushi"),
			wantOutcome: models.SyncOutcomeMerged,
			wantName:    "Sushi",
			wantVersion: 4,
		},
		{
			name:        "same version is left alone",
			server:      dinnerBill(3, "Food"),
			wantOutcome: models.SyncOutcomeSkipped,
			wantName:    "Food",
			wantVersion: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc, st, mockAdapter := newTestSyncSvc(t, ctrl)
			ctx := context.Background()

			bill := importDinner(t, st)
			mockAdapter.EXPECT().GetBill(gomock.Any(), "r-bill").Return(tt.server, nil)

			res, err := svc.Refresh(ctx, bill.LocalID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOutcome, res.Outcome)
			assert.Equal(t, tt.wantVersion, res.Version)

			got, err := st.Get(bill.LocalID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, got.State.Expenses["r-food"].Name)
			assert.Equal(t, models.SyncStatusSynced, got.SyncStatus)
		})
	}
}

func TestClientSyncService_Refresh_WithPendingSyncs(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, st, mockAdapter := newTestSyncSvc(t, ctrl)
	ctx := context.Background()

	bill := importDinner(t, st)
	renameFood(t, st, bill.LocalID, "Pizza")

	// the delta answer carries the peer changes, no separate fetch
	mockAdapter.EXPECT().DeltaSync(gomock.Any(), "r-bill", gomock.Any()).
		Return(models.DeltaSyncResponse{Success: true, Version: 6}, nil)

	res, err := svc.Refresh(ctx, bill.LocalID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncModeDelta, res.Mode)
	assert.Equal(t, int64(6), res.Version)
}

func TestClientSyncService_Refresh_FetchError(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, st, mockAdapter := newTestSyncSvc(t, ctrl)

	bill := importDinner(t, st)
	mockAdapter.EXPECT().GetBill(gomock.Any(), "r-bill").
		Return(models.Bill{}, fmt.Errorf("%w: %s", adapter.ErrNotFound, app.MsgBillNotFound))

	_, err := svc.Refresh(context.Background(), bill.LocalID)
	assert.ErrorIs(t, err, adapter.ErrNotFound)
}

// ── helpers ──────────────────────────────────────────────────────────────────

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{err: adapter.ErrNetwork, want: true},
		{err: adapter.ErrServer, want: true},
		{err: adapter.ErrVersionConflict, want: true},
		{err: adapter.ErrUnauthorized, want: false},
		{err: adapter.ErrValidation, want: false},
		{err: adapter.ErrNotFound, want: false},
		{err: context.Canceled, want: false},
		{err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.err), func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryable(fmt.Errorf("wrapped: %w", tt.err)))
		})
	}
}

func TestCombine(t *testing.T) {
	acc := models.SyncResult{BillLocalID: "b", Mode: models.SyncModeNone, Outcome: models.SyncOutcomeSkipped}

	acc = combine(acc, models.SyncResult{Mode: models.SyncModeDelta, Outcome: models.SyncOutcomeMerged, Version: 4, Rounds: 1,
		Conflicts: []models.Conflict{{EntityID: "x"}}})
	acc = combine(acc, models.SyncResult{Mode: models.SyncModeDelta, Outcome: models.SyncOutcomeSynced, Version: 5, Rounds: 1})
	acc = combine(acc, models.SyncResult{Mode: models.SyncModeNone, Outcome: models.SyncOutcomeSkipped, Version: 5})

	assert.Equal(t, models.SyncModeDelta, acc.Mode)
	assert.Equal(t, models.SyncOutcomeMerged, acc.Outcome)
	assert.Equal(t, int64(5), acc.Version)
	assert.Equal(t, 2, acc.Rounds)
	assert.Len(t, acc.Conflicts, 1)
}
