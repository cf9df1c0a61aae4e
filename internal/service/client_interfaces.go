package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-bill-keeper/models"
)

// ClientSyncService defines the client-side contract for synchronising local
// bills with the server. At most one sync runs per bill; concurrent callers
// of the same bill share its result.
type ClientSyncService interface {
	// Sync sends the unsent changes of the bill, a full sync while the bill
	// has no remote ID and a delta sync afterwards. Transient failures are
	// retried with exponential backoff. A bill in the error state is refused
	// with ErrBillNotSyncable.
	Sync(ctx context.Context, billLocalID string) (models.SyncResult, error)

	// Retry leaves the error state and syncs the bill again.
	Retry(ctx context.Context, billLocalID string) (models.SyncResult, error)

	// SyncPending syncs every local or modified bill in parallel. Bills in
	// the error state are skipped.
	SyncPending(ctx context.Context) ([]models.SyncResult, error)

	// Refresh brings a bill up to date after a peer changed it on the
	// server.
	Refresh(ctx context.Context, billLocalID string) (models.SyncResult, error)
}

// ClientBillService defines server reads the client needs beside sync.
type ClientBillService interface {
	// Join imports the bill behind shareCode into the local ledger. A bill
	// that is already present locally is returned as is.
	Join(ctx context.Context, shareCode string) (models.LocalBill, error)

	// Balances returns the balances of the bill. Synced bills are computed
	// by the server; bills with unsent changes or an unreachable server are
	// computed locally.
	Balances(ctx context.Context, billLocalID string) (models.Balances, error)

	// ShareCode returns the code peers use to join the bill. Bills that were
	// never synced have none and yield ErrBillNotShared.
	ShareCode(billLocalID string) (string, error)
}

// ClientSyncJob defines the contract for a background sync worker that
// periodically calls SyncPending.
type ClientSyncJob interface {
	// Start launches the background sync goroutine. It syncs every interval,
	// defaulting to 5 minutes if interval is zero or negative. Any previously
	// running job is stopped before the new one begins.
	Start(ctx context.Context, interval time.Duration)

	// Stop signals the background goroutine to exit and blocks until it has
	// fully terminated.
	Stop()
}
