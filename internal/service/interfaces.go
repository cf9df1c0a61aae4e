package service

import (
	"context"

	"github.com/MKhiriev/go-bill-keeper/models"
)

// SyncService is the authoritative half of bill synchronization. Each call
// runs inside one storage transaction scoped to a single bill.
type SyncService interface {
	// ApplyFullSync creates a bill when req has no RemoteID, otherwise replaces
	// the bill contents provided req.BaseVersion equals the current version.
	ApplyFullSync(ctx context.Context, actor models.Actor, req models.FullSyncRequest) (models.FullSyncResponse, error)

	// ApplyDelta applies the changes of req to the bill billID.
	ApplyDelta(ctx context.Context, actor models.Actor, billID string, req models.DeltaSyncRequest) (models.DeltaSyncResponse, error)
}

// BillService serves read access to bills.
type BillService interface {
	GetBill(ctx context.Context, billID string) (models.Bill, error)
	GetBillByShareCode(ctx context.Context, shareCode string) (models.Bill, error)
	GetBalances(ctx context.Context, billID string) (models.Balances, error)
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}

// HealthService reports whether the server can serve requests.
type HealthService interface {
	Check(ctx context.Context) error
}

// SyncServiceWrapper defines middleware composition for SyncService.
// Implementations wrap an existing SyncService to add behavior such as
// logging or validating.
type SyncServiceWrapper interface {
	Wrap(SyncService) SyncService // returns a decorated SyncService applying additional behavior
}

// IDGenerator issues identifiers for new server entities.
type IDGenerator interface {
	Generate() string
}
