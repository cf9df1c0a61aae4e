// Package workers provides abstractions for managing and running
// background workers in the application.
// It defines the Worker interface and a Workers aggregate that allows
// running multiple workers in a unified way.
package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-bill-keeper/models"
)

// Worker is the interface that must be implemented by any background worker.
// It defines a single Run method that starts the worker's execution.
//
// Implementations block until ctx is done.
//
// Example implementation:
//
//	type MyWorker struct{}
//
//	func (w *MyWorker) Run(ctx context.Context) {
//	    <-ctx.Done()
//	}
type Worker interface {
	Run(ctx context.Context)
}

// Job is a periodic background job that is started and stopped explicitly.
type Job interface {
	Start(ctx context.Context, interval time.Duration)
	Stop()
}

// EventSource streams peer update events of a server bill.
type EventSource interface {
	SubscribeBillEvents(ctx context.Context, billID string) (<-chan models.BillUpdatedEvent, error)
}

// Refresher brings a local bill up to date with the server.
type Refresher interface {
	Refresh(ctx context.Context, billLocalID string) (models.SyncResult, error)
}
