// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package notify tells peers that a bill changed on the server.
//
// Notifications are fire-and-forget: a slow or gone subscriber never delays
// the writer that committed the change.
package notify

import "github.com/MKhiriev/go-bill-keeper/models"

// Notifier publishes bill updates.
type Notifier interface {
	NotifyBillUpdated(billID string, version int64, actorID string)
}

// Nop discards every notification.
type Nop struct{}

func (Nop) NotifyBillUpdated(string, int64, string) {}

// Func adapts a function to Notifier.
type Func func(event models.BillUpdatedEvent)

func (f Func) NotifyBillUpdated(billID string, version int64, actorID string) {
	f(models.BillUpdatedEvent{BillID: billID, Version: version, ActorID: actorID})
}
