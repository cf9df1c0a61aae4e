// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/MKhiriev/go-bill-keeper/internal/logger"
	"github.com/MKhiriev/go-bill-keeper/models"
)

const (
	resubscribeBaseDelay = 500 * time.Millisecond
	resubscribeMaxDelay  = 30 * time.Second
)

// WatchTarget identifies the bill a [BillWatcher] follows.
type WatchTarget struct {
	LocalID  string
	RemoteID string
	// Version is the version already known locally; older events are ignored.
	Version int64
	// SelfID is the actor id of this client; its own writes are not refreshed.
	SelfID string
}

// RefreshFunc observes the outcome of a refresh triggered by ev.
type RefreshFunc func(ev models.BillUpdatedEvent, res models.SyncResult, err error)

// BillWatcher subscribes to the peer notifications of one bill and refreshes
// the local copy whenever somebody else changes it. A dropped subscription is
// re-established with capped exponential backoff.
type BillWatcher struct {
	events    EventSource
	refresher Refresher
	target    WatchTarget
	onRefresh RefreshFunc

	retryBaseDelay time.Duration
	logger         *logger.Logger
}

func NewBillWatcher(events EventSource, refresher Refresher, target WatchTarget, onRefresh RefreshFunc, logger *logger.Logger) *BillWatcher {
	return &BillWatcher{
		events:         events,
		refresher:      refresher,
		target:         target,
		onRefresh:      onRefresh,
		retryBaseDelay: resubscribeBaseDelay,
		logger:         logger.WithBill(target.LocalID),
	}
}

func (w *BillWatcher) Run(ctx context.Context) {
	backoff := w.backoff()
	last := w.target.Version

	for ctx.Err() == nil {
		ch, err := w.events.SubscribeBillEvents(ctx, w.target.RemoteID)
		if err != nil {
			delay, _ := backoff.Next()
			w.logger.Warn().Err(err).Str("func", "*BillWatcher.Run").Dur("retry_in", delay).Msg("subscription failed")
			if !sleep(ctx, delay) {
				return
			}
			continue
		}

		for ev := range ch {
			backoff = w.backoff()
			if ev.Version <= last {
				continue
			}
			last = ev.Version
			if w.target.SelfID != "" && ev.ActorID == w.target.SelfID {
				continue
			}

			res, err := w.refresher.Refresh(ctx, w.target.LocalID)
			if err != nil {
				w.logger.Warn().Err(err).Str("func", "*BillWatcher.Run").Int64("version", ev.Version).Msg("refresh failed")
			}
			if res.Version > last {
				last = res.Version
			}
			if w.onRefresh != nil {
				w.onRefresh(ev, res, err)
			}
		}

		delay, _ := backoff.Next()
		w.logger.Debug().Str("func", "*BillWatcher.Run").Dur("retry_in", delay).Msg("subscription closed")
		if !sleep(ctx, delay) {
			return
		}
	}
}

func (w *BillWatcher) backoff() retry.Backoff {
	return retry.WithCappedDuration(resubscribeMaxDelay, retry.NewExponential(w.retryBaseDelay))
}

// sleep waits for d and reports false when ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
