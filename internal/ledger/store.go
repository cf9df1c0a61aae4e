// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package ledger holds the client-side state of bills.
//
// A [Store] owns every local bill and changes it only through named
// transitions. Each transition computes the next state under the store
// mutex, persists it through a [store.LocalBillRepository] and only then
// publishes it to readers, so a failed write leaves the bill untouched.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-bill-keeper/internal/logger"
	"github.com/MKhiriev/go-bill-keeper/internal/store"
	"github.com/MKhiriev/go-bill-keeper/models"
)

// IDGenerator produces local entity IDs.
type IDGenerator interface {
	Generate() string
}

// Store is the Local Ledger Store.
type Store struct {
	mu     sync.Mutex
	repo   store.LocalBillRepository
	bills  map[string]models.LocalBill
	ids    IDGenerator
	now    func() time.Time
	logger *logger.Logger
}

// NewStore returns an empty store. Call Load to read persisted bills.
func NewStore(repo store.LocalBillRepository, ids IDGenerator, log *logger.Logger) *Store {
	return &Store{
		repo:   repo,
		bills:  make(map[string]models.LocalBill),
		ids:    ids,
		now:    func() time.Time { return time.Now().UTC() },
		logger: log,
	}
}

// Load reads every persisted bill. A bill that was syncing when the process
// stopped becomes modified; its in-flight request is kept and resent as is.
func (s *Store) Load(ctx context.Context) error {
	bills, err := s.repo.ListBills(ctx)
	if err != nil {
		s.logger.Err(err).Str("func", "Store.Load").Msg("error loading local bills")
		return fmt.Errorf("error loading local bills: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range bills {
		if b.SyncStatus == models.SyncStatusSyncing {
			b.SyncStatus = unsyncedStatus(b)
			if err = s.repo.SaveBill(ctx, b); err != nil {
				return fmt.Errorf("%w: %w", ErrPersisting, err)
			}
			s.logger.Info().Str("func", "Store.Load").Str("bill_id", b.LocalID).Msg("interrupted sync will be resumed")
		}
		s.bills[b.LocalID] = b
	}

	s.logger.Debug().Str("func", "Store.Load").Int("bills", len(bills)).Msg("local bills loaded")
	return nil
}

// Get returns a copy of the bill.
func (s *Store) Get(localID string) (models.LocalBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bills[localID]
	if !ok {
		return models.LocalBill{}, fmt.Errorf("%w: %s", ErrBillNotFound, localID)
	}
	return b.Clone(), nil
}

// List returns copies of all bills ordered by local ID.
func (s *Store) List() []models.LocalBill {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.LocalBill, 0, len(s.bills))
	for _, b := range s.bills {
		out = append(out, b.Clone())
	}
	slices.SortFunc(out, func(a, b models.LocalBill) int { return strings.Compare(a.LocalID, b.LocalID) })
	return out
}

// FindByRemoteID returns the local bill synced to the given server bill.
func (s *Store) FindByRemoteID(remoteID string) (models.LocalBill, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.bills {
		if b.RemoteID == remoteID {
			return b.Clone(), true
		}
	}
	return models.LocalBill{}, false
}

// CreateBill starts a new bill that only exists locally.
func (s *Store) CreateBill(ctx context.Context, name string) (models.LocalBill, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.LocalBill{}, fmt.Errorf("%w: bill name is empty", ErrInvalidInput)
	}

	b := models.LocalBill{
		LocalID:    s.ids.Generate(),
		SyncStatus: models.SyncStatusLocal,
		State:      models.NewLedgerState(name),
		Snapshot:   models.NewLedgerState(""),
		Pending:    models.NewPendingChanges(),
	}
	b.Pending.BillName = true

	return s.insert(ctx, b)
}

// ImportBill adopts a server bill, for example one joined by share code. A
// bill that is already known locally is returned unchanged.
func (s *Store) ImportBill(ctx context.Context, server models.Bill) (models.LocalBill, error) {
	state := fromServer(server, indexRemote(models.NewLedgerState("")), 0)
	b := models.LocalBill{
		LocalID:    s.ids.Generate(),
		RemoteID:   server.ID,
		ShareCode:  server.ShareCode,
		Version:    server.Version,
		SyncStatus: models.SyncStatusSynced,
		State:      state,
		Snapshot:   state.Clone(),
		Pending:    models.NewPendingChanges(),
	}

	return s.insertUnless(ctx, b, func(existing models.LocalBill) bool {
		return existing.RemoteID == server.ID
	})
}

// RenameBill changes the bill name.
func (s *Store) RenameBill(ctx context.Context, localID, name string) (models.LocalBill, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.LocalBill{}, fmt.Errorf("%w: bill name is empty", ErrInvalidInput)
	}

	return s.mutate(ctx, localID, func(b *models.LocalBill) error {
		b.State.Name = name
		b.Pending.BillName = name != baseline(b).Name
		settleStatus(b)
		return nil
	})
}

func (s *Store) insert(ctx context.Context, b models.LocalBill) (models.LocalBill, error) {
	return s.insertUnless(ctx, b, func(models.LocalBill) bool { return false })
}

// insertUnless stores b unless a bill matching dup already exists, in which
// case that bill is returned.
func (s *Store) insertUnless(ctx context.Context, b models.LocalBill, dup func(models.LocalBill) bool) (models.LocalBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.bills {
		if dup(existing) {
			return existing.Clone(), nil
		}
	}

	b.UpdatedAt = s.now()
	if err := s.repo.SaveBill(ctx, b); err != nil {
		s.logger.Err(err).Str("func", "Store.insert").Str("bill_id", b.LocalID).Msg("error saving new bill")
		return models.LocalBill{}, fmt.Errorf("%w: %w", ErrPersisting, err)
	}
	s.bills[b.LocalID] = b

	return b.Clone(), nil
}

// mutate runs fn on a copy of the bill and publishes the copy once it is
// persisted.
func (s *Store) mutate(ctx context.Context, localID string, fn func(b *models.LocalBill) error) (models.LocalBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.bills[localID]
	if !ok {
		return models.LocalBill{}, fmt.Errorf("%w: %s", ErrBillNotFound, localID)
	}

	next := cur.Clone()
	if err := fn(&next); err != nil {
		return models.LocalBill{}, err
	}

	next.UpdatedAt = s.now()
	if err := s.repo.SaveBill(ctx, next); err != nil {
		s.logger.Err(err).Str("func", "Store.mutate").Str("bill_id", localID).Msg("error saving bill")
		return models.LocalBill{}, fmt.Errorf("%w: %w", ErrPersisting, err)
	}
	s.bills[localID] = next

	return next.Clone(), nil
}

// baseline is the state local edits are compared against: what the server
// is about to hold while a request is in flight, the last synced state
// otherwise.
func baseline(b *models.LocalBill) models.LedgerState {
	if b.InFlight != nil {
		return b.InFlight.Sent
	}
	return b.Snapshot
}

// settleStatus derives the status after a local edit.
func settleStatus(b *models.LocalBill) {
	switch b.SyncStatus {
	case models.SyncStatusSynced, models.SyncStatusConflict:
		if !b.Pending.IsEmpty() {
			b.SyncStatus = models.SyncStatusModified
		}
	case models.SyncStatusModified:
		if b.Pending.IsEmpty() && b.InFlight == nil {
			b.SyncStatus = models.SyncStatusSynced
		}
	}
}

func unsyncedStatus(b models.LocalBill) models.SyncStatus {
	if b.RemoteID == "" {
		return models.SyncStatusLocal
	}
	return models.SyncStatusModified
}

// IsNotFound reports whether err means a bill or entity does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBillNotFound) || errors.Is(err, ErrEntityNotFound)
}
