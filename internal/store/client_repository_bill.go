// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-bill-keeper/internal/logger"
	"github.com/MKhiriev/go-bill-keeper/models"
)

type localBillRepository struct {
	*DB
	logger *logger.Logger
}

// NewLocalBillRepository returns the SQLite-backed [LocalBillRepository].
func NewLocalBillRepository(db *DB, log *logger.Logger) LocalBillRepository {
	return &localBillRepository{DB: db, logger: log}
}

func (r *localBillRepository) SaveBill(ctx context.Context, bill models.LocalBill) error {
	log := logger.FromContext(ctx)

	row, err := encodeLocalBill(bill)
	if err != nil {
		log.Err(err).Str("func", "localBillRepository.SaveBill").Str("local_id", bill.LocalID).Msg("error encoding local bill")
		return err
	}

	_, err = r.ExecContext(ctx, saveLocalBill,
		bill.LocalID,
		nullString(bill.RemoteID),
		nullString(bill.ShareCode),
		bill.Version,
		string(bill.SyncStatus),
		nullString(bill.SyncError),
		row.state,
		row.snapshot,
		row.pending,
		nullBytes(row.inFlight),
		bill.UpdatedAt,
	)
	if err != nil {
		log.Err(err).Str("func", "localBillRepository.SaveBill").Str("local_id", bill.LocalID).Msg("error saving local bill")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *localBillRepository) GetBill(ctx context.Context, localID string) (models.LocalBill, error) {
	bill, err := scanLocalBill(r.QueryRowContext(ctx, getLocalBill, localID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.LocalBill{}, ErrLocalBillNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "localBillRepository.GetBill").Str("local_id", localID).Msg("error reading local bill")
		return models.LocalBill{}, err
	}
	return bill, nil
}

func (r *localBillRepository) ListBills(ctx context.Context) ([]models.LocalBill, error) {
	log := logger.FromContext(ctx)

	rows, err := r.QueryContext(ctx, getAllLocalBills)
	if err != nil {
		log.Err(err).Str("func", "localBillRepository.ListBills").Msg("error querying local bills")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	bills := make([]models.LocalBill, 0)
	for rows.Next() {
		bill, err := scanLocalBill(rows)
		if err != nil {
			log.Err(err).Str("func", "localBillRepository.ListBills").Msg("error scanning local bill")
			return nil, err
		}
		bills = append(bills, bill)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return bills, nil
}

func (r *localBillRepository) DeleteBill(ctx context.Context, localID string) error {
	res, err := r.ExecContext(ctx, deleteLocalBill, localID)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "localBillRepository.DeleteBill").Str("local_id", localID).Msg("error deleting local bill")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if n == 0 {
		return ErrLocalBillNotFound
	}
	return nil
}

type localBillRow struct {
	state    []byte
	snapshot []byte
	pending  []byte
	inFlight []byte
}

func encodeLocalBill(bill models.LocalBill) (localBillRow, error) {
	var (
		row localBillRow
		err error
	)
	if row.state, err = json.Marshal(bill.State); err != nil {
		return row, fmt.Errorf("%w: state: %w", ErrEncodingState, err)
	}
	if row.snapshot, err = json.Marshal(bill.Snapshot); err != nil {
		return row, fmt.Errorf("%w: snapshot: %w", ErrEncodingState, err)
	}
	if row.pending, err = json.Marshal(bill.Pending); err != nil {
		return row, fmt.Errorf("%w: pending: %w", ErrEncodingState, err)
	}
	if bill.InFlight != nil {
		if row.inFlight, err = json.Marshal(bill.InFlight); err != nil {
			return row, fmt.Errorf("%w: in flight: %w", ErrEncodingState, err)
		}
	}
	return row, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLocalBill(s rowScanner) (models.LocalBill, error) {
	var (
		bill                         models.LocalBill
		remoteID, shareCode, syncErr sql.NullString
		status                       string
		row                          localBillRow
	)

	err := s.Scan(
		&bill.LocalID,
		&remoteID,
		&shareCode,
		&bill.Version,
		&status,
		&syncErr,
		&row.state,
		&row.snapshot,
		&row.pending,
		&row.inFlight,
		&bill.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.LocalBill{}, err
	}
	if err != nil {
		return models.LocalBill{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	bill.RemoteID = remoteID.String
	bill.ShareCode = shareCode.String
	bill.SyncError = syncErr.String
	bill.SyncStatus = models.SyncStatus(status)

	if err = json.Unmarshal(row.state, &bill.State); err != nil {
		return models.LocalBill{}, fmt.Errorf("%w: state: %w", ErrEncodingState, err)
	}
	if err = json.Unmarshal(row.snapshot, &bill.Snapshot); err != nil {
		return models.LocalBill{}, fmt.Errorf("%w: snapshot: %w", ErrEncodingState, err)
	}
	if err = json.Unmarshal(row.pending, &bill.Pending); err != nil {
		return models.LocalBill{}, fmt.Errorf("%w: pending: %w", ErrEncodingState, err)
	}
	if len(row.inFlight) > 0 {
		bill.InFlight = &models.InFlightSync{}
		if err = json.Unmarshal(row.inFlight, bill.InFlight); err != nil {
			return models.LocalBill{}, fmt.Errorf("%w: in flight: %w", ErrEncodingState, err)
		}
	}
	normalizeLocalBill(&bill)

	return bill, nil
}

// normalizeLocalBill allocates collections that were persisted as null.
func normalizeLocalBill(bill *models.LocalBill) {
	normalizeState(&bill.State)
	normalizeState(&bill.Snapshot)
	bill.Pending = normalizePending(bill.Pending)
	if bill.InFlight != nil {
		normalizeState(&bill.InFlight.Sent)
		bill.InFlight.Changes = normalizePending(bill.InFlight.Changes)
	}
}

func normalizeState(s *models.LedgerState) {
	if s.Members == nil {
		s.Members = make(map[string]models.LocalMember)
	}
	if s.Expenses == nil {
		s.Expenses = make(map[string]models.LocalExpense)
	}
	if s.Items == nil {
		s.Items = make(map[string]models.LocalItem)
	}
	if s.Settlements == nil {
		s.Settlements = make(map[string]models.LocalSettlement)
	}
}

func normalizePending(p models.PendingChanges) models.PendingChanges {
	// Clone allocates every bucket
	return p.Clone()
}

func nullBytes(b []byte) any {
	if b == nil {
		return nil
	}
	return b
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
