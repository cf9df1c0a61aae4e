// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-bill-keeper/internal/logger"
	"github.com/MKhiriev/go-bill-keeper/models"
)

const (
	billID    = "0190a000-0000-7000-8000-000000000001"
	memberA   = "0190a000-0000-7000-8000-0000000000a1"
	memberB   = "0190a000-0000-7000-8000-0000000000b1"
	expenseID = "0190a000-0000-7000-8000-0000000000e1"
	itemID    = "0190a000-0000-7000-8000-0000000000c1"
	settleID  = "0190a000-0000-7000-8000-0000000000d1"
)

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// newDBFromSQL wraps a mocked *sql.DB into a postgres DB.
func newDBFromSQL(db *sql.DB) *DB {
	return &DB{
		DB:                 db,
		errorClassificator: NewPostgresErrorClassifier(),
		logger:             logger.Nop(),
	}
}

func newTestBillRepo(t *testing.T) (BillStorage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newTestDB(t)
	return NewBillRepository(newDBFromSQL(db), logger.Nop()), mock
}

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

var (
	billCols       = []string{"id", "name", "share_code", "version", "name_version", "owner_id", "created_at", "updated_at"}
	memberCols     = []string{"id", "bill_id", "name", "original_name", "display_order", "user_id", "claimed_at", "modified_version"}
	expenseCols    = []string{"id", "bill_id", "name", "amount", "service_fee_percent", "is_itemized", "paid_by", "participants", "modified_version"}
	itemCols       = []string{"id", "bill_id", "expense_id", "name", "amount", "paid_by", "participants", "modified_version"}
	settlementCols = []string{"id", "bill_id", "from_member", "to_member", "amount", "settled_at", "modified_version"}
)

// expectBillLoad registers the five queries of loadBill.
func expectBillLoad(mock sqlmock.Sqlmock, headPattern string, arg any, version int64) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(headPattern).WithArgs(arg).WillReturnRows(
		sqlmock.NewRows(billCols).AddRow(billID, "Trip", "ABCD2345", version, int64(1), nil, now, now))
	mock.ExpectQuery("FROM members").WithArgs(billID).WillReturnRows(
		sqlmock.NewRows(memberCols).
			AddRow(memberA, billID, "Alice", nil, 0, "user-1", now, int64(1)).
			AddRow(memberB, billID, "Bob", "Robert", 1, nil, nil, int64(2)))
	mock.ExpectQuery("FROM expenses").WithArgs(billID).WillReturnRows(
		sqlmock.NewRows(expenseCols).
			AddRow(expenseID, billID, "Dinner", "100.00", "10.00", true, memberA, []byte(`["`+memberA+`","`+memberB+`"]`), int64(3)))
	mock.ExpectQuery("FROM expense_items").WithArgs(billID).WillReturnRows(
		sqlmock.NewRows(itemCols).
			AddRow(itemID, billID, expenseID, "Soup", "12.50", nil, []byte(`["`+memberB+`"]`), int64(3)))
	mock.ExpectQuery("FROM settlements").WithArgs(billID).WillReturnRows(
		sqlmock.NewRows(settlementCols).
			AddRow(settleID, billID, memberB, memberA, "55.00", now, int64(4)))
}

// ── GetBill ──────────────────────────────────────────────────────────────────

func TestBillRepository_GetBill(t *testing.T) {
	repo, mock := newTestBillRepo(t)
	expectBillLoad(mock, "FROM bills", billID, 4)

	bill, err := repo.GetBill(testContext(), billID)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, billID, bill.ID)
	assert.Equal(t, int64(4), bill.Version)
	assert.Nil(t, bill.OwnerID)

	require.Len(t, bill.Members, 2)
	assert.Equal(t, "user-1", *bill.Members[0].UserID)
	assert.Nil(t, bill.Members[1].UserID)
	assert.Equal(t, "Robert", *bill.Members[1].OriginalName)

	require.Len(t, bill.Expenses, 1)
	assert.True(t, bill.Expenses[0].Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, []string{memberA, memberB}, bill.Expenses[0].Participants)
	assert.Equal(t, memberA, *bill.Expenses[0].PaidBy)

	require.Len(t, bill.Items, 1)
	assert.Nil(t, bill.Items[0].PaidBy)
	assert.True(t, bill.Items[0].Amount.Equal(decimal.RequireFromString("12.5")))

	require.Len(t, bill.Settlements, 1)
	assert.Equal(t, int64(4), bill.Settlements[0].ModifiedVersion)
}

func TestBillRepository_GetBill_NotFound(t *testing.T) {
	repo, mock := newTestBillRepo(t)
	mock.ExpectQuery("FROM bills").WithArgs(billID).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetBill(testContext(), billID)
	assert.ErrorIs(t, err, ErrBillNotFound)
}

func TestBillRepository_GetBill_ChildQueryFails(t *testing.T) {
	repo, mock := newTestBillRepo(t)
	now := time.Now()
	mock.ExpectQuery("FROM bills").WithArgs(billID).WillReturnRows(
		sqlmock.NewRows(billCols).AddRow(billID, "Trip", "ABCD2345", int64(1), int64(1), nil, now, now))
	mock.ExpectQuery("FROM members").WillReturnError(errors.New("connection reset"))

	_, err := repo.GetBill(testContext(), billID)
	assert.ErrorIs(t, err, ErrExecutingQuery)
}

func TestBillRepository_GetBill_BadParticipants(t *testing.T) {
	repo, mock := newTestBillRepo(t)
	now := time.Now()
	mock.ExpectQuery("FROM bills").WithArgs(billID).WillReturnRows(
		sqlmock.NewRows(billCols).AddRow(billID, "Trip", "ABCD2345", int64(1), int64(1), nil, now, now))
	mock.ExpectQuery("FROM members").WillReturnRows(sqlmock.NewRows(memberCols))
	mock.ExpectQuery("FROM expenses").WillReturnRows(
		sqlmock.NewRows(expenseCols).AddRow(expenseID, billID, "Dinner", "1", "0", false, nil, []byte(`{`), int64(1)))

	_, err := repo.GetBill(testContext(), billID)
	assert.ErrorIs(t, err, ErrScanningRows)
}

func TestBillRepository_GetBillByShareCode(t *testing.T) {
	repo, mock := newTestBillRepo(t)
	expectBillLoad(mock, "WHERE share_code", "ABCD2345", 2)

	bill, err := repo.GetBillByShareCode(testContext(), "ABCD2345")
	require.NoError(t, err)
	assert.Equal(t, "ABCD2345", bill.ShareCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

// ── InTx ─────────────────────────────────────────────────────────────────────

func TestBillRepository_InTx_CommitsLockedWrite(t *testing.T) {
	repo, mock := newTestBillRepo(t)

	mock.ExpectBegin()
	expectBillLoad(mock, "FOR UPDATE", billID, 4)
	mock.ExpectExec("UPDATE bills").WithArgs(int64(5), billID, int64(4)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.InTx(testContext(), func(ctx context.Context, tx BillTx) error {
		bill, err := tx.LockBill(ctx, billID)
		if err != nil {
			return err
		}
		return tx.BumpVersion(ctx, billID, bill.Version, bill.Version+1)
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBillRepository_InTx_RollsBackOnError(t *testing.T) {
	repo, mock := newTestBillRepo(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := repo.InTx(testContext(), func(context.Context, BillTx) error { return boom })
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBillRepository_InTx_BeginFails(t *testing.T) {
	repo, mock := newTestBillRepo(t)
	mock.ExpectBegin().WillReturnError(errors.New("no conn"))

	err := repo.InTx(testContext(), func(context.Context, BillTx) error { return nil })
	assert.ErrorIs(t, err, ErrBeginningTransaction)
}

func TestBillRepository_InTx_CommitSerializationFailure(t *testing.T) {
	repo, mock := newTestBillRepo(t)
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(&pgconn.PgError{Code: pgerrcode.SerializationFailure})

	err := repo.InTx(testContext(), func(context.Context, BillTx) error { return nil })
	assert.ErrorIs(t, err, ErrConcurrentWrite)
}

func TestBillRepository_InTx_CommitFails(t *testing.T) {
	repo, mock := newTestBillRepo(t)
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("disk full"))

	err := repo.InTx(testContext(), func(context.Context, BillTx) error { return nil })
	assert.ErrorIs(t, err, ErrCommitingTransaction)
}

// ── BillTx ───────────────────────────────────────────────────────────────────

func TestBillTx_BumpVersion_LostRace(t *testing.T) {
	repo, mock := newTestBillRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bills").WithArgs(int64(5), billID, int64(4)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.InTx(testContext(), func(ctx context.Context, tx BillTx) error {
		return tx.BumpVersion(ctx, billID, 4, 5)
	})
	assert.ErrorIs(t, err, ErrConcurrentWrite)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBillTx_CreateBill(t *testing.T) {
	now := time.Now().UTC()
	owner := "user-1"
	bill := models.Bill{ID: billID, Name: "Trip", ShareCode: "ABCD2345", Version: 1, NameVersion: 1, OwnerID: &owner, CreatedAt: now, UpdatedAt: now}

	tests := []struct {
		name    string
		execErr error
		want    error
	}{
		{name: "created"},
		{name: "share code taken", execErr: &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: shareCodeConstraint}, want: ErrShareCodeTaken},
		{name: "driver error", execErr: errors.New("boom"), want: ErrExecutingStatement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestBillRepo(t)
			mock.ExpectBegin()
			exec := mock.ExpectExec("INSERT INTO bills").
				WithArgs(billID, "Trip", "ABCD2345", int64(1), int64(1), "user-1", now, now)
			if tt.execErr != nil {
				exec.WillReturnError(tt.execErr)
				mock.ExpectRollback()
			} else {
				exec.WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			}

			err := repo.InTx(testContext(), func(ctx context.Context, tx BillTx) error {
				return tx.CreateBill(ctx, bill)
			})
			if tt.want == nil {
				require.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBillTx_Receipts(t *testing.T) {
	repo, mock := newTestBillRepo(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM sync_receipts").WithArgs("fp-1").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO sync_receipts").
		WithArgs("fp-1", billID, []byte(`{"success":true}`), now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM sync_receipts").WithArgs("fp-1").WillReturnRows(
		sqlmock.NewRows([]string{"fingerprint", "bill_id", "response", "created_at"}).
			AddRow("fp-1", billID, []byte(`{"success":true}`), now))
	mock.ExpectCommit()

	err := repo.InTx(testContext(), func(ctx context.Context, tx BillTx) error {
		_, err := tx.FindReceipt(ctx, "fp-1")
		require.ErrorIs(t, err, ErrReceiptNotFound)

		require.NoError(t, tx.SaveReceipt(ctx, models.SyncReceipt{
			Fingerprint: "fp-1", BillID: billID, Response: []byte(`{"success":true}`), CreatedAt: now,
		}))

		receipt, err := tx.FindReceipt(ctx, "fp-1")
		require.NoError(t, err)
		assert.JSONEq(t, `{"success":true}`, string(receipt.Response))
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBillTx_SaveReceipt_Duplicate(t *testing.T) {
	repo, mock := newTestBillRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO sync_receipts").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: receiptConstraint})
	mock.ExpectRollback()

	err := repo.InTx(testContext(), func(ctx context.Context, tx BillTx) error {
		return tx.SaveReceipt(ctx, models.SyncReceipt{Fingerprint: "fp", BillID: billID, Response: []byte(`{}`)})
	})
	assert.ErrorIs(t, err, ErrConcurrentWrite)
}

func TestBillTx_MemberWrites(t *testing.T) {
	user := "user-2"
	member := models.Member{ID: memberB, BillID: billID, Name: "Bob", DisplayOrder: 1, UserID: &user, ModifiedVersion: 6}

	repo, mock := newTestBillRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO members").
		WithArgs(memberB, billID, "Bob", nil, int64(1), "user-2", nil, int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE members SET name = \\$1").
		WithArgs("Bob", nil, int64(1), "user-2", nil, int64(6), billID, memberB).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM members").WithArgs(billID, memberB).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.InTx(testContext(), func(ctx context.Context, tx BillTx) error {
		if err := tx.InsertMember(ctx, member); err != nil {
			return err
		}
		if err := tx.UpdateMember(ctx, member); err != nil {
			return err
		}
		return tx.DeleteMember(ctx, billID, memberB)
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBillTx_InsertMember_AlreadyClaimed(t *testing.T) {
	repo, mock := newTestBillRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO members").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: memberUserConstraint})
	mock.ExpectRollback()

	err := repo.InTx(testContext(), func(ctx context.Context, tx BillTx) error {
		return tx.InsertMember(ctx, models.Member{ID: memberA, BillID: billID, Name: "Alice"})
	})
	assert.ErrorIs(t, err, ErrMemberAlreadyClaimed)
}

func TestBillTx_ExpenseAndItemWrites(t *testing.T) {
	payer := memberA
	expense := models.Expense{
		ID: expenseID, BillID: billID, Name: "Dinner",
		Amount: decimal.NewFromInt(200), ServiceFeePercent: decimal.NewFromInt(10),
		IsItemized: true, PaidBy: &payer, Participants: []string{memberA}, ModifiedVersion: 6,
	}
	item := models.ExpenseItem{
		ID: itemID, BillID: billID, ExpenseID: expenseID, Name: "Soup",
		Amount: decimal.NewFromInt(12), ModifiedVersion: 6,
	}

	repo, mock := newTestBillRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO expenses").
		WithArgs(expenseID, billID, "Dinner", "200", "10", true, memberA, []byte(`["`+memberA+`"]`), int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE expenses").
		WithArgs("Dinner", "200", "10", true, memberA, []byte(`["`+memberA+`"]`), int64(6), billID, expenseID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO expense_items").
		WithArgs(itemID, billID, expenseID, "Soup", "12", nil, []byte(`[]`), int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE expense_items").
		WithArgs(expenseID, "Soup", "12", nil, []byte(`[]`), int64(6), billID, itemID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM expense_items").WithArgs(billID, itemID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM expenses").WithArgs(billID, expenseID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.InTx(testContext(), func(ctx context.Context, tx BillTx) error {
		require.NoError(t, tx.InsertExpense(ctx, expense))
		require.NoError(t, tx.UpdateExpense(ctx, expense))
		require.NoError(t, tx.InsertItem(ctx, item))
		require.NoError(t, tx.UpdateItem(ctx, item))
		require.NoError(t, tx.DeleteItem(ctx, billID, itemID))
		return tx.DeleteExpense(ctx, billID, expenseID)
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBillTx_Settlements(t *testing.T) {
	now := time.Now().UTC()
	s := models.SettledTransfer{ID: settleID, BillID: billID, FromMember: memberB, ToMember: memberA,
		Amount: decimal.NewFromInt(55), SettledAt: now, ModifiedVersion: 7}

	repo, mock := newTestBillRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO settlements").
		WithArgs(settleID, billID, memberB, memberA, "55", now, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM settlements").WithArgs(billID, settleID).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.InTx(testContext(), func(ctx context.Context, tx BillTx) error {
		require.NoError(t, tx.InsertSettlement(ctx, s))
		return tx.DeleteSettlement(ctx, billID, settleID)
	})
	assert.ErrorIs(t, err, ErrEntityNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBillTx_UpdateBillName(t *testing.T) {
	repo, mock := newTestBillRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec("SET name = \\$1, name_version = \\$2").WithArgs("Trip 2", int64(8), billID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.InTx(testContext(), func(ctx context.Context, tx BillTx) error {
		return tx.UpdateBillName(ctx, billID, "Trip 2", 8)
	})
	require.NoError(t, err)
}

func TestBillTx_DeadlockIsConcurrentWrite(t *testing.T) {
	repo, mock := newTestBillRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM members").WillReturnError(&pgconn.PgError{Code: pgerrcode.DeadlockDetected})
	mock.ExpectRollback()

	err := repo.InTx(testContext(), func(ctx context.Context, tx BillTx) error {
		return tx.DeleteMember(ctx, billID, memberA)
	})
	assert.ErrorIs(t, err, ErrConcurrentWrite)
}
