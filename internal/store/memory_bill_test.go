// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-bill-keeper/internal/logger"
	"github.com/MKhiriev/go-bill-keeper/models"
)

func seedMemoryBill(t *testing.T, s BillStorage) {
	t.Helper()
	payer := memberA
	err := s.InTx(testContext(), func(ctx context.Context, tx BillTx) error {
		if err := tx.CreateBill(ctx, models.Bill{ID: billID, Name: "Trip", ShareCode: "ABCD2345", Version: 1, NameVersion: 1}); err != nil {
			return err
		}
		for _, m := range []models.Member{
			{ID: memberA, BillID: billID, Name: "Alice", ModifiedVersion: 1},
			{ID: memberB, BillID: billID, Name: "Bob", ModifiedVersion: 1},
		} {
			if err := tx.InsertMember(ctx, m); err != nil {
				return err
			}
		}
		if err := tx.InsertExpense(ctx, models.Expense{ID: expenseID, BillID: billID, Name: "Dinner",
			Amount: decimal.NewFromInt(100), IsItemized: true, PaidBy: &payer, Participants: []string{memberA, memberB}, ModifiedVersion: 1}); err != nil {
			return err
		}
		if err := tx.InsertItem(ctx, models.ExpenseItem{ID: itemID, BillID: billID, ExpenseID: expenseID, Name: "Soup",
			Amount: decimal.NewFromInt(10), PaidBy: &payer, Participants: []string{memberB}, ModifiedVersion: 1}); err != nil {
			return err
		}
		return tx.InsertSettlement(ctx, models.SettledTransfer{ID: settleID, BillID: billID, FromMember: memberB,
			ToMember: memberA, Amount: decimal.NewFromInt(50), SettledAt: time.Now(), ModifiedVersion: 1})
	})
	require.NoError(t, err)
}

func TestMemoryBillStorage_CreateAndRead(t *testing.T) {
	s := NewMemoryBillStorage(logger.Nop())
	seedMemoryBill(t, s)

	bill, err := s.GetBill(testContext(), billID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), bill.Version)
	assert.Len(t, bill.Members, 2)
	assert.Len(t, bill.Expenses, 1)
	assert.Len(t, bill.Items, 1)
	assert.Len(t, bill.Settlements, 1)

	byCode, err := s.GetBillByShareCode(testContext(), "ABCD2345")
	require.NoError(t, err)
	assert.Equal(t, billID, byCode.ID)

	_, err = s.GetBill(testContext(), "missing")
	assert.ErrorIs(t, err, ErrBillNotFound)
	_, err = s.GetBillByShareCode(testContext(), "ZZZZZZZZ")
	assert.ErrorIs(t, err, ErrBillNotFound)
}

func TestMemoryBillStorage_ReadsAreCopies(t *testing.T) {
	s := NewMemoryBillStorage(logger.Nop())
	seedMemoryBill(t, s)

	bill, err := s.GetBill(testContext(), billID)
	require.NoError(t, err)
	bill.Members[0].Name = "Mallory"
	bill.Expenses[0].Participants[0] = "x"

	again, err := s.GetBill(testContext(), billID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", again.Members[0].Name)
	assert.Equal(t, memberA, again.Expenses[0].Participants[0])
}

func TestMemoryBillStorage_RollbackDiscardsChanges(t *testing.T) {
	s := NewMemoryBillStorage(logger.Nop())
	seedMemoryBill(t, s)
	boom := errors.New("boom")

	err := s.InTx(testContext(), func(ctx context.Context, tx BillTx) error {
		if _, err := tx.LockBill(ctx, billID); err != nil {
			return err
		}
		require.NoError(t, tx.UpdateBillName(ctx, billID, "Changed", 2))
		require.NoError(t, tx.BumpVersion(ctx, billID, 1, 2))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	bill, err := s.GetBill(testContext(), billID)
	require.NoError(t, err)
	assert.Equal(t, "Trip", bill.Name)
	assert.Equal(t, int64(1), bill.Version)
}

func TestMemoryBillStorage_BumpVersionCAS(t *testing.T) {
	s := NewMemoryBillStorage(logger.Nop())
	seedMemoryBill(t, s)

	err := s.InTx(testContext(), func(ctx context.Context, tx BillTx) error {
		if _, err := tx.LockBill(ctx, billID); err != nil {
			return err
		}
		return tx.BumpVersion(ctx, billID, 7, 8)
	})
	assert.ErrorIs(t, err, ErrConcurrentWrite)
}

func TestMemoryBillStorage_WritesRequireLock(t *testing.T) {
	s := NewMemoryBillStorage(logger.Nop())
	seedMemoryBill(t, s)

	err := s.InTx(testContext(), func(ctx context.Context, tx BillTx) error {
		return tx.UpdateBillName(ctx, billID, "x", 2)
	})
	assert.ErrorIs(t, err, ErrBillNotFound)
}

func TestMemoryBillStorage_DeleteMemberMirrorsForeignKeys(t *testing.T) {
	s := NewMemoryBillStorage(logger.Nop())
	seedMemoryBill(t, s)

	err := s.InTx(testContext(), func(ctx context.Context, tx BillTx) error {
		if _, err := tx.LockBill(ctx, billID); err != nil {
			return err
		}
		return tx.DeleteMember(ctx, billID, memberA)
	})
	require.NoError(t, err)

	bill, err := s.GetBill(testContext(), billID)
	require.NoError(t, err)
	require.Len(t, bill.Members, 1)
	assert.Nil(t, bill.Expenses[0].PaidBy)
	assert.Nil(t, bill.Items[0].PaidBy)
	assert.Empty(t, bill.Settlements)
}

func TestMemoryBillStorage_DeleteExpenseCascadesItems(t *testing.T) {
	s := NewMemoryBillStorage(logger.Nop())
	seedMemoryBill(t, s)

	err := s.InTx(testContext(), func(ctx context.Context, tx BillTx) error {
		if _, err := tx.LockBill(ctx, billID); err != nil {
			return err
		}
		return tx.DeleteExpense(ctx, billID, expenseID)
	})
	require.NoError(t, err)

	bill, _ := s.GetBill(testContext(), billID)
	assert.Empty(t, bill.Expenses)
	assert.Empty(t, bill.Items)
}

func TestMemoryBillStorage_MissingEntities(t *testing.T) {
	s := NewMemoryBillStorage(logger.Nop())
	seedMemoryBill(t, s)

	err := s.InTx(testContext(), func(ctx context.Context, tx BillTx) error {
		if _, err := tx.LockBill(ctx, billID); err != nil {
			return err
		}
		assert.ErrorIs(t, tx.UpdateMember(ctx, models.Member{ID: "nope", BillID: billID}), ErrEntityNotFound)
		assert.ErrorIs(t, tx.UpdateExpense(ctx, models.Expense{ID: "nope", BillID: billID}), ErrEntityNotFound)
		assert.ErrorIs(t, tx.UpdateItem(ctx, models.ExpenseItem{ID: "nope", BillID: billID}), ErrEntityNotFound)
		assert.ErrorIs(t, tx.DeleteItem(ctx, billID, "nope"), ErrEntityNotFound)
		assert.ErrorIs(t, tx.DeleteSettlement(ctx, billID, "nope"), ErrEntityNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryBillStorage_MemberClaimUnique(t *testing.T) {
	s := NewMemoryBillStorage(logger.Nop())
	seedMemoryBill(t, s)
	user := "user-1"

	err := s.InTx(testContext(), func(ctx context.Context, tx BillTx) error {
		if _, err := tx.LockBill(ctx, billID); err != nil {
			return err
		}
		require.NoError(t, tx.UpdateMember(ctx, models.Member{ID: memberA, BillID: billID, Name: "Alice", UserID: &user}))
		// same member again is fine
		require.NoError(t, tx.UpdateMember(ctx, models.Member{ID: memberA, BillID: billID, Name: "Alice", UserID: &user}))
		return tx.UpdateMember(ctx, models.Member{ID: memberB, BillID: billID, Name: "Bob", UserID: &user})
	})
	assert.ErrorIs(t, err, ErrMemberAlreadyClaimed)
}

func TestMemoryBillStorage_ShareCodeTaken(t *testing.T) {
	s := NewMemoryBillStorage(logger.Nop())
	seedMemoryBill(t, s)

	err := s.InTx(testContext(), func(ctx context.Context, tx BillTx) error {
		return tx.CreateBill(ctx, models.Bill{ID: "other", Name: "x", ShareCode: "ABCD2345"})
	})
	assert.ErrorIs(t, err, ErrShareCodeTaken)
}

func TestMemoryBillStorage_Receipts(t *testing.T) {
	s := NewMemoryBillStorage(logger.Nop())
	seedMemoryBill(t, s)
	receipt := models.SyncReceipt{Fingerprint: "fp", BillID: billID, Response: []byte(`{}`)}

	err := s.InTx(testContext(), func(ctx context.Context, tx BillTx) error {
		if _, err := tx.LockBill(ctx, billID); err != nil {
			return err
		}
		_, err := tx.FindReceipt(ctx, "fp")
		require.ErrorIs(t, err, ErrReceiptNotFound)
		require.NoError(t, tx.SaveReceipt(ctx, receipt))
		_, err = tx.FindReceipt(ctx, "fp")
		require.NoError(t, err)
		return nil
	})
	require.NoError(t, err)

	err = s.InTx(testContext(), func(ctx context.Context, tx BillTx) error {
		return tx.SaveReceipt(ctx, receipt)
	})
	assert.ErrorIs(t, err, ErrConcurrentWrite)
}

func TestMemoryBillStorage_SerialisesWritersOfOneBill(t *testing.T) {
	s := NewMemoryBillStorage(logger.Nop())
	seedMemoryBill(t, s)

	const writers = 20
	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.InTx(testContext(), func(ctx context.Context, tx BillTx) error {
				bill, err := tx.LockBill(ctx, billID)
				if err != nil {
					return err
				}
				return tx.BumpVersion(ctx, billID, bill.Version, bill.Version+1)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	bill, err := s.GetBill(testContext(), billID)
	require.NoError(t, err)
	assert.Equal(t, int64(1+writers), bill.Version)
}
