// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"

	"github.com/MKhiriev/go-bill-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// BillStorage persists bill aggregates on the server.
//
// Every write happens inside InTx. A transaction that returns an error from
// fn is rolled back; nothing of it is visible to other callers.
type BillStorage interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx BillTx) error) error
	GetBill(ctx context.Context, billID string) (models.Bill, error)
	GetBillByShareCode(ctx context.Context, shareCode string) (models.Bill, error)
}

// BillTx is the set of operations available inside one bill transaction.
//
// LockBill serialises writers of the same bill until the transaction ends.
type BillTx interface {
	CreateBill(ctx context.Context, bill models.Bill) error
	LockBill(ctx context.Context, billID string) (models.Bill, error)
	// BumpVersion moves the bill version from -> to and fails with
	// ErrConcurrentWrite when the stored version is not from.
	BumpVersion(ctx context.Context, billID string, from, to int64) error
	UpdateBillName(ctx context.Context, billID, name string, version int64) error

	FindReceipt(ctx context.Context, fingerprint string) (models.SyncReceipt, error)
	SaveReceipt(ctx context.Context, receipt models.SyncReceipt) error

	InsertMember(ctx context.Context, member models.Member) error
	UpdateMember(ctx context.Context, member models.Member) error
	DeleteMember(ctx context.Context, billID, memberID string) error

	InsertExpense(ctx context.Context, expense models.Expense) error
	UpdateExpense(ctx context.Context, expense models.Expense) error
	DeleteExpense(ctx context.Context, billID, expenseID string) error

	InsertItem(ctx context.Context, item models.ExpenseItem) error
	UpdateItem(ctx context.Context, item models.ExpenseItem) error
	DeleteItem(ctx context.Context, billID, itemID string) error

	InsertSettlement(ctx context.Context, settlement models.SettledTransfer) error
	DeleteSettlement(ctx context.Context, billID, settlementID string) error
}
