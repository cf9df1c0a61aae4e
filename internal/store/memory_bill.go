// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/MKhiriev/go-bill-keeper/internal/logger"
	"github.com/MKhiriev/go-bill-keeper/models"
)

// memoryBillStorage keeps bills in process memory. Each bill has its own
// mutex, held by a transaction from LockBill until commit or rollback.
// Committed state is swapped in under the storage mutex, so readers never
// wait for writers.
type memoryBillStorage struct {
	mu         sync.RWMutex
	bills      map[string]*memoryBill
	shareCodes map[string]string
	receipts   map[string]models.SyncReceipt
	logger     *logger.Logger
}

type memoryBill struct {
	lock sync.Mutex
	bill models.Bill
}

// NewMemoryBillStorage returns a [BillStorage] that lives in process memory.
func NewMemoryBillStorage(log *logger.Logger) BillStorage {
	return &memoryBillStorage{
		bills:      make(map[string]*memoryBill),
		shareCodes: make(map[string]string),
		receipts:   make(map[string]models.SyncReceipt),
		logger:     log,
	}
}

func (s *memoryBillStorage) InTx(ctx context.Context, fn func(ctx context.Context, tx BillTx) error) error {
	tx := &memoryTx{
		storage: s,
		locked:  make(map[string]*memoryBill),
		staged:  make(map[string]*models.Bill),
	}
	defer tx.release()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.commit(); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "memoryBillStorage.InTx").Msg("error committing transaction")
		return err
	}
	return nil
}

func (s *memoryBillStorage) GetBill(_ context.Context, billID string) (models.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.bills[billID]
	if !ok {
		return models.Bill{}, ErrBillNotFound
	}
	return entry.bill.Clone(), nil
}

func (s *memoryBillStorage) GetBillByShareCode(ctx context.Context, shareCode string) (models.Bill, error) {
	s.mu.RLock()
	billID, ok := s.shareCodes[shareCode]
	s.mu.RUnlock()
	if !ok {
		return models.Bill{}, ErrBillNotFound
	}
	return s.GetBill(ctx, billID)
}

type memoryTx struct {
	storage  *memoryBillStorage
	locked   map[string]*memoryBill
	staged   map[string]*models.Bill
	created  []string
	receipts []models.SyncReceipt
}

func (t *memoryTx) release() {
	for _, entry := range t.locked {
		entry.lock.Unlock()
	}
	t.locked = nil
}

func (t *memoryTx) commit() error {
	s := t.storage
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range t.created {
		b := t.staged[id]
		if _, exists := s.bills[id]; exists {
			return fmt.Errorf("%w: bill %s already exists", ErrConcurrentWrite, id)
		}
		if _, taken := s.shareCodes[b.ShareCode]; taken {
			return ErrShareCodeTaken
		}
	}
	for _, r := range t.receipts {
		if _, exists := s.receipts[r.Fingerprint]; exists {
			return fmt.Errorf("%w: receipt %s", ErrConcurrentWrite, r.Fingerprint)
		}
	}

	for _, id := range t.created {
		b := t.staged[id]
		s.bills[id] = &memoryBill{bill: *b}
		s.shareCodes[b.ShareCode] = id
	}
	for id, entry := range t.locked {
		entry.bill = *t.staged[id]
	}
	for _, r := range t.receipts {
		s.receipts[r.Fingerprint] = r
	}
	return nil
}

func (t *memoryTx) bill(billID string) (*models.Bill, error) {
	b, ok := t.staged[billID]
	if !ok {
		return nil, fmt.Errorf("%w: bill %s is not locked by the transaction", ErrBillNotFound, billID)
	}
	return b, nil
}

func (t *memoryTx) CreateBill(_ context.Context, bill models.Bill) error {
	t.storage.mu.RLock()
	_, exists := t.storage.bills[bill.ID]
	_, taken := t.storage.shareCodes[bill.ShareCode]
	t.storage.mu.RUnlock()

	if exists {
		return fmt.Errorf("%w: bill %s already exists", ErrExecutingStatement, bill.ID)
	}
	if taken {
		return ErrShareCodeTaken
	}

	b := bill.Clone()
	t.staged[bill.ID] = &b
	t.created = append(t.created, bill.ID)
	return nil
}

func (t *memoryTx) LockBill(_ context.Context, billID string) (models.Bill, error) {
	if b, ok := t.staged[billID]; ok {
		return b.Clone(), nil
	}

	t.storage.mu.RLock()
	entry, ok := t.storage.bills[billID]
	t.storage.mu.RUnlock()
	if !ok {
		return models.Bill{}, ErrBillNotFound
	}

	entry.lock.Lock()
	t.locked[billID] = entry

	// the committed state cannot change while the entry is locked
	t.storage.mu.RLock()
	b := entry.bill.Clone()
	t.storage.mu.RUnlock()

	t.staged[billID] = &b
	return b.Clone(), nil
}

func (t *memoryTx) BumpVersion(_ context.Context, billID string, from, to int64) error {
	b, err := t.bill(billID)
	if err != nil {
		return err
	}
	if b.Version != from {
		return fmt.Errorf("%w: version of bill %s moved from %d", ErrConcurrentWrite, billID, from)
	}
	b.Version = to
	b.UpdatedAt = time.Now().UTC()
	return nil
}

func (t *memoryTx) UpdateBillName(_ context.Context, billID, name string, version int64) error {
	b, err := t.bill(billID)
	if err != nil {
		return err
	}
	b.Name = name
	b.NameVersion = version
	return nil
}

func (t *memoryTx) FindReceipt(_ context.Context, fingerprint string) (models.SyncReceipt, error) {
	for _, r := range t.receipts {
		if r.Fingerprint == fingerprint {
			return r, nil
		}
	}

	t.storage.mu.RLock()
	defer t.storage.mu.RUnlock()
	r, ok := t.storage.receipts[fingerprint]
	if !ok {
		return models.SyncReceipt{}, ErrReceiptNotFound
	}
	return r, nil
}

func (t *memoryTx) SaveReceipt(ctx context.Context, receipt models.SyncReceipt) error {
	if _, err := t.FindReceipt(ctx, receipt.Fingerprint); err == nil {
		return fmt.Errorf("%w: receipt %s", ErrConcurrentWrite, receipt.Fingerprint)
	}
	receipt.Response = slices.Clone(receipt.Response)
	t.receipts = append(t.receipts, receipt)
	return nil
}

func (t *memoryTx) InsertMember(_ context.Context, member models.Member) error {
	b, err := t.bill(member.BillID)
	if err != nil {
		return err
	}
	if member.UserID != nil && claimedBy(b.Members, *member.UserID, "") {
		return ErrMemberAlreadyClaimed
	}
	b.Members = append(b.Members, member)
	return nil
}

func (t *memoryTx) UpdateMember(_ context.Context, member models.Member) error {
	b, err := t.bill(member.BillID)
	if err != nil {
		return err
	}
	if member.UserID != nil && claimedBy(b.Members, *member.UserID, member.ID) {
		return ErrMemberAlreadyClaimed
	}
	return replaceByID(b.Members, member, func(m models.Member) string { return m.ID }, models.EntityMember)
}

// DeleteMember mirrors the foreign keys: payers are cleared and settlements
// involving the member are removed.
func (t *memoryTx) DeleteMember(_ context.Context, billID, memberID string) error {
	b, err := t.bill(billID)
	if err != nil {
		return err
	}
	if b.Members, err = removeByID(b.Members, memberID, func(m models.Member) string { return m.ID }, models.EntityMember); err != nil {
		return err
	}
	for i := range b.Expenses {
		if b.Expenses[i].PaidBy != nil && *b.Expenses[i].PaidBy == memberID {
			b.Expenses[i].PaidBy = nil
		}
	}
	for i := range b.Items {
		if b.Items[i].PaidBy != nil && *b.Items[i].PaidBy == memberID {
			b.Items[i].PaidBy = nil
		}
	}
	b.Settlements = slices.DeleteFunc(b.Settlements, func(s models.SettledTransfer) bool {
		return s.FromMember == memberID || s.ToMember == memberID
	})
	return nil
}

func (t *memoryTx) InsertExpense(_ context.Context, expense models.Expense) error {
	b, err := t.bill(expense.BillID)
	if err != nil {
		return err
	}
	b.Expenses = append(b.Expenses, expense)
	return nil
}

func (t *memoryTx) UpdateExpense(_ context.Context, expense models.Expense) error {
	b, err := t.bill(expense.BillID)
	if err != nil {
		return err
	}
	return replaceByID(b.Expenses, expense, func(e models.Expense) string { return e.ID }, models.EntityExpense)
}

// DeleteExpense removes the expense together with its items.
func (t *memoryTx) DeleteExpense(_ context.Context, billID, expenseID string) error {
	b, err := t.bill(billID)
	if err != nil {
		return err
	}
	if b.Expenses, err = removeByID(b.Expenses, expenseID, func(e models.Expense) string { return e.ID }, models.EntityExpense); err != nil {
		return err
	}
	b.Items = slices.DeleteFunc(b.Items, func(it models.ExpenseItem) bool { return it.ExpenseID == expenseID })
	return nil
}

func (t *memoryTx) InsertItem(_ context.Context, item models.ExpenseItem) error {
	b, err := t.bill(item.BillID)
	if err != nil {
		return err
	}
	b.Items = append(b.Items, item)
	return nil
}

func (t *memoryTx) UpdateItem(_ context.Context, item models.ExpenseItem) error {
	b, err := t.bill(item.BillID)
	if err != nil {
		return err
	}
	return replaceByID(b.Items, item, func(it models.ExpenseItem) string { return it.ID }, models.EntityItem)
}

func (t *memoryTx) DeleteItem(_ context.Context, billID, itemID string) error {
	b, err := t.bill(billID)
	if err != nil {
		return err
	}
	b.Items, err = removeByID(b.Items, itemID, func(it models.ExpenseItem) string { return it.ID }, models.EntityItem)
	return err
}

func (t *memoryTx) InsertSettlement(_ context.Context, settlement models.SettledTransfer) error {
	b, err := t.bill(settlement.BillID)
	if err != nil {
		return err
	}
	b.Settlements = append(b.Settlements, settlement)
	return nil
}

func (t *memoryTx) DeleteSettlement(_ context.Context, billID, settlementID string) error {
	b, err := t.bill(billID)
	if err != nil {
		return err
	}
	b.Settlements, err = removeByID(b.Settlements, settlementID, func(s models.SettledTransfer) string { return s.ID }, models.EntitySettlement)
	return err
}

func claimedBy(members []models.Member, userID, exceptID string) bool {
	return slices.ContainsFunc(members, func(m models.Member) bool {
		return m.ID != exceptID && m.UserID != nil && *m.UserID == userID
	})
}

func replaceByID[T any](list []T, v T, id func(T) string, entity models.EntityType) error {
	i := slices.IndexFunc(list, func(x T) bool { return id(x) == id(v) })
	if i < 0 {
		return fmt.Errorf("%w: %s %s", ErrEntityNotFound, entity, id(v))
	}
	list[i] = v
	return nil
}

func removeByID[T any](list []T, target string, id func(T) string, entity models.EntityType) ([]T, error) {
	i := slices.IndexFunc(list, func(x T) bool { return id(x) == target })
	if i < 0 {
		return list, fmt.Errorf("%w: %s %s", ErrEntityNotFound, entity, target)
	}
	return slices.Delete(list, i, i+1), nil
}
