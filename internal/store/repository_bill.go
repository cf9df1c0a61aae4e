// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"

	"github.com/MKhiriev/go-bill-keeper/internal/logger"
	"github.com/MKhiriev/go-bill-keeper/models"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type billRepository struct {
	*DB
	logger *logger.Logger
}

// NewBillRepository returns a PostgreSQL-backed [BillStorage].
func NewBillRepository(db *DB, log *logger.Logger) BillStorage {
	return &billRepository{DB: db, logger: log}
}

func (r *billRepository) InTx(ctx context.Context, fn func(ctx context.Context, tx BillTx) error) error {
	log := logger.FromContext(ctx)

	tx, err := r.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "billRepository.InTx").Msg("error beginning transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	if err = fn(ctx, &billTx{tx: tx, classify: r.errorClassificator}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "billRepository.InTx").Msg("error committing transaction")
		return classifyErr(r.errorClassificator, ErrCommitingTransaction, err)
	}

	return nil
}

func (r *billRepository) GetBill(ctx context.Context, billID string) (models.Bill, error) {
	bill, err := loadBill(ctx, r.DB, selectBillByID, billID)
	if err != nil && !errors.Is(err, ErrBillNotFound) {
		logger.FromContext(ctx).Err(err).Str("func", "billRepository.GetBill").Msg("error loading bill")
	}
	return bill, err
}

func (r *billRepository) GetBillByShareCode(ctx context.Context, shareCode string) (models.Bill, error) {
	bill, err := loadBill(ctx, r.DB, selectBillByShareCode, shareCode)
	if err != nil && !errors.Is(err, ErrBillNotFound) {
		logger.FromContext(ctx).Err(err).Str("func", "billRepository.GetBillByShareCode").Msg("error loading bill")
	}
	return bill, err
}

type billTx struct {
	tx       *sql.Tx
	classify ErrorClassificator
}

func (t *billTx) CreateBill(ctx context.Context, bill models.Bill) error {
	_, err := t.tx.ExecContext(ctx, insertBill,
		bill.ID, bill.Name, bill.ShareCode, bill.Version, bill.NameVersion, bill.OwnerID, bill.CreatedAt, bill.UpdatedAt)
	if err != nil {
		if postgresError(err) == pgerrcode.UniqueViolation && postgresConstraint(err) == shareCodeConstraint {
			return fmt.Errorf("%w: %w", ErrShareCodeTaken, err)
		}
		return classifyErr(t.classify, ErrExecutingStatement, err)
	}
	return nil
}

func (t *billTx) LockBill(ctx context.Context, billID string) (models.Bill, error) {
	return loadBill(ctx, t.tx, selectBillByIDForUpdate, billID)
}

func (t *billTx) BumpVersion(ctx context.Context, billID string, from, to int64) error {
	res, err := t.tx.ExecContext(ctx, bumpBillVersion, to, billID, from)
	if err != nil {
		return classifyErr(t.classify, ErrExecutingStatement, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: version of bill %s moved from %d", ErrConcurrentWrite, billID, from)
	}
	return nil
}

func (t *billTx) UpdateBillName(ctx context.Context, billID, name string, version int64) error {
	if _, err := t.exec(ctx, updateBillName, name, version, billID); err != nil {
		return err
	}
	return nil
}

func (t *billTx) FindReceipt(ctx context.Context, fingerprint string) (models.SyncReceipt, error) {
	var (
		receipt  models.SyncReceipt
		response []byte
	)
	err := t.tx.QueryRowContext(ctx, selectReceipt, fingerprint).
		Scan(&receipt.Fingerprint, &receipt.BillID, &response, &receipt.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SyncReceipt{}, ErrReceiptNotFound
	}
	if err != nil {
		return models.SyncReceipt{}, classifyErr(t.classify, ErrScanningRow, err)
	}
	receipt.Response = response
	return receipt, nil
}

func (t *billTx) SaveReceipt(ctx context.Context, receipt models.SyncReceipt) error {
	_, err := t.exec(ctx, insertReceipt, receipt.Fingerprint, receipt.BillID, []byte(receipt.Response), receipt.CreatedAt)
	return err
}

func (t *billTx) InsertMember(ctx context.Context, member models.Member) error {
	query, args, err := buildInsertMember(member)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if _, err = t.exec(ctx, query, args...); err != nil {
		if postgresConstraint(err) == memberUserConstraint {
			return fmt.Errorf("%w: %w", ErrMemberAlreadyClaimed, err)
		}
		return err
	}
	return nil
}

func (t *billTx) UpdateMember(ctx context.Context, member models.Member) error {
	query, args, err := buildUpdateMember(member)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	n, err := t.exec(ctx, query, args...)
	if err != nil {
		if postgresConstraint(err) == memberUserConstraint {
			return fmt.Errorf("%w: %w", ErrMemberAlreadyClaimed, err)
		}
		return err
	}
	return expectAffected(n, models.EntityMember, member.ID)
}

func (t *billTx) DeleteMember(ctx context.Context, billID, memberID string) error {
	return t.delete(ctx, deleteMember, models.EntityMember, billID, memberID)
}

func (t *billTx) InsertExpense(ctx context.Context, expense models.Expense) error {
	query, args, err := buildInsertExpense(expense)
	if err != nil {
		return err
	}
	_, err = t.exec(ctx, query, args...)
	return err
}

func (t *billTx) UpdateExpense(ctx context.Context, expense models.Expense) error {
	query, args, err := buildUpdateExpense(expense)
	if err != nil {
		return err
	}
	n, err := t.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	return expectAffected(n, models.EntityExpense, expense.ID)
}

func (t *billTx) DeleteExpense(ctx context.Context, billID, expenseID string) error {
	return t.delete(ctx, deleteExpense, models.EntityExpense, billID, expenseID)
}

func (t *billTx) InsertItem(ctx context.Context, item models.ExpenseItem) error {
	query, args, err := buildInsertItem(item)
	if err != nil {
		return err
	}
	_, err = t.exec(ctx, query, args...)
	return err
}

func (t *billTx) UpdateItem(ctx context.Context, item models.ExpenseItem) error {
	query, args, err := buildUpdateItem(item)
	if err != nil {
		return err
	}
	n, err := t.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	return expectAffected(n, models.EntityItem, item.ID)
}

func (t *billTx) DeleteItem(ctx context.Context, billID, itemID string) error {
	return t.delete(ctx, deleteItem, models.EntityItem, billID, itemID)
}

func (t *billTx) InsertSettlement(ctx context.Context, settlement models.SettledTransfer) error {
	query, args, err := buildInsertSettlement(settlement)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	_, err = t.exec(ctx, query, args...)
	return err
}

func (t *billTx) DeleteSettlement(ctx context.Context, billID, settlementID string) error {
	return t.delete(ctx, deleteSettlement, models.EntitySettlement, billID, settlementID)
}

func (t *billTx) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, classifyErr(t.classify, ErrExecutingStatement, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return n, nil
}

func (t *billTx) delete(ctx context.Context, query string, entity models.EntityType, billID, id string) error {
	n, err := t.exec(ctx, query, billID, id)
	if err != nil {
		return err
	}
	return expectAffected(n, entity, id)
}

func expectAffected(n int64, entity models.EntityType, id string) error {
	if n == 0 {
		return fmt.Errorf("%w: %s %s", ErrEntityNotFound, entity, id)
	}
	return nil
}

// classifyErr wraps err with sentinel, or with ErrConcurrentWrite when the
// driver reports a lost race.
func classifyErr(c ErrorClassificator, sentinel error, err error) error {
	if c != nil && c.Classify(err) == ConcurrencyFault {
		return fmt.Errorf("%w: %w", ErrConcurrentWrite, err)
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// loadBill reads a bill row with query and then all of its children.
func loadBill(ctx context.Context, q querier, query string, arg any) (models.Bill, error) {
	var bill models.Bill
	err := q.QueryRowContext(ctx, query, arg).Scan(
		&bill.ID, &bill.Name, &bill.ShareCode, &bill.Version, &bill.NameVersion,
		&bill.OwnerID, &bill.CreatedAt, &bill.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Bill{}, ErrBillNotFound
	}
	if err != nil {
		return models.Bill{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	if bill.Members, err = loadMembers(ctx, q, bill.ID); err != nil {
		return models.Bill{}, err
	}
	if bill.Expenses, err = loadExpenses(ctx, q, bill.ID); err != nil {
		return models.Bill{}, err
	}
	if bill.Items, err = loadItems(ctx, q, bill.ID); err != nil {
		return models.Bill{}, err
	}
	if bill.Settlements, err = loadSettlements(ctx, q, bill.ID); err != nil {
		return models.Bill{}, err
	}

	return bill, nil
}

func loadMembers(ctx context.Context, q querier, billID string) ([]models.Member, error) {
	rows, err := q.QueryContext(ctx, selectMembers, billID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	members := make([]models.Member, 0)
	for rows.Next() {
		var m models.Member
		if err = rows.Scan(&m.ID, &m.BillID, &m.Name, &m.OriginalName, &m.DisplayOrder,
			&m.UserID, &m.ClaimedAt, &m.ModifiedVersion); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		members = append(members, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return members, nil
}

func loadExpenses(ctx context.Context, q querier, billID string) ([]models.Expense, error) {
	rows, err := q.QueryContext(ctx, selectExpenses, billID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	expenses := make([]models.Expense, 0)
	for rows.Next() {
		var (
			e            models.Expense
			participants []byte
		)
		if err = rows.Scan(&e.ID, &e.BillID, &e.Name, &e.Amount, &e.ServiceFeePercent, &e.IsItemized,
			&e.PaidBy, &participants, &e.ModifiedVersion); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		if e.Participants, err = decodeParticipants(participants); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return expenses, nil
}

func loadItems(ctx context.Context, q querier, billID string) ([]models.ExpenseItem, error) {
	rows, err := q.QueryContext(ctx, selectItems, billID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	items := make([]models.ExpenseItem, 0)
	for rows.Next() {
		var (
			it           models.ExpenseItem
			participants []byte
		)
		if err = rows.Scan(&it.ID, &it.BillID, &it.ExpenseID, &it.Name, &it.Amount,
			&it.PaidBy, &participants, &it.ModifiedVersion); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		if it.Participants, err = decodeParticipants(participants); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return items, nil
}

func loadSettlements(ctx context.Context, q querier, billID string) ([]models.SettledTransfer, error) {
	rows, err := q.QueryContext(ctx, selectSettlements, billID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	settlements := make([]models.SettledTransfer, 0)
	for rows.Next() {
		var s models.SettledTransfer
		if err = rows.Scan(&s.ID, &s.BillID, &s.FromMember, &s.ToMember, &s.Amount,
			&s.SettledAt, &s.ModifiedVersion); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		settlements = append(settlements, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return settlements, nil
}
