// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-bill-keeper/models"
)

const (
	billColumns = `id, name, share_code, version, name_version, owner_id, created_at, updated_at`

	selectBillByID = `SELECT ` + billColumns + `
		FROM bills
		WHERE id = $1;`

	selectBillByIDForUpdate = `SELECT ` + billColumns + `
		FROM bills
		WHERE id = $1
		FOR UPDATE;`

	selectBillByShareCode = `SELECT ` + billColumns + `
		FROM bills
		WHERE share_code = $1;`

	selectMembers = `SELECT id, bill_id, name, original_name, display_order, user_id, claimed_at, modified_version
		FROM members
		WHERE bill_id = $1
		ORDER BY id;`

	selectExpenses = `SELECT id, bill_id, name, amount, service_fee_percent, is_itemized, paid_by, participants, modified_version
		FROM expenses
		WHERE bill_id = $1
		ORDER BY id;`

	selectItems = `SELECT id, bill_id, expense_id, name, amount, paid_by, participants, modified_version
		FROM expense_items
		WHERE bill_id = $1
		ORDER BY id;`

	selectSettlements = `SELECT id, bill_id, from_member, to_member, amount, settled_at, modified_version
		FROM settlements
		WHERE bill_id = $1
		ORDER BY id;`

	insertBill = `INSERT INTO bills (` + billColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`

	bumpBillVersion = `UPDATE bills
		SET version = $1, updated_at = NOW()
		WHERE id = $2 AND version = $3;`

	updateBillName = `UPDATE bills
		SET name = $1, name_version = $2
		WHERE id = $3;`

	selectReceipt = `SELECT fingerprint, bill_id, response, created_at
		FROM sync_receipts
		WHERE fingerprint = $1;`

	insertReceipt = `INSERT INTO sync_receipts (fingerprint, bill_id, response, created_at)
		VALUES ($1, $2, $3, $4);`

	deleteMember     = `DELETE FROM members WHERE bill_id = $1 AND id = $2;`
	deleteExpense    = `DELETE FROM expenses WHERE bill_id = $1 AND id = $2;`
	deleteItem       = `DELETE FROM expense_items WHERE bill_id = $1 AND id = $2;`
	deleteSettlement = `DELETE FROM settlements WHERE bill_id = $1 AND id = $2;`
)

// unique indexes mapped to domain errors
const (
	shareCodeConstraint  = "bills_share_code_key"
	memberUserConstraint = "members_bill_user_uidx"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func buildInsertMember(m models.Member) (string, []any, error) {
	return psql.Insert("members").
		Columns("id", "bill_id", "name", "original_name", "display_order", "user_id", "claimed_at", "modified_version").
		Values(m.ID, m.BillID, m.Name, m.OriginalName, m.DisplayOrder, m.UserID, m.ClaimedAt, m.ModifiedVersion).
		ToSql()
}

func buildUpdateMember(m models.Member) (string, []any, error) {
	return psql.Update("members").
		Set("name", m.Name).
		Set("original_name", m.OriginalName).
		Set("display_order", m.DisplayOrder).
		Set("user_id", m.UserID).
		Set("claimed_at", m.ClaimedAt).
		Set("modified_version", m.ModifiedVersion).
		Where(sq.Eq{"bill_id": m.BillID}).
		Where(sq.Eq{"id": m.ID}).
		ToSql()
}

func buildInsertExpense(e models.Expense) (string, []any, error) {
	participants, err := encodeParticipants(e.Participants)
	if err != nil {
		return "", nil, err
	}

	return psql.Insert("expenses").
		Columns("id", "bill_id", "name", "amount", "service_fee_percent", "is_itemized", "paid_by", "participants", "modified_version").
		Values(e.ID, e.BillID, e.Name, e.Amount, e.ServiceFeePercent, e.IsItemized, e.PaidBy, participants, e.ModifiedVersion).
		ToSql()
}

func buildUpdateExpense(e models.Expense) (string, []any, error) {
	participants, err := encodeParticipants(e.Participants)
	if err != nil {
		return "", nil, err
	}

	return psql.Update("expenses").
		Set("name", e.Name).
		Set("amount", e.Amount).
		Set("service_fee_percent", e.ServiceFeePercent).
		Set("is_itemized", e.IsItemized).
		Set("paid_by", e.PaidBy).
		Set("participants", participants).
		Set("modified_version", e.ModifiedVersion).
		Where(sq.Eq{"bill_id": e.BillID}).
		Where(sq.Eq{"id": e.ID}).
		ToSql()
}

func buildInsertItem(it models.ExpenseItem) (string, []any, error) {
	participants, err := encodeParticipants(it.Participants)
	if err != nil {
		return "", nil, err
	}

	return psql.Insert("expense_items").
		Columns("id", "bill_id", "expense_id", "name", "amount", "paid_by", "participants", "modified_version").
		Values(it.ID, it.BillID, it.ExpenseID, it.Name, it.Amount, it.PaidBy, participants, it.ModifiedVersion).
		ToSql()
}

func buildUpdateItem(it models.ExpenseItem) (string, []any, error) {
	participants, err := encodeParticipants(it.Participants)
	if err != nil {
		return "", nil, err
	}

	return psql.Update("expense_items").
		Set("expense_id", it.ExpenseID).
		Set("name", it.Name).
		Set("amount", it.Amount).
		Set("paid_by", it.PaidBy).
		Set("participants", participants).
		Set("modified_version", it.ModifiedVersion).
		Where(sq.Eq{"bill_id": it.BillID}).
		Where(sq.Eq{"id": it.ID}).
		ToSql()
}

func buildInsertSettlement(s models.SettledTransfer) (string, []any, error) {
	return psql.Insert("settlements").
		Columns("id", "bill_id", "from_member", "to_member", "amount", "settled_at", "modified_version").
		Values(s.ID, s.BillID, s.FromMember, s.ToMember, s.Amount, s.SettledAt, s.ModifiedVersion).
		ToSql()
}

func encodeParticipants(ids []string) ([]byte, error) {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("%w: participants: %w", ErrBuildingSQLQuery, err)
	}
	return data, nil
}

func decodeParticipants(data []byte) ([]string, error) {
	ids := []string{}
	if len(data) == 0 {
		return ids, nil
	}
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("%w: participants: %w", ErrScanningRows, err)
	}
	return ids, nil
}
