// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// amounts travel as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// Bill is the aggregate root of a shared ledger as stored on the server.
//
// Version is the optimistic-concurrency token of the whole aggregate: it starts
// at 0 and grows by exactly one per accepted sync. Child collections reference
// each other only by ID.
type Bill struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	ShareCode string  `json:"shareCode"`
	Version   int64   `json:"version"`
	OwnerID   *string `json:"ownerId,omitempty"`

	// NameVersion is the bill version that last changed Name.
	NameVersion int64 `json:"-"`

	Members     []Member          `json:"members"`
	Expenses    []Expense         `json:"expenses"`
	Items       []ExpenseItem     `json:"items"`
	Settlements []SettledTransfer `json:"settlements"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Member is a participant of exactly one Bill.
type Member struct {
	ID           string     `json:"id"`
	BillID       string     `json:"billId"`
	Name         string     `json:"name"`
	OriginalName *string    `json:"originalName,omitempty"`
	DisplayOrder int        `json:"displayOrder"`
	UserID       *string    `json:"userId,omitempty"`
	ClaimedAt    *time.Time `json:"claimedAt,omitempty"`

	// ModifiedVersion is the bill version of the last write touching the row.
	ModifiedVersion int64 `json:"-"`
}

// Expense is a cost entry of a Bill. When IsItemized is set, allocation is
// driven by the expense Items and Participants is informational only.
type Expense struct {
	ID                string          `json:"id"`
	BillID            string          `json:"billId"`
	Name              string          `json:"name"`
	Amount            decimal.Decimal `json:"amount"`
	ServiceFeePercent decimal.Decimal `json:"serviceFeePercent"`
	IsItemized        bool            `json:"isItemized"`
	PaidBy            *string         `json:"paidBy,omitempty"`
	Participants      []string        `json:"participants"`

	ModifiedVersion int64 `json:"-"`
}

// ExpenseItem is a line item of an itemized Expense.
type ExpenseItem struct {
	ID           string          `json:"id"`
	BillID       string          `json:"billId"`
	ExpenseID    string          `json:"expenseId"`
	Name         string          `json:"name"`
	Amount       decimal.Decimal `json:"amount"`
	PaidBy       *string         `json:"paidBy,omitempty"`
	Participants []string        `json:"participants"`

	ModifiedVersion int64 `json:"-"`
}

// SettledTransfer records that a debt between two members was marked paid.
// Amount is frozen at settlement time.
type SettledTransfer struct {
	ID         string          `json:"id"`
	BillID     string          `json:"billId"`
	FromMember string          `json:"fromMember"`
	ToMember   string          `json:"toMember"`
	Amount     decimal.Decimal `json:"amount"`
	SettledAt  time.Time       `json:"settledAt"`

	ModifiedVersion int64 `json:"-"`
}

// EntityType names a collection of the bill aggregate in conflict reports
// and ID mappings.
type EntityType string

const (
	EntityBill       EntityType = "bill"
	EntityMember     EntityType = "member"
	EntityExpense    EntityType = "expense"
	EntityItem       EntityType = "item"
	EntitySettlement EntityType = "settlement"
)

// Field names shared by the delta protocol, the pending-change tracker and
// conflict reports.
const (
	FieldAll               = "*"
	FieldName              = "name"
	FieldOriginalName      = "originalName"
	FieldDisplayOrder      = "displayOrder"
	FieldUserID            = "userId"
	FieldClaimedAt         = "claimedAt"
	FieldAmount            = "amount"
	FieldServiceFeePercent = "serviceFeePercent"
	FieldIsItemized        = "isItemized"
	FieldPaidBy            = "paidBy"
	FieldParticipants      = "participants"
	FieldVersion           = "version"
)

// Clone returns a deep copy of b.
func (b Bill) Clone() Bill {
	b.OwnerID = clonePtr(b.OwnerID)
	b.Members = slices.Clone(b.Members)
	for i := range b.Members {
		b.Members[i].OriginalName = clonePtr(b.Members[i].OriginalName)
		b.Members[i].UserID = clonePtr(b.Members[i].UserID)
		b.Members[i].ClaimedAt = clonePtr(b.Members[i].ClaimedAt)
	}
	b.Expenses = slices.Clone(b.Expenses)
	for i := range b.Expenses {
		b.Expenses[i].PaidBy = clonePtr(b.Expenses[i].PaidBy)
		b.Expenses[i].Participants = slices.Clone(b.Expenses[i].Participants)
	}
	b.Items = slices.Clone(b.Items)
	for i := range b.Items {
		b.Items[i].PaidBy = clonePtr(b.Items[i].PaidBy)
		b.Items[i].Participants = slices.Clone(b.Items[i].Participants)
	}
	b.Settlements = slices.Clone(b.Settlements)
	return b
}

// Member returns the member with the given id.
func (b Bill) Member(id string) (Member, bool) {
	i := slices.IndexFunc(b.Members, func(m Member) bool { return m.ID == id })
	if i < 0 {
		return Member{}, false
	}
	return b.Members[i], true
}

// Expense returns the expense with the given id.
func (b Bill) Expense(id string) (Expense, bool) {
	i := slices.IndexFunc(b.Expenses, func(e Expense) bool { return e.ID == id })
	if i < 0 {
		return Expense{}, false
	}
	return b.Expenses[i], true
}

// Item returns the expense item with the given id.
func (b Bill) Item(id string) (ExpenseItem, bool) {
	i := slices.IndexFunc(b.Items, func(it ExpenseItem) bool { return it.ID == id })
	if i < 0 {
		return ExpenseItem{}, false
	}
	return b.Items[i], true
}

// Settlement returns the settled transfer with the given id.
func (b Bill) Settlement(id string) (SettledTransfer, bool) {
	i := slices.IndexFunc(b.Settlements, func(s SettledTransfer) bool { return s.ID == id })
	if i < 0 {
		return SettledTransfer{}, false
	}
	return b.Settlements[i], true
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
