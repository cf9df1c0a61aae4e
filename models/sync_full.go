// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MemberPayload is the wire form of a member submitted for creation or, in a
// full sync, for wholesale replacement. LocalID is the client-chosen
// temporary identity; RemoteID is set once the member is known to the server.
type MemberPayload struct {
	LocalID      string     `json:"localId"`
	RemoteID     string     `json:"remoteId,omitempty"`
	Name         string     `json:"name"`
	OriginalName *string    `json:"originalName,omitempty"`
	DisplayOrder int        `json:"displayOrder"`
	UserID       *string    `json:"userId,omitempty"`
	ClaimedAt    *time.Time `json:"claimedAt,omitempty"`
}

// ExpensePayload is the wire form of an expense. PaidBy and Participants hold
// member references: a remote ID or the local ID of a member created earlier
// in the same request.
type ExpensePayload struct {
	LocalID           string          `json:"localId"`
	RemoteID          string          `json:"remoteId,omitempty"`
	Name              string          `json:"name"`
	Amount            decimal.Decimal `json:"amount"`
	ServiceFeePercent decimal.Decimal `json:"serviceFeePercent"`
	IsItemized        bool            `json:"isItemized"`
	PaidBy            *string         `json:"paidBy,omitempty"`
	Participants      []string        `json:"participants"`
}

// ItemPayload is the wire form of an expense item. ExpenseRef follows the
// same reference rules as member references.
type ItemPayload struct {
	LocalID      string          `json:"localId"`
	RemoteID     string          `json:"remoteId,omitempty"`
	ExpenseRef   string          `json:"expenseRef"`
	Name         string          `json:"name"`
	Amount       decimal.Decimal `json:"amount"`
	PaidBy       *string         `json:"paidBy,omitempty"`
	Participants []string        `json:"participants"`
}

// SettlementPayload is the wire form of a settled transfer.
type SettlementPayload struct {
	LocalID    string          `json:"localId"`
	RemoteID   string          `json:"remoteId,omitempty"`
	FromMember string          `json:"fromMember"`
	ToMember   string          `json:"toMember"`
	Amount     decimal.Decimal `json:"amount"`
	SettledAt  time.Time       `json:"settledAt"`
}

// FullSyncRequest carries the complete client view of a bill.
//
// Without RemoteID the server creates a new bill. With RemoteID the request
// replaces the server contents provided BaseVersion equals the current
// version.
type FullSyncRequest struct {
	LocalID     string              `json:"localId"`
	RemoteID    string              `json:"remoteId,omitempty"`
	BaseVersion int64               `json:"baseVersion"`
	Name        string              `json:"name"`
	Members     []MemberPayload     `json:"members"`
	Expenses    []ExpensePayload    `json:"expenses"`
	Items       []ItemPayload       `json:"items"`
	Settlements []SettlementPayload `json:"settlements"`
}

// FullSyncResponse answers a full sync. Bill is set only when the version
// check failed; Conflict mirrors that case explicitly.
type FullSyncResponse struct {
	RemoteID   string     `json:"remoteId"`
	ShareCode  string     `json:"shareCode"`
	Version    int64      `json:"version"`
	IDMappings IDMappings `json:"idMappings"`
	Conflict   bool       `json:"conflict"`
	Bill       *Bill      `json:"bill,omitempty"`
}

// IDMappings translates client local IDs to server IDs, per collection.
type IDMappings struct {
	Members     map[string]string `json:"members"`
	Expenses    map[string]string `json:"expenses"`
	Items       map[string]string `json:"items"`
	Settlements map[string]string `json:"settlements"`
}

// NewIDMappings returns mappings with all collections allocated.
func NewIDMappings() IDMappings {
	return IDMappings{
		Members:     make(map[string]string),
		Expenses:    make(map[string]string),
		Items:       make(map[string]string),
		Settlements: make(map[string]string),
	}
}

// Len returns the total number of mappings across collections.
func (m IDMappings) Len() int {
	return len(m.Members) + len(m.Expenses) + len(m.Items) + len(m.Settlements)
}

// For returns the mapping of the given collection.
func (m IDMappings) For(entity EntityType) map[string]string {
	switch entity {
	case EntityMember:
		return m.Members
	case EntityExpense:
		return m.Expenses
	case EntityItem:
		return m.Items
	case EntitySettlement:
		return m.Settlements
	default:
		return nil
	}
}
