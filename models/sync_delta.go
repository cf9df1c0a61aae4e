// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// BillUpdate carries bill metadata changes of a delta.
type BillUpdate struct {
	Name *string `json:"name,omitempty"`
}

// MemberUpdate lists changed member fields; nil means unchanged.
type MemberUpdate struct {
	RemoteID     string     `json:"remoteId"`
	Name         *string    `json:"name,omitempty"`
	OriginalName *string    `json:"originalName,omitempty"`
	DisplayOrder *int       `json:"displayOrder,omitempty"`
	UserID       *string    `json:"userId,omitempty"`
	ClaimedAt    *time.Time `json:"claimedAt,omitempty"`
}

// ExpenseUpdate lists changed expense fields; nil means unchanged.
// An empty PaidBy clears the payer.
type ExpenseUpdate struct {
	RemoteID          string           `json:"remoteId"`
	Name              *string          `json:"name,omitempty"`
	Amount            *decimal.Decimal `json:"amount,omitempty"`
	ServiceFeePercent *decimal.Decimal `json:"serviceFeePercent,omitempty"`
	IsItemized        *bool            `json:"isItemized,omitempty"`
	PaidBy            *string          `json:"paidBy,omitempty"`
	Participants      *[]string        `json:"participants,omitempty"`
}

// ItemUpdate lists changed item fields; nil means unchanged.
type ItemUpdate struct {
	RemoteID     string           `json:"remoteId"`
	Name         *string          `json:"name,omitempty"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	PaidBy       *string          `json:"paidBy,omitempty"`
	Participants *[]string        `json:"participants,omitempty"`
}

type MemberChanges struct {
	Add    []MemberPayload `json:"add,omitempty"`
	Update []MemberUpdate  `json:"update,omitempty"`
	Delete []string        `json:"delete,omitempty"`
}

type ExpenseChanges struct {
	Add    []ExpensePayload `json:"add,omitempty"`
	Update []ExpenseUpdate  `json:"update,omitempty"`
	Delete []string         `json:"delete,omitempty"`
}

type ItemChanges struct {
	Add    []ItemPayload `json:"add,omitempty"`
	Update []ItemUpdate  `json:"update,omitempty"`
	Delete []string      `json:"delete,omitempty"`
}

// SettlementChanges has no update list: settlements are immutable.
type SettlementChanges struct {
	Add    []SettlementPayload `json:"add,omitempty"`
	Delete []string            `json:"delete,omitempty"`
}

// DeltaSyncRequest carries the changes of one bill since BaseVersion.
type DeltaSyncRequest struct {
	BaseVersion int64             `json:"baseVersion"`
	Bill        *BillUpdate       `json:"bill,omitempty"`
	Members     MemberChanges     `json:"members"`
	Expenses    ExpenseChanges    `json:"expenses"`
	Items       ItemChanges       `json:"items"`
	Settlements SettlementChanges `json:"settlements"`
}

// IsEmpty reports whether the request carries no change at all.
func (r DeltaSyncRequest) IsEmpty() bool {
	if r.Bill != nil && r.Bill.Name != nil {
		return false
	}

	return len(r.Members.Add)+len(r.Members.Update)+len(r.Members.Delete)+
		len(r.Expenses.Add)+len(r.Expenses.Update)+len(r.Expenses.Delete)+
		len(r.Items.Add)+len(r.Items.Update)+len(r.Items.Delete)+
		len(r.Settlements.Add)+len(r.Settlements.Delete) == 0
}

// DeltaSyncResponse answers a delta sync. Conflicts and Bill are present only
// when at least one change was not applied as sent.
type DeltaSyncResponse struct {
	Success    bool       `json:"success"`
	Version    int64      `json:"version"`
	IDMappings IDMappings `json:"idMappings"`
	Conflicts  []Conflict `json:"conflicts,omitempty"`
	Bill       *Bill      `json:"bill,omitempty"`
}

// Resolution tells how the server settled a conflicting change.
type Resolution string

const (
	// ResolutionServerWins means the incoming change was dropped and the
	// server value kept.
	ResolutionServerWins Resolution = "server_wins"
	// ResolutionManualRequired means neither side was applied automatically
	// and the user has to decide.
	ResolutionManualRequired Resolution = "manual_required"
)

// Conflict describes one change the server could not apply as sent.
type Conflict struct {
	EntityType  EntityType      `json:"entityType"`
	EntityID    string          `json:"entityId"`
	Field       string          `json:"field"`
	LocalValue  json.RawMessage `json:"localValue"`
	ServerValue json.RawMessage `json:"serverValue"`
	Resolution  Resolution      `json:"resolution"`
}

// SyncReceipt is the recorded answer to an accepted sync request, keyed by
// the request fingerprint. It makes resubmission of an identical request a
// replay instead of a second write.
type SyncReceipt struct {
	Fingerprint string          `json:"fingerprint"`
	BillID      string          `json:"billId"`
	Response    json.RawMessage `json:"response"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// BillUpdatedEvent is published to peers after an accepted write.
type BillUpdatedEvent struct {
	BillID  string `json:"billId"`
	Version int64  `json:"version"`
	ActorID string `json:"actorId"`
}
