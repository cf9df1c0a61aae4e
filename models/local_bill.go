// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// SyncStatus is the client-side sync state of a bill.
type SyncStatus string

const (
	// SyncStatusLocal marks a bill that was never synced.
	SyncStatusLocal SyncStatus = "local"
	// SyncStatusModified marks a synced bill with unsent local edits.
	SyncStatusModified SyncStatus = "modified"
	// SyncStatusSyncing marks a bill with a request in flight.
	SyncStatusSyncing SyncStatus = "syncing"
	// SyncStatusSynced marks a bill equal to the last known server state.
	SyncStatusSynced SyncStatus = "synced"
	// SyncStatusConflict marks a bill whose server answer is being adopted.
	SyncStatusConflict SyncStatus = "conflict"
	// SyncStatusError marks a bill whose last sync failed for good. Only an
	// explicit retry leaves this state.
	SyncStatusError SyncStatus = "error"
)

// SyncMode is the kind of request used for a sync round.
type SyncMode string

const (
	SyncModeFull  SyncMode = "full"
	SyncModeDelta SyncMode = "delta"
	SyncModeNone  SyncMode = "none"
)

// SyncOutcome summarises how a sync call ended.
type SyncOutcome string

const (
	// SyncOutcomeSynced means every change was accepted.
	SyncOutcomeSynced SyncOutcome = "synced"
	// SyncOutcomeMerged means the server answered with an authoritative
	// state that replaced the local one.
	SyncOutcomeMerged SyncOutcome = "merged"
	// SyncOutcomeSkipped means there was nothing to send.
	SyncOutcomeSkipped SyncOutcome = "skipped"
)

// SyncResult is returned by the client sync service.
type SyncResult struct {
	BillLocalID string      `json:"billLocalId"`
	RemoteID    string      `json:"remoteId"`
	Mode        SyncMode    `json:"mode"`
	Outcome     SyncOutcome `json:"outcome"`
	Version     int64       `json:"version"`
	Conflicts   []Conflict  `json:"conflicts,omitempty"`
	Rounds      int         `json:"rounds"`
}

// LocalMember is the client copy of a member. References between local
// entities always use local IDs.
type LocalMember struct {
	LocalID      string     `json:"localId"`
	RemoteID     string     `json:"remoteId,omitempty"`
	Name         string     `json:"name"`
	OriginalName *string    `json:"originalName,omitempty"`
	DisplayOrder int        `json:"displayOrder"`
	UserID       *string    `json:"userId,omitempty"`
	ClaimedAt    *time.Time `json:"claimedAt,omitempty"`
	Seq          int64      `json:"seq"`
}

type LocalExpense struct {
	LocalID           string          `json:"localId"`
	RemoteID          string          `json:"remoteId,omitempty"`
	Name              string          `json:"name"`
	Amount            decimal.Decimal `json:"amount"`
	ServiceFeePercent decimal.Decimal `json:"serviceFeePercent"`
	IsItemized        bool            `json:"isItemized"`
	PaidBy            string          `json:"paidBy,omitempty"`
	Participants      []string        `json:"participants"`
	Seq               int64           `json:"seq"`
}

type LocalItem struct {
	LocalID      string          `json:"localId"`
	RemoteID     string          `json:"remoteId,omitempty"`
	ExpenseID    string          `json:"expenseId"`
	Name         string          `json:"name"`
	Amount       decimal.Decimal `json:"amount"`
	PaidBy       string          `json:"paidBy,omitempty"`
	Participants []string        `json:"participants"`
	Seq          int64           `json:"seq"`
}

type LocalSettlement struct {
	LocalID    string          `json:"localId"`
	RemoteID   string          `json:"remoteId,omitempty"`
	FromMember string          `json:"fromMember"`
	ToMember   string          `json:"toMember"`
	Amount     decimal.Decimal `json:"amount"`
	SettledAt  time.Time       `json:"settledAt"`
	Seq        int64           `json:"seq"`
}

// LedgerState is an arena of bill entities keyed by local ID.
type LedgerState struct {
	Name        string                     `json:"name"`
	Members     map[string]LocalMember     `json:"members"`
	Expenses    map[string]LocalExpense    `json:"expenses"`
	Items       map[string]LocalItem       `json:"items"`
	Settlements map[string]LocalSettlement `json:"settlements"`
	NextSeq     int64                      `json:"nextSeq"`
}

// NewLedgerState returns an empty state with allocated collections.
func NewLedgerState(name string) LedgerState {
	return LedgerState{
		Name:        name,
		Members:     make(map[string]LocalMember),
		Expenses:    make(map[string]LocalExpense),
		Items:       make(map[string]LocalItem),
		Settlements: make(map[string]LocalSettlement),
	}
}

// Clone returns a deep copy of s.
func (s LedgerState) Clone() LedgerState {
	out := LedgerState{
		Name:        s.Name,
		NextSeq:     s.NextSeq,
		Members:     make(map[string]LocalMember, len(s.Members)),
		Expenses:    make(map[string]LocalExpense, len(s.Expenses)),
		Items:       make(map[string]LocalItem, len(s.Items)),
		Settlements: maps.Clone(s.Settlements),
	}
	if out.Settlements == nil {
		out.Settlements = make(map[string]LocalSettlement)
	}

	for id, m := range s.Members {
		out.Members[id] = m.clone()
	}
	for id, e := range s.Expenses {
		e.Participants = slices.Clone(e.Participants)
		out.Expenses[id] = e
	}
	for id, it := range s.Items {
		it.Participants = slices.Clone(it.Participants)
		out.Items[id] = it
	}

	return out
}

func (m LocalMember) clone() LocalMember {
	if m.OriginalName != nil {
		v := *m.OriginalName
		m.OriginalName = &v
	}
	if m.UserID != nil {
		v := *m.UserID
		m.UserID = &v
	}
	if m.ClaimedAt != nil {
		v := *m.ClaimedAt
		m.ClaimedAt = &v
	}
	return m
}

// EntityChanges holds the pending buckets of one collection.
//
// Added is keyed by local ID. Updated and Deleted are keyed by the remote ID
// of the entity or, while the server has not assigned one yet, its local ID.
type EntityChanges struct {
	Added   map[string]struct{}            `json:"added"`
	Updated map[string]map[string]struct{} `json:"updated"`
	Deleted map[string]struct{}            `json:"deleted"`
}

// NewEntityChanges returns empty, allocated buckets.
func NewEntityChanges() EntityChanges {
	return EntityChanges{
		Added:   make(map[string]struct{}),
		Updated: make(map[string]map[string]struct{}),
		Deleted: make(map[string]struct{}),
	}
}

// IsEmpty reports whether no bucket holds anything.
func (c EntityChanges) IsEmpty() bool {
	return len(c.Added) == 0 && len(c.Updated) == 0 && len(c.Deleted) == 0
}

// Clone returns a deep copy of c.
func (c EntityChanges) Clone() EntityChanges {
	out := EntityChanges{
		Added:   maps.Clone(c.Added),
		Updated: make(map[string]map[string]struct{}, len(c.Updated)),
		Deleted: maps.Clone(c.Deleted),
	}
	if out.Added == nil {
		out.Added = make(map[string]struct{})
	}
	if out.Deleted == nil {
		out.Deleted = make(map[string]struct{})
	}
	for key, fields := range c.Updated {
		out.Updated[key] = maps.Clone(fields)
	}
	return out
}

// PendingChanges is the set of local edits not yet sent to the server.
type PendingChanges struct {
	BillName    bool          `json:"billName"`
	Members     EntityChanges `json:"members"`
	Expenses    EntityChanges `json:"expenses"`
	Items       EntityChanges `json:"items"`
	Settlements EntityChanges `json:"settlements"`
}

// NewPendingChanges returns an empty change set.
func NewPendingChanges() PendingChanges {
	return PendingChanges{
		Members:     NewEntityChanges(),
		Expenses:    NewEntityChanges(),
		Items:       NewEntityChanges(),
		Settlements: NewEntityChanges(),
	}
}

// IsEmpty reports whether nothing is pending.
func (p PendingChanges) IsEmpty() bool {
	return !p.BillName && p.Members.IsEmpty() && p.Expenses.IsEmpty() &&
		p.Items.IsEmpty() && p.Settlements.IsEmpty()
}

// Clone returns a deep copy of p.
func (p PendingChanges) Clone() PendingChanges {
	return PendingChanges{
		BillName:    p.BillName,
		Members:     p.Members.Clone(),
		Expenses:    p.Expenses.Clone(),
		Items:       p.Items.Clone(),
		Settlements: p.Settlements.Clone(),
	}
}

// For returns a pointer to the buckets of the given collection.
func (p *PendingChanges) For(entity EntityType) *EntityChanges {
	switch entity {
	case EntityMember:
		return &p.Members
	case EntityExpense:
		return &p.Expenses
	case EntityItem:
		return &p.Items
	case EntitySettlement:
		return &p.Settlements
	default:
		return nil
	}
}

// InFlightSync is a request that was handed to the transport and has not
// been resolved yet. It is persisted so that an interrupted sync resumes with
// the exact same request.
type InFlightSync struct {
	Mode    SyncMode        `json:"mode"`
	Changes PendingChanges  `json:"changes"`
	Sent    LedgerState     `json:"sent"`
	Request json.RawMessage `json:"request"`
}

// Clone returns a deep copy of f.
func (f *InFlightSync) Clone() *InFlightSync {
	if f == nil {
		return nil
	}
	return &InFlightSync{
		Mode:    f.Mode,
		Changes: f.Changes.Clone(),
		Sent:    f.Sent.Clone(),
		Request: slices.Clone(f.Request),
	}
}

// LocalBill is the persisted client shadow of one bill.
type LocalBill struct {
	LocalID    string     `json:"localId"`
	RemoteID   string     `json:"remoteId,omitempty"`
	ShareCode  string     `json:"shareCode,omitempty"`
	Version    int64      `json:"version"`
	SyncStatus SyncStatus `json:"syncStatus"`
	SyncError  string     `json:"syncError,omitempty"`

	// State is the current local view.
	State LedgerState `json:"state"`
	// Snapshot is the state as of the last successful sync.
	Snapshot LedgerState `json:"snapshot"`
	// Pending collects edits made after the in-flight request was built.
	Pending  PendingChanges `json:"pending"`
	InFlight *InFlightSync  `json:"inFlight,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of b.
func (b LocalBill) Clone() LocalBill {
	b.State = b.State.Clone()
	b.Snapshot = b.Snapshot.Clone()
	b.Pending = b.Pending.Clone()
	b.InFlight = b.InFlight.Clone()
	return b
}

// HasUnsent reports whether the bill has changes the server has not
// acknowledged.
func (b LocalBill) HasUnsent() bool {
	return b.RemoteID == "" || b.InFlight != nil || !b.Pending.IsEmpty()
}
