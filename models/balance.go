// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "github.com/shopspring/decimal"

// MemberBalance is the net position of a member: positive means the member is
// owed money.
type MemberBalance struct {
	MemberID string          `json:"memberId"`
	Name     string          `json:"name"`
	Paid     decimal.Decimal `json:"paid"`
	Owed     decimal.Decimal `json:"owed"`
	Net      decimal.Decimal `json:"net"`
}

// Transfer is a suggested payment that settles part of the debts.
type Transfer struct {
	FromMember string          `json:"fromMember"`
	ToMember   string          `json:"toMember"`
	Amount     decimal.Decimal `json:"amount"`
}

// Balances is the settlement summary of a bill.
type Balances struct {
	BillID    string          `json:"billId"`
	Version   int64           `json:"version"`
	Members   []MemberBalance `json:"members"`
	Transfers []Transfer      `json:"transfers"`
}
