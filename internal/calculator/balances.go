// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package calculator derives who owes whom from the contents of a bill.
package calculator

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MKhiriev/go-bill-keeper/models"
)

type ledger struct {
	paid map[string]decimal.Decimal
	owed map[string]decimal.Decimal
}

func (l *ledger) pay(memberID string, amount decimal.Decimal) {
	l.paid[memberID] = l.paid[memberID].Add(amount)
}

func (l *ledger) owe(memberID string, amount decimal.Decimal) {
	l.owed[memberID] = l.owed[memberID].Add(amount)
}

// share splits amount between participants and charges payer for it.
func (l *ledger) share(payer string, amount decimal.Decimal, participants []string) {
	if payer == "" || len(participants) == 0 || amount.IsZero() {
		return
	}
	for i, part := range splitEven(amount, len(participants)) {
		l.owe(participants[i], part)
	}
	l.pay(payer, amount.Round(2))
}

// Calculate returns the net position of every member and a short list of
// transfers that settles all debts.
//
// An expense is charged to its payer and split evenly between its
// participants, service fee included. An itemized expense is split item by
// item; the part of its amount no item covers is split between the expense
// participants. Expenses without a payer are ignored. Recorded settlements
// count as payments from one member to another.
func Calculate(bill models.Bill) models.Balances {
	members := make(map[string]models.Member, len(bill.Members))
	for _, m := range bill.Members {
		members[m.ID] = m
	}
	known := func(ids []string) []string {
		return slices.DeleteFunc(slices.Clone(ids), func(id string) bool {
			_, ok := members[id]
			return !ok
		})
	}
	payer := func(primary, fallback *string) string {
		for _, p := range []*string{primary, fallback} {
			if p == nil {
				continue
			}
			if _, ok := members[*p]; ok {
				return *p
			}
		}
		return ""
	}

	itemsOf := make(map[string][]models.ExpenseItem)
	for _, it := range bill.Items {
		itemsOf[it.ExpenseID] = append(itemsOf[it.ExpenseID], it)
	}

	l := &ledger{
		paid: make(map[string]decimal.Decimal, len(members)),
		owed: make(map[string]decimal.Decimal, len(members)),
	}

	for _, e := range bill.Expenses {
		participants := known(e.Participants)
		expensePayer := payer(e.PaidBy, nil)

		if !e.IsItemized {
			l.share(expensePayer, withFee(e.Amount, e.ServiceFeePercent), participants)
			continue
		}

		covered := decimal.Zero
		for _, it := range itemsOf[e.ID] {
			covered = covered.Add(it.Amount)
			itemParticipants := known(it.Participants)
			if len(itemParticipants) == 0 {
				itemParticipants = participants
			}
			l.share(payer(it.PaidBy, e.PaidBy), withFee(it.Amount, e.ServiceFeePercent), itemParticipants)
		}
		if rest := e.Amount.Sub(covered); rest.IsPositive() {
			l.share(expensePayer, withFee(rest, e.ServiceFeePercent), participants)
		}
	}

	for _, s := range bill.Settlements {
		_, fromOK := members[s.FromMember]
		_, toOK := members[s.ToMember]
		if !fromOK || !toOK {
			continue
		}
		l.pay(s.FromMember, s.Amount)
		l.owe(s.ToMember, s.Amount)
	}

	ordered := slices.Clone(bill.Members)
	slices.SortStableFunc(ordered, func(a, b models.Member) int {
		return cmp.Or(cmp.Compare(a.DisplayOrder, b.DisplayOrder), strings.Compare(a.ID, b.ID))
	})

	out := models.Balances{
		BillID:    bill.ID,
		Version:   bill.Version,
		Members:   make([]models.MemberBalance, 0, len(ordered)),
		Transfers: []models.Transfer{},
	}
	for _, m := range ordered {
		paid, owed := l.paid[m.ID], l.owed[m.ID]
		out.Members = append(out.Members, models.MemberBalance{
			MemberID: m.ID,
			Name:     m.Name,
			Paid:     paid,
			Owed:     owed,
			Net:      paid.Sub(owed),
		})
	}
	out.Transfers = Transfers(out.Members)

	return out
}

// Transfers matches debtors with creditors greedily, largest amounts first.
// The plan has at most one transfer fewer than there are members with a
// non-zero balance.
func Transfers(balances []models.MemberBalance) []models.Transfer {
	type position struct {
		id     string
		amount decimal.Decimal
	}

	var debtors, creditors []position
	for _, b := range balances {
		switch {
		case b.Net.IsNegative():
			debtors = append(debtors, position{id: b.MemberID, amount: b.Net.Neg()})
		case b.Net.IsPositive():
			creditors = append(creditors, position{id: b.MemberID, amount: b.Net})
		}
	}
	byAmount := func(a, b position) int {
		return cmp.Or(b.amount.Cmp(a.amount), strings.Compare(a.id, b.id))
	}
	slices.SortFunc(debtors, byAmount)
	slices.SortFunc(creditors, byAmount)

	transfers := []models.Transfer{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)
		transfers = append(transfers, models.Transfer{
			FromMember: debtors[i].id,
			ToMember:   creditors[j].id,
			Amount:     amount,
		})

		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)
		if debtors[i].amount.IsZero() {
			i++
		}
		if creditors[j].amount.IsZero() {
			j++
		}
	}
	return transfers
}
