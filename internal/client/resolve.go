// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MKhiriev/go-bill-keeper/internal/ledger"
	"github.com/MKhiriev/go-bill-keeper/models"
)

var (
	errNoMatch      = errors.New("no match")
	errAmbiguous    = errors.New("ambiguous reference")
	errInvalidMoney = errors.New("invalid amount")
)

// pick finds the single entry whose id equals ref, or failing that whose
// name equals ref case-insensitively, or whose id starts with ref.
func pick[T any](entries []T, ref, kind string, id, name func(T) string) (T, error) {
	var zero T
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return zero, fmt.Errorf("%w: empty %s reference", errNoMatch, kind)
	}

	for _, e := range entries {
		if id(e) == ref {
			return e, nil
		}
	}

	for _, match := range []func(T) bool{
		func(e T) bool { return strings.EqualFold(name(e), ref) },
		func(e T) bool { return strings.HasPrefix(id(e), ref) },
	} {
		var found []T
		for _, e := range entries {
			if match(e) {
				found = append(found, e)
			}
		}
		switch len(found) {
		case 0:
			continue
		case 1:
			return found[0], nil
		default:
			return zero, fmt.Errorf("%w: %d %ss match %q", errAmbiguous, len(found), kind, ref)
		}
	}

	return zero, fmt.Errorf("%w: no %s %q", errNoMatch, kind, ref)
}

func pickBill(bills []models.LocalBill, ref string) (models.LocalBill, error) {
	return pick(bills, ref, "bill",
		func(b models.LocalBill) string { return b.LocalID },
		func(b models.LocalBill) string { return b.State.Name })
}

func pickMember(s models.LedgerState, ref string) (string, error) {
	m, err := pick(ledger.SortedMembers(s), ref, "member",
		func(m models.LocalMember) string { return m.LocalID },
		func(m models.LocalMember) string { return m.Name })
	return m.LocalID, err
}

func pickMembers(s models.LedgerState, refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, err := pickMember(s, ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func pickExpense(s models.LedgerState, ref string) (string, error) {
	e, err := pick(ledger.SortedExpenses(s), ref, "expense",
		func(e models.LocalExpense) string { return e.LocalID },
		func(e models.LocalExpense) string { return e.Name })
	return e.LocalID, err
}

func pickItem(s models.LedgerState, ref string) (string, error) {
	it, err := pick(ledger.SortedItems(s), ref, "item",
		func(it models.LocalItem) string { return it.LocalID },
		func(it models.LocalItem) string { return it.Name })
	return it.LocalID, err
}

func pickSettlement(s models.LedgerState, ref string) (string, error) {
	st, err := pick(ledger.SortedSettlements(s), ref, "settlement",
		func(st models.LocalSettlement) string { return st.LocalID },
		func(models.LocalSettlement) string { return "" })
	return st.LocalID, err
}

// allMembers is the default split of a new expense.
func allMembers(s models.LedgerState) []string {
	members := ledger.SortedMembers(s)
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.LocalID)
	}
	return ids
}

func parseMoney(v string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w %q", errInvalidMoney, v)
	}
	return d, nil
}
