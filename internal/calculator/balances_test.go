// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-bill-keeper/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func threeFriends() models.Bill {
	return models.Bill{
		ID:      "b1",
		Version: 3,
		Members: []models.Member{
			{ID: "c", Name: "Carol", DisplayOrder: 2},
			{ID: "a", Name: "Alice"},
			{ID: "b", Name: "Bob", DisplayOrder: 1},
		},
	}
}

func balanceOf(t *testing.T, b models.Balances, id string) models.MemberBalance {
	t.Helper()
	for _, m := range b.Members {
		if m.MemberID == id {
			return m
		}
	}
	require.Failf(t, "member not found", "member %s", id)
	return models.MemberBalance{}
}

func TestSplitEven(t *testing.T) {
	tests := []struct {
		name  string
		total string
		n     int
		want  []string
	}{
		{name: "exact", total: "9", n: 3, want: []string{"3", "3", "3"}},
		{name: "leftover cent", total: "10", n: 3, want: []string{"3.34", "3.33", "3.33"}},
		{name: "two leftover cents", total: "110", n: 3, want: []string{"36.67", "36.67", "36.66"}},
		{name: "single", total: "7.5", n: 1, want: []string{"7.5"}},
		{name: "sub-cent total rounded", total: "0.015", n: 2, want: []string{"0.01", "0.01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitEven(dec(tt.total), tt.n)
			require.Len(t, got, len(tt.want))
			for i, w := range tt.want {
				assertDec(t, w, got[i])
			}
		})
	}

	assert.Nil(t, splitEven(dec("1"), 0))
}

func TestWithFee(t *testing.T) {
	assertDec(t, "110", withFee(dec("100"), dec("10")))
	assertDec(t, "11.36", withFee(dec("10.33"), dec("10")))
	assertDec(t, "42", withFee(dec("42"), decimal.Zero))
}

func TestCalculate_SimpleExpense(t *testing.T) {
	bill := threeFriends()
	bill.Expenses = []models.Expense{
		{ID: "e1", Amount: dec("100"), PaidBy: ptr("a"), Participants: []string{"a", "b"}},
	}

	got := Calculate(bill)

	assert.Equal(t, "b1", got.BillID)
	assert.Equal(t, int64(3), got.Version)
	require.Len(t, got.Members, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{got.Members[0].MemberID, got.Members[1].MemberID, got.Members[2].MemberID})

	assertDec(t, "50", balanceOf(t, got, "a").Net)
	assertDec(t, "-50", balanceOf(t, got, "b").Net)
	assertDec(t, "0", balanceOf(t, got, "c").Net)

	require.Len(t, got.Transfers, 1)
	assert.Equal(t, "b", got.Transfers[0].FromMember)
	assert.Equal(t, "a", got.Transfers[0].ToMember)
	assertDec(t, "50", got.Transfers[0].Amount)
}

func TestCalculate_ServiceFee(t *testing.T) {
	bill := threeFriends()
	bill.Expenses = []models.Expense{
		{ID: "e1", Amount: dec("100"), ServiceFeePercent: dec("10"), PaidBy: ptr("c"), Participants: []string{"a", "b", "c"}},
	}

	got := Calculate(bill)

	assertDec(t, "110", balanceOf(t, got, "c").Paid)
	assertDec(t, "36.67", balanceOf(t, got, "a").Owed)
	assertDec(t, "36.67", balanceOf(t, got, "b").Owed)
	assertDec(t, "36.66", balanceOf(t, got, "c").Owed)
	assertZeroSum(t, got)
}

func TestCalculate_Itemized(t *testing.T) {
	bill := threeFriends()
	bill.Expenses = []models.Expense{
		{ID: "e1", Amount: dec("300"), IsItemized: true, PaidBy: ptr("b"), Participants: []string{"a", "b"}},
	}
	bill.Items = []models.ExpenseItem{
		{ID: "i1", ExpenseID: "e1", Amount: dec("200"), Participants: []string{"a", "b"}},
		// paid separately by Carol, consumed by Alice alone
		{ID: "i2", ExpenseID: "e1", Amount: dec("60"), PaidBy: ptr("c"), Participants: []string{"a"}},
	}

	got := Calculate(bill)

	// remainder of 40 is shared by the expense participants
	assertDec(t, "240", balanceOf(t, got, "b").Paid)
	assertDec(t, "60", balanceOf(t, got, "c").Paid)
	assertDec(t, "180", balanceOf(t, got, "a").Owed)
	assertDec(t, "120", balanceOf(t, got, "b").Owed)
	assertDec(t, "-180", balanceOf(t, got, "a").Net)
	assertZeroSum(t, got)
}

func TestCalculate_IgnoresIncompleteExpenses(t *testing.T) {
	bill := threeFriends()
	bill.Expenses = []models.Expense{
		{ID: "e1", Amount: dec("100"), Participants: []string{"a", "b"}},
		{ID: "e2", Amount: dec("100"), PaidBy: ptr("a")},
		{ID: "e3", Amount: dec("100"), PaidBy: ptr("ghost"), Participants: []string{"a"}},
		{ID: "e4", Amount: dec("10"), PaidBy: ptr("a"), Participants: []string{"ghost", "b"}},
	}

	got := Calculate(bill)

	assertDec(t, "10", balanceOf(t, got, "a").Paid)
	assertDec(t, "10", balanceOf(t, got, "b").Owed)
	assertZeroSum(t, got)
}

func TestCalculate_SettlementsBalanceOut(t *testing.T) {
	bill := threeFriends()
	bill.Expenses = []models.Expense{
		{ID: "e1", Amount: dec("90"), PaidBy: ptr("a"), Participants: []string{"a", "b", "c"}},
	}
	bill.Settlements = []models.SettledTransfer{
		{ID: "s1", FromMember: "b", ToMember: "a", Amount: dec("30")},
		{ID: "s2", FromMember: "c", ToMember: "a", Amount: dec("30")},
		{ID: "s3", FromMember: "c", ToMember: "ghost", Amount: dec("5")},
	}

	got := Calculate(bill)

	for _, m := range got.Members {
		assertDec(t, "0", m.Net)
	}
	assert.Empty(t, got.Transfers)
	assert.NotNil(t, got.Transfers)
}

func TestTransfers_Greedy(t *testing.T) {
	balances := []models.MemberBalance{
		{MemberID: "a", Net: dec("70")},
		{MemberID: "b", Net: dec("-50")},
		{MemberID: "c", Net: dec("-30")},
		{MemberID: "d", Net: dec("10")},
		{MemberID: "e", Net: decimal.Zero},
	}

	got := Transfers(balances)

	require.Len(t, got, 3)
	assert.Equal(t, "b", got[0].FromMember)
	assert.Equal(t, "a", got[0].ToMember)
	assertDec(t, "50", got[0].Amount)
	assert.Equal(t, "c", got[1].FromMember)
	assert.Equal(t, "a", got[1].ToMember)
	assertDec(t, "20", got[1].Amount)
	assert.Equal(t, "c", got[2].FromMember)
	assert.Equal(t, "d", got[2].ToMember)
	assertDec(t, "10", got[2].Amount)
}

func assertZeroSum(t *testing.T, b models.Balances) {
	t.Helper()
	sum := decimal.Zero
	for _, m := range b.Members {
		sum = sum.Add(m.Net)
	}
	assertDec(t, "0", sum)
}
