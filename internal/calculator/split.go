// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package calculator

import "github.com/shopspring/decimal"

var (
	cent    = decimal.New(1, -2)
	hundred = decimal.NewFromInt(100)
)

// withFee returns amount increased by feePercent, rounded to cents.
func withFee(amount, feePercent decimal.Decimal) decimal.Decimal {
	return amount.Add(amount.Mul(feePercent).Div(hundred)).Round(2)
}

// splitEven divides total into n cent-exact shares. The leftover cents go to
// the first shares, so the shares always add up to total.
func splitEven(total decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}

	total = total.Round(2)
	count := decimal.NewFromInt(int64(n))
	base := total.Div(count).Truncate(2)
	leftover := total.Sub(base.Mul(count)).Div(cent).IntPart()

	shares := make([]decimal.Decimal, n)
	for i := range shares {
		shares[i] = base
		if int64(i) < leftover {
			shares[i] = shares[i].Add(cent)
		}
	}
	return shares
}
