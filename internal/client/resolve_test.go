// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-bill-keeper/models"
)

func testState() models.LedgerState {
	s := models.NewLedgerState("Trip")
	s.Members["0191-alice"] = models.LocalMember{LocalID: "0191-alice", Name: "Alice", Seq: 1}
	s.Members["0191-bob"] = models.LocalMember{LocalID: "0191-bob", Name: "Bob", Seq: 2}
	s.Members["0192-bobby"] = models.LocalMember{LocalID: "0192-bobby", Name: "bob", Seq: 3}
	s.Expenses["0193-fuel"] = models.LocalExpense{LocalID: "0193-fuel", Name: "Fuel", Seq: 4}
	return s
}

func TestPickMember(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr error
	}{
		{name: "exact id", ref: "0191-bob", want: "0191-bob"},
		{name: "name ignoring case", ref: "ALICE", want: "0191-alice"},
		{name: "id prefix", ref: "0192", want: "0192-bobby"},
		{name: "two members named alike", ref: "Bob", wantErr: errAmbiguous},
		{name: "prefix of several ids", ref: "0191", wantErr: errAmbiguous},
		{name: "unknown", ref: "Carol", wantErr: errNoMatch},
		{name: "empty", ref: "  ", wantErr: errNoMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pickMember(testState(), tt.ref)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPickMembers(t *testing.T) {
	ids, err := pickMembers(testState(), []string{"Alice", "0192"})
	require.NoError(t, err)
	assert.Equal(t, []string{"0191-alice", "0192-bobby"}, ids)

	_, err = pickMembers(testState(), []string{"Alice", "Zed"})
	assert.ErrorIs(t, err, errNoMatch)
}

func TestPickBill(t *testing.T) {
	bills := []models.LocalBill{
		{LocalID: "b-1", State: models.NewLedgerState("Dinner")},
		{LocalID: "b-2", State: models.NewLedgerState("Trip")},
	}

	got, err := pickBill(bills, "trip")
	require.NoError(t, err)
	assert.Equal(t, "b-2", got.LocalID)

	_, err = pickBill(bills, "b-")
	assert.ErrorIs(t, err, errAmbiguous)
}

func TestPickExpense(t *testing.T) {
	got, err := pickExpense(testState(), "fuel")
	require.NoError(t, err)
	assert.Equal(t, "0193-fuel", got)
}

func TestAllMembers(t *testing.T) {
	assert.Equal(t, []string{"0191-alice", "0191-bob", "0192-bobby"}, allMembers(testState()))
	assert.Empty(t, allMembers(models.NewLedgerState("Empty")))
}

func TestParseMoney(t *testing.T) {
	d, err := parseMoney(" 12.50 ")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.5").Equal(d))

	_, err = parseMoney("twelve")
	assert.ErrorIs(t, err, errInvalidMoney)
}
