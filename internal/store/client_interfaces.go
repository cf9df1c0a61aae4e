// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"

	"github.com/MKhiriev/go-bill-keeper/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_store_mock.go -package=mock

// LocalBillRepository persists client-side bills, including their pending
// and in-flight change sets, so that they survive restarts.
type LocalBillRepository interface {
	SaveBill(ctx context.Context, bill models.LocalBill) error
	GetBill(ctx context.Context, localID string) (models.LocalBill, error)
	ListBills(ctx context.Context) ([]models.LocalBill, error)
	DeleteBill(ctx context.Context, localID string) error
}
