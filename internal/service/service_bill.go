package service

import (
	"context"

	"github.com/MKhiriev/go-bill-keeper/internal/calculator"
	"github.com/MKhiriev/go-bill-keeper/internal/logger"
	"github.com/MKhiriev/go-bill-keeper/internal/store"
	"github.com/MKhiriev/go-bill-keeper/internal/utils"
	"github.com/MKhiriev/go-bill-keeper/models"
)

type billService struct {
	storage store.BillStorage

	logger *logger.Logger
}

func NewBillService(storage store.BillStorage, logger *logger.Logger) BillService {
	return &billService{
		storage: storage,
		logger:  logger,
	}
}

func (b *billService) GetBill(ctx context.Context, billID string) (models.Bill, error) {
	if !utils.IsUUID(billID) {
		return models.Bill{}, ErrBillNotFound
	}

	bill, err := b.storage.GetBill(ctx, billID)
	if err != nil {
		return models.Bill{}, mapStoreError(err)
	}
	return bill, nil
}

func (b *billService) GetBillByShareCode(ctx context.Context, shareCode string) (models.Bill, error) {
	if len(shareCode) != utils.ShareCodeLength {
		return models.Bill{}, ErrBillNotFound
	}

	bill, err := b.storage.GetBillByShareCode(ctx, shareCode)
	if err != nil {
		return models.Bill{}, mapStoreError(err)
	}
	return bill, nil
}

func (b *billService) GetBalances(ctx context.Context, billID string) (models.Balances, error) {
	bill, err := b.GetBill(ctx, billID)
	if err != nil {
		return models.Balances{}, err
	}
	return calculator.Calculate(bill), nil
}
