package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-bill-keeper/internal/adapter"
	"github.com/MKhiriev/go-bill-keeper/internal/calculator"
	"github.com/MKhiriev/go-bill-keeper/internal/ledger"
	"github.com/MKhiriev/go-bill-keeper/internal/logger"
	"github.com/MKhiriev/go-bill-keeper/models"
)

type clientBillService struct {
	ledger  *ledger.Store
	adapter adapter.ServerAdapter

	logger *logger.Logger
}

func NewClientBillService(ledgerStore *ledger.Store, serverAdapter adapter.ServerAdapter, logger *logger.Logger) ClientBillService {
	return &clientBillService{
		ledger:  ledgerStore,
		adapter: serverAdapter,
		logger:  logger,
	}
}

func (c *clientBillService) Join(ctx context.Context, shareCode string) (models.LocalBill, error) {
	shareCode = strings.ToUpper(strings.TrimSpace(shareCode))

	server, err := c.adapter.GetBillByShareCode(ctx, shareCode)
	if err != nil {
		return models.LocalBill{}, fmt.Errorf("join bill %s: %w", shareCode, mapAdapterError(err))
	}

	if existing, ok := c.ledger.FindByRemoteID(server.ID); ok {
		return existing, nil
	}

	bill, err := c.ledger.ImportBill(ctx, server)
	if err != nil {
		return models.LocalBill{}, err
	}

	c.logger.Info().Str("func", "clientBillService.Join").Str("bill_id", bill.LocalID).
		Str("remote_id", server.ID).Int64("version", server.Version).Msg("bill joined")
	return bill, nil
}

func (c *clientBillService) Balances(ctx context.Context, billLocalID string) (models.Balances, error) {
	bill, err := c.ledger.Get(billLocalID)
	if err != nil {
		return models.Balances{}, err
	}
	if bill.HasUnsent() {
		return calculator.Calculate(ledger.ToBill(bill)), nil
	}

	balances, err := c.adapter.GetBalances(ctx, bill.RemoteID)
	switch {
	case err == nil:
		return localizeBalances(bill, balances), nil
	case errors.Is(err, adapter.ErrNetwork), errors.Is(err, adapter.ErrServer):
		c.logger.Debug().Err(err).Str("func", "clientBillService.Balances").Str("bill_id", billLocalID).
			Msg("server unavailable, computing balances locally")
		return calculator.Calculate(ledger.ToBill(bill)), nil
	default:
		return models.Balances{}, mapAdapterError(err)
	}
}

func (c *clientBillService) ShareCode(billLocalID string) (string, error) {
	bill, err := c.ledger.Get(billLocalID)
	if err != nil {
		return "", err
	}
	if bill.ShareCode == "" {
		return "", ErrBillNotShared
	}
	return bill.ShareCode, nil
}

// localizeBalances rewrites the server IDs of balances to local IDs, so both
// balance sources look the same to callers.
func localizeBalances(bill models.LocalBill, b models.Balances) models.Balances {
	members := make(map[string]string, len(bill.State.Members))
	for id, m := range bill.State.Members {
		if m.RemoteID != "" {
			members[m.RemoteID] = id
		}
	}
	local := func(remoteID string) string {
		if id, ok := members[remoteID]; ok {
			return id
		}
		return remoteID
	}

	b.BillID = bill.LocalID
	for i := range b.Members {
		b.Members[i].MemberID = local(b.Members[i].MemberID)
	}
	for i := range b.Transfers {
		b.Transfers[i].FromMember = local(b.Transfers[i].FromMember)
		b.Transfers[i].ToMember = local(b.Transfers[i].ToMember)
	}
	return b
}
