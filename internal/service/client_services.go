package service

import (
	"github.com/MKhiriev/go-bill-keeper/internal/adapter"
	"github.com/MKhiriev/go-bill-keeper/internal/config"
	"github.com/MKhiriev/go-bill-keeper/internal/ledger"
	"github.com/MKhiriev/go-bill-keeper/internal/logger"
)

type ClientServices struct {
	SyncService ClientSyncService
	BillService ClientBillService
	SyncJob     ClientSyncJob
}

func NewClientServices(ledgerStore *ledger.Store, serverAdapter adapter.ServerAdapter, cfg config.ClientSync, logger *logger.Logger) *ClientServices {
	syncSvc := NewClientSyncService(ledgerStore, serverAdapter, cfg, logger)

	return &ClientServices{
		SyncService: syncSvc,
		BillService: NewClientBillService(ledgerStore, serverAdapter, logger),
		SyncJob:     NewClientSyncJob(syncSvc, logger),
	}
}
