package service

import (
	"github.com/MKhiriev/go-bill-keeper/internal/config"
	"github.com/MKhiriev/go-bill-keeper/internal/logger"
	"github.com/MKhiriev/go-bill-keeper/internal/metrics"
	"github.com/MKhiriev/go-bill-keeper/internal/notify"
	"github.com/MKhiriev/go-bill-keeper/internal/store"
	"github.com/MKhiriev/go-bill-keeper/internal/utils"
	"github.com/MKhiriev/go-bill-keeper/models"
)

type Services struct {
	SyncService    SyncService
	BillService    BillService
	AppInfoService AppInfoService
	HealthService  HealthService
}

func NewServices(storages *store.Storages, notifier notify.Notifier, recorder metrics.Recorder, cfg config.StructuredConfig, build models.AppBuildInfo, logger *logger.Logger) (*Services, error) {
	appInfo, err := NewAppInfoService(cfg.App, build, logger)
	if err != nil {
		return nil, err
	}

	syncService := NewSyncService(storages.BillStorage, notifier, recorder, utils.NewUUIDGenerator(), logger)

	return &Services{
		SyncService:    NewSyncValidationService().Wrap(syncService),
		BillService:    NewBillService(storages.BillStorage, logger),
		AppInfoService: appInfo,
		HealthService:  NewHealthService(storages, logger),
	}, nil
}
