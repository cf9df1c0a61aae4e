package client

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/MKhiriev/go-bill-keeper/internal/adapter"
	"github.com/MKhiriev/go-bill-keeper/internal/config"
	"github.com/MKhiriev/go-bill-keeper/internal/ledger"
	"github.com/MKhiriev/go-bill-keeper/internal/logger"
	"github.com/MKhiriev/go-bill-keeper/internal/service"
	"github.com/MKhiriev/go-bill-keeper/internal/store"
	"github.com/MKhiriev/go-bill-keeper/internal/utils"
	"github.com/MKhiriev/go-bill-keeper/internal/workers"
)

// App owns the client runtime: the local ledger, the server adapter and the
// services built on top of them.
type App struct {
	Ledger   *ledger.Store
	Adapter  adapter.ServerAdapter
	Services *service.ClientServices

	cfg      *config.ClientConfig
	storages *store.ClientStorages
	logger   *logger.Logger
}

// NewApp opens the local ledger described by cfg and loads every persisted
// bill. A missing client id is derived from the ledger file so that one
// installation keeps one guest identity.
func NewApp(ctx context.Context, cfg *config.ClientConfig, logger *logger.Logger) (*App, error) {
	if cfg.Adapter.ClientID == "" {
		cfg.Adapter.ClientID = deriveClientID(cfg.Storage.DSN)
	}

	storages, err := store.NewClientStorages(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	ledgerStore := ledger.NewStore(storages.LocalBills, utils.NewUUIDGenerator(), logger)
	if err = ledgerStore.Load(ctx); err != nil {
		storages.Close()
		return nil, fmt.Errorf("load local bills: %w", err)
	}

	serverAdapter, err := adapter.NewHTTPServerAdapter(cfg.Adapter, cfg.App, logger)
	if err != nil {
		storages.Close()
		return nil, fmt.Errorf("create server adapter: %w", err)
	}

	return &App{
		Ledger:   ledgerStore,
		Adapter:  serverAdapter,
		Services: service.NewClientServices(ledgerStore, serverAdapter, cfg.Sync, logger),
		cfg:      cfg,
		storages: storages,
		logger:   logger,
	}, nil
}

// SelfID is the actor id the server reports for writes of this client.
func (a *App) SelfID() string {
	if token := a.Adapter.Token(); token != "" {
		if userID, err := utils.ParseUserIDFromJWT(token); err == nil && userID != "" {
			return userID
		}
	}
	return a.cfg.Adapter.ClientID
}

// Watch follows peer changes of one bill until ctx is done.
func (a *App) Watch(ctx context.Context, billLocalID string, onRefresh workers.RefreshFunc) error {
	w, err := a.watcher(billLocalID, onRefresh)
	if err != nil {
		return err
	}
	w.Run(ctx)
	return nil
}

// Run keeps the ledger in sync until ctx is done: unsent changes are pushed
// periodically and every shared bill is refreshed on peer changes.
func (a *App) Run(ctx context.Context) error {
	group := workers.New(workers.NewSyncWorker(a.Services.SyncJob, a.cfg.Workers.SyncInterval))

	for _, bill := range a.Ledger.List() {
		if bill.RemoteID == "" {
			continue
		}
		w, err := a.watcher(bill.LocalID, nil)
		if err != nil {
			return err
		}
		group.Add(w)
	}

	a.logger.Info().Str("func", "*App.Run").Int("workers", group.Len()).Msg("client started")
	group.Run(ctx)
	a.logger.Info().Str("func", "*App.Run").Msg("client stopped")

	return nil
}

// Close releases the local storage.
func (a *App) Close() error {
	return a.storages.Close()
}

func (a *App) watcher(billLocalID string, onRefresh workers.RefreshFunc) (*workers.BillWatcher, error) {
	bill, err := a.Ledger.Get(billLocalID)
	if err != nil {
		return nil, err
	}
	if bill.RemoteID == "" {
		return nil, fmt.Errorf("%w: sync the bill before watching it", service.ErrBillNotShared)
	}

	target := workers.WatchTarget{
		LocalID:  bill.LocalID,
		RemoteID: bill.RemoteID,
		Version:  bill.Version,
		SelfID:   a.SelfID(),
	}
	return workers.NewBillWatcher(a.Adapter, a.Services.SyncService, target, onRefresh, a.logger), nil
}

func deriveClientID(dsn string) string {
	if abs, err := filepath.Abs(dsn); err == nil {
		dsn = abs
	}
	return "cli-" + utils.HashString(dsn, "client-id")[:16]
}
