// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-bill-keeper/internal/config"
	"github.com/MKhiriev/go-bill-keeper/internal/logger"
)

// Storages groups the server repositories.
type Storages struct {
	BillStorage BillStorage

	db *DB
}

// NewStorages connects to PostgreSQL and runs migrations when a DSN is
// configured, and falls back to the in-memory storage otherwise.
func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	if cfg.DB.DSN == "" {
		log.Warn().Str("func", "NewStorages").Msg("no database DSN configured, bills are kept in memory")
		return &Storages{BillStorage: NewMemoryBillStorage(log)}, nil
	}

	log.Info().Str("func", "NewStorages").Msg("creating new storages...")

	db, err := NewConnectPostgres(ctx, cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("postgres connection error: %w", err)
	}

	if err = db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &Storages{
		BillStorage: NewBillRepository(db, log),
		db:          db,
	}, nil
}

// Ping checks the database connection. The in-memory storage is always up.
func (s *Storages) Ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.PingContext(ctx)
}

// Close releases the database pool, if any.
func (s *Storages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
