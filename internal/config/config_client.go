// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

// ClientApp holds client-side application settings derived from the shared
// structured config.
type ClientApp struct {
	// HashKey is the HMAC key used by the client to sign request bodies.
	HashKey string
	// LogLevel is the zerolog level of the client log file.
	LogLevel string
	// TokenSignKey, TokenIssuer and TokenDuration are used by the `token`
	// command to mint development tokens.
	TokenSignKey  string
	TokenIssuer   string
	TokenDuration time.Duration
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the base URL of the bill server.
	HTTPAddress string
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration
	// ClientID identifies a guest installation.
	ClientID string
	// Token is an optional bearer JWT.
	Token string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DSN is the SQLite file of the Local Ledger Store.
	DSN string
	// LogDir is where the client log file is written.
	LogDir string
}

// ClientWorkers contains client background worker settings.
type ClientWorkers struct {
	// SyncInterval defines how often the background sync job runs.
	SyncInterval time.Duration
}

// ClientSync is the retry policy of the Sync Client.
type ClientSync struct {
	RetryAttempts  int
	RetryBaseDelay time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Adapter ClientAdapter
	Storage ClientStorage
	Workers ClientWorkers
	Sync    ClientSync
}

// GetClientConfig builds and validates the client configuration view.
//
// Sources are environment variables, the optional config file at configPath
// (or CONFIG), and client defaults. Command-line parsing belongs to the CLI
// itself, so no flag set is consulted here.
func GetClientConfig(configPath string) (*ClientConfig, error) {
	cfg, err := newConfigBuilder().
		withEnv().
		withConfigPath(configPath).
		withFile().
		withDefaults(clientDefaults()).
		merge()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		App: ClientApp{
			HashKey:       cfg.App.HashKey,
			LogLevel:      cfg.App.LogLevel,
			TokenSignKey:  cfg.App.TokenSignKey,
			TokenIssuer:   cfg.App.TokenIssuer,
			TokenDuration: cfg.App.TokenDuration,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
			ClientID:       cfg.Adapter.ClientID,
			Token:          cfg.Adapter.Token,
		},
		Storage: ClientStorage{
			DSN:    cfg.Storage.Local.DSN,
			LogDir: cfg.Storage.Local.LogDir,
		},
		Workers: ClientWorkers{SyncInterval: cfg.Workers.SyncInterval},
		Sync: ClientSync{
			RetryAttempts:  cfg.Sync.RetryAttempts,
			RetryBaseDelay: cfg.Sync.RetryBaseDelay,
		},
	}

	return clientCfg, clientCfg.validate()
}

func clientDefaults() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			LogLevel:      "debug",
			TokenIssuer:   "go-bill-keeper",
			TokenDuration: 24 * time.Hour,
		},
		Storage: Storage{
			Local: Local{DSN: "billkeeper.db"},
		},
		Adapter: Adapter{
			HTTPAddress:    "http://localhost:8080",
			RequestTimeout: 10 * time.Second,
		},
		Workers: Workers{SyncInterval: 30 * time.Second},
		Sync: Sync{
			RetryAttempts:  3,
			RetryBaseDelay: 500 * time.Millisecond,
		},
	}
}
