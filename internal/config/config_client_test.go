// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetClientConfig_Defaults(t *testing.T) {
	cfg, err := GetClientConfig("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.Adapter.HTTPAddress)
	assert.Equal(t, 10*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, "billkeeper.db", cfg.Storage.DSN)
	assert.Equal(t, 30*time.Second, cfg.Workers.SyncInterval)
	assert.Equal(t, 3, cfg.Sync.RetryAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Sync.RetryBaseDelay)
}

func TestGetClientConfig_FileAndEnv(t *testing.T) {
	p := writeTempConfig(t, "client.yaml", `
adapter:
  http_address: "http://from-file"
  client_id: "file-client"
storage:
  local:
    dsn: "/tmp/file.db"
`)
	t.Setenv("ADAPTER_CLIENT_ID", "env-client")

	cfg, err := GetClientConfig(p)
	require.NoError(t, err)

	assert.Equal(t, "http://from-file", cfg.Adapter.HTTPAddress)
	assert.Equal(t, "env-client", cfg.Adapter.ClientID)
	assert.Equal(t, "/tmp/file.db", cfg.Storage.DSN)
}

func TestGetClientConfig_RejectsMemoryDSN(t *testing.T) {
	t.Setenv("STORAGE_LOCAL_DSN", "file::memory:")

	_, err := GetClientConfig("")
	assert.ErrorIs(t, err, ErrInvalidStorageConfigs)
}

func TestClientConfig_Validate(t *testing.T) {
	valid := func() ClientConfig {
		return ClientConfig{
			Adapter: ClientAdapter{HTTPAddress: "http://x", RequestTimeout: time.Second},
			Storage: ClientStorage{DSN: "bills.db"},
			Workers: ClientWorkers{SyncInterval: time.Second},
			Sync:    ClientSync{RetryAttempts: 1, RetryBaseDelay: time.Millisecond},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *ClientConfig)
		want   error
	}{
		{name: "valid", mutate: func(c *ClientConfig) {}},
		{name: "no dsn", mutate: func(c *ClientConfig) { c.Storage.DSN = "" }, want: ErrInvalidStorageConfigs},
		{name: "no address", mutate: func(c *ClientConfig) { c.Adapter.HTTPAddress = "" }, want: ErrInvalidAdapterConfigs},
		{name: "no interval", mutate: func(c *ClientConfig) { c.Workers.SyncInterval = 0 }, want: ErrInvalidWorkerConfigs},
		{name: "no attempts", mutate: func(c *ClientConfig) { c.Sync.RetryAttempts = 0 }, want: ErrInvalidSyncConfigs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestStructuredConfig_Validate_TokenIssuerRequired(t *testing.T) {
	cfg := serverDefaults()
	cfg.App.TokenSignKey = "secret"
	cfg.App.TokenIssuer = ""

	assert.ErrorIs(t, cfg.validate(), ErrInvalidAppConfigs)
}
