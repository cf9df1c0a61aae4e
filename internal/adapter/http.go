package adapter

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-bill-keeper/internal/config"
	"github.com/MKhiriev/go-bill-keeper/internal/logger"
	"github.com/MKhiriev/go-bill-keeper/internal/utils"
	"github.com/MKhiriev/go-bill-keeper/models"
)

const (
	headerClientID = "X-Client-ID"
	headerHash     = "HashSHA256"
)

type httpServerAdapter struct {
	client   *utils.HTTPClient
	baseURL  string
	clientID string
	hashKey  string

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of [ServerAdapter].
// It normalises and validates the base URL from adapterCfg.HTTPAddress,
// configures the underlying HTTP client with the resolved base URL and request
// timeout, and initialises the shared HMAC hasher pool used for the body
// integrity hash when appCfg.HashKey is set.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPServerAdapter(adapterCfg config.ClientAdapter, appCfg config.ClientApp, logger *logger.Logger) (ServerAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	if appCfg.HashKey != "" {
		utils.InitHasherPool(appCfg.HashKey)
	}

	a := &httpServerAdapter{
		client:   utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout),
		baseURL:  baseURL,
		clientID: adapterCfg.ClientID,
		hashKey:  appCfg.HashKey,
		logger:   logger,
	}
	a.SetToken(adapterCfg.Token)
	return a, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [ServerAdapter]. It stores token (whitespace-trimmed) for
// use in the Authorization header of all subsequent requests.
func (h *httpServerAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token implements [ServerAdapter].
func (h *httpServerAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// FullSync implements [ServerAdapter]. It POSTs body to POST /bills/sync.
func (h *httpServerAdapter) FullSync(ctx context.Context, body json.RawMessage) (models.FullSyncResponse, error) {
	var out models.FullSyncResponse
	if err := h.post(ctx, "full sync", "/bills/sync", body, &out); err != nil {
		return models.FullSyncResponse{}, err
	}
	return out, nil
}

// DeltaSync implements [ServerAdapter]. It POSTs body to
// POST /bills/{id}/delta-sync.
func (h *httpServerAdapter) DeltaSync(ctx context.Context, billID string, body json.RawMessage) (models.DeltaSyncResponse, error) {
	var out models.DeltaSyncResponse
	if err := h.post(ctx, "delta sync", "/bills/"+url.PathEscape(billID)+"/delta-sync", body, &out); err != nil {
		return models.DeltaSyncResponse{}, err
	}
	return out, nil
}

// GetBill implements [ServerAdapter]. It GETs /bills/{id}.
func (h *httpServerAdapter) GetBill(ctx context.Context, billID string) (models.Bill, error) {
	var out models.Bill
	if err := h.get(ctx, "get bill", "/bills/"+url.PathEscape(billID), &out); err != nil {
		return models.Bill{}, err
	}
	return out, nil
}

// GetBillByShareCode implements [ServerAdapter]. It GETs /bills/share/{code}.
func (h *httpServerAdapter) GetBillByShareCode(ctx context.Context, shareCode string) (models.Bill, error) {
	var out models.Bill
	if err := h.get(ctx, "get bill by share code", "/bills/share/"+url.PathEscape(shareCode), &out); err != nil {
		return models.Bill{}, err
	}
	return out, nil
}

// GetBalances implements [ServerAdapter]. It GETs /bills/{id}/balances.
func (h *httpServerAdapter) GetBalances(ctx context.Context, billID string) (models.Balances, error) {
	var out models.Balances
	if err := h.get(ctx, "get balances", "/bills/"+url.PathEscape(billID)+"/balances", &out); err != nil {
		return models.Balances{}, err
	}
	return out, nil
}

// Ping implements [ServerAdapter]. It GETs /health.
func (h *httpServerAdapter) Ping(ctx context.Context) error {
	resp, err := h.request(ctx).Get("/health")
	if err != nil {
		return mapTransportError(ctx, "ping request", err)
	}
	return mapHTTPError(resp)
}

func (h *httpServerAdapter) post(ctx context.Context, op, path string, body json.RawMessage, out any) error {
	req := h.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody([]byte(body))
	if h.hashKey != "" {
		req.SetHeader(headerHash, hex.EncodeToString(utils.Hash(body)))
	}

	resp, err := req.Post(path)
	if err != nil {
		return mapTransportError(ctx, op+" request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		h.logger.Debug().Err(err).Str("func", "httpServerAdapter.post").Str("path", path).Msg("server rejected request")
		return err
	}
	return decode(op, resp, out)
}

func (h *httpServerAdapter) get(ctx context.Context, op, path string, out any) error {
	resp, err := h.request(ctx).Get(path)
	if err != nil {
		return mapTransportError(ctx, op+" request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return err
	}
	return decode(op, resp, out)
}

func (h *httpServerAdapter) request(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	if h.clientID != "" {
		req.SetHeader(headerClientID, h.clientID)
	}
	return req
}

func decode(op string, resp *resty.Response, out any) error {
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", ErrInvalidResponse, op, err)
	}
	return nil
}
