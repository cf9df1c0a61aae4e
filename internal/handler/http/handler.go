package http

import (
	"net/http"
	"time"

	"github.com/MKhiriev/go-bill-keeper/internal/config"
	"github.com/MKhiriev/go-bill-keeper/internal/logger"
	"github.com/MKhiriev/go-bill-keeper/internal/service"
	"github.com/MKhiriev/go-bill-keeper/internal/utils"
)

// EventServer streams bill update notifications to one subscriber.
type EventServer interface {
	Serve(w http.ResponseWriter, r *http.Request, billID string)
}

// Options carries the transport-level dependencies of [Handler].
type Options struct {
	// Events serves GET /bills/{id}/events. The route is not registered when nil.
	Events EventServer
	// Metrics serves GET /metrics. The route is not registered when nil.
	Metrics http.Handler

	App    config.App
	Server config.Server
}

type Handler struct {
	services *service.Services
	events   EventServer
	metrics  http.Handler

	hashKey        string
	tokenSignKey   string
	tokenIssuer    string
	requestTimeout time.Duration

	logger *logger.Logger
}

func NewHandler(services *service.Services, opts Options, logger *logger.Logger) *Handler {
	if opts.App.HashKey != "" {
		utils.InitHasherPool(opts.App.HashKey)
	}

	logger.Info().Msg("http handler created")
	return &Handler{
		services:       services,
		events:         opts.Events,
		metrics:        opts.Metrics,
		hashKey:        opts.App.HashKey,
		tokenSignKey:   opts.App.TokenSignKey,
		tokenIssuer:    opts.App.TokenIssuer,
		requestTimeout: opts.Server.RequestTimeout,
		logger:         logger,
	}
}
