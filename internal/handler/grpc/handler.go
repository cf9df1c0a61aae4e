// Package grpc exposes bill synchronization over gRPC.
//
// Messages are the JSON DTOs of the HTTP API; callers select the codec with
// the "json" content subtype. The standard health service is registered
// alongside and keeps using protobuf.
package grpc

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MKhiriev/go-bill-keeper/internal/config"
	"github.com/MKhiriev/go-bill-keeper/internal/logger"
	"github.com/MKhiriev/go-bill-keeper/internal/service"
)

// Handler is the root gRPC transport handler.
//
// It stores references to the service layer and structured logger so that
// gRPC method handlers can delegate business logic and emit consistent logs.
// A handler instance is created once at startup and shared by the gRPC server.
type Handler struct {
	services *service.Services
	health   *health.Server

	tokenSignKey string
	tokenIssuer  string

	logger *logger.Logger
}

// NewHandler constructs a [Handler] with the provided service container and
// logger, and returns the initialized instance.
func NewHandler(services *service.Services, cfg config.App, logger *logger.Logger) *Handler {
	logger.Debug().Msg("gRPC handler created")
	return &Handler{
		services:     services,
		health:       health.NewServer(),
		tokenSignKey: cfg.TokenSignKey,
		tokenIssuer:  cfg.TokenIssuer,
		logger:       logger,
	}
}

// ServerOptions returns the interceptors every server of this handler needs.
func (h *Handler) ServerOptions() []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(h.recoverer, h.withLogging, h.auth),
	}
}

// Register attaches the bill sync and health services to s.
func (h *Handler) Register(s *grpc.Server) {
	s.RegisterService(&billSyncServiceDesc, h)
	healthpb.RegisterHealthServer(s, h.health)

	h.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.health.SetServingStatus(billSyncServiceName, healthpb.HealthCheckResponse_SERVING)
}

// Shutdown reports every service as not serving.
func (h *Handler) Shutdown() {
	h.health.Shutdown()
}
