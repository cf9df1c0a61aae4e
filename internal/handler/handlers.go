package handler

import (
	"github.com/MKhiriev/go-bill-keeper/internal/handler/grpc"
	"github.com/MKhiriev/go-bill-keeper/internal/handler/http"
	"github.com/MKhiriev/go-bill-keeper/internal/logger"
	"github.com/MKhiriev/go-bill-keeper/internal/service"
)

type Handlers struct {
	HTTP *http.Handler
	GRPC *grpc.Handler
}

// NewHandlers creates a transport handler for every address configured in
// opts.Server. The gRPC handler shares the services and auth settings of the
// HTTP one.
func NewHandlers(services *service.Services, opts http.Options, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	handlers := &Handlers{}

	if opts.Server.HTTPAddress != "" {
		handlers.HTTP = http.NewHandler(services, opts, logger)
	}
	if opts.Server.GRPCAddress != "" {
		handlers.GRPC = grpc.NewHandler(services, opts.App, logger)
	}

	if handlers.HTTP == nil && handlers.GRPC == nil {
		return nil, errNoHandlersAreCreated
	}

	return handlers, nil
}
