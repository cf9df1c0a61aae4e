package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MKhiriev/go-bill-keeper/internal/config"
	"github.com/MKhiriev/go-bill-keeper/internal/handler"
	"github.com/MKhiriev/go-bill-keeper/internal/handler/http"
	"github.com/MKhiriev/go-bill-keeper/internal/logger"
	"github.com/MKhiriev/go-bill-keeper/internal/metrics"
	"github.com/MKhiriev/go-bill-keeper/internal/notify"
	"github.com/MKhiriev/go-bill-keeper/internal/server"
	"github.com/MKhiriev/go-bill-keeper/internal/service"
	"github.com/MKhiriev/go-bill-keeper/internal/store"
	"github.com/MKhiriev/go-bill-keeper/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

// subscriberBuffer is how many events a slow websocket subscriber may lag
// behind before it is dropped.
const subscriberBuffer = 16

func main() {
	build := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	fmt.Print(build.String())

	cfg, err := config.GetStructuredConfig(os.Args[1:])
	if err != nil {
		logger.NewLogger("go-bill-server", "").Fatal().Err(err).Msg("error getting configs")
	}

	log := logger.NewLogger("go-bill-server", cfg.App.LogLevel)
	log.Debug().Str("http_address", cfg.Server.HTTPAddress).Str("grpc_address", cfg.Server.GRPCAddress).Msg("received configs")

	storages, err := store.NewStorages(context.Background(), cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.Close()

	recorder := metrics.New()
	hub := notify.NewHub(subscriberBuffer, log)
	defer hub.Close()

	services, err := service.NewServices(storages, hub, recorder, *cfg, build, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	handlers, err := handler.NewHandlers(services, http.Options{
		Events:  hub,
		Metrics: recorder.Handler(),
		App:     cfg.App,
		Server:  cfg.Server,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}
