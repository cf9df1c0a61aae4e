package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(withGZip)

	// service routes
	router.Group(func(r chi.Router) {
		r.Get("/health", h.health)
		r.Get("/api/version", h.getServerVersion)
		if h.metrics != nil {
			r.Method(http.MethodGet, "/metrics", h.metrics)
		}
	})

	// bill routes, guests allowed
	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		// long-lived, outside of the request timeout
		if h.events != nil {
			r.Get("/bills/{id}/events", h.billEvents)
		}

		r.Group(func(r chi.Router) {
			if h.requestTimeout > 0 {
				r.Use(middleware.Timeout(h.requestTimeout))
			}

			r.Get("/bills/share/{code}", h.getBillByShareCode)
			r.Get("/bills/{id}", h.getBill)
			r.Get("/bills/{id}/balances", h.getBalances)

			r.Group(func(r chi.Router) {
				r.Use(h.checkHash)
				r.Post("/bills/sync", h.fullSync)
				r.Post("/bills/{id}/delta-sync", h.deltaSync)
			})
		})
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
