package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-bill-keeper/internal/app"
	"github.com/MKhiriev/go-bill-keeper/internal/logger"
	"github.com/MKhiriev/go-bill-keeper/internal/service"
	"github.com/MKhiriev/go-bill-keeper/internal/store"
	"github.com/MKhiriev/go-bill-keeper/internal/utils"
)

var errorStatusMap = map[error]int{
	service.ErrValidation:         http.StatusUnprocessableEntity,
	service.ErrBillNotFound:       http.StatusNotFound,
	service.ErrShareCodeExhausted: http.StatusInternalServerError,
	service.ErrStorageUnavailable: http.StatusServiceUnavailable,

	store.ErrBillNotFound:    http.StatusNotFound,
	store.ErrConcurrentWrite: http.StatusConflict,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
	store.ErrExecutingStatement:   http.StatusInternalServerError,
	store.ErrScanningRow:          http.StatusInternalServerError,
	store.ErrScanningRows:         http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// messageFromError picks the response text for err. Validation failures are
// reported verbatim, everything else uses the fixed messages the client
// matches on.
func messageFromError(err error, status int) string {
	switch {
	case status == http.StatusUnprocessableEntity:
		return err.Error()
	case errors.Is(err, service.ErrBillNotFound), errors.Is(err, store.ErrBillNotFound):
		return app.MsgBillNotFound
	case errors.Is(err, service.ErrShareCodeExhausted):
		return app.MsgShareCodeExhausted
	case errors.Is(err, service.ErrStorageUnavailable):
		return app.MsgStorageUnavailable
	case status == http.StatusConflict:
		return err.Error()
	default:
		return app.MsgInternalServerError
	}
}

// writeServiceError answers a request whose service call failed.
func writeServiceError(w http.ResponseWriter, log *logger.Logger, fn string, err error) {
	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		log.Err(err).Str("func", fn).Int("status", status).Msg("request failed")
	} else {
		log.Debug().Err(err).Str("func", fn).Int("status", status).Msg("request rejected")
	}
	utils.WriteError(w, messageFromError(err, status), status)
}
