package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-bill-keeper/internal/app"
	"github.com/MKhiriev/go-bill-keeper/internal/logger"
	"github.com/MKhiriev/go-bill-keeper/internal/utils"
	"github.com/MKhiriev/go-bill-keeper/models"
)

func (h *Handler) fullSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.FullSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.fullSync").Msg("invalid JSON was passed")
		utils.WriteError(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}

	resp, err := h.services.SyncService.ApplyFullSync(ctx, utils.ActorFromContext(ctx), req)
	if err != nil {
		writeServiceError(w, log, "*Handler.fullSync", err)
		return
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}

func (h *Handler) deltaSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	billID := chi.URLParam(r, "id")
	if billID == "" {
		utils.WriteError(w, ErrMissingBillID.Error(), http.StatusBadRequest)
		return
	}

	var req models.DeltaSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.deltaSync").Msg("invalid JSON was passed")
		utils.WriteError(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}

	resp, err := h.services.SyncService.ApplyDelta(ctx, utils.ActorFromContext(ctx), billID, req)
	if err != nil {
		writeServiceError(w, log, "*Handler.deltaSync", err)
		return
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}
