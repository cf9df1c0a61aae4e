// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-bill-keeper/internal/logger"
	"github.com/MKhiriev/go-bill-keeper/internal/utils"
)

func (h *Handler) getBill(w http.ResponseWriter, r *http.Request) {
	bill, err := h.services.BillService.GetBill(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, logger.FromRequest(r), "*Handler.getBill", err)
		return
	}
	utils.WriteJSON(w, bill, http.StatusOK)
}

func (h *Handler) getBillByShareCode(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))

	bill, err := h.services.BillService.GetBillByShareCode(r.Context(), code)
	if err != nil {
		writeServiceError(w, logger.FromRequest(r), "*Handler.getBillByShareCode", err)
		return
	}
	utils.WriteJSON(w, bill, http.StatusOK)
}

func (h *Handler) getBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.services.BillService.GetBalances(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, logger.FromRequest(r), "*Handler.getBalances", err)
		return
	}
	utils.WriteJSON(w, balances, http.StatusOK)
}

// billEvents subscribes the caller to updates of an existing bill.
func (h *Handler) billEvents(w http.ResponseWriter, r *http.Request) {
	billID := chi.URLParam(r, "id")

	if _, err := h.services.BillService.GetBill(r.Context(), billID); err != nil {
		writeServiceError(w, logger.FromRequest(r), "*Handler.billEvents", err)
		return
	}
	h.events.Serve(w, r, billID)
}
