package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"fuel-backend/internal/middleware"
	"fuel-backend/internal/services"
	"fuel-backend/pkg/utils"
)

type PaymentHandler struct {
	Payments *services.PaymentService
	Trucks   *services.TruckService
}

func NewPaymentHandler(p *services.PaymentService, t *services.TruckService) *PaymentHandler {
	return &PaymentHandler{Payments: p, Trucks: t}
}

func (h *PaymentHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	pays, err := h.Payments.ListPending(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, pays)
}

func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	p, err := h.Payments.Confirm(r.Context(), mux.Vars(r)["id"], middleware.Actor(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, p)
}

func (h *PaymentHandler) ConfirmTruckPayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.Trucks.ConfirmTruckPayment(r.Context(), mux.Vars(r)["id"], middleware.Actor(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, p)
}
