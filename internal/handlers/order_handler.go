package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"fuel-backend/internal/models"
	"fuel-backend/internal/services"
	"fuel-backend/pkg/utils"
)

type OrderHandler struct {
	Orders     *services.OrderService
	Deliveries *services.DeliveryService
}

func NewOrderHandler(o *services.OrderService, d *services.DeliveryService) *OrderHandler {
	return &OrderHandler{Orders: o, Deliveries: d}
}

func (h *OrderHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.ListPending(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req models.ApproveOrderRequest
	if !decode(w, r, &req) {
		return
	}
	o, err := h.Orders.Approve(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, o)
}

func (h *OrderHandler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	board, err := h.Deliveries.List(r.Context(), services.DeliveryFilter{
		Status: q.Get("status"),
		Region: q.Get("region"),
		BDC:    q.Get("bdc"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, board)
}

func (h *OrderHandler) UpdateDeliveryStatus(w http.ResponseWriter, r *http.Request) {
	var req models.DeliveryStatusRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.Deliveries.UpdateStatus(r.Context(), mux.Vars(r)["id"], req.Status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, res)
}

func (h *OrderHandler) DeliveryHistory(w http.ResponseWriter, r *http.Request) {
	events, err := h.Deliveries.History(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, events)
}
