package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"fuel-backend/internal/apperr"
	"fuel-backend/internal/models"
	"fuel-backend/internal/services"
	"fuel-backend/pkg/utils"
)

type BDCHandler struct {
	Service *services.BDCService
}

func NewBDCHandler(s *services.BDCService) *BDCHandler {
	return &BDCHandler{Service: s}
}

func (h *BDCHandler) List(w http.ResponseWriter, r *http.Request) {
	bdcs, err := h.Service.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, bdcs)
}

func (h *BDCHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req models.AddBDCRequest
	if !decode(w, r, &req) {
		return
	}
	b, err := h.Service.Add(r.Context(), &req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, b)
}

func (h *BDCHandler) Profile(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := h.Service.Profile(r.Context(), mux.Vars(r)["id"], q.Get("start"), q.Get("end"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, p)
}

func (h *BDCHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req models.DepositRequest
	if !decode(w, r, &req) {
		return
	}
	bal, err := h.Service.Deposit(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, bal)
}

func (h *BDCHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req models.BDCPaymentRequest
	if !decode(w, r, &req) {
		return
	}
	bal, err := h.Service.RecordPayment(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, bal)
}

func (h *BDCHandler) UpdateDelivery(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		respondError(w, r, apperr.Validation("entry index must be a number"))
		return
	}
	var req models.DeliveryStatusRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.Service.UpdateDelivery(r.Context(), vars["id"], index, req.Status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, res)
}
