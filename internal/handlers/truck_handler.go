package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"fuel-backend/internal/models"
	"fuel-backend/internal/services"
	"fuel-backend/pkg/utils"
)

type TruckHandler struct {
	Service *services.TruckService
}

func NewTruckHandler(s *services.TruckService) *TruckHandler {
	return &TruckHandler{Service: s}
}

func (h *TruckHandler) List(w http.ResponseWriter, r *http.Request) {
	board, err := h.Service.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, board)
}

func (h *TruckHandler) AddTruck(w http.ResponseWriter, r *http.Request) {
	var req models.AddTruckRequest
	if !decode(w, r, &req) {
		return
	}
	t, err := h.Service.AddTruck(r.Context(), &req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, t)
}

func (h *TruckHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	var req models.InitiateTruckOrderRequest
	if !decode(w, r, &req) {
		return
	}
	o, err := h.Service.Initiate(r.Context(), &req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, o)
}

func (h *TruckHandler) Start(w http.ResponseWriter, r *http.Request) {
	o, err := h.Service.Start(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, o)
}

func (h *TruckHandler) Complete(w http.ResponseWriter, r *http.Request) {
	o, err := h.Service.Complete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, o)
}

func (h *TruckHandler) AddExpense(w http.ResponseWriter, r *http.Request) {
	var req models.TruckExpenseRequest
	if !decode(w, r, &req) {
		return
	}
	e, err := h.Service.AddExpense(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, e)
}

func (h *TruckHandler) Debtors(w http.ResponseWriter, r *http.Request) {
	page, err := h.Service.Debtors(r.Context(), r.URL.Query().Get("search"), queryBool(r, "unpaid"), queryInt(r, "page", 1))
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, page)
}

func (h *TruckHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.Service.Summary(r.Context(), queryInt(r, "page", 1))
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, sum)
}
