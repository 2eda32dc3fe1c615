package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"fuel-backend/internal/middleware"
	"fuel-backend/internal/models"
	"fuel-backend/internal/services"
	"fuel-backend/pkg/utils"
)

type ClientHandler struct {
	Service  *services.ClientService
	Payments *services.PaymentService
}

func NewClientHandler(s *services.ClientService, p *services.PaymentService) *ClientHandler {
	return &ClientHandler{Service: s, Payments: p}
}

func (h *ClientHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterClientRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.Service.Register(r.Context(), &req, middleware.Actor(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, c)
}

func (h *ClientHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Service.Lookup(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, clients)
}

// client resolves the {client} path variable by id, code or name.
func (h *ClientHandler) client(w http.ResponseWriter, r *http.Request) (*models.Client, bool) {
	c, err := h.Service.Resolve(r.Context(), mux.Vars(r)["client"])
	if err != nil {
		respondError(w, r, err)
		return nil, false
	}
	return c, true
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	if c, ok := h.client(w, r); ok {
		utils.JSON(w, http.StatusOK, c)
	}
}

func (h *ClientHandler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateTagRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.Service.UpdateTag(r.Context(), mux.Vars(r)["client"], &req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, c)
}

func (h *ClientHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	c, ok := h.client(w, r)
	if !ok {
		return
	}
	d, err := h.Service.Dashboard(r.Context(), c)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, d)
}

func (h *ClientHandler) OrderHistory(w http.ResponseWriter, r *http.Request) {
	c, ok := h.client(w, r)
	if !ok {
		return
	}
	hist, err := h.Service.OrderHistory(r.Context(), c)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, hist)
}

func (h *ClientHandler) OrdersWithDebt(w http.ResponseWriter, r *http.Request) {
	c, ok := h.client(w, r)
	if !ok {
		return
	}
	list, err := h.Service.OrdersWithDebt(r.Context(), c)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, list)
}

func (h *ClientHandler) PaymentHistory(w http.ResponseWriter, r *http.Request) {
	c, ok := h.client(w, r)
	if !ok {
		return
	}
	pays, err := h.Payments.History(r.Context(), c)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, pays)
}

func (h *ClientHandler) SweepOverdue(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.SweepOverdue(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, res)
}
