package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"fuel-backend/internal/models"
	"fuel-backend/internal/services"
	"fuel-backend/pkg/utils"
)

type FinanceHandler struct {
	Service    *services.FinanceService
	ProductSvc *services.ProductService
}

func NewFinanceHandler(s *services.FinanceService, p *services.ProductService) *FinanceHandler {
	return &FinanceHandler{Service: s, ProductSvc: p}
}

func (h *FinanceHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.AdminDashboard(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, d)
}

func (h *FinanceHandler) Shareholders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, err := h.Service.Shareholders(r.Context(), services.ShareholderQuery{
		Period:       q.Get("period"),
		Start:        q.Get("start"),
		End:          q.Get("end"),
		VolumePeriod: q.Get("volume_period"),
		VolumeStart:  q.Get("volume_start"),
		VolumeEnd:    q.Get("volume_end"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, view)
}

func (h *FinanceHandler) Taxes(w http.ResponseWriter, r *http.Request) {
	sum, err := h.Service.TaxSummary(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, sum)
}

func (h *FinanceHandler) AddTax(w http.ResponseWriter, r *http.Request) {
	var req models.TaxRequest
	if !decode(w, r, &req) {
		return
	}
	rec, err := h.Service.AddTax(r.Context(), &req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, rec)
}

func (h *FinanceHandler) BankAccounts(w http.ResponseWriter, r *http.Request) {
	accts, err := h.Service.ListBankAccounts(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, accts)
}

func (h *FinanceHandler) AddBankAccount(w http.ResponseWriter, r *http.Request) {
	var req models.BankAccountRequest
	if !decode(w, r, &req) {
		return
	}
	a, err := h.Service.AddBankAccount(r.Context(), &req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, a)
}

func (h *FinanceHandler) UpdateBankAccount(w http.ResponseWriter, r *http.Request) {
	var req models.BankAccountRequest
	if !decode(w, r, &req) {
		return
	}
	a, err := h.Service.UpdateBankAccount(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, a)
}

func (h *FinanceHandler) DeleteBankAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteBankAccount(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FinanceHandler) BankProfile(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := h.Service.BankProfile(r.Context(), mux.Vars(r)["id"], q.Get("start"), q.Get("end"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, p)
}

func (h *FinanceHandler) Products(w http.ResponseWriter, r *http.Request) {
	products, err := h.ProductSvc.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, products)
}

func (h *FinanceHandler) ProductPrice(w http.ResponseWriter, r *http.Request) {
	p, err := h.ProductSvc.Price(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, p)
}

func (h *FinanceHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req models.ProductRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.ProductSvc.Add(r.Context(), &req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, p)
}

func (h *FinanceHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req models.ProductRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.ProductSvc.Update(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, p)
}

func (h *FinanceHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.ProductSvc.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
