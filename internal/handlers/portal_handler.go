package handlers

import (
	"net/http"
	"strings"

	"fuel-backend/internal/apperr"
	"fuel-backend/internal/middleware"
	"fuel-backend/internal/models"
	"fuel-backend/internal/services"
	"fuel-backend/pkg/utils"
)

const maxProofBytes = 10 << 20

// PortalHandler serves a client acting on their own account. The client
// always comes from the token, never from the request.
type PortalHandler struct {
	Clients    *services.ClientService
	OrderSvc   *services.OrderService
	PaymentSvc *services.PaymentService
	ProductSvc *services.ProductService
	Trucks     *services.TruckService
	Statements *DebtorHandler
}

func (h *PortalHandler) account(w http.ResponseWriter, r *http.Request) (*models.Client, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Authorization required")
		return nil, false
	}
	c, err := h.Clients.Account(r.Context(), claims.ClientID)
	if err != nil {
		respondError(w, r, err)
		return nil, false
	}
	return c, true
}

func (h *PortalHandler) Profile(w http.ResponseWriter, r *http.Request) {
	if c, ok := h.account(w, r); ok {
		utils.JSON(w, http.StatusOK, c)
	}
}

func (h *PortalHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	c, ok := h.account(w, r)
	if !ok {
		return
	}
	d, err := h.Clients.Dashboard(r.Context(), c)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, d)
}

func (h *PortalHandler) Orders(w http.ResponseWriter, r *http.Request) {
	c, ok := h.account(w, r)
	if !ok {
		return
	}
	hist, err := h.Clients.OrderHistory(r.Context(), c)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, hist)
}

func (h *PortalHandler) OrdersWithDebt(w http.ResponseWriter, r *http.Request) {
	c, ok := h.account(w, r)
	if !ok {
		return
	}
	list, err := h.Clients.OrdersWithDebt(r.Context(), c)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, list)
}

func (h *PortalHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	c, ok := h.account(w, r)
	if !ok {
		return
	}
	var req models.SubmitOrderRequest
	if !decode(w, r, &req) {
		return
	}
	o, err := h.OrderSvc.Submit(r.Context(), c, &req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, o)
}

func (h *PortalHandler) Products(w http.ResponseWriter, r *http.Request) {
	products, err := h.ProductSvc.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, products)
}

func (h *PortalHandler) ProductPrice(w http.ResponseWriter, r *http.Request) {
	p, err := h.ProductSvc.Price(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, p)
}

// SubmitPayment accepts JSON with a proof_url, or a multipart form whose
// "proof" file is uploaded to object storage.
func (h *PortalHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	c, ok := h.account(w, r)
	if !ok {
		return
	}

	var req models.SubmitPaymentRequest
	var proof *services.Proof
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, maxProofBytes)
		if err := r.ParseMultipartForm(maxProofBytes); err != nil {
			respondError(w, r, apperr.Validation("invalid upload: %v", err))
			return
		}
		req = models.SubmitPaymentRequest{
			PaymentType:  r.FormValue("payment_type"),
			Amount:       r.FormValue("amount"),
			BankName:     r.FormValue("bank_name"),
			AccountLast4: r.FormValue("account_last4"),
			ProofURL:     r.FormValue("proof_url"),
			OrderID:      r.FormValue("order_id"),
		}
		if file, header, err := r.FormFile("proof"); err == nil {
			defer file.Close()
			proof = &services.Proof{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Size:        header.Size,
				Body:        file,
			}
		}
	} else if !decode(w, r, &req) {
		return
	}

	p, err := h.PaymentSvc.Submit(r.Context(), c, &req, proof)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, p)
}

func (h *PortalHandler) Payments(w http.ResponseWriter, r *http.Request) {
	c, ok := h.account(w, r)
	if !ok {
		return
	}
	pays, err := h.PaymentSvc.History(r.Context(), c)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, pays)
}

func (h *PortalHandler) TruckOrders(w http.ResponseWriter, r *http.Request) {
	c, ok := h.account(w, r)
	if !ok {
		return
	}
	orders, err := h.Trucks.ExternalOrders(r.Context(), c)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, orders)
}

func (h *PortalHandler) Statement(w http.ResponseWriter, r *http.Request) {
	c, ok := h.account(w, r)
	if !ok {
		return
	}
	h.Statements.writeStatement(w, r, c.ID)
}
