package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fuel-backend/internal/auth"
	"fuel-backend/internal/handlers"
	"fuel-backend/internal/middleware"
	"fuel-backend/pkg/utils"
)

// Handlers bundles everything the routers mount.
type Handlers struct {
	Clients  *handlers.ClientHandler
	Debtors  *handlers.DebtorHandler
	Orders   *handlers.OrderHandler
	Payments *handlers.PaymentHandler
	BDCs     *handlers.BDCHandler
	Trucks   *handlers.TruckHandler
	Finance  *handlers.FinanceHandler
	Portal   *handlers.PortalHandler
	Health   *handlers.HealthHandler
}

func notFound(w http.ResponseWriter, r *http.Request) {
	utils.Error(w, http.StatusNotFound, "Not found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	utils.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func newBase(h *Handlers) *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	r.Use(middleware.PanicRecovery, middleware.RequestLogger, middleware.MetricsMiddleware)

	r.HandleFunc("/health", h.Health.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", h.Health.ReadinessHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// NewStaffRouter serves the back office under /api. Admins can do
// everything; assistants everything except pricing, finance, the product
// catalogue and the overdue sweep.
func NewStaffRouter(h *Handlers, authMiddleware *middleware.AuthMiddleware) *mux.Router {
	r := newBase(h)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware.RequireRole(auth.StaffRoles...))

	// Clients
	api.HandleFunc("/clients", h.Clients.Register).Methods("POST")
	api.HandleFunc("/clients/lookup", h.Clients.Lookup).Methods("GET")
	api.HandleFunc("/clients/{client}", h.Clients.Get).Methods("GET")
	api.HandleFunc("/clients/{client}/tag", h.Clients.UpdateTag).Methods("PUT")
	api.HandleFunc("/clients/{client}/dashboard", h.Clients.Dashboard).Methods("GET")
	api.HandleFunc("/clients/{client}/orders", h.Clients.OrderHistory).Methods("GET")
	api.HandleFunc("/clients/{client}/orders/debt", h.Clients.OrdersWithDebt).Methods("GET")
	api.HandleFunc("/clients/{client}/payments", h.Clients.PaymentHistory).Methods("GET")

	// Debtors and statements
	api.HandleFunc("/debtors", h.Debtors.List).Methods("GET")
	api.HandleFunc("/debtors/details", h.Debtors.Details).Methods("GET")
	api.HandleFunc("/debtors/export", h.Debtors.Export).Methods("GET")
	api.HandleFunc("/statements/{client}", h.Debtors.Statement).Methods("GET")

	// Orders and deliveries
	api.HandleFunc("/orders/pending", h.Orders.ListPending).Methods("GET")
	api.HandleFunc("/deliveries", h.Orders.ListDeliveries).Methods("GET")
	api.HandleFunc("/deliveries/{id}/status", h.Orders.UpdateDeliveryStatus).Methods("PUT")
	api.HandleFunc("/deliveries/{id}/history", h.Orders.DeliveryHistory).Methods("GET")

	// Payments
	api.HandleFunc("/payments/pending", h.Payments.ListPending).Methods("GET")
	api.HandleFunc("/payments/{id}/confirm", h.Payments.Confirm).Methods("POST")

	// BDCs
	api.HandleFunc("/bdcs", h.BDCs.List).Methods("GET")
	api.HandleFunc("/bdcs", h.BDCs.Add).Methods("POST")
	api.HandleFunc("/bdcs/{id}", h.BDCs.Profile).Methods("GET")
	api.HandleFunc("/bdcs/{id}/deposits", h.BDCs.Deposit).Methods("POST")
	api.HandleFunc("/bdcs/{id}/payments", h.BDCs.RecordPayment).Methods("POST")
	api.HandleFunc("/bdcs/{id}/entries/{index}/delivery", h.BDCs.UpdateDelivery).Methods("PUT")

	// Trucks
	api.HandleFunc("/trucks", h.Trucks.List).Methods("GET")
	api.HandleFunc("/trucks", h.Trucks.AddTruck).Methods("POST")
	api.HandleFunc("/truck-orders", h.Trucks.Initiate).Methods("POST")
	api.HandleFunc("/truck-orders/{id}/start", h.Trucks.Start).Methods("POST")
	api.HandleFunc("/truck-orders/{id}/complete", h.Trucks.Complete).Methods("POST")
	api.HandleFunc("/truck-orders/{id}/expenses", h.Trucks.AddExpense).Methods("POST")
	api.HandleFunc("/truck-debtors", h.Trucks.Debtors).Methods("GET")
	api.HandleFunc("/truck-payments", h.Trucks.Summary).Methods("GET")
	api.HandleFunc("/truck-payments/{id}/confirm", h.Payments.ConfirmTruckPayment).Methods("POST")

	// Products (read)
	api.HandleFunc("/products", h.Finance.Products).Methods("GET")
	api.HandleFunc("/products/price", h.Finance.ProductPrice).Methods("GET")
	api.HandleFunc("/dashboard", h.Finance.Dashboard).Methods("GET")

	// Admin only
	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(authMiddleware.RequireRole(auth.RoleAdmin))
	admin.HandleFunc("/orders/{id}/approve", h.Orders.Approve).Methods("POST")
	admin.HandleFunc("/clients/sweep-overdue", h.Clients.SweepOverdue).Methods("POST")
	admin.HandleFunc("/products", h.Finance.AddProduct).Methods("POST")
	admin.HandleFunc("/products/{id}", h.Finance.UpdateProduct).Methods("PUT")
	admin.HandleFunc("/products/{id}", h.Finance.DeleteProduct).Methods("DELETE")
	admin.HandleFunc("/shareholders", h.Finance.Shareholders).Methods("GET")
	admin.HandleFunc("/taxes", h.Finance.Taxes).Methods("GET")
	admin.HandleFunc("/taxes", h.Finance.AddTax).Methods("POST")
	admin.HandleFunc("/bank-accounts", h.Finance.BankAccounts).Methods("GET")
	admin.HandleFunc("/bank-accounts", h.Finance.AddBankAccount).Methods("POST")
	admin.HandleFunc("/bank-accounts/{id}", h.Finance.BankProfile).Methods("GET")
	admin.HandleFunc("/bank-accounts/{id}", h.Finance.UpdateBankAccount).Methods("PUT")
	admin.HandleFunc("/bank-accounts/{id}", h.Finance.DeleteBankAccount).Methods("DELETE")

	return r
}

// NewPortalRouter serves clients and external truck clients under
// /api/portal. Every route acts on the client named in the token.
func NewPortalRouter(h *Handlers, authMiddleware *middleware.AuthMiddleware) *mux.Router {
	r := newBase(h)

	portal := r.PathPrefix("/api/portal").Subrouter()
	portal.Use(authMiddleware.RequireRole(auth.PortalRoles...))

	portal.HandleFunc("/me", h.Portal.Profile).Methods("GET")
	portal.HandleFunc("/dashboard", h.Portal.Dashboard).Methods("GET")
	portal.HandleFunc("/orders", h.Portal.Orders).Methods("GET")
	portal.HandleFunc("/orders", h.Portal.SubmitOrder).Methods("POST")
	portal.HandleFunc("/orders/debt", h.Portal.OrdersWithDebt).Methods("GET")
	portal.HandleFunc("/products", h.Portal.Products).Methods("GET")
	portal.HandleFunc("/products/price", h.Portal.ProductPrice).Methods("GET")
	portal.HandleFunc("/payments", h.Portal.Payments).Methods("GET")
	portal.HandleFunc("/payments", h.Portal.SubmitPayment).Methods("POST")
	portal.HandleFunc("/statement", h.Portal.Statement).Methods("GET")
	portal.HandleFunc("/truck-orders", h.Portal.TruckOrders).Methods("GET")

	return r
}
