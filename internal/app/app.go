// Package app wires stores, services and HTTP handlers together.
package app

import (
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"fuel-backend/internal/auth"
	"fuel-backend/internal/config"
	"fuel-backend/internal/handlers"
	"fuel-backend/internal/health"
	apihttp "fuel-backend/internal/http"
	"fuel-backend/internal/middleware"
	"fuel-backend/internal/repositories"
	"fuel-backend/internal/repositories/memstore"
	"fuel-backend/internal/services"
)

// PostgresStores backs every collection with its JSONB table.
func PostgresStores(pool *pgxpool.Pool) services.Stores {
	return services.Stores{
		Clients:       repositories.NewClientRepository(pool),
		Orders:        repositories.NewOrderRepository(pool),
		Payments:      repositories.NewPaymentRepository(pool),
		TruckPayments: repositories.NewTruckPaymentRepository(pool),
		BDCs:          repositories.NewBDCRepository(pool),
		Trucks:        repositories.NewTruckRepository(pool),
		BankAccounts:  repositories.NewBankAccountRepository(pool),
		Products:      repositories.NewProductRepository(pool),
		Taxes:         repositories.NewTaxRepository(pool),
	}
}

// MemoryStores backs every collection with the in-process store.
func MemoryStores(db *memstore.DB) services.Stores {
	return services.Stores{
		Clients:       db.Clients(),
		Orders:        db.Orders(),
		Payments:      db.Payments(),
		TruckPayments: db.TruckPayments(),
		BDCs:          db.BDCs(),
		Trucks:        db.Trucks(),
		BankAccounts:  db.BankAccounts(),
		Products:      db.Products(),
		Taxes:         db.Taxes(),
	}
}

// Deps are the optional collaborators. A nil Cache disables caching and
// a nil Proofs rejects file uploads.
type Deps struct {
	Cache  services.Cache
	Proofs services.ProofUploader
	Health *health.HealthChecker
	Now    services.Clock
}

type Services struct {
	Clients    *services.ClientService
	Debtors    *services.DebtorService
	Statements *services.StatementService
	Orders     *services.OrderService
	Deliveries *services.DeliveryService
	Payments   *services.PaymentService
	BDCs       *services.BDCService
	Trucks     *services.TruckService
	Products   *services.ProductService
	Finance    *services.FinanceService
}

// NewServices builds every service over st.
func NewServices(cfg *config.Config, st services.Stores, d Deps) *Services {
	products := services.NewProductService(st, d.Cache, d.Now)
	return &Services{
		Clients:    services.NewClientService(st, d.Now),
		Debtors:    services.NewDebtorService(st, d.Now),
		Statements: services.NewStatementService(st, cfg.Business.StatementCategories, cfg.Business.CompanyName, d.Now),
		Orders:     services.NewOrderService(st, products, d.Now),
		Deliveries: services.NewDeliveryService(st, d.Now),
		Payments:   services.NewPaymentService(st, d.Proofs, d.Now),
		BDCs:       services.NewBDCService(st, d.Now),
		Trucks:     services.NewTruckService(st, d.Now),
		Products:   products,
		Finance:    services.NewFinanceService(st, cfg.Business.Shareholders, d.Now),
	}
}

// NewHandlers builds the HTTP handlers over s.
func NewHandlers(s *Services, d Deps) *apihttp.Handlers {
	hc := d.Health
	if hc == nil {
		hc = health.NewHealthChecker()
	}
	debtors := handlers.NewDebtorHandler(s.Debtors, s.Statements, d.Now)
	return &apihttp.Handlers{
		Clients:  handlers.NewClientHandler(s.Clients, s.Payments),
		Debtors:  debtors,
		Orders:   handlers.NewOrderHandler(s.Orders, s.Deliveries),
		Payments: handlers.NewPaymentHandler(s.Payments, s.Trucks),
		BDCs:     handlers.NewBDCHandler(s.BDCs),
		Trucks:   handlers.NewTruckHandler(s.Trucks),
		Finance:  handlers.NewFinanceHandler(s.Finance, s.Products),
		Portal: &handlers.PortalHandler{
			Clients:    s.Clients,
			OrderSvc:   s.Orders,
			PaymentSvc: s.Payments,
			ProductSvc: s.Products,
			Trucks:     s.Trucks,
			Statements: debtors,
		},
		Health: handlers.NewHealthHandler(hc),
	}
}

// Router returns the router for cfg.Server.Mode.
func Router(cfg *config.Config, h *apihttp.Handlers, tokens *auth.JWTManager) *mux.Router {
	am := middleware.NewAuthMiddleware(tokens)
	if cfg.Server.Mode == config.ModeClient {
		return apihttp.NewPortalRouter(h, am)
	}
	return apihttp.NewStaffRouter(h, am)
}
