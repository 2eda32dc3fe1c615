package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuel-backend/internal/app"
	"fuel-backend/internal/auth"
	"fuel-backend/internal/config"
	apihttp "fuel-backend/internal/http"
	"fuel-backend/internal/middleware"
	"fuel-backend/internal/repositories/memstore"
)

type env struct {
	staff  *mux.Router
	portal *mux.Router
	tokens *auth.JWTManager
	admin  string
	asst   string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = "router-test"
	cfg.JWT.Issuer = "fuel-backend"
	cfg.JWT.ExpirationHours = 1
	cfg.Business.CompanyName = "Fuel Trading Ltd"
	cfg.Business.StatementCategories = []string{"PMS", "AGO"}

	now := time.Date(2024, time.March, 28, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	deps := app.Deps{Now: clock}
	h := app.NewHandlers(app.NewServices(cfg, app.MemoryStores(memstore.New()), deps), deps)

	tokens := auth.NewJWTManager(cfg)
	am := middleware.NewAuthMiddleware(tokens)
	e := &env{
		staff:  apihttp.NewStaffRouter(h, am),
		portal: apihttp.NewPortalRouter(h, am),
		tokens: tokens,
	}
	var err error
	e.admin, err = tokens.GenerateToken("kofi", auth.RoleAdmin, "")
	require.NoError(t, err)
	e.asst, err = tokens.GenerateToken("esi", auth.RoleAssistant, "")
	require.NoError(t, err)
	return e
}

func call(t *testing.T, r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestOrderToStatementFlow(t *testing.T) {
	e := newEnv(t)

	rec := call(t, e.staff, "POST", "/api/clients", e.asst, map[string]string{
		"name": "Ama Mensah", "phone": "0244000456", "id_type": "Ghana Card", "id_number": "GHA-1",
		"next_of_kin": "Kojo", "next_of_kin_phone": "0201111111", "relationship": "Brother",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	code := decodeBody(t, rec)["client_id"].(string)
	assert.Equal(t, "TT244560001", code)

	product := map[string]string{"name": "PMS", "p_price": "10", "s_price": "12"}
	assert.Equal(t, http.StatusForbidden, call(t, e.staff, "POST", "/api/admin/products", e.asst, product).Code)
	require.Equal(t, http.StatusCreated, call(t, e.staff, "POST", "/api/admin/products", e.admin, product).Code)

	clientTok, err := e.tokens.GenerateToken("ama", auth.RoleClient, code)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, call(t, e.staff, "GET", "/api/debtors", clientTok, nil).Code)
	assert.Equal(t, http.StatusForbidden, call(t, e.portal, "GET", "/api/portal/dashboard", e.admin, nil).Code)

	rec = call(t, e.portal, "POST", "/api/portal/orders", clientTok, map[string]string{
		"product": "PMS", "quantity": "1,000", "region": "Accra", "vehicle_number": "GR-1-24",
		"driver_name": "Yaw", "driver_phone": "0240000000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decodeBody(t, rec)
	orderID, orderCode := order["id"].(string), order["order_id"].(string)
	assert.Len(t, orderCode, 5)

	rec = call(t, e.staff, "POST", "/api/admin/orders/"+orderID+"/approve", e.admin, map[string]string{
		"order_type": "s_tax", "omc": "Star Oil", "depot": "Tema", "s_tax": "2", "p_tax": "1.5",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2000.0, decodeBody(t, rec)["total_debt"])

	rec = call(t, e.portal, "POST", "/api/portal/payments", clientTok, map[string]string{
		"amount": "500", "bank_name": "GCB", "account_last4": "4050",
		"proof_url": "https://proofs.example.com/a.jpg", "order_id": orderCode,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	paymentID := decodeBody(t, rec)["id"].(string)

	rec = call(t, e.staff, "POST", "/api/payments/"+paymentID+"/confirm", e.asst, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = call(t, e.portal, "GET", "/api/portal/dashboard", clientTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dash := decodeBody(t, rec)
	assert.Equal(t, 2000.0, dash["total_debt"])
	assert.Equal(t, 500.0, dash["total_paid"])
	assert.Equal(t, 1500.0, dash["amount_left"])

	rec = call(t, e.staff, "GET", "/api/debtors", e.asst, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1500.0, decodeBody(t, rec)["amount_left"])

	rec = call(t, e.staff, "GET", "/api/statements/"+code+"?month=3&year=2024", e.asst, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	st := decodeBody(t, rec)
	assert.Equal(t, 1500.0, st["totals"].(map[string]interface{})["closing"])

	rec = call(t, e.portal, "GET", "/api/portal/statement?format=xlsx", clientTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "statement-"+code+"-2024-03.xlsx")

	rec = call(t, e.staff, "GET", "/api/statements/"+code+"?format=pdf", e.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	rec = call(t, e.staff, "GET", "/api/debtors/export", e.asst, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "debtors-20240328.xlsx")
}

func TestErrorMapping(t *testing.T) {
	e := newEnv(t)
	bdc := map[string]string{"name": "Juwel", "phone": "0300", "location": "Tema", "rep_name": "Abena", "rep_phone": "0301"}

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"unknown client", "GET", "/api/clients/nobody", nil, http.StatusNotFound},
		{"missing bdc fields", "POST", "/api/bdcs", map[string]string{"name": "X"}, http.StatusBadRequest},
		{"create bdc", "POST", "/api/bdcs", bdc, http.StatusCreated},
		{"duplicate bdc", "POST", "/api/bdcs", bdc, http.StatusConflict},
		{"bad entry index", "PUT", "/api/bdcs/x/entries/first/delivery", map[string]string{"status": "delivered"}, http.StatusBadRequest},
		{"bad statement format", "GET", "/api/statements/TT1?format=doc", nil, http.StatusBadRequest},
		{"unknown route", "GET", "/api/nothing", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(t, e.staff, tt.method, tt.path, e.admin, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status >= 400 {
				assert.Contains(t, decodeBody(t, rec), "error")
			}
		})
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/bdcs", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+e.admin)
	e.staff.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublicEndpoints(t *testing.T) {
	e := newEnv(t)
	for _, r := range []*mux.Router{e.staff, e.portal} {
		assert.Equal(t, http.StatusOK, call(t, r, "GET", "/health", "", nil).Code)
		assert.Equal(t, http.StatusOK, call(t, r, "GET", "/health/ready", "", nil).Code)
		rec := call(t, r, "GET", "/metrics", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "fuel_http_requests_total")
	}
	assert.Equal(t, http.StatusUnauthorized, call(t, e.staff, "GET", "/api/debtors", "", nil).Code)
}

func TestCatalogueAndHistoryRoutes(t *testing.T) {
	e := newEnv(t)

	rec := call(t, e.staff, "POST", "/api/clients", e.asst, map[string]string{
		"name": "Kwesi Boateng", "phone": "0244000789", "id_type": "Passport", "id_number": "P-1",
		"next_of_kin": "Efua", "next_of_kin_phone": "0201111112", "relationship": "Sister",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	code := decodeBody(t, rec)["client_id"].(string)
	clientTok, err := e.tokens.GenerateToken("kwesi", auth.RoleClient, code)
	require.NoError(t, err)

	product := map[string]string{"name": "AGO", "p_price": "11", "s_price": "13"}
	require.Equal(t, http.StatusCreated, call(t, e.staff, "POST", "/api/admin/products", e.admin, product).Code)

	decodeList := func(rec *httptest.ResponseRecorder) []map[string]interface{} {
		var out []map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
		return out
	}

	rec = call(t, e.staff, "GET", "/api/products", e.asst, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, decodeList(rec), 1)

	rec = call(t, e.staff, "GET", "/api/products/price?name=ago", e.asst, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "AGO", decodeBody(t, rec)["name"])

	rec = call(t, e.portal, "GET", "/api/portal/products", clientTok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	products := decodeList(rec)
	require.Len(t, products, 1)
	assert.Equal(t, "AGO", products[0]["name"])

	rec = call(t, e.portal, "GET", "/api/portal/products/price?name=AGO", clientTok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "AGO", decodeBody(t, rec)["name"])
	assert.Equal(t, http.StatusNotFound, call(t, e.portal, "GET", "/api/portal/products/price?name=LPG", clientTok, nil).Code)

	rec = call(t, e.portal, "POST", "/api/portal/orders", clientTok, map[string]string{
		"product": "AGO", "quantity": "500", "region": "Kumasi", "vehicle_number": "AS-9-23",
		"driver_name": "Kofi", "driver_phone": "0240000001",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	orderCode := decodeBody(t, rec)["order_id"].(string)

	rec = call(t, e.portal, "GET", "/api/portal/orders", clientTok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decodeBody(t, rec)["orders"], 1)

	rec = call(t, e.portal, "POST", "/api/portal/payments", clientTok, map[string]string{
		"amount": "250", "bank_name": "Ecobank", "account_last4": "1200",
		"proof_url": "https://proofs.example.com/b.jpg", "order_id": orderCode,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = call(t, e.portal, "GET", "/api/portal/payments", clientTok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decodeList(rec), 1)
}
