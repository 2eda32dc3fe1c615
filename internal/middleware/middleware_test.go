package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"fuel-backend/internal/auth"
)

type fakeTokens map[string]*auth.Claims

func (f fakeTokens) ValidateToken(tok string) (*auth.Claims, error) {
	if c, ok := f[tok]; ok {
		return c, nil
	}
	return nil, errors.New("bad token")
}

func TestRequireRole(t *testing.T) {
	tokens := fakeTokens{
		"staff":  {Role: auth.RoleAdmin},
		"client": {Role: auth.RoleClient, ClientID: "TT1"},
	}
	var seen *auth.Claims
	h := NewAuthMiddleware(tokens).RequireRole(auth.StaffRoles...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := map[string]struct {
		header string
		status int
	}{
		"missing":     {"", http.StatusUnauthorized},
		"malformed":   {"Token staff", http.StatusUnauthorized},
		"invalid":     {"Bearer nope", http.StatusUnauthorized},
		"wrong role":  {"Bearer client", http.StatusForbidden},
		"staff token": {"Bearer staff", http.StatusNoContent},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.status >= 400 {
				assert.Contains(t, rec.Body.String(), `"error"`)
			}
		})
	}
	assert.Equal(t, auth.RoleAdmin, seen.Role)
}

func TestPanicRecovery(t *testing.T) {
	h := PanicRecovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}

func TestRequestLoggerSetsID(t *testing.T) {
	r := mux.NewRouter()
	var id string
	r.HandleFunc("/api/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		id = RequestIDFromContext(r.Context())
		assert.Equal(t, "/api/orders/{id}", routeLabel(r))
	})
	r.Use(RequestLogger, MetricsMiddleware)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/orders/42", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	r.ServeHTTP(rec, req)
	assert.Equal(t, "req-1", id)
	assert.Equal(t, "req-1", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/43", nil))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}
