package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	userapp "github.com/dwikikusuma/techstore/internal/user/app"
	"github.com/dwikikusuma/techstore/pkg/auth"
	"github.com/dwikikusuma/techstore/pkg/cache"
	"github.com/dwikikusuma/techstore/pkg/events"
	"github.com/dwikikusuma/techstore/pkg/testdb"
)

const testSecret = "router-test-secret"

func init() { gin.SetMode(gin.TestMode) }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newTestRouter(t *testing.T) (*gin.Engine, services) {
	t.Helper()
	db := testdb.Open(t, migrators...)
	log := zap.NewNop()
	svcs := wire(db, cache.NewMemory(), time.Minute, events.NewLog(log), log)
	require.NoError(t, svcs.Roles.EnsureDefaults(context.Background()))
	return newRouter(routerOptions{
		Verifier:   auth.NewVerifier(testSecret, ""),
		CookieName: "access_token",
	}, db, svcs, log), svcs
}

// seedUser stores a user with role and returns its id.
func seedUser(t *testing.T, svcs services, email, role string) string {
	t.Helper()
	u, err := svcs.Users.Create(context.Background(), userapp.CreateInput{
		Name: "Seed", Email: email, Password: "secret-pass", Role: role,
	})
	require.NoError(t, err)
	return u.ID
}

func token(t *testing.T, sub, role string) string {
	t.Helper()
	claims := auth.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func call(t *testing.T, r http.Handler, method, path, tok string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func TestOperationalRoutes(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	code, env := call(t, r, http.MethodGet, "/api/v1/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestAccessControl(t *testing.T) {
	r, svcs := newTestRouter(t)
	admin := token(t, seedUser(t, svcs, "admin@example.com", "admin"), "admin")
	customer := token(t, seedUser(t, svcs, "cust@example.com", "customer"), "customer")

	code, _ := call(t, r, http.MethodGet, "/api/v1/settings", "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = call(t, r, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = call(t, r, http.MethodGet, "/api/v1/products", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = call(t, r, http.MethodGet, "/api/v1/admin/roles", customer, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env := call(t, r, http.MethodGet, "/api/v1/admin/roles", admin, nil)
	require.Equal(t, http.StatusOK, code)
	var roles []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &roles))
	assert.Len(t, roles, 2)
}

func TestCheckoutFlow(t *testing.T) {
	r, svcs := newTestRouter(t)
	admin := token(t, seedUser(t, svcs, "admin@example.com", "admin"), "admin")

	code, env := call(t, r, http.MethodPost, "/api/v1/admin/users", admin, map[string]any{
		"name": "Rina", "email": "rina@example.com", "password": "secret-pass",
	})
	require.Equal(t, http.StatusCreated, code)
	var user struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &user))
	customer := token(t, user.ID, "customer")

	code, env = call(t, r, http.MethodPost, "/api/v1/admin/products", admin, map[string]any{
		"name": "Wireless Mouse", "price": 150000, "stock": 5,
	})
	require.Equal(t, http.StatusCreated, code)
	var product struct {
		ID    string `json:"id"`
		Stock int    `json:"stock"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &product))

	code, _ = call(t, r, http.MethodPost, "/api/v1/me/addresses", customer, map[string]any{
		"recipient": "Rina", "phone": "081234567890", "line1": "Jl. Merdeka 1", "city": "Bandung",
	})
	require.Equal(t, http.StatusCreated, code)

	code, _ = call(t, r, http.MethodPost, "/api/v1/cart/items", customer, map[string]any{
		"product_id": product.ID, "quantity": 2,
	})
	require.Less(t, code, 300)

	code, env = call(t, r, http.MethodPost, "/api/v1/checkout/quote", customer, map[string]any{})
	require.Equal(t, http.StatusOK, code)
	var quote struct {
		Subtotal int64 `json:"subtotal"`
		Shipping int64 `json:"shipping"`
		Total    int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &quote))
	assert.Equal(t, int64(300000), quote.Subtotal)
	assert.Equal(t, int64(315000), quote.Total)

	code, _ = call(t, r, http.MethodPost, "/api/v1/checkout", customer, map[string]any{"payment_method": "bitcoin"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = call(t, r, http.MethodPost, "/api/v1/checkout", customer, map[string]any{"payment_method": "cod"})
	require.Equal(t, http.StatusCreated, code)
	var receipt struct {
		OrderID string `json:"order_id"`
		Total   int64  `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &receipt))
	assert.Equal(t, int64(315000), receipt.Total)

	code, env = call(t, r, http.MethodGet, "/api/v1/admin/products/"+product.ID, admin, nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &product))
	assert.Equal(t, 3, product.Stock)

	code, _ = call(t, r, http.MethodPost, "/api/v1/orders/"+receipt.OrderID+"/cancel", customer, nil)
	require.Equal(t, http.StatusOK, code)

	code, env = call(t, r, http.MethodGet, "/api/v1/admin/products/"+product.ID, admin, nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &product))
	assert.Equal(t, 5, product.Stock)

	stranger := token(t, seedUser(t, svcs, "other@example.com", "customer"), "customer")
	code, _ = call(t, r, http.MethodGet, "/api/v1/orders/"+receipt.OrderID, stranger, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRevokedAccess(t *testing.T) {
	r, svcs := newTestRouter(t)
	root := token(t, seedUser(t, svcs, "root@example.com", "admin"), "admin")
	staffID := seedUser(t, svcs, "staff@example.com", "admin")
	staff := token(t, staffID, "admin")
	custID := seedUser(t, svcs, "cust@example.com", "customer")

	code, _ := call(t, r, http.MethodGet, "/api/v1/admin/users", staff, nil)
	require.Equal(t, http.StatusOK, code)

	t.Run("claimed role is not trusted", func(t *testing.T) {
		code, _ := call(t, r, http.MethodGet, "/api/v1/admin/users", token(t, custID, "admin"), nil)
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("unknown subject -> 401", func(t *testing.T) {
		code, _ := call(t, r, http.MethodGet, "/api/v1/cart", token(t, uuid.NewString(), "customer"), nil)
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("demoted admin -> 403", func(t *testing.T) {
		code, _ := call(t, r, http.MethodPut, "/api/v1/admin/users/"+staffID+"/role", root, map[string]any{"role": "customer"})
		require.Equal(t, http.StatusOK, code)

		code, _ = call(t, r, http.MethodGet, "/api/v1/admin/users", staff, nil)
		assert.Equal(t, http.StatusForbidden, code)
		code, _ = call(t, r, http.MethodGet, "/api/v1/cart", staff, nil)
		assert.Equal(t, http.StatusOK, code)
	})

	t.Run("deleted user -> 401", func(t *testing.T) {
		code, _ := call(t, r, http.MethodDelete, "/api/v1/admin/users/"+staffID, root, nil)
		require.Equal(t, http.StatusOK, code)

		code, _ = call(t, r, http.MethodGet, "/api/v1/cart", staff, nil)
		assert.Equal(t, http.StatusUnauthorized, code)
		code, _ = call(t, r, http.MethodGet, "/api/v1/products", staff, nil)
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("disabled user -> 401", func(t *testing.T) {
		cust := token(t, custID, "customer")
		code, _ := call(t, r, http.MethodGet, "/api/v1/cart", cust, nil)
		require.Equal(t, http.StatusOK, code)

		code, _ = call(t, r, http.MethodPut, "/api/v1/admin/users/"+custID, root, map[string]any{
			"name": "Seed", "email": "cust@example.com", "status": "disabled",
		})
		require.Equal(t, http.StatusOK, code)

		code, _ = call(t, r, http.MethodGet, "/api/v1/cart", cust, nil)
		assert.Equal(t, http.StatusUnauthorized, code)
	})
}
