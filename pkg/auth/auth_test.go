package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/techstore/pkg/apperr"
)

const secret = "test-secret"

func init() { gin.SetMode(gin.TestMode) }

func sign(t *testing.T, key string, method jwt.SigningMethod, claims Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return tok
}

func validClaims(sub, role string) Claims {
	return Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    "identity",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestVerify(t *testing.T) {
	v := NewVerifier(secret, "identity")

	t.Run("valid token -> principal", func(t *testing.T) {
		p, err := v.Verify(sign(t, secret, jwt.SigningMethodHS256, validClaims("u-1", "customer")))
		require.NoError(t, err)
		assert.Equal(t, Principal{UserID: "u-1", Role: "customer"}, p)
	})

	t.Run("wrong secret -> invalid", func(t *testing.T) {
		_, err := v.Verify(sign(t, "other", jwt.SigningMethodHS256, validClaims("u-1", "customer")))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired -> invalid", func(t *testing.T) {
		c := validClaims("u-1", "customer")
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
		_, err := v.Verify(sign(t, secret, jwt.SigningMethodHS256, c))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing exp -> invalid", func(t *testing.T) {
		c := validClaims("u-1", "customer")
		c.ExpiresAt = nil
		_, err := v.Verify(sign(t, secret, jwt.SigningMethodHS256, c))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer -> invalid", func(t *testing.T) {
		c := validClaims("u-1", "customer")
		c.Issuer = "someone-else"
		_, err := v.Verify(sign(t, secret, jwt.SigningMethodHS256, c))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other hmac alg -> invalid", func(t *testing.T) {
		_, err := v.Verify(sign(t, secret, jwt.SigningMethodHS512, validClaims("u-1", "customer")))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("empty subject -> invalid", func(t *testing.T) {
		_, err := v.Verify(sign(t, secret, jwt.SigningMethodHS256, validClaims("", "customer")))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

type staticResolver map[string][]string

func (r staticResolver) Permissions(_ context.Context, role string) ([]string, error) {
	return r[role], nil
}

type staticAccounts map[string]Account

func (a staticAccounts) Account(_ context.Context, id string) (Account, error) {
	if id == "u-err" {
		return Account{}, errors.New("db down")
	}
	acc, ok := a[id]
	if !ok {
		return Account{}, apperr.ErrNotFound
	}
	return acc, nil
}

func newRouter(accounts AccountResolver) *gin.Engine {
	v := NewVerifier(secret, "")
	r := gin.New()
	r.Use(Authenticate(v, "access_token", accounts))
	r.GET("/public", func(c *gin.Context) {
		_, ok := FromContext(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok})
	})
	r.GET("/me", RequireUser(), func(c *gin.Context) {
		c.String(http.StatusOK, MustUserID(c))
	})
	resolver := staticResolver{"admin": {Wildcard}, "editor": {"products.manage"}}
	r.GET("/admin/products", RequirePermission(resolver, "products.manage"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/admin/users", RequirePermission(resolver, "users.manage"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r *gin.Engine, path string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(tok string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }
}

func TestMiddleware(t *testing.T) {
	r := newRouter(nil)
	customer := sign(t, secret, jwt.SigningMethodHS256, validClaims("u-7", "customer"))
	editor := sign(t, secret, jwt.SigningMethodHS256, validClaims("u-8", "editor"))
	admin := sign(t, secret, jwt.SigningMethodHS256, validClaims("u-9", "admin"))

	assert.Contains(t, do(r, "/public", nil).Body.String(), `"authenticated":false`)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/public", bearer("garbage")).Code)

	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", nil).Code)
	w := do(r, "/me", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "access_token", Value: customer})
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-7", w.Body.String())

	// cookie takes precedence over the header
	w = do(r, "/me", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "access_token", Value: customer})
		req.Header.Set("Authorization", "Bearer "+admin)
	})
	assert.Equal(t, "u-7", w.Body.String())

	assert.Equal(t, http.StatusForbidden, do(r, "/admin/products", bearer(customer)).Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin/products", bearer(editor)).Code)
	assert.Equal(t, http.StatusForbidden, do(r, "/admin/users", bearer(editor)).Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin/users", bearer(admin)).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/admin/users", nil).Code)
}

func TestAuthenticateUsesStoredAccount(t *testing.T) {
	r := newRouter(staticAccounts{
		"u-1": {Role: "customer", Active: true},
		"u-2": {Role: "admin", Active: true},
		"u-3": {Role: "admin", Active: false},
	})
	tok := func(sub, role string) func(*http.Request) {
		return bearer(sign(t, secret, jwt.SigningMethodHS256, validClaims(sub, role)))
	}

	t.Run("claimed role is ignored", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, do(r, "/admin/users", tok("u-1", "admin")).Code)
		assert.Equal(t, http.StatusNoContent, do(r, "/admin/users", tok("u-2", "customer")).Code)
	})

	t.Run("disabled account -> 401", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do(r, "/admin/users", tok("u-3", "admin")).Code)
		assert.Equal(t, http.StatusUnauthorized, do(r, "/public", tok("u-3", "admin")).Code)
	})

	t.Run("unknown account -> 401", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do(r, "/me", tok("u-404", "customer")).Code)
	})

	t.Run("lookup failure -> 500", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, do(r, "/me", tok("u-err", "customer")).Code)
	})
}
