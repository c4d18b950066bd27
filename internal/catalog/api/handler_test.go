package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dwikikusuma/techstore/internal/catalog/app"
	"github.com/dwikikusuma/techstore/internal/catalog/domain"
	"github.com/dwikikusuma/techstore/internal/catalog/infra/postgres"
	"github.com/dwikikusuma/techstore/pkg/apperr"
	"github.com/dwikikusuma/techstore/pkg/httpx"
	"github.com/dwikikusuma/techstore/pkg/testdb"
)

type noCategories struct{}

func (noCategories) Exists(context.Context, string) (bool, error) { return false, nil }

type noComponents struct{}

func (noComponents) Exists(context.Context, string, string) (bool, error) { return false, nil }
func (noComponents) Describe(context.Context, string, string) (domain.ComponentSpec, error) {
	return domain.ComponentSpec{}, apperr.ErrNotFound
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := postgres.NewProductRepo(testdb.Open(t, postgres.AutoMigrate))
	h := NewHandler(app.NewService(repo, noCategories{}, noComponents{}, nil, zap.NewNop()))

	r := gin.New()
	v1 := r.Group("/api/v1")
	h.RegisterPublic(v1)
	h.RegisterAdmin(v1.Group("/admin"), func(c *gin.Context) { c.Next() })
	return r
}

func do(r *gin.Engine, method, target, body string) (*httptest.ResponseRecorder, httpx.Envelope) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env httpx.Envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestProductLifecycleOverHTTP(t *testing.T) {
	r := newRouter(t)

	w, env := do(r, http.MethodPost, "/api/v1/admin/products",
		`{"name":"Legion 5","price":20000000,"sale_price":18000000,"stock":2,"images":[{"url":"https://x.io/a.jpg"}]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := env.Data.(map[string]any)
	id := created["id"].(string)
	assert.Equal(t, "legion-5", created["slug"])
	assert.EqualValues(t, 18000000, created["effective_price"])

	w, env = do(r, http.MethodGet, "/api/v1/products/legion-5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, env.Data.(map[string]any)["id"])

	w, env = do(r, http.MethodGet, "/api/v1/products?q=legion&limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(1), env.Meta.Total)
	assert.Equal(t, 5, env.Meta.Limit)

	w, _ = do(r, http.MethodPatch, "/api/v1/admin/products/"+id+"/stock", `{"delta":-3}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = do(r, http.MethodPut, "/api/v1/admin/products/"+id,
		`{"name":"Legion 5","price":20000000,"status":"inactive"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = do(r, http.MethodGet, "/api/v1/products/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(r, http.MethodDelete, "/api/v1/admin/products/"+id, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w, env = do(r, http.MethodGet, "/api/v1/admin/products?status=deleted", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), env.Meta.Total)
}

func TestCreateProductRejectsBadBody(t *testing.T) {
	r := newRouter(t)

	w, env := do(r, http.MethodPost, "/api/v1/admin/products", `{"name":"","price":0}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "required", env.Error.Details["name"])

	w, _ = do(r, http.MethodPost, "/api/v1/admin/products", `{"name":"x","price":10,"category_id":"missing"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
