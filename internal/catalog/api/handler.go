package api

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dwikikusuma/techstore/internal/catalog/app"
	"github.com/dwikikusuma/techstore/internal/catalog/domain"
	"github.com/dwikikusuma/techstore/pkg/httpx"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/products", h.list)
	rg.GET("/products/:ref", h.detail)
}

func (h *Handler) RegisterAdmin(rg *gin.RouterGroup, guard gin.HandlerFunc) {
	g := rg.Group("/products", guard)
	g.GET("", h.adminList)
	g.POST("", h.create)
	g.GET("/:id", h.adminGet)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.PATCH("/:id/stock", h.adjustStock)
}

func filterFromQuery(c *gin.Context) (domain.Filter, httpx.Page) {
	page := httpx.ParsePage(c)
	return domain.Filter{
		Query:      c.Query("q"),
		CategoryID: strings.TrimSpace(c.Query("category_id")),
		Brand:      c.Query("brand"),
		MinPrice:   httpx.QueryInt64(c, "min_price"),
		MaxPrice:   httpx.QueryInt64(c, "max_price"),
		Components: domain.Components{
			CPUID:     strings.TrimSpace(c.Query("cpu_id")),
			RAMID:     strings.TrimSpace(c.Query("ram_id")),
			StorageID: strings.TrimSpace(c.Query("storage_id")),
			GPUID:     strings.TrimSpace(c.Query("gpu_id")),
			DisplayID: strings.TrimSpace(c.Query("display_id")),
		},
		InStock: httpx.QueryBool(c, "in_stock"),
		Sort:    domain.Sort(strings.TrimSpace(c.Query("sort"))),
		Limit:   page.Limit,
		Offset:  page.Offset(),
	}, page
}

func (h *Handler) list(c *gin.Context) {
	f, page := filterFromQuery(c)
	items, total, err := h.svc.ListProducts(c.Request.Context(), f)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.List(c, items, page, total)
}

func (h *Handler) detail(c *gin.Context) {
	ref, ok := httpx.Param(c, "ref")
	if !ok {
		return
	}
	out, err := h.svc.GetProduct(c.Request.Context(), ref)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}

func (h *Handler) adminList(c *gin.Context) {
	f, page := filterFromQuery(c)
	if st := strings.TrimSpace(c.Query("status")); st != "" {
		f.Statuses = []domain.Status{domain.Status(st)}
	}
	items, total, err := h.svc.AdminList(c.Request.Context(), f)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.List(c, items, page, total)
}

func (h *Handler) adminGet(c *gin.Context) {
	id, ok := httpx.Param(c, "id")
	if !ok {
		return
	}
	out, err := h.svc.AdminGet(c.Request.Context(), id)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}

type imageReq struct {
	URL string `json:"url" binding:"required,url,max=500"`
}

type productReq struct {
	CategoryID  string            `json:"category_id"`
	Name        string            `json:"name" binding:"required,max=200"`
	Slug        string            `json:"slug" binding:"max=220"`
	SKU         string            `json:"sku" binding:"max=64"`
	Brand       string            `json:"brand" binding:"max=80"`
	Description string            `json:"description"`
	Currency    string            `json:"currency" binding:"omitempty,len=3"`
	Price       int64             `json:"price" binding:"required,gt=0"`
	SalePrice   int64             `json:"sale_price" binding:"min=0"`
	Stock       int               `json:"stock" binding:"min=0"`
	WeightGrams int               `json:"weight_grams" binding:"min=0"`
	Status      string            `json:"status" binding:"omitempty,oneof=active inactive"`
	Components  domain.Components `json:"components"`
	Images      []imageReq        `json:"images" binding:"max=12,dive"`
}

func (r productReq) input() app.Input {
	images := make([]domain.Image, len(r.Images))
	for i, img := range r.Images {
		images[i] = domain.Image{URL: img.URL, SortOrder: i}
	}
	return app.Input{
		CategoryID:  r.CategoryID,
		Name:        r.Name,
		Slug:        r.Slug,
		SKU:         r.SKU,
		Brand:       r.Brand,
		Description: r.Description,
		Currency:    r.Currency,
		Price:       r.Price,
		SalePrice:   r.SalePrice,
		Stock:       r.Stock,
		WeightGrams: r.WeightGrams,
		Status:      domain.Status(r.Status),
		Components:  r.Components,
		Images:      images,
	}
}

func (h *Handler) create(c *gin.Context) {
	var req productReq
	if !httpx.Bind(c, &req) {
		return
	}
	out, err := h.svc.CreateProduct(c.Request.Context(), req.input())
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Created(c, out)
}

func (h *Handler) update(c *gin.Context) {
	id, ok := httpx.Param(c, "id")
	if !ok {
		return
	}
	var req productReq
	if !httpx.Bind(c, &req) {
		return
	}
	out, err := h.svc.UpdateProduct(c.Request.Context(), id, req.input())
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := httpx.Param(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteProduct(c.Request.Context(), id); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Message(c, "product deleted")
}

type stockReq struct {
	Delta int `json:"delta" binding:"required"`
}

func (h *Handler) adjustStock(c *gin.Context) {
	id, ok := httpx.Param(c, "id")
	if !ok {
		return
	}
	var req stockReq
	if !httpx.Bind(c, &req) {
		return
	}
	out, err := h.svc.AdjustStock(c.Request.Context(), id, req.Delta)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, out)
}
