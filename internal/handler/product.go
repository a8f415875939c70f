package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/luanafs/pantry-api/internal/form"
	"github.com/luanafs/pantry-api/internal/repository"
	"github.com/luanafs/pantry-api/internal/stock"
)

// ProductHandler bundles the pantry product endpoints.
type ProductHandler struct {
	Products *repository.ProductRepo
}

// NewProductHandler constructs a ProductHandler and panics if the
// repository is missing.
func NewProductHandler(products *repository.ProductRepo) *ProductHandler {
	if products == nil {
		panic("nil repository passed to NewProductHandler")
	}
	return &ProductHandler{Products: products}
}

// productView is the read model returned to clients: the stored row plus
// the consumption state derived on read.
type productView struct {
	repository.Product
	Used        uint32 `json:"used"`
	Remaining   uint32 `json:"remaining"`
	IsExhausted bool   `json:"is_exhausted"`
}

func viewOf(p repository.Product) productView {
	return productView{
		Product:     p,
		Used:        stock.Used(p),
		Remaining:   stock.Remaining(p),
		IsExhausted: stock.IsExhausted(p),
	}
}

func viewsOf(products []repository.Product) []productView {
	out := make([]productView, 0, len(products))
	for _, p := range products {
		out = append(out, viewOf(p))
	}
	return out
}

// CreateProduct handles POST /v1/products: validate the form, normalize it
// and insert with usage starting at zero.
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var in form.ProductInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	parsed, errs := form.ParseProduct(in, time.Now().UTC())
	if blocking := errs.Blocking(); len(blocking) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}
	p := &repository.Product{
		UserID:      userID,
		Name:        parsed.Name,
		Brand:       parsed.Brand,
		Link:        parsed.Link,
		Quantity:    parsed.Quantity,
		Suffix:      parsed.Suffix,
		Tags:        parsed.Tags,
		Price:       parsed.Price,
		Fixed:       parsed.Fixed,
		ExpiratedAt: parsed.ExpiratedAt,
	}
	if err := h.Products.Create(c.Request().Context(), p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create product"})
	}
	resp := echo.Map{"product": viewOf(*p)}
	if len(errs) > 0 {
		// Non-blocking issues (a dropped link) still get reported.
		resp["warnings"] = errs
	}
	return c.JSON(http.StatusCreated, resp)
}

// ListProducts handles GET /v1/products and returns the caller's pantry.
func (h *ProductHandler) ListProducts(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Products.ListByOwner(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": viewsOf(items)})
}

// SearchProducts handles GET /v1/products/search?q= with a case-folded
// substring match over names.
func (h *ProductHandler) SearchProducts(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "q is required"})
	}
	items, err := h.Products.SearchByName(c.Request().Context(), userID, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": viewsOf(items), "count": len(items)})
}

// Summary handles GET /v1/products/summary: the home-screen bucket counts.
func (h *ProductHandler) Summary(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Products.ListByOwner(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, stock.AggregateTags(items, time.Now().UTC()))
}

// GetProduct handles GET /v1/products/:id.
func (h *ProductHandler) GetProduct(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	p, err := h.Products.GetByIDAndOwner(c.Request().Context(), id, userID)
	if err != nil {
		if err == repository.ErrProductNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, viewOf(*p))
}

// UpdateProduct handles PUT /v1/products/:id: a full-form edit that is
// re-validated the same way a create is.  Usage is not a form field; the
// store clamps it to the new quantity.
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var in form.ProductInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	parsed, errs := form.ParseProduct(in, time.Now().UTC())
	if blocking := errs.Blocking(); len(blocking) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}
	if _, err := h.Products.GetByIDAndOwner(c.Request().Context(), id, userID); err != nil {
		if err == repository.ErrProductNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	p := &repository.Product{
		ID:          id,
		UserID:      userID,
		Name:        parsed.Name,
		Brand:       parsed.Brand,
		Link:        parsed.Link,
		Quantity:    parsed.Quantity,
		Suffix:      parsed.Suffix,
		Tags:        parsed.Tags,
		Price:       parsed.Price,
		Fixed:       parsed.Fixed,
		ExpiratedAt: parsed.ExpiratedAt,
	}
	if err := h.Products.UpdateByIDAndOwner(c.Request().Context(), p); err != nil {
		if err == repository.ErrProductNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	resp := echo.Map{"product": viewOf(*p)}
	if len(errs) > 0 {
		resp["warnings"] = errs
	}
	return c.JSON(http.StatusOK, resp)
}

// usagePatchReq is the single-field usage mutation: either one step
// forward or a direct slider set.
type usagePatchReq struct {
	Usage     *int `json:"usage"`
	Increment bool `json:"increment"`
}

// PatchUsage handles PATCH /v1/products/:id/usage.  The mutation is
// validated against the stored quantity before anything is persisted, so
// the 0 <= usage <= quantity invariant holds after every accepted patch.
func (h *ProductHandler) PatchUsage(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req usagePatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !req.Increment && req.Usage == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "usage or increment required"})
	}

	p, err := h.Products.GetByIDAndOwner(c.Request().Context(), id, userID)
	if err != nil {
		if err == repository.ErrProductNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	if req.Increment {
		if err := stock.IncrementUsage(p); err != nil {
			return c.JSON(http.StatusConflict, echo.Map{"error": "product is exhausted"})
		}
	} else {
		if err := stock.SetUsage(p, *req.Usage); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "usage out of range"})
		}
	}

	if err := h.Products.UpdateUsage(c.Request().Context(), id, userID, p.Usage); err != nil {
		switch err {
		case repository.ErrProductNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		case repository.ErrUsageOutOfRange:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "usage out of range"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	return c.JSON(http.StatusOK, viewOf(*p))
}

// DeleteProduct handles DELETE /v1/products/:id.
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Products.DeleteByIDAndOwner(c.Request().Context(), id, userID); err != nil {
		if err == repository.ErrProductNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
