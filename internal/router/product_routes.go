package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/luanafs/pantry-api/internal/handler"    // pantry handlers
	"github.com/luanafs/pantry-api/internal/middleware" // JWT middleware
)

// RegisterProducts registers the pantry endpoints under /v1/products.
// All routes require a valid JWT; reads additionally go through the
// response cache and every route through the rate limiter (both are
// pass-throughs when not configured).
func RegisterProducts(e *echo.Echo, p *handler.ProductHandler, jwtSecret string, cache, limit echo.MiddlewareFunc) {
	// Attach middlewares at group construction time for clarity.
	g := e.Group(
		"/v1/products",
		middleware.JWTAuth(jwtSecret),
		limit,
	)

	// ---- Writes ----
	g.POST("", p.CreateProduct)
	g.PUT("/:id", p.UpdateProduct)
	g.PATCH("/:id/usage", p.PatchUsage)
	g.DELETE("/:id", p.DeleteProduct)

	// ---- Reads ----
	// NOTE: /search and /summary must be registered before /:id so Echo does
	// not swallow them as an id parameter.
	g.GET("", p.ListProducts, cache)
	g.GET("/search", p.SearchProducts, cache)
	g.GET("/summary", p.Summary, cache)
	g.GET("/:id", p.GetProduct, cache)
}
