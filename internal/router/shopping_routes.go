package router

import (
	"github.com/labstack/echo/v4"

	"github.com/luanafs/pantry-api/internal/handler"
	"github.com/luanafs/pantry-api/internal/middleware"
)

// RegisterShoppingList registers the shopping-list endpoints under
// /v1/shopping-list.  All routes require a valid JWT.  The list view is
// deliberately not cached: it mixes stored rows with per-session purchased
// state, so a cached response could show another request's stale split.
func RegisterShoppingList(e *echo.Echo, h *handler.ShoppingListHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/shopping-list",
		middleware.JWTAuth(jwtSecret),
		limit,
	)

	g.GET("", h.List)
	g.POST("", h.Add)
	// Exhausted pantry products that are due for repurchase.
	g.GET("/candidates", h.Candidates)
	// Finalize the run: batch delete pending rows, emit the event, drop the session.
	g.POST("/finish", h.Finish)
	g.POST("/:id/purchased", h.MarkPurchased)
	g.PATCH("/:id", h.UpdateQuantity)
}
