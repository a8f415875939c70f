package handler

import (
	"context"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/luanafs/pantry-api/internal/form"
	"github.com/luanafs/pantry-api/internal/queue"
	"github.com/luanafs/pantry-api/internal/repository"
	"github.com/luanafs/pantry-api/internal/session"
	queue_publisher "github.com/luanafs/pantry-api/internal/service"
	"github.com/luanafs/pantry-api/internal/stock"
)

// ShoppingListHandler bundles the shopping-list endpoints.  The persisted
// rows live in the shopping_items table; the purchased flags and quantity
// corrections of an in-flight shopping run live in the session store and
// only commit (as a batch delete) when the run is finished.
type ShoppingListHandler struct {
	Items    *repository.ShoppingItemRepo
	Products *repository.ProductRepo
	Sessions session.Store
	// Publish emits the purchase-finished event.  A field so the broker
	// can be swapped out in tests.
	Publish func(ctx context.Context, ev queue.PurchaseFinishedEvent) error
}

// NewShoppingListHandler constructs a ShoppingListHandler and panics on a
// missing dependency.
func NewShoppingListHandler(items *repository.ShoppingItemRepo, products *repository.ProductRepo, sessions session.Store) *ShoppingListHandler {
	if items == nil || products == nil || sessions == nil {
		panic("nil dependency passed to NewShoppingListHandler")
	}
	return &ShoppingListHandler{
		Items:    items,
		Products: products,
		Sessions: sessions,
		Publish:  queue_publisher.PublishPurchaseFinished,
	}
}

// List handles GET /v1/shopping-list: the stored rows split into pending
// and purchased through the caller's session.  An empty list is a valid
// empty state.
func (h *ShoppingListHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	items, err := h.Items.ListByOwner(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	sess, err := h.Sessions.Load(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session error"})
	}
	pending, purchased := sess.Project(items)
	return c.JSON(http.StatusOK, echo.Map{
		"pending":   pending,
		"purchased": purchased,
	})
}

// Add handles POST /v1/shopping-list: a validated ad hoc entry with a
// name, quantity and unit.
func (h *ShoppingListHandler) Add(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var in form.ShoppingItemInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	parsed, errs := form.ParseShoppingItem(in)
	if blocking := errs.Blocking(); len(blocking) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}
	it := &repository.ShoppingItem{
		UserID:   userID,
		Name:     parsed.Name,
		Quantity: parsed.Quantity,
		Suffix:   parsed.Suffix,
		Link:     parsed.Link,
	}
	if err := h.Items.Create(c.Request().Context(), it); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not add item"})
	}
	resp := echo.Map{"item": it}
	if len(errs) > 0 {
		resp["warnings"] = errs
	}
	return c.JSON(http.StatusCreated, resp)
}

// MarkPurchased handles POST /v1/shopping-list/:id/purchased: tick one
// item off in the session only.  Marking twice is a no-op, reported as
// changed=false.
func (h *ShoppingListHandler) MarkPurchased(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Items.GetByIDAndOwner(ctx, id, userID); err != nil {
		if err == repository.ErrItemNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	sess, err := h.Sessions.Load(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session error"})
	}
	changed := sess.MarkPurchased(id)
	if changed {
		if err := h.Sessions.Save(ctx, userID, sess); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "purchased": true, "changed": changed})
}

// quantityPatchReq reconciles "I actually bought 3, not 2".
type quantityPatchReq struct {
	Quantity *int `json:"quantity"`
}

// UpdateQuantity handles PATCH /v1/shopping-list/:id: a session-local
// quantity override for one pending item.  The stored row is untouched.
func (h *ShoppingListHandler) UpdateQuantity(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req quantityPatchReq
	if err := c.Bind(&req); err != nil || req.Quantity == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity is required"})
	}
	if *req.Quantity < 0 || int64(*req.Quantity) > math.MaxUint32 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity is out of range"})
	}
	ctx := c.Request().Context()
	if _, err := h.Items.GetByIDAndOwner(ctx, id, userID); err != nil {
		if err == repository.ErrItemNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	sess, err := h.Sessions.Load(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session error"})
	}
	if !sess.UpdateQuantity(id, uint32(*req.Quantity)) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "item already purchased"})
	}
	if err := h.Sessions.Save(ctx, userID, sess); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "quantity": *req.Quantity})
}

// Finish handles POST /v1/shopping-list/finish: the point where the
// ephemeral workflow commits.  Exactly the ids pending at call time are
// deleted in one batch, a PurchaseFinishedEvent goes out and the session
// is discarded.
func (h *ShoppingListHandler) Finish(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var in form.FinishInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	parsed, errs := form.ParseFinish(in)
	if blocking := errs.Blocking(); len(blocking) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}

	ctx := c.Request().Context()
	items, err := h.Items.ListByOwner(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	sess, err := h.Sessions.Load(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session error"})
	}

	pendingIDs := sess.PendingIDs(items)
	var names []string
	for _, it := range items {
		if !sess.Purchased[it.ID] {
			names = append(names, it.Name)
		}
	}

	deleted, err := h.Items.DeleteByIDs(ctx, userID, pendingIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "finish failed"})
	}

	finishedAt := time.Now().UTC().Format(time.RFC3339)
	// Fire-and-forget: a broker outage must not fail the purchase.
	_ = h.Publish(ctx, queue.PurchaseFinishedEvent{
		UserID:           userID,
		ItemIDs:          pendingIDs,
		ItemNames:        names,
		ItemCount:        len(pendingIDs),
		TotalPriceCents:  parsed.PriceCents,
		DeliveryForecast: parsed.DeliveryForecast,
		FinishedAt:       finishedAt,
	})

	// The batch delete is the commit point.  A failed clear only leaves a
	// stale session whose flags point at rows that no longer exist, so it
	// is logged rather than turned into an error for a finished purchase.
	if err := h.Sessions.Clear(ctx, userID); err != nil {
		log.Printf("shopping: session clear failed for user %d: %v", userID, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"deleted":     deleted,
		"finished_at": finishedAt,
	})
}

// Candidates handles GET /v1/shopping-list/candidates: the pantry
// products that are exhausted and therefore due for repurchase.
func (h *ShoppingListHandler) Candidates(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	products, err := h.Products.ListByOwner(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": viewsOf(stock.Candidates(products))})
}
