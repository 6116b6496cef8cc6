package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"invsync/internal/core/apperror"
	appctx "invsync/internal/core/context"
	"invsync/internal/domain/inventory"
	"invsync/internal/infrastructure/http/v1/dto"
)

// InventoryHandler exposes Central's Inventory Mutation Engine and Bulk Sync
// Coordinator over HTTP (spec.md §4.E, §4.F).
type InventoryHandler struct {
	*BaseHandler
	repo   inventory.Repository
	engine *inventory.Engine
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(base *BaseHandler, repo inventory.Repository, engine *inventory.Engine) *InventoryHandler {
	return &InventoryHandler{BaseHandler: base, repo: repo, engine: engine}
}

// Get handles GET /v1/inventory/{sku}.
func (h *InventoryHandler) Get(c *gin.Context) {
	sku := c.Param("sku")

	row, err := h.repo.Get(c.Request.Context(), sku)
	if err != nil {
		h.Error(c, err)
		return
	}
	if row == nil {
		h.Error(c, apperror.NewNotFound("SKU", sku))
		return
	}

	c.JSON(http.StatusOK, toInventoryState(row))
}

// Adjust handles POST /v1/inventory/{sku}/adjust.
func (h *InventoryHandler) Adjust(c *gin.Context) {
	sku := c.Param("sku")

	var body dto.AdjustRequest
	if !h.BindJSON(c, &body) {
		return
	}

	state, err := h.engine.AdjustInventory(c.Request.Context(), inventory.AdjustRequest{
		SKU:             sku,
		Delta:           body.Delta,
		ExpectedVersion: body.Version,
		IdempotencyKey:  c.GetHeader("Idempotency-Key"),
		CallerService:   appctx.GetServiceName(c.Request.Context()),
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, fromState(state))
}

// BulkSync handles POST /v1/inventory/bulk-sync.
func (h *InventoryHandler) BulkSync(c *gin.Context) {
	var body dto.BulkSyncRequest
	if !h.BindJSON(c, &body) {
		return
	}

	items := make([]inventory.UpdateItem, len(body.Items))
	for i, item := range body.Items {
		items[i] = inventory.UpdateItem{
			SKU:         item.SKU,
			Delta:       item.Delta,
			Version:     item.Version,
			OperationID: item.OperationID,
		}
	}

	states, err := h.engine.BulkAdjust(c.Request.Context(), items)
	if err != nil {
		h.Error(c, err)
		return
	}

	out := make([]dto.InventoryState, len(states))
	for i, s := range states {
		out[i] = fromState(s)
	}
	c.JSON(http.StatusOK, out)
}

func toInventoryState(inv *inventory.Inventory) dto.InventoryState {
	return dto.InventoryState{
		SKU:       inv.SKU,
		Name:      inv.Name,
		Quantity:  inv.Quantity,
		Version:   inv.Version,
		UpdatedAt: inv.UpdatedAt,
	}
}

func fromState(s inventory.State) dto.InventoryState {
	return dto.InventoryState{
		SKU:       s.SKU,
		Name:      s.Name,
		Quantity:  s.Quantity,
		Version:   s.Version,
		UpdatedAt: s.UpdatedAt,
	}
}
