package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"invsync/internal/core/apperror"
	"invsync/internal/domain/localstore"
	"invsync/internal/infrastructure/http/v1/dto"
)

// LocalInventoryHandler exposes a Store's local inventory replica and Local
// Write Path over HTTP (spec.md §4.G).
type LocalInventoryHandler struct {
	*BaseHandler
	repo    localstore.InventoryRepository
	service *localstore.Service
}

// NewLocalInventoryHandler creates a new LocalInventoryHandler.
func NewLocalInventoryHandler(base *BaseHandler, repo localstore.InventoryRepository, service *localstore.Service) *LocalInventoryHandler {
	return &LocalInventoryHandler{BaseHandler: base, repo: repo, service: service}
}

// Get handles GET /v1/local/inventory/{sku}.
func (h *LocalInventoryHandler) Get(c *gin.Context) {
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

	c.JSON(http.StatusOK, dto.InventoryState{
		SKU:       row.SKU,
		Name:      row.Name,
		Quantity:  row.Quantity,
		Version:   row.Version,
		UpdatedAt: row.UpdatedAt,
	})
}

// Update handles POST /v1/local/inventory/{sku}/update.
func (h *LocalInventoryHandler) Update(c *gin.Context) {
	sku := c.Param("sku")

	var body dto.LocalUpdateRequest
	if !h.BindJSON(c, &body) {
		return
	}

	state, err := h.service.ApplyLocal(c.Request.Context(), localstore.ApplyLocalRequest{
		SKU:                sku,
		Delta:              body.Delta,
		CentralVersionHint: body.Version,
		OperationID:        body.OperationID,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.InventoryState{
		SKU:       state.SKU,
		Name:      state.Name,
		Quantity:  state.Quantity,
		Version:   state.Version,
		UpdatedAt: state.UpdatedAt,
	})
}
