package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"invsync/internal/core/apperror"
	"invsync/internal/domain/localstore"
	"invsync/internal/domain/syncworker"
	"invsync/internal/infrastructure/http/v1/dto"
)

// SyncHandler exposes a Store's Sync Worker over HTTP (spec.md §4.H): status
// lookups against the PendingChange log and an on-demand trigger.
type SyncHandler struct {
	*BaseHandler
	pending localstore.PendingChangeRepository
	worker  *syncworker.Worker
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(base *BaseHandler, pending localstore.PendingChangeRepository, worker *syncworker.Worker) *SyncHandler {
	return &SyncHandler{BaseHandler: base, pending: pending, worker: worker}
}

// Status handles GET /v1/local/sync/status/{operation_id}.
func (h *SyncHandler) Status(c *gin.Context) {
	operationID := c.Param("operation_id")

	change, err := h.pending.GetByOperationID(c.Request.Context(), operationID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if change == nil {
		h.Error(c, apperror.NewNotFound("operation", operationID))
		return
	}

	resp := dto.SyncStatusResponse{}
	switch change.Status {
	case localstore.StatusCompleted:
		resp.OK = true
		resp.Message = "synced"
	case localstore.StatusFailed:
		resp.OK = false
		resp.Message = "sync failed"
		if change.Error != nil {
			resp.Message = *change.Error
		}
	default:
		resp.OK = false
		resp.Message = "sync in progress"
	}

	c.JSON(http.StatusOK, resp)
}

// Trigger handles POST /v1/local/sync/trigger: runs one Sync Worker pass
// synchronously and reports whether it completed.
func (h *SyncHandler) Trigger(c *gin.Context) {
	if err := h.worker.ProcessPendingOnce(c.Request.Context()); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TriggerSyncResponse{OK: true, Message: "sync pass completed"})
}
