// Package handlers provides HTTP request handlers for Central and a Store.
package handlers

import (
	"github.com/gin-gonic/gin"

	"invsync/internal/core/apperror"
)

// BaseHandler provides common handler utilities shared by every endpoint.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates a JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers the error on the Gin context and aborts; the actual JSON
// envelope is produced by middleware.ErrorHandler, the single source of truth
// for the `{"detail": ...}` wire shape (spec.md §6/§7).
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
