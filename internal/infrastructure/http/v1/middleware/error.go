package middleware

import (
	"github.com/gin-gonic/gin"

	"invsync/internal/core/apperror"
	"invsync/pkg/logger"
)

// ErrorHandler middleware transforms errors into the wire envelope the
// protocol requires: `{"detail": "..."}` for plain errors, and
// `{"detail": {"error": "CONFLICT", "message": ..., "current_state": ...}}`
// for version conflicts (spec §6/§7). Hides internal error causes from
// clients while logging full details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		// If the handler already wrote a response, don't override it.
		if c.Writer.Written() {
			return
		}

		appErr, ok := apperror.AsAppError(err)
		if !ok {
			logger.Error(c.Request.Context(), "unhandled error", "error", err)
			c.JSON(500, gin.H{"detail": "Internal server error"})
			return
		}

		if appErr.Err != nil {
			logger.Error(c.Request.Context(), "request error",
				"code", appErr.Code,
				"cause", appErr.Err,
			)
		}

		if appErr.Code == apperror.CodeConflict {
			c.JSON(appErr.HTTPStatus, gin.H{
				"detail": gin.H{
					"error":         "CONFLICT",
					"message":       appErr.Message,
					"current_state": appErr.Details["current_state"],
				},
			})
			return
		}

		c.JSON(appErr.HTTPStatus, gin.H{"detail": appErr.Message})
	}
}
