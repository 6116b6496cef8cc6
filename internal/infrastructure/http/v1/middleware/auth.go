package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"invsync/internal/core/apperror"
	appctx "invsync/internal/core/context"
)

// TokenVerifier validates a bearer token and resolves the caller's identity.
// Implemented by auth.TokenVerifier (spec §4.B).
type TokenVerifier interface {
	Verify(ctx context.Context, bearer string) (*appctx.ServiceContext, error)
}

// Auth middleware validates the bearer token and populates ServiceContext.
// There is no end-user session in this system — every authenticated caller
// is a service.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		svc, err := verifier.Verify(c.Request.Context(), parts[1])
		if err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				_ = c.Error(appErr)
			} else {
				_ = c.Error(apperror.NewAuthInvalidToken().WithCause(err))
			}
			c.Abort()
			return
		}

		ctx := appctx.WithService(c.Request.Context(), svc)
		c.Request = c.Request.WithContext(ctx)
		c.Set("service_name", svc.ServiceName)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
