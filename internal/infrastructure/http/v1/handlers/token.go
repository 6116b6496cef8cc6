package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"invsync/internal/domain/auth"
	"invsync/internal/infrastructure/http/v1/dto"
)

// TokenHandler issues service-to-service bearer tokens (spec.md §4.A).
type TokenHandler struct {
	*BaseHandler
	issuer *auth.TokenIssuer
}

// NewTokenHandler creates a new TokenHandler.
func NewTokenHandler(base *BaseHandler, issuer *auth.TokenIssuer) *TokenHandler {
	return &TokenHandler{BaseHandler: base, issuer: issuer}
}

// IssueToken handles POST /auth/token.
func (h *TokenHandler) IssueToken(c *gin.Context) {
	var req dto.TokenRequest
	if !h.BindJSON(c, &req) {
		return
	}

	pair, err := h.issuer.IssueToken(c.Request.Context(), req.ServiceName, req.ServiceSecret)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   pair.TokenType,
	})
}
