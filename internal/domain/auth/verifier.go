package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"invsync/internal/core/apperror"
	appctx "invsync/internal/core/context"
)

// TokenVerifier validates inbound bearer tokens and resolves the caller's
// identity (spec §4.B). Verification is a strict 4-step sequence, each step
// failing with a distinct AppError code.
type TokenVerifier struct {
	config Config
	repo   CredentialsRepository
}

// NewTokenVerifier creates a new TokenVerifier.
func NewTokenVerifier(config Config, repo CredentialsRepository) *TokenVerifier {
	return &TokenVerifier{config: config, repo: repo}
}

// Verify implements middleware.TokenVerifier.
func (v *TokenVerifier) Verify(ctx context.Context, bearer string) (*appctx.ServiceContext, error) {
	// Step 1: decode without signature verification to extract iss.
	unverified := jwt.NewParser()
	peeked := &Claims{}
	if _, _, err := unverified.ParseUnverified(bearer, peeked); err != nil {
		return nil, apperror.NewAuthMissingIssuer()
	}
	issuer := peeked.Issuer
	if issuer == "" {
		return nil, apperror.NewAuthMissingIssuer()
	}

	// Step 2: look up ServiceCredentials by service_name=iss.
	creds, err := v.repo.FindByName(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("lookup service credentials: %w", err)
	}
	if creds == nil {
		return nil, apperror.NewAuthUnknownService(issuer)
	}

	// Step 3 + 4: re-decode with signature verification, required audience,
	// HS256 only; exp is checked as part of parsing.
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(bearer, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(v.config.Secret), nil
	}, jwt.WithAudience(CentralAudience), jwt.WithValidMethods([]string{"HS256"}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.NewAuthExpired()
		}
		return nil, apperror.NewAuthInvalidToken()
	}
	if !token.Valid {
		return nil, apperror.NewAuthInvalidToken()
	}

	return &appctx.ServiceContext{
		ServiceName: claims.Subject,
		Role:        claims.Role,
		IssuedAt:    claims.IssuedAt.Time,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}
