package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"invsync/internal/core/apperror"
)

// TokenIssuer mints signed bearer tokens from service credentials (spec §4.A).
type TokenIssuer struct {
	config Config
	repo   CredentialsRepository
}

// NewTokenIssuer creates a new TokenIssuer.
func NewTokenIssuer(config Config, repo CredentialsRepository) *TokenIssuer {
	return &TokenIssuer{config: config, repo: repo}
}

// IssueToken looks up (serviceName, serviceSecret) by exact match and, if found,
// signs a token carrying the caller's role. Fails with AuthInvalidCredentials
// if no credentials row matches.
func (i *TokenIssuer) IssueToken(ctx context.Context, serviceName, serviceSecret string) (TokenPair, error) {
	creds, err := i.repo.FindByNameAndSecret(ctx, serviceName, serviceSecret)
	if err != nil {
		return TokenPair{}, fmt.Errorf("lookup service credentials: %w", err)
	}
	if creds == nil {
		return TokenPair{}, apperror.NewAuthInvalidCredentials()
	}

	now := time.Now()
	expiresAt := now.Add(i.config.TokenTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    creds.ServiceName,
			Subject:   creds.ServiceName,
			Audience:  jwt.ClaimStrings{CentralAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role: creds.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(i.config.Secret))
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign token: %w", err)
	}

	return TokenPair{
		AccessToken: tokenString,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	}, nil
}
