package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invsync/internal/core/apperror"
)

func signClaims(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestTokenVerifier_Verify_Expired(t *testing.T) {
	repo := newMockCredentialsRepo()
	repo.add(ServiceCredentials{ServiceName: "store-east", ServiceSecret: "s", Role: "store"})
	config := DefaultConfig("signing-key")
	verifier := NewTokenVerifier(config, repo)

	now := time.Now()
	token := signClaims(t, config.Secret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "store-east",
			Subject:   "store-east",
			Audience:  jwt.ClaimStrings{CentralAudience},
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
		},
		Role: "store",
	})

	_, err := verifier.Verify(context.Background(), token)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeAuthExpired, appErr.Code)
}

func TestTokenVerifier_Verify_UnknownService(t *testing.T) {
	repo := newMockCredentialsRepo()
	config := DefaultConfig("signing-key")
	verifier := NewTokenVerifier(config, repo)

	now := time.Now()
	token := signClaims(t, config.Secret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "ghost-store",
			Subject:   "ghost-store",
			Audience:  jwt.ClaimStrings{CentralAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Role: "store",
	})

	_, err := verifier.Verify(context.Background(), token)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeAuthUnknownService, appErr.Code)
}

func TestTokenVerifier_Verify_WrongSigningKey(t *testing.T) {
	repo := newMockCredentialsRepo()
	repo.add(ServiceCredentials{ServiceName: "store-east", ServiceSecret: "s", Role: "store"})
	config := DefaultConfig("signing-key")
	verifier := NewTokenVerifier(config, repo)

	now := time.Now()
	token := signClaims(t, "wrong-key", Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "store-east",
			Subject:   "store-east",
			Audience:  jwt.ClaimStrings{CentralAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Role: "store",
	})

	_, err := verifier.Verify(context.Background(), token)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeAuthInvalidToken, appErr.Code)
}

func TestTokenVerifier_Verify_MissingIssuer(t *testing.T) {
	repo := newMockCredentialsRepo()
	config := DefaultConfig("signing-key")
	verifier := NewTokenVerifier(config, repo)

	_, err := verifier.Verify(context.Background(), "not-a-jwt")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeAuthMissingIssuer, appErr.Code)
}
