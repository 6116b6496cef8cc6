// Package storeauth implements the Store's Token Client Cache (spec.md
// §4.C): a single process-wide cached bearer token, refreshed from Central's
// Token Issuer when absent or expired.
package storeauth

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Issuer requests a fresh token from Central's /auth/token endpoint.
type Issuer interface {
	IssueToken(ctx context.Context, serviceName, serviceSecret string) (Token, error)
}

// Token is a cached access token and its locally-decoded expiry.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// TokenCache is a mutex-guarded, process-wide cached token string — the same
// "owned object, not a package global" shape the teacher uses throughout
// internal/domain/* for stateful services.
type TokenCache struct {
	mu            sync.Mutex
	issuer        Issuer
	serviceName   string
	serviceSecret string
	cached        *Token
}

// NewTokenCache creates a new TokenCache.
func NewTokenCache(issuer Issuer, serviceName, serviceSecret string) *TokenCache {
	return &TokenCache{issuer: issuer, serviceName: serviceName, serviceSecret: serviceSecret}
}

// skewLeeway guards against using a token that expires mid-flight on a
// request that's about to go out.
const skewLeeway = 5 * time.Second

// Get returns a valid bearer token, refreshing from Central if the cache is
// empty or the cached token has expired (spec.md §4.C). The original Python
// client's token cache never checked expiry before reuse (see
// SPEC_FULL.md §10) — this is the fixed version.
func (c *TokenCache) Get(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && time.Now().Add(skewLeeway).Before(c.cached.ExpiresAt) {
		return c.cached.AccessToken, nil
	}

	token, err := c.issuer.IssueToken(ctx, c.serviceName, c.serviceSecret)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	c.cached = &token
	return token.AccessToken, nil
}
