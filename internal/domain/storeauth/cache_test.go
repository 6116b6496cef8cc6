package storeauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIssuer struct {
	calls  int
	tokens []Token
}

func (f *fakeIssuer) IssueToken(ctx context.Context, serviceName, serviceSecret string) (Token, error) {
	tok := f.tokens[f.calls]
	f.calls++
	return tok, nil
}

func TestTokenCache_Get_FetchesOnceWhileValid(t *testing.T) {
	issuer := &fakeIssuer{tokens: []Token{
		{AccessToken: "tok-1", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	cache := NewTokenCache(issuer, "store-east", "secret")

	first, err := cache.Get(context.Background())
	require.NoError(t, err)
	second, err := cache.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "tok-1", first)
	assert.Equal(t, "tok-1", second)
	assert.Equal(t, 1, issuer.calls)
}

func TestTokenCache_Get_RefreshesAfterExpiry(t *testing.T) {
	issuer := &fakeIssuer{tokens: []Token{
		{AccessToken: "tok-1", ExpiresAt: time.Now().Add(-time.Minute)},
		{AccessToken: "tok-2", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	cache := NewTokenCache(issuer, "store-east", "secret")

	first, err := cache.Get(context.Background())
	require.NoError(t, err)
	second, err := cache.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "tok-1", first)
	assert.Equal(t, "tok-2", second)
	assert.Equal(t, 2, issuer.calls)
}

func TestTokenCache_Get_RefreshesWithinSkewLeeway(t *testing.T) {
	issuer := &fakeIssuer{tokens: []Token{
		{AccessToken: "tok-1", ExpiresAt: time.Now().Add(2 * time.Second)},
		{AccessToken: "tok-2", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	cache := NewTokenCache(issuer, "store-east", "secret")

	first, err := cache.Get(context.Background())
	require.NoError(t, err)
	second, err := cache.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "tok-1", first)
	assert.Equal(t, "tok-2", second) // within skewLeeway of expiry, treated as unusable
}
