package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invsync/internal/core/apperror"
)

type mockCredentialsRepo struct {
	byNameAndSecret map[string]ServiceCredentials
	byName          map[string]ServiceCredentials
}

func newMockCredentialsRepo() *mockCredentialsRepo {
	return &mockCredentialsRepo{
		byNameAndSecret: make(map[string]ServiceCredentials),
		byName:          make(map[string]ServiceCredentials),
	}
}

func (m *mockCredentialsRepo) add(creds ServiceCredentials) {
	m.byNameAndSecret[creds.ServiceName+"|"+creds.ServiceSecret] = creds
	m.byName[creds.ServiceName] = creds
}

func (m *mockCredentialsRepo) FindByNameAndSecret(ctx context.Context, serviceName, serviceSecret string) (*ServiceCredentials, error) {
	if creds, ok := m.byNameAndSecret[serviceName+"|"+serviceSecret]; ok {
		return &creds, nil
	}
	return nil, nil
}

func (m *mockCredentialsRepo) FindByName(ctx context.Context, serviceName string) (*ServiceCredentials, error) {
	if creds, ok := m.byName[serviceName]; ok {
		return &creds, nil
	}
	return nil, nil
}

func TestTokenIssuer_IssueToken_Success(t *testing.T) {
	repo := newMockCredentialsRepo()
	repo.add(ServiceCredentials{ServiceName: "store-east", ServiceSecret: "s3cr3t", Role: "store"})

	issuer := NewTokenIssuer(DefaultConfig("signing-key"), repo)
	pair, err := issuer.IssueToken(context.Background(), "store-east", "s3cr3t")

	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.Equal(t, "bearer", pair.TokenType)
	assert.False(t, pair.ExpiresAt.IsZero())
}

func TestTokenIssuer_IssueToken_UnknownCredentials(t *testing.T) {
	repo := newMockCredentialsRepo()
	issuer := NewTokenIssuer(DefaultConfig("signing-key"), repo)

	_, err := issuer.IssueToken(context.Background(), "store-east", "wrong-secret")

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeAuthInvalidCredentials, appErr.Code)
}

func TestTokenIssuer_then_Verifier_roundtrip(t *testing.T) {
	repo := newMockCredentialsRepo()
	repo.add(ServiceCredentials{ServiceName: "store-west", ServiceSecret: "pw", Role: "store"})

	config := DefaultConfig("signing-key")
	issuer := NewTokenIssuer(config, repo)
	verifier := NewTokenVerifier(config, repo)

	pair, err := issuer.IssueToken(context.Background(), "store-west", "pw")
	require.NoError(t, err)

	svcCtx, err := verifier.Verify(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "store-west", svcCtx.ServiceName)
	assert.Equal(t, "store", svcCtx.Role)
}
