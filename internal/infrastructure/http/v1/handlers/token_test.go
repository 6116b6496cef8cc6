package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invsync/internal/domain/auth"
	"invsync/internal/infrastructure/http/v1/dto"
	"invsync/internal/infrastructure/http/v1/middleware"
)

type fakeCredentialsRepo struct {
	creds map[string]auth.ServiceCredentials
}

func (r *fakeCredentialsRepo) FindByNameAndSecret(ctx context.Context, serviceName, serviceSecret string) (*auth.ServiceCredentials, error) {
	if c, ok := r.creds[serviceName+"|"+serviceSecret]; ok {
		return &c, nil
	}
	return nil, nil
}

func (r *fakeCredentialsRepo) FindByName(ctx context.Context, serviceName string) (*auth.ServiceCredentials, error) {
	for _, c := range r.creds {
		if c.ServiceName == serviceName {
			return &c, nil
		}
	}
	return nil, nil
}

func newTokenTestRouter(repo *fakeCredentialsRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	issuer := auth.NewTokenIssuer(auth.DefaultConfig("signing-key"), repo)
	handler := NewTokenHandler(NewBaseHandler(), issuer)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.POST("/auth/token", handler.IssueToken)
	return r
}

func TestTokenHandler_IssueToken_Success(t *testing.T) {
	repo := &fakeCredentialsRepo{creds: map[string]auth.ServiceCredentials{
		"store-east|secret": {ServiceName: "store-east", ServiceSecret: "secret", Role: "store"},
	}}
	r := newTokenTestRouter(repo)

	body, _ := json.Marshal(dto.TokenRequest{ServiceName: "store-east", ServiceSecret: "secret"})
	req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
}

func TestTokenHandler_IssueToken_InvalidCredentials(t *testing.T) {
	r := newTokenTestRouter(&fakeCredentialsRepo{creds: map[string]auth.ServiceCredentials{}})

	body, _ := json.Marshal(dto.TokenRequest{ServiceName: "store-east", ServiceSecret: "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTokenHandler_IssueToken_MissingFields(t *testing.T) {
	r := newTokenTestRouter(&fakeCredentialsRepo{creds: map[string]auth.ServiceCredentials{}})

	req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
