package centralclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invsync/internal/domain/storeauth"
	"invsync/internal/domain/syncworker"
)

func signTestToken(t *testing.T, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn))}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("unused-since-unverified"))
	require.NoError(t, err)
	return signed
}

func TestClient_IssueToken(t *testing.T) {
	expected := signTestToken(t, time.Hour)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/token", r.URL.Path)
		var body issueTokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "store-east", body.ServiceName)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(issueTokenResponse{AccessToken: expected, TokenType: "bearer"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	token, err := client.IssueToken(context.Background(), "store-east", "secret")

	require.NoError(t, err)
	assert.Equal(t, expected, token.AccessToken)
	assert.False(t, token.ExpiresAt.IsZero())
}

func TestAdjustClient_AdjustInventory_Success(t *testing.T) {
	tokenValue := signTestToken(t, time.Hour)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/token" {
			_ = json.NewEncoder(w).Encode(issueTokenResponse{AccessToken: tokenValue, TokenType: "bearer"})
			return
		}
		assert.Equal(t, "/v1/inventory/SKU-1/adjust", r.URL.Path)
		assert.Equal(t, "Bearer "+tokenValue, r.Header.Get("Authorization"))
		assert.Equal(t, "op-1", r.Header.Get("Idempotency-Key"))
		_ = json.NewEncoder(w).Encode(stateEnvelope{Version: 5})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	tokens := storeauth.NewTokenCache(client, "store-east", "secret")
	adjustClient := NewAdjustClient(client, tokens)

	result, err := adjustClient.AdjustInventory(context.Background(), syncworker.PushRequest{
		SKU: "SKU-1", Delta: -1, Version: 4, OperationID: "op-1", IdempotencyKey: "op-1",
	})

	require.NoError(t, err)
	assert.Equal(t, syncworker.OutcomeSuccess, result.Outcome)
	assert.Equal(t, 5, result.Version)
}

func TestAdjustClient_AdjustInventory_Conflict(t *testing.T) {
	tokenValue := signTestToken(t, time.Hour)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/token" {
			_ = json.NewEncoder(w).Encode(issueTokenResponse{AccessToken: tokenValue, TokenType: "bearer"})
			return
		}
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(conflictEnvelope{
			Detail: struct {
				Error        string `json:"error"`
				Message      string `json:"message"`
				CurrentState struct {
					Version int `json:"version"`
				} `json:"current_state"`
			}{Error: "CONFLICT", Message: "Version mismatch", CurrentState: struct {
				Version int `json:"version"`
			}{Version: 11}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	tokens := storeauth.NewTokenCache(client, "store-east", "secret")
	adjustClient := NewAdjustClient(client, tokens)

	result, err := adjustClient.AdjustInventory(context.Background(), syncworker.PushRequest{
		SKU: "SKU-1", Delta: -1, Version: 4, OperationID: "op-1",
	})

	require.NoError(t, err)
	assert.Equal(t, syncworker.OutcomeConflict, result.Outcome)
	assert.Equal(t, 11, result.CurrentVersion)
}

func TestAdjustClient_AdjustInventory_ServerError(t *testing.T) {
	tokenValue := signTestToken(t, time.Hour)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/token" {
			_ = json.NewEncoder(w).Encode(issueTokenResponse{AccessToken: tokenValue, TokenType: "bearer"})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"database unavailable"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	tokens := storeauth.NewTokenCache(client, "store-east", "secret")
	adjustClient := NewAdjustClient(client, tokens)

	result, err := adjustClient.AdjustInventory(context.Background(), syncworker.PushRequest{
		SKU: "SKU-1", Delta: -1, Version: 4, OperationID: "op-1",
	})

	require.NoError(t, err)
	assert.Equal(t, syncworker.OutcomeServerError, result.Outcome)
	assert.Equal(t, "database unavailable", result.ErrorText)
}
