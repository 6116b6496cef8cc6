// Package centralclient implements a Store's outbound HTTP calls to Central:
// token issuance (spec.md §4.A) and inventory adjustment (spec.md §4.E),
// consumed by storeauth.TokenCache and syncworker.Worker respectively.
//
// The retry concern is already owned by syncworker's exponential backoff
// loop (spec.md §4.H); a retrying HTTP transport here would duplicate or
// fight that policy, so this client is a thin net/http wrapper rather than
// something like go-retryablehttp.
package centralclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"invsync/internal/domain/storeauth"
	"invsync/internal/domain/syncworker"
)

// defaultTimeout is the per-attempt outbound call timeout (spec.md §5
// recommends 10s, distinct from the retry budget).
const defaultTimeout = 10 * time.Second

// Client is a Store's HTTP client against Central.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a new Client against Central's base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

type issueTokenRequest struct {
	ServiceName   string `json:"service_name"`
	ServiceSecret string `json:"service_secret"`
}

type issueTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// IssueToken implements storeauth.Issuer against POST /auth/token.
func (c *Client) IssueToken(ctx context.Context, serviceName, serviceSecret string) (storeauth.Token, error) {
	body, err := json.Marshal(issueTokenRequest{ServiceName: serviceName, ServiceSecret: serviceSecret})
	if err != nil {
		return storeauth.Token{}, fmt.Errorf("marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/token", bytes.NewReader(body))
	if err != nil {
		return storeauth.Token{}, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return storeauth.Token{}, fmt.Errorf("call token endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return storeauth.Token{}, fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}

	var out issueTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return storeauth.Token{}, fmt.Errorf("decode token response: %w", err)
	}

	expiresAt, err := decodeExpiry(out.AccessToken)
	if err != nil {
		return storeauth.Token{}, fmt.Errorf("decode token expiry: %w", err)
	}

	return storeauth.Token{AccessToken: out.AccessToken, ExpiresAt: expiresAt}, nil
}

type adjustRequestBody struct {
	SKU         string `json:"sku"`
	Delta       int    `json:"delta"`
	Version     int    `json:"version"`
	OperationID string `json:"operation_id"`
}

type conflictEnvelope struct {
	Detail struct {
		Error        string `json:"error"`
		Message      string `json:"message"`
		CurrentState struct {
			Version int `json:"version"`
		} `json:"current_state"`
	} `json:"detail"`
}

type plainEnvelope struct {
	Detail string `json:"detail"`
}

type stateEnvelope struct {
	Version int `json:"version"`
}

// AdjustClient wires a Client to a TokenCache, implementing
// syncworker.CentralClient. Kept as a thin wrapper rather than folding the
// cache into Client itself, since Client also plays storeauth.Issuer (the
// thing the cache calls back into) — collapsing the two would be circular.
type AdjustClient struct {
	client *Client
	tokens *storeauth.TokenCache
}

// NewAdjustClient creates a new AdjustClient.
func NewAdjustClient(client *Client, tokens *storeauth.TokenCache) *AdjustClient {
	return &AdjustClient{client: client, tokens: tokens}
}

// AdjustInventory implements syncworker.CentralClient against
// POST /v1/inventory/{sku}/adjust.
func (a *AdjustClient) AdjustInventory(ctx context.Context, req syncworker.PushRequest) (syncworker.PushResult, error) {
	c := a.client
	token, err := a.tokens.Get(ctx)
	if err != nil {
		return syncworker.PushResult{}, fmt.Errorf("get token: %w", err)
	}

	body, err := json.Marshal(adjustRequestBody{
		SKU:         req.SKU,
		Delta:       req.Delta,
		Version:     req.Version,
		OperationID: req.OperationID,
	})
	if err != nil {
		return syncworker.PushResult{}, fmt.Errorf("marshal adjust request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/inventory/%s/adjust", c.baseURL, req.SKU)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return syncworker.PushResult{}, fmt.Errorf("build adjust request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return syncworker.PushResult{}, err
	}
	defer resp.Body.Close()

	respBody, err := decodeBody(resp)
	if err != nil {
		return syncworker.PushResult{}, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		var state stateEnvelope
		if err := json.Unmarshal(respBody, &state); err != nil {
			return syncworker.PushResult{}, fmt.Errorf("decode adjust response: %w", err)
		}
		return syncworker.PushResult{Outcome: syncworker.OutcomeSuccess, Version: state.Version}, nil

	case resp.StatusCode == http.StatusConflict:
		var conflict conflictEnvelope
		if err := json.Unmarshal(respBody, &conflict); err != nil {
			return syncworker.PushResult{}, fmt.Errorf("decode conflict response: %w", err)
		}
		return syncworker.PushResult{
			Outcome:        syncworker.OutcomeConflict,
			CurrentVersion: conflict.Detail.CurrentState.Version,
		}, nil

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return syncworker.PushResult{Outcome: syncworker.OutcomeClientError, ErrorText: errorText(respBody)}, nil

	default:
		return syncworker.PushResult{Outcome: syncworker.OutcomeServerError, ErrorText: errorText(respBody)}, nil
	}
}

func decodeBody(resp *http.Response) ([]byte, error) {
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf.Bytes(), nil
}

func errorText(body []byte) string {
	var plain plainEnvelope
	if err := json.Unmarshal(body, &plain); err == nil && plain.Detail != "" {
		return plain.Detail
	}
	return string(body)
}

// decodeExpiry reads `exp` from a token without verifying its signature —
// the cache only needs to know when to refresh, not whether to trust it
// (trust was already established by the TLS/HTTP round trip to Central).
func decodeExpiry(tokenString string) (time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("token has no exp claim")
	}
	return claims.ExpiresAt.Time, nil
}

var (
	_ storeauth.Issuer         = (*Client)(nil)
	_ syncworker.CentralClient = (*AdjustClient)(nil)
)
