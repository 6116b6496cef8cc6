package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IdempotencyRecord is a fresh (idempotency_key, service_name) row.
type IdempotencyRecord struct {
	Key          string    `db:"idempotency_key"`
	ServiceName  string    `db:"service_name"`
	RequestHash  string    `db:"request_hash"`
	ResponseBody []byte    `db:"response_body"`
	CreatedAt    time.Time `db:"created_at"`
	ExpiresAt    time.Time `db:"expires_at"`
}

// IdempotencyStore implements the Idempotency Cache (spec §4.D): dedupe
// retried mutation requests keyed by (idempotency_key, service_name),
// filtered by expires_at > now.
type IdempotencyStore struct {
	pool      *pgxpool.Pool
	txManager *TxManager
	ttl       time.Duration
}

// DefaultIdempotencyTTL is the default freshness window for a key.
const DefaultIdempotencyTTL = 24 * time.Hour

// NewIdempotencyStore creates a new idempotency store.
func NewIdempotencyStore(pool *Pool, txManager *TxManager, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{pool: pool.Pool, txManager: txManager, ttl: ttl}
}

// NewIdempotencyStoreFromRawPool creates a new idempotency store from a raw pgxpool.Pool.
func NewIdempotencyStoreFromRawPool(pool *pgxpool.Pool, txManager *TxManager, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{pool: pool, txManager: txManager, ttl: ttl}
}

// Lookup returns the stored record if a fresh (non-expired) match exists for
// (key, serviceName), or (nil, nil) on a miss.
func (s *IdempotencyStore) Lookup(ctx context.Context, key, serviceName string) (*IdempotencyRecord, error) {
	var rec IdempotencyRecord
	err := s.txManager.GetQuerier(ctx).QueryRow(ctx, `
		SELECT idempotency_key, service_name, request_hash, response_body, created_at, expires_at
		FROM sys_idempotency_keys
		WHERE idempotency_key = $1 AND service_name = $2 AND expires_at > $3
	`, key, serviceName, time.Now().UTC()).Scan(
		&rec.Key, &rec.ServiceName, &rec.RequestHash, &rec.ResponseBody, &rec.CreatedAt, &rec.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup idempotency key: %w", err)
	}
	return &rec, nil
}

// Hit implements inventory.IdempotencyCache: true if a fresh match exists.
func (s *IdempotencyStore) Hit(ctx context.Context, key, serviceName string) (bool, error) {
	rec, err := s.Lookup(ctx, key, serviceName)
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

// Record upserts the key with the request hash, the JSON-encoded response and
// a fresh expiry.
// The response is stored for observability only — callers must not treat it
// as authoritative on a subsequent hit (see spec §4.D).
func (s *IdempotencyStore) Record(ctx context.Context, key, serviceName, requestHash string, response any) error {
	var responseBytes []byte
	if response != nil {
		b, err := json.Marshal(response)
		if err != nil {
			return fmt.Errorf("marshal idempotency response: %w", err)
		}
		responseBytes = b
	}

	now := time.Now().UTC()
	_, err := s.txManager.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO sys_idempotency_keys (idempotency_key, service_name, request_hash, response_body, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (idempotency_key) DO UPDATE SET
			request_hash  = EXCLUDED.request_hash,
			response_body = EXCLUDED.response_body,
			expires_at    = EXCLUDED.expires_at
	`, key, serviceName, requestHash, responseBytes, now, now.Add(s.ttl))

	return err
}

// CleanupExpired removes idempotency rows past their expiry (garbage collection, spec §3).
func (s *IdempotencyStore) CleanupExpired(ctx context.Context) (int64, error) {
	result, err := s.txManager.GetQuerier(ctx).Exec(ctx, `
		DELETE FROM sys_idempotency_keys WHERE expires_at < $1
	`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// Count returns the number of live (non-expired) idempotency keys, for the
// central_idempotency_keys gauge.
func (s *IdempotencyStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.txManager.GetQuerier(ctx).QueryRow(ctx, `
		SELECT count(*) FROM sys_idempotency_keys WHERE expires_at > $1
	`, time.Now().UTC()).Scan(&count)
	return count, err
}
