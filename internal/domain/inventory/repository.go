package inventory

import "context"

// Repository is Central's Inventory persistence boundary (spec.md §4.E).
type Repository interface {
	// GetForUpdate reads the row under a row-level exclusive lock for the
	// lifetime of the enclosing transaction. Returns (nil, nil) if absent.
	GetForUpdate(ctx context.Context, sku string) (*Inventory, error)

	// Get reads the row without locking (used for idempotent replay and for
	// re-reading the row after a write or a lost race).
	Get(ctx context.Context, sku string) (*Inventory, error)

	// UpdateVersioned writes quantity/version/updated_at, re-asserting
	// version = expectedVersion in the predicate. Returns false if the
	// predicate matched zero rows (lost the race).
	UpdateVersioned(ctx context.Context, sku string, newQuantity, expectedVersion int) (bool, error)

	// Count returns the total number of inventory rows, for the
	// central_inventory_count gauge.
	Count(ctx context.Context) (int64, error)
}

// IdempotencyCache is the Idempotency Cache boundary consumed by the engine
// (spec.md §4.D). A hit only tells the engine to short-circuit mutation and
// re-fetch current state — the cached response body is for observability,
// never replayed as the authoritative return value.
type IdempotencyCache interface {
	Hit(ctx context.Context, key, serviceName string) (bool, error)
	Record(ctx context.Context, key, serviceName, requestHash string, response any) error
}
