package localstore

import "context"

// InventoryRepository is a Store's local inventory persistence boundary.
type InventoryRepository interface {
	// GetForUpdate reads the row under a row-level exclusive lock for the
	// lifetime of the enclosing transaction. Returns (nil, nil) if absent.
	GetForUpdate(ctx context.Context, sku string) (*LocalInventory, error)

	// Get reads the row without locking.
	Get(ctx context.Context, sku string) (*LocalInventory, error)

	// UpdateVersioned writes quantity/version/updated_at, re-asserting
	// version = expectedVersion. Returns false if the predicate matched zero rows.
	UpdateVersioned(ctx context.Context, sku string, newQuantity, expectedVersion int) (bool, error)

	// MarkSynced updates version/last_synced_at after a successful sync
	// (spec.md §4.H step 3f), independent of the local write path's version
	// predicate since it reflects Central's authoritative version.
	MarkSynced(ctx context.Context, sku string, version int) error

	// Count returns the total number of local inventory rows, for the
	// store_inventory_count gauge.
	Count(ctx context.Context) (int64, error)
}

// PendingChangeRepository is a Store's write-ahead log persistence boundary.
type PendingChangeRepository interface {
	// Insert appends a new PendingChange row.
	Insert(ctx context.Context, change *PendingChange) error

	// ListPending reads up to limit PENDING rows ordered by created_at ascending
	// (spec.md §4.H step 1).
	ListPending(ctx context.Context, limit int) ([]PendingChange, error)

	// GetByOperationID looks up one row by its client-chosen operation_id
	// (spec.md §6 `GET /v1/local/sync/status/{operation_id}`). Returns
	// (nil, nil) if absent.
	GetByOperationID(ctx context.Context, operationID string) (*PendingChange, error)

	// MarkInProgress transitions PENDING → IN_PROGRESS.
	MarkInProgress(ctx context.Context, id string) error

	// MarkCompleted transitions IN_PROGRESS → COMPLETED.
	MarkCompleted(ctx context.Context, id string) error

	// MarkFailed transitions IN_PROGRESS → FAILED with a reason, optionally
	// updating central_version (spec.md §4.H step 3g on a 409).
	MarkFailed(ctx context.Context, id, reason string, centralVersion *int) error

	// Count returns the number of non-terminal (PENDING or IN_PROGRESS) rows,
	// for the store_pending_changes gauge.
	Count(ctx context.Context) (int64, error)
}
