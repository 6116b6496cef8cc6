package dto

import "time"

// InventoryState is the common wire shape for an inventory snapshot, shared
// by Central's and a Store's inventory state (spec.md §6).
type InventoryState struct {
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AdjustRequest is the body of POST /v1/inventory/{sku}/adjust.
type AdjustRequest struct {
	SKU         string `json:"sku"`
	Delta       int    `json:"delta"`
	Version     int    `json:"version"`
	OperationID string `json:"operation_id"`
}

// LocalUpdateRequest is the body of POST /v1/local/inventory/{sku}/update.
// Version is nullable: a Store may push a local-only change with no opinion
// about the version Central currently holds.
type LocalUpdateRequest struct {
	Delta       int    `json:"delta"`
	Version     *int   `json:"version"`
	OperationID string `json:"operation_id"`
}

// UpdateItem is one entry of a bulk-sync request body.
type UpdateItem struct {
	SKU         string `json:"sku"`
	Delta       int    `json:"delta"`
	Version     int    `json:"version"`
	OperationID string `json:"operation_id"`
}

// BulkSyncRequest is the body of POST /v1/inventory/bulk-sync.
type BulkSyncRequest struct {
	Items []UpdateItem `json:"items" binding:"required"`
}
