// Package inventory implements Central's inventory mutation engine
// (spec.md §4.E, §4.F) — Central exclusively owns Inventory and
// IdempotencyKey at the global level.
package inventory

import "time"

// Inventory is a single SKU's authoritative, centrally-owned stock record.
type Inventory struct {
	SKU       string    `db:"sku"`
	Name      string    `db:"name"`
	Quantity  int       `db:"quantity"`
	Version   int       `db:"version"`
	UpdatedAt time.Time `db:"updated_at"`
}

// State is the wire-shaped snapshot returned by every inventory operation
// (spec.md §6: `{sku, name, quantity, version, updated_at}`).
type State struct {
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

func stateOf(inv *Inventory) State {
	return State{
		SKU:       inv.SKU,
		Name:      inv.Name,
		Quantity:  inv.Quantity,
		Version:   inv.Version,
		UpdatedAt: inv.UpdatedAt,
	}
}

// AdjustRequest is the Inventory Mutation Engine's input (spec.md §4.E).
type AdjustRequest struct {
	SKU             string
	Delta           int
	ExpectedVersion int
	IdempotencyKey  string
	CallerService   string
}

// UpdateItem is one entry of a Bulk Sync request (spec.md §4.F).
type UpdateItem struct {
	SKU             string `json:"sku"`
	Delta           int    `json:"delta"`
	Version         int    `json:"version"`
	OperationID     string `json:"operation_id"`
}
