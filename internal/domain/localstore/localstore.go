// Package localstore implements a Store Node's local inventory replica and
// write-ahead pending-change log (spec.md §4.G) — each Store exclusively
// owns its local Inventory replica and its PendingChange log.
package localstore

import "time"

// PendingStatus is the PendingChange state machine (spec.md §4.H).
type PendingStatus string

const (
	StatusPending    PendingStatus = "PENDING"
	StatusInProgress PendingStatus = "IN_PROGRESS"
	StatusCompleted  PendingStatus = "COMPLETED"
	StatusFailed     PendingStatus = "FAILED"
)

// LocalInventory is a Store's replica of one SKU.
type LocalInventory struct {
	SKU          string     `db:"sku"`
	Name         string     `db:"name"`
	Quantity     int        `db:"quantity"`
	Version      int        `db:"version"`
	LastSyncedAt *time.Time `db:"last_synced_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// State is the wire-shaped snapshot (spec.md §6: `GET /v1/local/inventory/{sku}`).
type State struct {
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

func stateOf(inv *LocalInventory) State {
	return State{
		SKU:       inv.SKU,
		Name:      inv.Name,
		Quantity:  inv.Quantity,
		Version:   inv.Version,
		UpdatedAt: inv.UpdatedAt,
	}
}

// PendingChange is a durable write-ahead record of a local mutation awaiting
// sync to Central (spec.md §3).
type PendingChange struct {
	ID              string        `db:"id"`
	OperationID     string        `db:"operation_id"`
	InventoryID     string        `db:"inventory_id"`
	SKU             string        `db:"sku"`
	Delta           int           `db:"delta"`
	LocalVersion    int           `db:"local_version"`
	CentralVersion  *int          `db:"central_version"`
	Status          PendingStatus `db:"status"`
	Error           *string       `db:"error"`
	CreatedAt       time.Time     `db:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at"`
}

// ApplyLocalRequest is the Local Write Path's input (spec.md §4.G).
type ApplyLocalRequest struct {
	SKU                 string
	Delta               int
	CentralVersionHint  *int
	OperationID         string
}
