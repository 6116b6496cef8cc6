package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"invsync/internal/domain/localstore"
)

func TestExtractDBColumns_FlatStruct(t *testing.T) {
	cols := ExtractDBColumns[localstore.PendingChange]()

	expectedCols := []string{
		"id", "operation_id", "inventory_id", "sku", "delta",
		"local_version", "central_version", "status", "error",
		"created_at", "updated_at",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
	assert.Len(t, cols, len(expectedCols))
}

func TestStructToMap_FlatStruct(t *testing.T) {
	now := time.Now().UTC()
	centralVersion := 3
	change := localstore.PendingChange{
		ID:             "pc-1",
		OperationID:    "op-1",
		InventoryID:    "SKU-1",
		SKU:            "SKU-1",
		Delta:          -2,
		LocalVersion:   5,
		CentralVersion: &centralVersion,
		Status:         localstore.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	m := StructToMap(change)

	assert.Equal(t, "pc-1", m["id"])
	assert.Equal(t, "op-1", m["operation_id"])
	assert.Equal(t, -2, m["delta"])
	assert.Equal(t, 5, m["local_version"])
	assert.Equal(t, &centralVersion, m["central_version"])
	assert.Equal(t, localstore.StatusPending, m["status"])
}
