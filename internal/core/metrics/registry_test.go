package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_IncAndAdd(t *testing.T) {
	reg := NewRegistry()

	reg.Inc(CentralInventoryUpdatesTotal)
	reg.Inc(CentralInventoryUpdatesTotal)
	reg.Add(CentralBulkSyncTotal, 5)

	snap := reg.Snapshot()
	assert.Equal(t, float64(2), snap[CentralInventoryUpdatesTotal])
	assert.Equal(t, float64(5), snap[CentralBulkSyncTotal])
}

func TestRegistry_Set(t *testing.T) {
	reg := NewRegistry()

	reg.Set(StoreInventoryCount, 42)
	reg.Set(StoreInventoryCount, 7)

	assert.Equal(t, float64(7), reg.Snapshot()[StoreInventoryCount])
}

func TestRegistry_Render_SortedByName(t *testing.T) {
	reg := NewRegistry()
	reg.Inc(StoreSyncFailuresTotal)
	reg.Inc(CentralBulkSyncTotal)

	rendered := reg.Render()

	assert.Contains(t, rendered, CentralBulkSyncTotal+" 1\n")
	assert.Contains(t, rendered, StoreSyncFailuresTotal+" 1\n")
	assert.Less(t, indexOf(rendered, CentralBulkSyncTotal), indexOf(rendered, StoreSyncFailuresTotal))
}

func TestRegistry_ConcurrentIncrement(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.Inc(CentralInventoryUpdatesTotal)
		}()
	}
	wg.Wait()

	assert.Equal(t, float64(100), reg.Snapshot()[CentralInventoryUpdatesTotal])
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
