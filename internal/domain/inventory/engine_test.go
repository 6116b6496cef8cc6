package inventory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invsync/internal/core/apperror"
	"invsync/internal/core/metrics"
)

// fakeTxManager runs fn directly; the engine's transactional semantics are
// exercised against the fakeRepository's own locking, not a real database.
type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepository struct {
	mu   sync.Mutex
	rows map[string]*Inventory
}

func newFakeRepository(rows ...Inventory) *fakeRepository {
	repo := &fakeRepository{rows: make(map[string]*Inventory)}
	for i := range rows {
		row := rows[i]
		repo.rows[row.SKU] = &row
	}
	return repo
}

func (r *fakeRepository) GetForUpdate(ctx context.Context, sku string) (*Inventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[sku]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (r *fakeRepository) Get(ctx context.Context, sku string) (*Inventory, error) {
	return r.GetForUpdate(ctx, sku)
}

func (r *fakeRepository) UpdateVersioned(ctx context.Context, sku string, newQuantity, expectedVersion int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[sku]
	if !ok || row.Version != expectedVersion {
		return false, nil
	}
	row.Quantity = newQuantity
	row.Version = expectedVersion + 1
	row.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *fakeRepository) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.rows)), nil
}

type fakeIdempotencyCache struct {
	mu   sync.Mutex
	seen map[string]State
}

func newFakeIdempotencyCache() *fakeIdempotencyCache {
	return &fakeIdempotencyCache{seen: make(map[string]State)}
}

func (c *fakeIdempotencyCache) Hit(ctx context.Context, key, serviceName string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.seen[serviceName+"|"+key]
	return ok, nil
}

func (c *fakeIdempotencyCache) Record(ctx context.Context, key, serviceName, requestHash string, response any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, _ := response.(State)
	c.seen[serviceName+"|"+key] = state
	return nil
}

func TestEngine_AdjustInventory_Success(t *testing.T) {
	repo := newFakeRepository(Inventory{SKU: "SKU-1", Name: "Widget", Quantity: 10, Version: 1})
	engine := NewEngine(repo, newFakeIdempotencyCache(), fakeTxManager{}, metrics.NewRegistry())

	state, err := engine.AdjustInventory(context.Background(), AdjustRequest{
		SKU: "SKU-1", Delta: -3, ExpectedVersion: 1, CallerService: "store-east",
	})

	require.NoError(t, err)
	assert.Equal(t, 7, state.Quantity)
	assert.Equal(t, 2, state.Version)
}

func TestEngine_AdjustInventory_NotFound(t *testing.T) {
	repo := newFakeRepository()
	engine := NewEngine(repo, newFakeIdempotencyCache(), fakeTxManager{}, metrics.NewRegistry())

	_, err := engine.AdjustInventory(context.Background(), AdjustRequest{
		SKU: "missing", Delta: 1, ExpectedVersion: 0,
	})

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNotFound, appErr.Code)
}

func TestEngine_AdjustInventory_VersionConflict(t *testing.T) {
	repo := newFakeRepository(Inventory{SKU: "SKU-1", Quantity: 10, Version: 5})
	engine := NewEngine(repo, newFakeIdempotencyCache(), fakeTxManager{}, metrics.NewRegistry())

	_, err := engine.AdjustInventory(context.Background(), AdjustRequest{
		SKU: "SKU-1", Delta: -1, ExpectedVersion: 1,
	})

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
	state, ok := appErr.Details["current_state"].(State)
	require.True(t, ok)
	assert.Equal(t, 5, state.Version)
}

func TestEngine_AdjustInventory_InsufficientQuantity(t *testing.T) {
	repo := newFakeRepository(Inventory{SKU: "SKU-1", Quantity: 2, Version: 1})
	engine := NewEngine(repo, newFakeIdempotencyCache(), fakeTxManager{}, metrics.NewRegistry())

	_, err := engine.AdjustInventory(context.Background(), AdjustRequest{
		SKU: "SKU-1", Delta: -5, ExpectedVersion: 1,
	})

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientQuantity, appErr.Code)
}

func TestEngine_AdjustInventory_IdempotentReplay(t *testing.T) {
	repo := newFakeRepository(Inventory{SKU: "SKU-1", Quantity: 10, Version: 1})
	engine := NewEngine(repo, newFakeIdempotencyCache(), fakeTxManager{}, metrics.NewRegistry())

	req := AdjustRequest{SKU: "SKU-1", Delta: -3, ExpectedVersion: 1, IdempotencyKey: "op-1", CallerService: "store-east"}

	first, err := engine.AdjustInventory(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 7, first.Quantity)

	// Replay with the same key must not apply the delta twice.
	second, err := engine.AdjustInventory(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// TestAdjustInventory_ConcurrentSameVersion exercises the exactly-one-succeeds
// invariant: N concurrent AdjustInventory calls on the same SKU with the same
// expected_version must yield exactly one success and N-1 version conflicts,
// with no lost updates.
func TestAdjustInventory_ConcurrentSameVersion(t *testing.T) {
	const n = 20
	repo := newFakeRepository(Inventory{SKU: "SKU-1", Quantity: 100, Version: 1})
	engine := NewEngine(repo, newFakeIdempotencyCache(), fakeTxManager{}, metrics.NewRegistry())

	var wg sync.WaitGroup
	results := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := engine.AdjustInventory(context.Background(), AdjustRequest{
				SKU: "SKU-1", Delta: -1, ExpectedVersion: 1, CallerService: "store-east",
			})
			results[i] = err
		}(i)
	}
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeConflict, appErr.Code)
		conflicts++
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, conflicts)

	final, err := repo.Get(context.Background(), "SKU-1")
	require.NoError(t, err)
	assert.Equal(t, 99, final.Quantity)
	assert.Equal(t, 2, final.Version)
}

func TestEngine_BulkAdjust_PreservesOrderAndSubstitutesConflicts(t *testing.T) {
	repo := newFakeRepository(
		Inventory{SKU: "A", Quantity: 10, Version: 1},
		Inventory{SKU: "B", Quantity: 10, Version: 9}, // stale version on purpose
	)
	engine := NewEngine(repo, newFakeIdempotencyCache(), fakeTxManager{}, metrics.NewRegistry())

	items := []UpdateItem{
		{SKU: "A", Delta: -1, Version: 1, OperationID: "op-a"},
		{SKU: "B", Delta: -1, Version: 1, OperationID: "op-b"},
	}

	results, err := engine.BulkAdjust(context.Background(), items)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "A", results[0].SKU)
	assert.Equal(t, 9, results[0].Quantity)
	assert.Equal(t, "B", results[1].SKU)
	assert.Equal(t, 9, results[1].Version) // current state, unmodified
}
