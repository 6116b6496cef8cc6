package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"invsync/internal/domain/localstore"
)

// LocalInventoryRepo implements localstore.InventoryRepository against a
// Store's sys_local_inventory table — structurally identical to Central's
// InventoryRepo (same optimistic-lock pattern), kept as a separate type
// because the two tiers never share a process or a schema.
type LocalInventoryRepo struct {
	txManager *TxManager
}

// NewLocalInventoryRepo creates a new Store local inventory repository.
func NewLocalInventoryRepo(txManager *TxManager) *LocalInventoryRepo {
	return &LocalInventoryRepo{txManager: txManager}
}

func (r *LocalInventoryRepo) get(ctx context.Context, sku string, forUpdate bool) (*localstore.LocalInventory, error) {
	builder := psq.Select("sku", "name", "quantity", "version", "last_synced_at", "updated_at").
		From("sys_local_inventory").
		Where(squirrel.Eq{"sku": sku})
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var inv localstore.LocalInventory
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &inv, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get local inventory: %w", err)
	}
	return &inv, nil
}

// GetForUpdate implements localstore.InventoryRepository.
func (r *LocalInventoryRepo) GetForUpdate(ctx context.Context, sku string) (*localstore.LocalInventory, error) {
	return r.get(ctx, sku, true)
}

// Get implements localstore.InventoryRepository.
func (r *LocalInventoryRepo) Get(ctx context.Context, sku string) (*localstore.LocalInventory, error) {
	return r.get(ctx, sku, false)
}

// UpdateVersioned implements localstore.InventoryRepository.
func (r *LocalInventoryRepo) UpdateVersioned(ctx context.Context, sku string, newQuantity, expectedVersion int) (bool, error) {
	query, args, err := psq.Update("sys_local_inventory").
		Set("quantity", newQuantity).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"sku": sku, "version": expectedVersion}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build update query: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update local inventory: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// MarkSynced implements localstore.InventoryRepository (spec.md §4.H step 3f).
func (r *LocalInventoryRepo) MarkSynced(ctx context.Context, sku string, version int) error {
	now := time.Now().UTC()
	query, args, err := psq.Update("sys_local_inventory").
		Set("version", version).
		Set("last_synced_at", now).
		Set("updated_at", now).
		Where(squirrel.Eq{"sku": sku}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark-synced query: %w", err)
	}

	_, err = r.txManager.GetQuerier(ctx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark local inventory synced: %w", err)
	}
	return nil
}

// Count implements localstore.InventoryRepository.
func (r *LocalInventoryRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, `SELECT count(*) FROM sys_local_inventory`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count local inventory: %w", err)
	}
	return count, nil
}

var _ localstore.InventoryRepository = (*LocalInventoryRepo)(nil)
