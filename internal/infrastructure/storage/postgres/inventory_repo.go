package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"invsync/internal/domain/inventory"
)

var psq = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// InventoryRepo implements inventory.Repository against Central's
// sys_inventory table. Grounded on the teacher's catalog_repo/base.go
// optimistic-lock Update()/GetForUpdate() pattern, hand-specialized because
// Central's conflict response must echo the full current row, not a generic
// shape.
type InventoryRepo struct {
	txManager *TxManager
}

// NewInventoryRepo creates a new Central inventory repository.
func NewInventoryRepo(txManager *TxManager) *InventoryRepo {
	return &InventoryRepo{txManager: txManager}
}

// GetForUpdate implements inventory.Repository.
func (r *InventoryRepo) GetForUpdate(ctx context.Context, sku string) (*inventory.Inventory, error) {
	query, args, err := psq.Select("sku", "name", "quantity", "version", "updated_at").
		From("sys_inventory").
		Where(squirrel.Eq{"sku": sku}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get-for-update query: %w", err)
	}

	var inv inventory.Inventory
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &inv, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory for update: %w", err)
	}
	return &inv, nil
}

// Get implements inventory.Repository.
func (r *InventoryRepo) Get(ctx context.Context, sku string) (*inventory.Inventory, error) {
	query, args, err := psq.Select("sku", "name", "quantity", "version", "updated_at").
		From("sys_inventory").
		Where(squirrel.Eq{"sku": sku}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get query: %w", err)
	}

	var inv inventory.Inventory
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &inv, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	return &inv, nil
}

// UpdateVersioned implements inventory.Repository: re-asserts
// version = expectedVersion in the WHERE clause so a racing transaction that
// slipped past the row lock cannot double-apply.
func (r *InventoryRepo) UpdateVersioned(ctx context.Context, sku string, newQuantity, expectedVersion int) (bool, error) {
	query, args, err := psq.Update("sys_inventory").
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
		return false, fmt.Errorf("update inventory: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// Count implements inventory.Repository.
func (r *InventoryRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, `SELECT count(*) FROM sys_inventory`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count inventory: %w", err)
	}
	return count, nil
}

var _ inventory.Repository = (*InventoryRepo)(nil)
