package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"invsync/internal/domain/localstore"
)

// PendingChangeRepo implements localstore.PendingChangeRepository against a
// Store's sys_pending_changes write-ahead log table.
type PendingChangeRepo struct {
	txManager *TxManager
}

// NewPendingChangeRepo creates a new pending-change repository.
func NewPendingChangeRepo(txManager *TxManager) *PendingChangeRepo {
	return &PendingChangeRepo{txManager: txManager}
}

// pendingChangeColumns is computed once from localstore.PendingChange's `db`
// tags, the same ExtractDBColumns/StructToMap idiom the teacher uses for its
// catalog/document repos, applied here to a flat (non-embedding) struct.
var pendingChangeColumns = ExtractDBColumns[localstore.PendingChange]()

// Insert implements localstore.PendingChangeRepository.
func (r *PendingChangeRepo) Insert(ctx context.Context, change *localstore.PendingChange) error {
	now := time.Now().UTC()
	change.CreatedAt = now
	change.UpdatedAt = now
	if change.Status == "" {
		change.Status = localstore.StatusPending
	}

	data := StructToMap(*change)
	values := make([]any, len(pendingChangeColumns))
	for i, col := range pendingChangeColumns {
		values[i] = data[col]
	}

	query, args, err := psq.Insert("sys_pending_changes").
		Columns(pendingChangeColumns...).
		Values(values...).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	_, err = r.txManager.GetQuerier(ctx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert pending change: %w", err)
	}
	return nil
}

// ListPending implements localstore.PendingChangeRepository (spec.md §4.H step 1).
func (r *PendingChangeRepo) ListPending(ctx context.Context, limit int) ([]localstore.PendingChange, error) {
	query, args, err := psq.Select("id", "operation_id", "inventory_id", "sku", "delta",
		"local_version", "central_version", "status", "error", "created_at", "updated_at").
		From("sys_pending_changes").
		Where(squirrel.Eq{"status": localstore.StatusPending}).
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list-pending query: %w", err)
	}

	var changes []localstore.PendingChange
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &changes, query, args...); err != nil {
		return nil, fmt.Errorf("list pending changes: %w", err)
	}
	return changes, nil
}

// GetByOperationID implements localstore.PendingChangeRepository.
func (r *PendingChangeRepo) GetByOperationID(ctx context.Context, operationID string) (*localstore.PendingChange, error) {
	query, args, err := psq.Select("id", "operation_id", "inventory_id", "sku", "delta",
		"local_version", "central_version", "status", "error", "created_at", "updated_at").
		From("sys_pending_changes").
		Where(squirrel.Eq{"operation_id": operationID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get-by-operation-id query: %w", err)
	}

	var change localstore.PendingChange
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &change, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pending change by operation id: %w", err)
	}
	return &change, nil
}

// MarkInProgress implements localstore.PendingChangeRepository.
func (r *PendingChangeRepo) MarkInProgress(ctx context.Context, id string) error {
	query, args, err := psq.Update("sys_pending_changes").
		Set("status", localstore.StatusInProgress).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id, "status": localstore.StatusPending}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark-in-progress query: %w", err)
	}

	_, err = r.txManager.GetQuerier(ctx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark pending change in progress: %w", err)
	}
	return nil
}

// MarkCompleted implements localstore.PendingChangeRepository.
func (r *PendingChangeRepo) MarkCompleted(ctx context.Context, id string) error {
	query, args, err := psq.Update("sys_pending_changes").
		Set("status", localstore.StatusCompleted).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark-completed query: %w", err)
	}

	_, err = r.txManager.GetQuerier(ctx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark pending change completed: %w", err)
	}
	return nil
}

// MarkFailed implements localstore.PendingChangeRepository (spec.md §4.H step 3g–i).
func (r *PendingChangeRepo) MarkFailed(ctx context.Context, id, reason string, centralVersion *int) error {
	builder := psq.Update("sys_pending_changes").
		Set("status", localstore.StatusFailed).
		Set("error", reason).
		Set("updated_at", time.Now().UTC())
	if centralVersion != nil {
		builder = builder.Set("central_version", *centralVersion)
	}

	query, args, err := builder.Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build mark-failed query: %w", err)
	}

	_, err = r.txManager.GetQuerier(ctx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark pending change failed: %w", err)
	}
	return nil
}

// Count implements localstore.PendingChangeRepository.
func (r *PendingChangeRepo) Count(ctx context.Context) (int64, error) {
	query, args, err := psq.Select("count(*)").
		From("sys_pending_changes").
		Where(squirrel.Eq{"status": []localstore.PendingStatus{localstore.StatusPending, localstore.StatusInProgress}}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var count int64
	err = r.txManager.GetQuerier(ctx).QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending changes: %w", err)
	}
	return count, nil
}

var _ localstore.PendingChangeRepository = (*PendingChangeRepo)(nil)
