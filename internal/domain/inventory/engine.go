package inventory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"invsync/internal/core/apperror"
	"invsync/internal/core/metrics"
	"invsync/internal/core/tx"
)

// bulkSyncConcurrency is the spec.md §4.F fan-out bound.
const bulkSyncConcurrency = 10

// Engine is the Inventory Mutation Engine (spec.md §4.E) and Bulk Sync
// Coordinator (spec.md §4.F) — the heart of Central.
type Engine struct {
	repo       Repository
	idempotent IdempotencyCache
	txm        tx.Manager
	metrics    *metrics.Registry
}

// NewEngine creates a new Engine.
func NewEngine(repo Repository, idempotent IdempotencyCache, txm tx.Manager, reg *metrics.Registry) *Engine {
	return &Engine{repo: repo, idempotent: idempotent, txm: txm, metrics: reg}
}

// AdjustInventory is the 7-step contract of spec.md §4.E.
func (e *Engine) AdjustInventory(ctx context.Context, req AdjustRequest) (State, error) {
	requestHash := hashRequest(req)

	var result State
	err := e.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		// Step 1: idempotent replay.
		if req.IdempotencyKey != "" {
			hit, err := e.idempotent.Hit(ctx, req.IdempotencyKey, req.CallerService)
			if err != nil {
				return fmt.Errorf("lookup idempotency key: %w", err)
			}
			if hit {
				current, err := e.repo.Get(ctx, req.SKU)
				if err != nil {
					return fmt.Errorf("refetch for idempotent replay: %w", err)
				}
				if current == nil {
					return apperror.NewNotFound("SKU", req.SKU)
				}
				result = stateOf(current)
				return nil
			}
		}

		// Step 2: row acquisition.
		row, err := e.repo.GetForUpdate(ctx, req.SKU)
		if err != nil {
			return fmt.Errorf("get inventory for update: %w", err)
		}
		if row == nil {
			return apperror.NewNotFound("SKU", req.SKU)
		}

		// Step 3: version check.
		if row.Version != req.ExpectedVersion {
			e.metrics.Inc(metrics.CentralInventoryUpdateConflictsTotal)
			return apperror.NewVersionConflict("Version mismatch", stateOf(row))
		}

		// Step 4: non-negativity check.
		newQuantity := row.Quantity + req.Delta
		if newQuantity < 0 {
			return apperror.NewInsufficientQuantity(row.Quantity, abs(req.Delta))
		}

		// Step 5: write, re-asserting the version predicate.
		ok, err := e.repo.UpdateVersioned(ctx, req.SKU, newQuantity, req.ExpectedVersion)
		if err != nil {
			return fmt.Errorf("update inventory: %w", err)
		}
		if !ok {
			// Slipped past the lock under a weaker isolation level: treat as conflict.
			current, err := e.repo.Get(ctx, req.SKU)
			if err != nil {
				return fmt.Errorf("refetch after lost race: %w", err)
			}
			e.metrics.Inc(metrics.CentralInventoryUpdateConflictsTotal)
			return apperror.NewVersionConflict("Version mismatch", stateOf(current))
		}

		current, err := e.repo.Get(ctx, req.SKU)
		if err != nil {
			return fmt.Errorf("refetch after update: %w", err)
		}
		result = stateOf(current)

		// Step 6: idempotency record.
		if req.IdempotencyKey != "" {
			if err := e.idempotent.Record(ctx, req.IdempotencyKey, req.CallerService, requestHash, result); err != nil {
				return fmt.Errorf("record idempotency key: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		if appErr, ok := apperror.AsAppError(err); ok {
			switch appErr.Code {
			case apperror.CodeNotFound, apperror.CodeInsufficientQuantity, apperror.CodeConflict:
				// Conflict counter already bumped above; NotFound and
				// InsufficientQuantity increment no counter.
			default:
				e.metrics.Inc(metrics.CentralInventoryUpdateFailuresTotal)
			}
		} else {
			e.metrics.Inc(metrics.CentralInventoryUpdateFailuresTotal)
		}
		return State{}, err
	}

	e.metrics.Inc(metrics.CentralInventoryUpdatesTotal)
	return result, nil
}

// BulkAdjust is the Bulk Sync Coordinator (spec.md §4.F): dispatches every
// item to AdjustInventory with bounded concurrency, preserving input order
// even though completions race. A 409 substitutes the current state at that
// item's position rather than failing the batch; any other error aborts it.
func (e *Engine) BulkAdjust(ctx context.Context, items []UpdateItem) ([]State, error) {
	results := make([]State, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkSyncConcurrency)

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			state, err := e.AdjustInventory(gctx, AdjustRequest{
				SKU:             item.SKU,
				Delta:           item.Delta,
				ExpectedVersion: item.Version,
				IdempotencyKey:  "bulk-" + item.OperationID,
				CallerService:   "bulk-sync",
			})
			if err != nil {
				if appErr, ok := apperror.AsAppError(err); ok && appErr.Code == apperror.CodeConflict {
					current, ok := appErr.Details["current_state"].(State)
					if !ok {
						return fmt.Errorf("bulk-sync conflict for %s missing current_state", item.SKU)
					}
					results[i] = current
					return nil
				}
				return err
			}
			results[i] = state
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		e.metrics.Inc(metrics.CentralInventoryUpdateFailuresTotal)
		return nil, err
	}

	e.metrics.Inc(metrics.CentralBulkSyncTotal)
	return results, nil
}

func hashRequest(req AdjustRequest) string {
	b, _ := json.Marshal(req)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
