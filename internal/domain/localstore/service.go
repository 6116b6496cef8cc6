package localstore

import (
	"context"
	"fmt"

	"invsync/internal/core/apperror"
	"invsync/internal/core/id"
	"invsync/internal/core/metrics"
	"invsync/internal/core/tx"
)

// Service is the Local Write Path (spec.md §4.G).
type Service struct {
	inventories InventoryRepository
	pending     PendingChangeRepository
	txm         tx.Manager
	metrics     *metrics.Registry
}

// NewService creates a new Service.
func NewService(inventories InventoryRepository, pending PendingChangeRepository, txm tx.Manager, reg *metrics.Registry) *Service {
	return &Service{inventories: inventories, pending: pending, txm: txm, metrics: reg}
}

// ApplyLocal is the 5-step contract of spec.md §4.G: mutate the local row
// and append a PendingChange in a single transaction, so a successful ACK
// to the caller implies the change is durably queued for sync.
func (s *Service) ApplyLocal(ctx context.Context, req ApplyLocalRequest) (State, error) {
	var result State

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		// Step 1: row acquisition.
		row, err := s.inventories.GetForUpdate(ctx, req.SKU)
		if err != nil {
			return fmt.Errorf("get local inventory for update: %w", err)
		}
		if row == nil {
			return apperror.NewNotFound("SKU", req.SKU)
		}

		// Step 2: non-negativity check.
		newQuantity := row.Quantity + req.Delta
		if newQuantity < 0 {
			return apperror.NewInsufficientQuantity(row.Quantity, abs(req.Delta))
		}

		// Step 3: write.
		expectedVersion := row.Version
		ok, err := s.inventories.UpdateVersioned(ctx, req.SKU, newQuantity, expectedVersion)
		if err != nil {
			return fmt.Errorf("update local inventory: %w", err)
		}
		if !ok {
			current, err := s.inventories.Get(ctx, req.SKU)
			if err != nil {
				return fmt.Errorf("refetch after lost race: %w", err)
			}
			return apperror.NewVersionConflict("Version mismatch", stateOf(current))
		}

		row.Quantity = newQuantity
		row.Version = expectedVersion + 1
		result = stateOf(row)

		// Step 4: append the PendingChange.
		operationID := req.OperationID
		if operationID == "" {
			operationID = id.New().String()
		}
		change := &PendingChange{
			ID:             id.New().String(),
			OperationID:    operationID,
			InventoryID:    req.SKU,
			SKU:            req.SKU,
			Delta:          req.Delta,
			LocalVersion:   row.Version,
			CentralVersion: req.CentralVersionHint,
			Status:         StatusPending,
		}
		if err := s.pending.Insert(ctx, change); err != nil {
			return fmt.Errorf("insert pending change: %w", err)
		}

		// Step 5: both writes commit together as the transaction closes.
		return nil
	})

	if err != nil {
		return State{}, err
	}

	s.metrics.Inc(metrics.StoreLocalUpdatesTotal)
	return result, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
