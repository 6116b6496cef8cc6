// Package syncworker implements the Store's Sync Worker (spec.md §4.H):
// drains the PendingChange log against Central with bounded concurrency and
// an exponential-backoff retry policy per item.
package syncworker

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"invsync/internal/core/metrics"
	"invsync/internal/domain/localstore"
	"invsync/pkg/logger"
)

// batchSize is the spec.md §4.H step 1 read bound.
const batchSize = 100

// batchConcurrency is the spec.md §4.H step 3 fan-out bound.
const batchConcurrency = 5

// retryBase is the first backoff delay; doubling six times yields
// [1, 2, 4, 8, 16, 32] seconds, matching spec.md §4.H's retry policy exactly.
const retryBase = 1 * time.Second

// maxRetries is the spec.md §4.H retry budget (six retries max).
const maxRetries = 6

// CentralClient pushes one change to Central and reports the outcome
// (spec.md §4.H step 3b–3d). Implemented by the store's HTTP client against
// POST /v1/inventory/{sku}/adjust.
type CentralClient interface {
	AdjustInventory(ctx context.Context, req PushRequest) (PushResult, error)
}

// PushRequest is what gets POSTed to Central for one PendingChange.
type PushRequest struct {
	SKU            string
	Delta          int
	Version        int
	OperationID    string
	IdempotencyKey string
}

// PushOutcome classifies a CentralClient response for retry/state-machine
// purposes (spec.md §4.H step 3e–3i).
type PushOutcome int

const (
	OutcomeSuccess PushOutcome = iota
	OutcomeConflict
	OutcomeClientError
	OutcomeServerError
)

// PushResult is CentralClient's output.
type PushResult struct {
	Outcome        PushOutcome
	Version        int    // on success
	CurrentVersion int    // on conflict, from current_state.version
	ErrorText      string // on 4xx/5xx
}

// Worker is the Sync Worker (spec.md §4.H).
type Worker struct {
	inventories LocalInventoryLookup
	pending     localstore.PendingChangeRepository
	client      CentralClient
	metrics     *metrics.Registry
}

// LocalInventoryLookup is the narrow slice of localstore.InventoryRepository
// the worker needs: re-reading the current local version when
// central_version is unknown (spec.md §4.H step 3c), and marking sync state.
type LocalInventoryLookup interface {
	Get(ctx context.Context, sku string) (*localstore.LocalInventory, error)
	MarkSynced(ctx context.Context, sku string, version int) error
	Count(ctx context.Context) (int64, error)
}

// NewWorker creates a new Worker.
func NewWorker(inventories LocalInventoryLookup, pending localstore.PendingChangeRepository, client CentralClient, reg *metrics.Registry) *Worker {
	return &Worker{inventories: inventories, pending: pending, client: client, metrics: reg}
}

// ProcessPendingOnce is one sync run (spec.md §4.H steps 1–4).
func (w *Worker) ProcessPendingOnce(ctx context.Context) error {
	started := time.Now()

	// Step 1: read up to 100 PENDING changes, oldest first.
	changes, err := w.pending.ListPending(ctx, batchSize)
	if err != nil {
		return fmt.Errorf("list pending changes: %w", err)
	}

	// Step 2: refresh gauges once per run, not per row.
	if invCount, err := w.inventories.Count(ctx); err == nil {
		w.metrics.Set(metrics.StoreInventoryCount, float64(invCount))
	}
	if pendingCount, err := w.pending.Count(ctx); err == nil {
		w.metrics.Set(metrics.StorePendingChanges, float64(pendingCount))
	}

	// Step 3: process in batches of 5 concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	for _, change := range changes {
		change := change
		g.Go(func() error {
			w.processOne(gctx, change)
			return nil
		})
	}
	_ = g.Wait() // per-item errors are recorded on the PendingChange row, not propagated

	// Step 4: record wall-clock duration of the run.
	w.metrics.Set(metrics.StoreSyncDurationSeconds, time.Since(started).Seconds())

	return nil
}

func (w *Worker) processOne(ctx context.Context, change localstore.PendingChange) {
	// Step 3a: mark IN_PROGRESS.
	if err := w.pending.MarkInProgress(ctx, change.ID); err != nil {
		logger.Error(ctx, "mark pending change in progress", "id", change.ID, "error", err)
		return
	}

	// Step 3c: re-read local version if central_version is unknown.
	version := 0
	if change.CentralVersion != nil {
		version = *change.CentralVersion
	} else {
		local, err := w.inventories.Get(ctx, change.SKU)
		if err != nil || local == nil {
			_ = w.pending.MarkFailed(ctx, change.ID, "local inventory lookup failed", nil)
			w.metrics.Inc(metrics.StoreSyncFailuresTotal)
			return
		}
		version = local.Version
	}

	req := PushRequest{
		SKU:            change.SKU,
		Delta:          change.Delta,
		Version:        version,
		OperationID:    change.OperationID,
		IdempotencyKey: change.OperationID,
	}

	pushStarted := time.Now()
	result, err := w.pushWithRetry(ctx, req)
	w.metrics.Set(metrics.StorePushResponseSeconds, time.Since(pushStarted).Seconds())

	if err != nil {
		w.metrics.Inc(metrics.StoreSyncFailuresTotal)
		_ = w.pending.MarkFailed(ctx, change.ID, err.Error(), nil)
		return
	}

	switch result.Outcome {
	case OutcomeSuccess:
		// Step 3f.
		_ = w.inventories.MarkSynced(ctx, change.SKU, result.Version)
		_ = w.pending.MarkCompleted(ctx, change.ID)
		w.metrics.Inc(metrics.StoreSyncSuccessTotal)
	case OutcomeConflict:
		// Step 3g.
		w.metrics.Inc(metrics.StoreSyncConflictsTotal)
		cv := result.CurrentVersion
		_ = w.pending.MarkFailed(ctx, change.ID, "Version conflict with central", &cv)
	case OutcomeClientError:
		// Step 3h.
		w.metrics.Inc(metrics.StoreSyncFailuresTotal)
		_ = w.pending.MarkFailed(ctx, change.ID, result.ErrorText, nil)
	default:
		// Step 3i: 5xx/network after retry budget exhausted.
		w.metrics.Inc(metrics.StoreSyncFailuresTotal)
		_ = w.pending.MarkFailed(ctx, change.ID, result.ErrorText, nil)
	}
}

// pushWithRetry applies spec.md §4.H's retry policy inside one POST attempt
// sequence: exponential backoff [1,2,4,8,16,32]s (six retries max). A 409 or
// any other 4xx aborts retries immediately and surfaces; 5xx/transport
// errors consume a retry slot.
func (w *Worker) pushWithRetry(ctx context.Context, req PushRequest) (PushResult, error) {
	b, err := retry.NewExponential(retryBase)
	if err != nil {
		return PushResult{}, fmt.Errorf("build retry backoff: %w", err)
	}
	b = retry.WithMaxRetries(maxRetries, b)

	var result PushResult
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		w.metrics.Inc(metrics.StoreSyncAttemptsTotal)

		res, err := w.client.AdjustInventory(ctx, req)
		if err != nil {
			return retry.RetryableError(err)
		}

		result = res
		switch res.Outcome {
		case OutcomeSuccess, OutcomeConflict, OutcomeClientError:
			// Non-retryable: surfaces immediately (success has nothing to
			// retry; conflict and other 4xx abort retries per spec.md §4.H).
			return nil
		default:
			return retry.RetryableError(fmt.Errorf("server error: %s", res.ErrorText))
		}
	})

	return result, err
}
