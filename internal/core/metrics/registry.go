// Package metrics provides a small process-wide counter/gauge registry.
// Names follow the original Python services' observability module
// one-for-one; there is no Prometheus/OpenTelemetry metrics SDK here —
// that's exposition plumbing, these counters are domain-load-bearing.
package metrics

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/atomic"
)

// Registry holds named counters and gauges, safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	counters map[string]*atomic.Int64
	gauges   map[string]*atomic.Float64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[string]*atomic.Int64),
		gauges:   make(map[string]*atomic.Float64),
	}
}

// Inc increments a named counter by 1, creating it on first use.
func (r *Registry) Inc(name string) {
	r.counter(name).Inc()
}

// Add adds delta to a named counter, creating it on first use.
func (r *Registry) Add(name string, delta int64) {
	r.counter(name).Add(delta)
}

// Set sets a named gauge, creating it on first use.
func (r *Registry) Set(name string, value float64) {
	r.gauge(name).Store(value)
}

func (r *Registry) counter(name string) *atomic.Int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.counters[name]
	if !ok {
		c = atomic.NewInt64(0)
		r.counters[name] = c
	}
	return c
}

func (r *Registry) gauge(name string) *atomic.Float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.gauges[name]
	if !ok {
		g = atomic.NewFloat64(0)
		r.gauges[name] = g
	}
	return g
}

// Snapshot returns the current value of every counter and gauge, keyed by name.
func (r *Registry) Snapshot() map[string]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]float64, len(r.counters)+len(r.gauges))
	for name, c := range r.counters {
		out[name] = float64(c.Load())
	}
	for name, g := range r.gauges {
		out[name] = g.Load()
	}
	return out
}

// Render writes the registry as plain-text "name value" lines, sorted by name.
func (r *Registry) Render() string {
	snap := r.Snapshot()
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	sort.Strings(names)

	out := ""
	for _, name := range names {
		out += fmt.Sprintf("%s %v\n", name, snap[name])
	}
	return out
}

// Central metric names (spec.md §4.E, §4.F; original central_services/app/observability.py).
const (
	CentralInventoryUpdatesTotal          = "central_inventory_updates_total"
	CentralInventoryUpdateConflictsTotal  = "central_inventory_update_conflicts_total"
	CentralInventoryUpdateFailuresTotal   = "central_inventory_update_failures_total"
	CentralBulkSyncTotal                  = "central_bulk_sync_total"
	CentralInventoryCount                 = "central_inventory_count"
	CentralIdempotencyKeys                = "central_idempotency_keys"
)

// Store metric names (spec.md §4.G, §4.H; original store_services/app/observability.py).
const (
	StoreSyncAttemptsTotal   = "store_sync_attempts_total"
	StoreSyncSuccessTotal    = "store_sync_success_total"
	StoreSyncConflictsTotal  = "store_sync_conflicts_total"
	StoreSyncFailuresTotal   = "store_sync_failures_total"
	StoreLocalUpdatesTotal   = "store_local_updates_total"
	StoreInventoryCount      = "store_inventory_count"
	StorePendingChanges      = "store_pending_changes"
	StoreSyncDurationSeconds = "store_sync_duration_seconds"
	StorePushResponseSeconds = "store_push_response_seconds"
)
