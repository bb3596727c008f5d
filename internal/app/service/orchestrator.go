package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"balance_chart/internal/app/cache"
	"balance_chart/internal/app/port"
	"balance_chart/internal/domain/entity"
	"balance_chart/internal/pkg/metrics"
)

// ErrStaleFetch is returned when a fetch completed after its selection was superseded.
// Its result has been discarded.
var ErrStaleFetch = errors.New("stale fetch discarded")

var _ port.BalanceController = (*Orchestrator)(nil)

// Ticket identifies one fetch. It is issued by Begin in selection order and carries
// the generation that must still be current when the fetch commits.
type Ticket struct {
	Selection  entity.Selection
	generation uint64
}

// OrchestratorOptions tunes failure handling.
type OrchestratorOptions struct {
	// SurfaceErrors commits transport/parse failures as an error entry. When false the
	// failure is only logged and the selection stays in the loading state.
	SurfaceErrors bool
}

// Orchestrator runs balance fetches for one session and commits only the most recent one.
type Orchestrator struct {
	client    port.BalanceClient
	store     *cache.Store
	presenter *Presenter
	logger    port.Logger
	opts      OrchestratorOptions

	mu         sync.Mutex
	generation uint64
	selection  entity.Selection
}

// NewOrchestrator creates an orchestrator writing into store.
func NewOrchestrator(
	client port.BalanceClient,
	store *cache.Store,
	presenter *Presenter,
	logger port.Logger,
	opts OrchestratorOptions,
) *Orchestrator {
	return &Orchestrator{
		client:    client,
		store:     store,
		presenter: presenter,
		logger:    logger.With("component", "Orchestrator"),
		opts:      opts,
	}
}

// Begin records sel as the current selection and supersedes every fetch started before it.
// Callers that dispatch fetches asynchronously must call Begin in selection order.
func (o *Orchestrator) Begin(sel entity.Selection) Ticket {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.generation++
	o.selection = sel
	return Ticket{Selection: sel, generation: o.generation}
}

// FetchBalances implements port.BalanceController: Begin followed by Run.
func (o *Orchestrator) FetchBalances(ctx context.Context, sel entity.Selection) error {
	return o.Run(ctx, o.Begin(sel))
}

// Run performs the fetch for t. The outbound request is never cancelled when t is superseded;
// only its commit is suppressed.
func (o *Orchestrator) Run(ctx context.Context, t Ticket) error {
	sel := t.Selection
	query := BuildQuery(sel.Network, sel.Address)

	start := time.Now()
	raw, err := o.client.FetchBalances(ctx, query)
	metrics.FetchDuration.WithLabelValues(sel.Network).Observe(time.Since(start).Seconds())
	if err != nil {
		return o.fail(t, err)
	}

	result, err := Normalize(raw)
	if err != nil {
		return o.fail(t, err)
	}

	outcome := metrics.OutcomeCommitted
	if result.IsError() {
		outcome = metrics.OutcomeEmpty
	}
	return o.commit(t, result, outcome)
}

// commit writes result if t is still current. An empty outcome skips the fetch counter.
func (o *Orchestrator) commit(t Ticket, result entity.FetchResult, outcome string) error {
	sel := t.Selection

	o.mu.Lock()
	defer o.mu.Unlock()

	if t.generation != o.generation {
		metrics.FetchesTotal.WithLabelValues(sel.Network, metrics.OutcomeStale).Inc()
		o.logger.Debug("Discarding stale balance fetch",
			"network", sel.Network, "address", sel.Address,
			"current_network", o.selection.Network, "current_address", o.selection.Address)
		return ErrStaleFetch
	}

	var added int
	o.store.Update(func(c *cache.BalanceCache) *cache.BalanceCache {
		next := c.Set(sel.Address, sel.Network, result)
		added = next.Len() - c.Len()
		return next
	})
	metrics.CacheEntries.Add(float64(added))

	if outcome != "" {
		metrics.FetchesTotal.WithLabelValues(sel.Network, outcome).Inc()
	}
	o.logger.Debug("Committed balance fetch",
		"network", sel.Network, "address", sel.Address,
		"status", result.Status.String(), "records", len(result.Balances))
	return nil
}

func (o *Orchestrator) fail(t Ticket, cause error) error {
	sel := t.Selection
	err := fmt.Errorf("fetch balances for %s on %s: %w", sel.Address, sel.Network, cause)

	if !o.current(t) {
		metrics.FetchesTotal.WithLabelValues(sel.Network, metrics.OutcomeStale).Inc()
		o.logger.Debug("Superseded balance fetch failed",
			"network", sel.Network, "address", sel.Address, "error", cause)
		return errors.Join(err, ErrStaleFetch)
	}

	metrics.FetchesTotal.WithLabelValues(sel.Network, metrics.OutcomeFailed).Inc()
	o.logger.Error("Balance fetch failed",
		"network", sel.Network, "address", sel.Address, "error", cause)

	if !o.opts.SurfaceErrors {
		return err
	}
	if commitErr := o.commit(t, entity.ErrorResult(entity.FetchFailedMessage), ""); commitErr != nil {
		return errors.Join(err, commitErr)
	}
	return err
}

func (o *Orchestrator) current(t Ticket) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return t.generation == o.generation
}

// Selection returns the most recent selection passed to Begin.
func (o *Orchestrator) Selection() entity.Selection {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.selection
}

// Snapshot returns the current cache snapshot.
func (o *Orchestrator) Snapshot() *cache.BalanceCache {
	return o.store.Snapshot()
}

// View implements port.BalanceController.
func (o *Orchestrator) View(sel entity.Selection) entity.View {
	return o.presenter.View(o.store.Snapshot(), sel)
}
