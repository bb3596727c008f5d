package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"balance_chart/internal/app/cache"
	"balance_chart/internal/config"
	"balance_chart/internal/domain/entity"
	"balance_chart/internal/pkg/logger"
	"balance_chart/internal/pkg/metrics"
)

const testAddress = "0x644e357b0DC7f234a1F0478dE7FE8790b94B6F63"

func newTestOrchestrator(client *gatedClient, surface bool) *Orchestrator {
	return NewOrchestrator(client, cache.NewStore(), NewPresenter(config.DefaultPalette), logger.NewNop(),
		OrchestratorOptions{SurfaceErrors: surface})
}

func runAsync(o *Orchestrator, t Ticket) <-chan error {
	done := make(chan error, 1)
	go func() { done <- o.Run(context.Background(), t) }()
	return done
}

func nextCall(t *testing.T, c *gatedClient) *pendingCall {
	t.Helper()
	select {
	case call := <-c.calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for outbound call")
		return nil
	}
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fetch to finish")
		return nil
	}
}

func TestOrchestrator_CommitsResult(t *testing.T) {
	client := newGatedClient()
	o := newTestOrchestrator(client, false)
	sel := entity.Selection{Network: "bsc", Address: testAddress}

	assert.Equal(t, entity.ViewLoader, o.View(sel).Kind)

	done := runAsync(o, o.Begin(sel))
	call := nextCall(t, client)
	assert.Equal(t, entity.BalanceQuery{Network: "bsc", Address: testAddress}, call.query)
	call.reply <- reply{resp: rawResponse(rawEntry(5, "ERC20", "0xA", "TKA", "Token A"))}
	require.NoError(t, waitDone(t, done))

	v := o.View(sel)
	require.Equal(t, entity.ViewChart, v.Kind)
	require.Len(t, v.Segments, 1)
	assert.Equal(t, "TKA", v.Segments[0].Symbol)
	assert.Equal(t, sel, o.Selection())
}

func TestOrchestrator_StaleResponseArrivingLateIsDiscarded(t *testing.T) {
	client := newGatedClient()
	o := newTestOrchestrator(client, false)
	eth := entity.Selection{Network: "ethereum", Address: testAddress}
	matic := entity.Selection{Network: "matic", Address: testAddress}

	doneEth := runAsync(o, o.Begin(eth))
	callEth := nextCall(t, client)

	doneMatic := runAsync(o, o.Begin(matic))
	callMatic := nextCall(t, client)

	callMatic.reply <- reply{resp: rawResponse(rawEntry(2, "ERC20", "0xM", "MATIC", "Matic"))}
	require.NoError(t, waitDone(t, doneMatic))

	callEth.reply <- reply{resp: rawResponse(rawEntry(1, "", "-", "ETH", "Ether"))}
	assert.ErrorIs(t, waitDone(t, doneEth), ErrStaleFetch)

	snap := o.Snapshot()
	_, ok := snap.Get(testAddress, "ethereum")
	assert.False(t, ok, "superseded fetch must not be committed")
	r, ok := snap.Get(testAddress, "matic")
	require.True(t, ok)
	assert.Equal(t, "MATIC", r.Balances[0].Symbol)
	assert.Equal(t, 1, snap.Len())
}

func TestOrchestrator_StaleResponseArrivingFirstIsDiscarded(t *testing.T) {
	client := newGatedClient()
	o := newTestOrchestrator(client, false)
	s1 := entity.Selection{Network: "bsc", Address: "0x1"}
	s2 := entity.Selection{Network: "bsc", Address: "0x2"}

	done1 := runAsync(o, o.Begin(s1))
	call1 := nextCall(t, client)
	done2 := runAsync(o, o.Begin(s2))
	call2 := nextCall(t, client)

	call1.reply <- reply{resp: rawResponse(rawEntry(1, "", "-", "BNB", "BNB"))}
	assert.ErrorIs(t, waitDone(t, done1), ErrStaleFetch)

	call2.reply <- reply{resp: rawResponse()}
	require.NoError(t, waitDone(t, done2))

	_, ok := o.Snapshot().Get("0x1", "bsc")
	assert.False(t, ok)
	assert.Equal(t, entity.ViewError, o.View(s2).Kind)
	assert.Equal(t, entity.NoBalancesMessage, o.View(s2).Message)
}

func TestOrchestrator_RefetchOverwritesEntry(t *testing.T) {
	client := newGatedClient()
	o := newTestOrchestrator(client, false)
	sel := entity.Selection{Network: "bsc", Address: testAddress}

	done := runAsync(o, o.Begin(sel))
	nextCall(t, client).reply <- reply{resp: rawResponse()}
	require.NoError(t, waitDone(t, done))
	before := o.Snapshot()

	done = runAsync(o, o.Begin(sel))
	nextCall(t, client).reply <- reply{resp: rawResponse(rawEntry(3, "ERC20", "0xA", "TKA", "Token A"))}
	require.NoError(t, waitDone(t, done))

	assert.Equal(t, entity.ViewChart, o.View(sel).Kind)
	r, _ := before.Get(testAddress, "bsc")
	assert.True(t, r.IsError(), "previous snapshot is unchanged")
}

func TestOrchestrator_FailureIsNotCommittedByDefault(t *testing.T) {
	client := newGatedClient()
	o := newTestOrchestrator(client, false)
	sel := entity.Selection{Network: "bsc", Address: testAddress}
	boom := errors.New("connection reset")

	done := runAsync(o, o.Begin(sel))
	nextCall(t, client).reply <- reply{err: boom}
	err := waitDone(t, done)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrStaleFetch)

	assert.Equal(t, entity.ViewLoader, o.View(sel).Kind, "failed pair stays loading")
	assert.Zero(t, o.Snapshot().Len())
}

func TestOrchestrator_MalformedResponseIsNotCommittedByDefault(t *testing.T) {
	client := newGatedClient()
	o := newTestOrchestrator(client, false)
	sel := entity.Selection{Network: "bsc", Address: testAddress}

	done := runAsync(o, o.Begin(sel))
	nextCall(t, client).reply <- reply{resp: &entity.RawBalanceResponse{}}
	assert.ErrorIs(t, waitDone(t, done), ErrMalformedResponse)
	assert.Equal(t, entity.ViewLoader, o.View(sel).Kind)
}

func TestOrchestrator_SurfaceErrorsCommitsFailure(t *testing.T) {
	client := newGatedClient()
	o := newTestOrchestrator(client, true)
	sel := entity.Selection{Network: "bsc", Address: testAddress}

	done := runAsync(o, o.Begin(sel))
	nextCall(t, client).reply <- reply{err: errors.New("timeout")}
	require.Error(t, waitDone(t, done))

	v := o.View(sel)
	assert.Equal(t, entity.ViewError, v.Kind)
	assert.Equal(t, entity.FetchFailedMessage, v.Message)
	assert.NotEqual(t, entity.NoBalancesMessage, v.Message)
}

func TestOrchestrator_SurfacedFailureStillRespectsStaleness(t *testing.T) {
	client := newGatedClient()
	o := newTestOrchestrator(client, true)
	s1 := entity.Selection{Network: "bsc", Address: testAddress}
	s2 := entity.Selection{Network: "matic", Address: testAddress}

	done1 := runAsync(o, o.Begin(s1))
	call1 := nextCall(t, client)
	o.Begin(s2)

	call1.reply <- reply{err: errors.New("timeout")}
	err := waitDone(t, done1)
	assert.ErrorIs(t, err, ErrStaleFetch)
	assert.Zero(t, o.Snapshot().Len())
}

func TestOrchestrator_SupersededFailureIsStale(t *testing.T) {
	client := newGatedClient()
	o := newTestOrchestrator(client, false)
	bsc := entity.Selection{Network: "bsc", Address: testAddress}
	eth := entity.Selection{Network: "ethereum", Address: testAddress}
	boom := errors.New("connection reset")

	staleFailures := testutil.ToFloat64(metrics.FetchesTotal.WithLabelValues("bsc", metrics.OutcomeStale))
	failures := testutil.ToFloat64(metrics.FetchesTotal.WithLabelValues("bsc", metrics.OutcomeFailed))

	done := runAsync(o, o.Begin(bsc))
	call := nextCall(t, client)
	o.Begin(eth)
	o.Begin(bsc)

	call.reply <- reply{err: boom}
	err := waitDone(t, done)
	assert.ErrorIs(t, err, ErrStaleFetch)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, staleFailures+1, testutil.ToFloat64(metrics.FetchesTotal.WithLabelValues("bsc", metrics.OutcomeStale)))
	assert.Equal(t, failures, testutil.ToFloat64(metrics.FetchesTotal.WithLabelValues("bsc", metrics.OutcomeFailed)))
	assert.Zero(t, o.Snapshot().Len())
}

func TestOrchestrator_CommitTracksCacheEntriesGauge(t *testing.T) {
	client := &stubClient{resp: rawResponse(rawEntry(1, "ERC20", "0xA", "TKA", "Token A"))}
	o := NewOrchestrator(client, cache.NewStore(), NewPresenter(config.DefaultPalette), logger.NewNop(), OrchestratorOptions{})
	before := testutil.ToFloat64(metrics.CacheEntries)

	require.NoError(t, o.FetchBalances(context.Background(), entity.Selection{Network: "bsc", Address: "0xA"}))
	require.NoError(t, o.FetchBalances(context.Background(), entity.Selection{Network: "bsc", Address: "0xA"}))
	require.NoError(t, o.FetchBalances(context.Background(), entity.Selection{Network: "matic", Address: "0xA"}))

	assert.Equal(t, before+2, testutil.ToFloat64(metrics.CacheEntries), "refetching a pair does not add an entry")
}

func TestOrchestrator_FetchBalancesBuildsQueryFromSelection(t *testing.T) {
	client := &stubClient{resp: rawResponse(rawEntry(1, "", "-", "CELO", "Celo"))}
	o := NewOrchestrator(client, cache.NewStore(), NewPresenter(config.DefaultPalette), logger.NewNop(), OrchestratorOptions{})

	sel := entity.Selection{Network: "celo_alfajores", Address: "garbage"}
	require.NoError(t, o.FetchBalances(context.Background(), sel))

	require.Len(t, client.queries, 1)
	assert.Equal(t, BuildQuery("celo_alfajores", "garbage"), client.queries[0])
	assert.Equal(t, entity.ViewChart, o.View(sel).Kind)
}
