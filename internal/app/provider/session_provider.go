package provider

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"balance_chart/internal/app/port"
	"balance_chart/internal/app/service"
	"balance_chart/internal/domain/entity"
	"balance_chart/internal/pkg/metrics"
)

// OrchestratorFactory builds a fresh orchestrator (with its own empty cache) for a new session.
type OrchestratorFactory func() *service.Orchestrator

// Session is one widget instance: its selection, its cache and its in-flight fetches.
type Session struct {
	ID        string
	CreatedAt time.Time

	orchestrator *service.Orchestrator
}

// Orchestrator returns the session's orchestrator.
func (s *Session) Orchestrator() *service.Orchestrator {
	return s.orchestrator
}

// Selection returns the session's current selection.
func (s *Session) Selection() entity.Selection {
	return s.orchestrator.Selection()
}

// View returns the view model of the session's current selection.
func (s *Session) View() entity.View {
	return s.orchestrator.View(s.orchestrator.Selection())
}

// SessionProvider keeps sessions in memory and expires idle ones.
type SessionProvider struct {
	sessions        *gocache.Cache
	newOrchestrator OrchestratorFactory
	logger          port.Logger
	wg              sync.WaitGroup
}

// NewSessionProvider creates a provider whose sessions expire after ttl without access.
func NewSessionProvider(ttl, cleanupInterval time.Duration, factory OrchestratorFactory, logger port.Logger) *SessionProvider {
	p := &SessionProvider{
		sessions:        gocache.New(ttl, cleanupInterval),
		newOrchestrator: factory,
		logger:          logger.With("component", "SessionProvider"),
	}
	p.sessions.OnEvicted(func(id string, v interface{}) {
		metrics.ActiveSessions.Dec()
		if s, ok := v.(*Session); ok {
			metrics.CacheEntries.Sub(float64(s.orchestrator.Snapshot().Len()))
		}
		p.logger.Debug("Session evicted", "session_id", id)
	})
	return p
}

// Create registers a new session and starts the initial fetch for sel.
func (p *SessionProvider) Create(ctx context.Context, sel entity.Selection) *Session {
	s := &Session{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now(),
		orchestrator: p.newOrchestrator(),
	}
	p.sessions.SetDefault(s.ID, s)
	metrics.ActiveSessions.Inc()
	p.logger.Info("Session created", "session_id", s.ID, "network", sel.Network, "address", sel.Address)

	p.Dispatch(ctx, s, sel)
	return s
}

// Get returns the session with id and refreshes its idle expiry.
func (p *SessionProvider) Get(id string) (*Session, bool) {
	v, found := p.sessions.Get(id)
	if !found {
		return nil, false
	}
	s, ok := v.(*Session)
	if !ok {
		return nil, false
	}
	p.sessions.SetDefault(id, s)
	return s, true
}

// Delete drops a session. Its in-flight fetches still finish but are no longer observable.
func (p *SessionProvider) Delete(id string) {
	p.sessions.Delete(id)
}

// Count returns the number of live sessions, including expired ones not yet cleaned up.
func (p *SessionProvider) Count() int {
	return p.sessions.ItemCount()
}

// Dispatch makes sel the session's selection and fetches it in the background.
// The selection change is recorded before returning, so later dispatches always win.
func (p *SessionProvider) Dispatch(ctx context.Context, s *Session, sel entity.Selection) {
	ticket := s.orchestrator.Begin(sel)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		err := s.orchestrator.Run(ctx, ticket)
		switch {
		case err == nil:
		case errors.Is(err, service.ErrStaleFetch):
			p.logger.Debug("Superseded fetch finished", "session_id", s.ID, "network", sel.Network)
		default:
			p.logger.Warn("Background fetch failed", "session_id", s.ID, "network", sel.Network, "error", err)
		}
	}()
}

// Wait blocks until every dispatched fetch has returned.
func (p *SessionProvider) Wait() {
	p.wg.Wait()
}

// WaitContext is Wait bounded by ctx. It returns ctx.Err() if fetches are still running when ctx ends.
func (p *SessionProvider) WaitContext(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
