package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/weather-map-viewer/internal/domain"
	"github.com/couchcryptid/weather-map-viewer/internal/observability"
)

// Sentinel errors surfaced to the HTTP layer.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownDomain   = errors.New("domain not in catalogue")
	ErrUnknownVariable = errors.New("variable not in current catalogue")
)

// MetadataFetcher retrieves the latest-run metadata document for a domain.
// Implemented by the openmeteo client.
type MetadataFetcher interface {
	FetchLatest(ctx context.Context, domainID string) (domain.MetadataDocument, error)
}

// Manager owns all live sessions and runs their transitions.
type Manager struct {
	fetcher MetadataFetcher
	tracker domain.BoundsTracker
	logger  *slog.Logger
	metrics *observability.Metrics

	defaultDomain   string
	defaultVariable string

	mu       sync.RWMutex
	sessions map[string]*Session

	ready atomic.Bool
}

// NewManager creates a session manager. tracker may be a NopBoundsTracker
// when the sink is not configured.
func NewManager(fetcher MetadataFetcher, tracker domain.BoundsTracker, defaultDomain, defaultVariable string, metrics *observability.Metrics, logger *slog.Logger) *Manager {
	return &Manager{
		fetcher:         fetcher,
		tracker:         tracker,
		logger:          logger,
		metrics:         metrics,
		defaultDomain:   defaultDomain,
		defaultVariable: defaultVariable,
		sessions:        make(map[string]*Session),
	}
}

// CheckReadiness returns nil once at least one metadata document has been
// fetched successfully.
func (m *Manager) CheckReadiness(_ context.Context) error {
	if !m.ready.Load() {
		return errors.New("no metadata document fetched yet")
	}
	return nil
}

// Create starts a new session in the Loading state with the hard-coded
// defaults, then resolves it with an immediate metadata fetch. A failed
// initial fetch leaves the optimistic defaults in place with loading cleared;
// the session is still usable and a later domain change can recover it.
func (m *Manager) Create(ctx context.Context) (State, error) {
	s := newSession(newSessionID(), domain.Selection{
		Domain:      m.defaultDomain,
		Variable:    m.defaultVariable,
		DisplayTime: domain.InitialDisplayTime(),
	})

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	m.metrics.SessionsActive.Inc()

	return m.fetchAndApply(ctx, s, m.defaultDomain)
}

// Get returns the current snapshot of a session.
func (m *Manager) Get(id string) (State, error) {
	s, err := m.lookup(id)
	if err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), nil
}

// Remove discards a session.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	m.metrics.SessionsActive.Dec()
	return nil
}

// ChangeDomain switches a session to a new domain. The metadata document is
// fetched once, with no retry; on failure the prior selection is retained and
// the error returned alongside the unchanged snapshot.
func (m *Manager) ChangeDomain(ctx context.Context, id, domainID string) (State, error) {
	if _, ok := domain.DomainByID(domainID); !ok {
		return State{}, ErrUnknownDomain
	}
	s, err := m.lookup(id)
	if err != nil {
		return State{}, err
	}
	m.metrics.SelectionChanges.WithLabelValues("domain").Inc()
	return m.fetchAndApply(ctx, s, domainID)
}

// fetchAndApply runs one sequence-tagged metadata fetch for a session and
// applies the document unless a newer fetch has been issued meanwhile.
func (m *Manager) fetchAndApply(ctx context.Context, s *Session, domainID string) (State, error) {
	s.mu.Lock()
	s.seq++
	tag := s.seq
	s.loading = true
	s.mu.Unlock()

	doc, fetchErr := m.fetcher.FetchLatest(ctx, domainID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if tag != s.seq {
		// A newer fetch owns the session now; this response is stale either way.
		m.metrics.MetadataFetches.WithLabelValues(domainID, "stale").Inc()
		m.logger.Debug("discarding stale metadata response",
			"session", s.id, "domain", domainID, "tag", tag, "current", s.seq)
		return s.snapshotLocked(), nil
	}

	s.loading = false

	if fetchErr != nil {
		m.logger.Warn("metadata fetch failed, retaining previous selection",
			"session", s.id, "domain", domainID, "error", fetchErr)
		return s.snapshotLocked(), fetchErr
	}

	s.applyDocumentLocked(domainID, doc)
	m.ready.Store(true)
	return s.snapshotLocked(), nil
}

// ChangeVariable applies a top-level menu selection: a group prefix resolves
// to the group's default member, any other selector is assigned directly
// after a membership check against the current catalogue.
func (m *Manager) ChangeVariable(id, selector string) (State, error) {
	s, err := m.lookup(id)
	if err != nil {
		return State{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	resolved := domain.ResolveVariableChoice(selector, s.cls)
	if s.loaded && !s.doc.HasVariable(resolved) {
		return s.snapshotLocked(), ErrUnknownVariable
	}
	s.sel.Variable = resolved
	m.metrics.SelectionChanges.WithLabelValues("variable").Inc()
	return s.snapshotLocked(), nil
}

// ChangeLevel selects a specific member of the active level group.
func (m *Manager) ChangeLevel(id, level string) (State, error) {
	s, err := m.lookup(id)
	if err != nil {
		return State{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded && !s.doc.HasVariable(level) {
		return s.snapshotLocked(), ErrUnknownVariable
	}
	s.sel.Variable = level
	m.metrics.SelectionChanges.WithLabelValues("level").Inc()
	return s.snapshotLocked(), nil
}

// TrackBounds forwards a viewport notification, unmodified, to the bounds
// tracker. Tracker failures are logged and not surfaced to the viewer.
func (m *Manager) TrackBounds(ctx context.Context, id string, b domain.Bounds) error {
	s, err := m.lookup(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	event := domain.BoundsEvent{
		SessionID:  s.id,
		Domain:     s.sel.Domain,
		Variable:   s.sel.Variable,
		Bounds:     b,
		ObservedAt: domain.Now().UTC(),
	}
	s.mu.Unlock()

	if err := m.tracker.TrackBounds(ctx, event); err != nil {
		m.metrics.BoundsEvents.WithLabelValues("error").Inc()
		m.logger.Warn("bounds tracking failed", "session", id, "error", err)
		return nil
	}
	m.metrics.BoundsEvents.WithLabelValues("published").Inc()
	return nil
}

// OverlayURLFor returns the current overlay URL of a session, used by the
// tile proxy's om scheme resolver. Empty until the first document loads.
func (m *Manager) OverlayURLFor(id string) (string, error) {
	st, err := m.Get(id)
	if err != nil {
		return "", err
	}
	return st.OverlayURL, nil
}

func (m *Manager) lookup(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}
