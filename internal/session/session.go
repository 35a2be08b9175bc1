// Package session owns the per-viewer selection state and its transitions.
//
// Each browser session holds one Selection, the metadata document of its
// current domain, and the menu structure derived from it. Transitions are
// serialized per session by a mutex. Domain changes issue a metadata fetch
// tagged with a monotonic sequence number; a response arriving after a newer
// fetch has been issued is discarded, so overlapping domain changes cannot
// leave a stale document behind.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/couchcryptid/weather-map-viewer/internal/domain"
)

// Session is the server-side state of one connected viewer.
type Session struct {
	id string

	mu      sync.Mutex
	loading bool
	seq     uint64 // tag of the most recently issued metadata fetch
	sel     domain.Selection
	doc     domain.MetadataDocument
	cls     domain.Classification
	loaded  bool // true once the first metadata document has been applied
}

// State is the externally visible snapshot of a session, shaped for the
// viewer's JSON API.
type State struct {
	ID          string                `json:"id"`
	Loading     bool                  `json:"loading"`
	Selection   domain.Selection      `json:"selection"`
	ModelRun    time.Time             `json:"model_run,omitzero"`
	Menu        domain.Classification `json:"menu"`
	ActiveGroup string                `json:"active_group,omitempty"`
	Levels      []domain.LevelEntry   `json:"levels,omitempty"`
	OverlayURL  string                `json:"overlay_url,omitempty"`
	Grid        domain.GridDescriptor `json:"grid"`
}

func newSession(id string, sel domain.Selection) *Session {
	return &Session{id: id, sel: sel, loading: true}
}

func newSessionID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return "v-" + hex.EncodeToString(b[:])
}

// snapshotLocked builds a State; callers hold s.mu.
func (s *Session) snapshotLocked() State {
	st := State{
		ID:        s.id,
		Loading:   s.loading,
		Selection: s.sel,
		Menu:      s.cls,
	}
	if d, ok := domain.DomainByID(s.sel.Domain); ok {
		st.Grid = d.Grid
	}
	if !s.loaded {
		return st
	}

	st.ModelRun = s.doc.ReferenceTime
	st.OverlayURL = domain.BuildOverlayURL(s.sel.Domain, s.sel.Variable, s.doc.ReferenceTime, s.sel.DisplayTime)

	if prefix, ok := domain.LevelPrefix(s.sel.Variable); ok {
		if entries, ok := s.cls.Groups[prefix]; ok {
			st.ActiveGroup = prefix
			st.Levels = entries
		}
	}
	return st
}

// applyDocumentLocked installs a freshly fetched metadata document, carrying
// the variable across per the closest-match rule; callers hold s.mu.
func (s *Session) applyDocumentLocked(domainID string, doc domain.MetadataDocument) {
	s.sel.Domain = domainID
	s.sel.Variable = domain.NextVariableForDomain(s.sel.Variable, doc)
	s.doc = doc
	s.cls = domain.ClassifyVariables(doc.Variables)
	s.loaded = true
}
