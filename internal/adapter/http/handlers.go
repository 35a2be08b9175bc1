package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/weather-map-viewer/internal/domain"
	"github.com/couchcryptid/weather-map-viewer/internal/session"
)

// SessionService is the slice of the session manager the handlers need.
type SessionService interface {
	Create(ctx context.Context) (session.State, error)
	Get(id string) (session.State, error)
	Remove(id string) error
	ChangeDomain(ctx context.Context, id, domainID string) (session.State, error)
	ChangeVariable(id, selector string) (session.State, error)
	ChangeLevel(id, level string) (session.State, error)
	TrackBounds(ctx context.Context, id string, b domain.Bounds) error
}

type handlers struct {
	svc         SessionService
	styleURL    string
	styleClient *http.Client
	logger      *slog.Logger
}

func newHandlers(svc SessionService, styleURL string, styleTimeout time.Duration, logger *slog.Logger) *handlers {
	return &handlers{
		svc:         svc,
		styleURL:    styleURL,
		styleClient: &http.Client{Timeout: styleTimeout},
		logger:      logger,
	}
}

func (h *handlers) handleIndex(w http.ResponseWriter, _ *http.Request) {
	page, err := webFS.ReadFile("web/index.html")
	if err != nil {
		http.Error(w, "viewer page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page) //nolint:errcheck // best-effort page response
}

func (h *handlers) handleDomains(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"domains": domain.Domains})
}

// handleStyle passes the base map style document through unmodified.
func (h *handlers) handleStyle(w http.ResponseWriter, r *http.Request) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, h.styleURL, nil)
	if err != nil {
		http.Error(w, "style request failed", http.StatusInternalServerError)
		return
	}
	resp, err := h.styleClient.Do(req)
	if err != nil {
		h.logger.Warn("style fetch failed", "url", h.styleURL, "error", err)
		http.Error(w, "style fetch failed", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		h.logger.Warn("style fetch failed", "url", h.styleURL, "status", resp.StatusCode)
		http.Error(w, "style fetch failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", resp.Header.Get("Content-Type"))
	w.WriteHeader(http.StatusOK)
	io.Copy(w, resp.Body) //nolint:errcheck // best-effort passthrough
}

func (h *handlers) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Create(r.Context())
	if err != nil {
		// The session exists with its optimistic defaults; surface the
		// degraded state alongside the failure.
		writeStateError(w, http.StatusBadGateway, st, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (h *handlers) handleGetSession(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *handlers) handleRemoveSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Remove(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) handleChangeDomain(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Domain string `json:"domain"`
	}
	if !decodeBody(w, r, &body) || !requireField(w, "domain", body.Domain) {
		return
	}

	st, err := h.svc.ChangeDomain(r.Context(), r.PathValue("id"), body.Domain)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) || errors.Is(err, session.ErrUnknownDomain) {
			writeError(w, err)
			return
		}
		// Metadata fetch failure: prior selection retained, loading cleared.
		writeStateError(w, http.StatusBadGateway, st, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *handlers) handleChangeVariable(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Variable string `json:"variable"`
	}
	if !decodeBody(w, r, &body) || !requireField(w, "variable", body.Variable) {
		return
	}

	st, err := h.svc.ChangeVariable(r.PathValue("id"), body.Variable)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *handlers) handleChangeLevel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Level string `json:"level"`
	}
	if !decodeBody(w, r, &body) || !requireField(w, "level", body.Level) {
		return
	}

	st, err := h.svc.ChangeLevel(r.PathValue("id"), body.Level)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *handlers) handleBounds(w http.ResponseWriter, r *http.Request) {
	var body domain.Bounds
	if !decodeBody(w, r, &body) {
		return
	}

	if err := h.svc.TrackBounds(r.Context(), r.PathValue("id"), body); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return false
	}
	return true
}

func requireField(w http.ResponseWriter, name, value string) bool {
	if value == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": name + " is required"})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrUnknownDomain), errors.Is(err, session.ErrUnknownVariable):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeStateError(w http.ResponseWriter, status int, st session.State, err error) {
	writeJSON(w, status, map[string]any{
		"error": err.Error(),
		"state": st,
	})
}
