// internal/server/handlers/session.go

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"regiodash/internal/adapter/bus"
	"regiodash/internal/domain/boundary"
	"regiodash/internal/domain/selection"
	"regiodash/internal/observability"
	selectionService "regiodash/internal/service/selection"
)

// SessionCookie names the cookie carrying the session id
const SessionCookie = "session_id"

const maxEventSize = 64 * 1024

// Views renders encoded views of a selection state
type Views interface {
	MapJSON(ctx context.Context, state selection.State) ([]byte, error)
	TimeSeriesJSON(ctx context.Context, state selection.State, variable string) ([]byte, error)
	TimeSeriesPNG(ctx context.Context, state selection.State, variable string) ([]byte, error)
}

// SessionHandler handles selection state and user events
type SessionHandler struct {
	registry   *selectionService.Registry
	controller *selectionService.Controller
	views      Views
	bus        bus.Bus
	prefix     string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(
	registry *selectionService.Registry,
	controller *selectionService.Controller,
	views Views,
	b bus.Bus,
	subjectPrefix string,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *SessionHandler {
	return &SessionHandler{
		registry:   registry,
		controller: controller,
		views:      views,
		bus:        b,
		prefix:     subjectPrefix,
		metrics:    metrics,
		logger:     logger,
	}
}

// stateNotice is published on the bus after a session's state changed
type stateNotice struct {
	Type  string          `json:"type"`
	State selection.State `json:"state"`
}

// viewSet is the rendered dashboard for one state
type viewSet struct {
	State      selection.State `json:"state"`
	Map        json.RawMessage `json:"map"`
	MapError   string          `json:"map_error,omitempty"`
	TimeSeries json.RawMessage `json:"timeseries"`
}

type eventResponse struct {
	Outcome selection.Outcome `json:"outcome"`
	viewSet
}

// session returns the caller's session, starting one and setting the
// cookie when the request carries none or an expired one.
func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) *selectionService.Session {
	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}

	s, created := h.registry.Resolve(id)
	if created {
		http.SetCookie(w, sessionCookie(s.ID))
	}
	return s
}

func sessionCookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// GetSession returns the caller's selection state
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	respondWithJSON(w, http.StatusOK, s.State())
}

// PostEvent applies one user event and returns the new views. Events
// without payload are answered with 204 and change nothing.
func (h *SessionHandler) PostEvent(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventSize))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, KindBadRequest, "Failed to read event")
		return
	}

	ev, err := selection.ParseEvent(body)
	if err != nil {
		respondWithFailure(w, h.logger, err)
		return
	}

	state, out, err := h.apply(s, ev)
	if err != nil {
		respondWithFailure(w, h.logger, err)
		return
	}
	if out.Skipped {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	views, err := h.render(r.Context(), state)
	if err != nil {
		respondWithFailure(w, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, eventResponse{Outcome: out, viewSet: views})
}

// apply runs an event against a session and announces state changes
func (h *SessionHandler) apply(s *selectionService.Session, ev selection.Event) (selection.State, selection.Outcome, error) {
	if !s.Allow() {
		h.metrics.Events.WithLabelValues(string(ev.Kind), "rejected").Inc()
		return selection.State{}, selection.Outcome{}, ErrRateLimited
	}

	state, out, err := s.Apply(h.controller, ev)
	switch {
	case err != nil:
		h.metrics.Events.WithLabelValues(string(ev.Kind), "rejected").Inc()
		h.logger.Info("event rejected", "session", s.ID, "kind", ev.Kind, "error", err)
		return state, out, err
	case out.Skipped:
		h.metrics.Events.WithLabelValues(string(ev.Kind), "skipped").Inc()
		return state, out, nil
	case !out.Changed:
		h.metrics.Events.WithLabelValues(string(ev.Kind), "unchanged").Inc()
		return state, out, nil
	}

	h.metrics.Events.WithLabelValues(string(ev.Kind), "changed").Inc()
	h.publish(s.ID, state)
	return state, out, nil
}

func (h *SessionHandler) publish(sessionID string, state selection.State) {
	data, err := json.Marshal(stateNotice{Type: "state", State: state})
	if err != nil {
		h.logger.Error("failed to encode state notice", "error", err)
		return
	}
	if err := h.bus.Publish(bus.ViewSubject(h.prefix, sessionID), data); err != nil {
		h.logger.Warn("failed to publish state notice", "session", sessionID, "error", err)
	}
}

// render builds the map and the main time series. A year without
// boundaries still gets its time series.
func (h *SessionHandler) render(ctx context.Context, state selection.State) (viewSet, error) {
	vs := viewSet{State: state}

	ts, err := h.views.TimeSeriesJSON(ctx, state, "")
	if err != nil {
		return vs, err
	}
	vs.TimeSeries = ts

	m, err := h.views.MapJSON(ctx, state)
	switch {
	case errors.Is(err, boundary.ErrBoundaryUnavailable):
		vs.Map = json.RawMessage("null")
		vs.MapError = KindBoundaryUnavailable
	case err != nil:
		return vs, err
	default:
		vs.Map = m
	}

	return vs, nil
}
