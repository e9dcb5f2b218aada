// internal/service/selection/sessions.go

package selection

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"regiodash/internal/domain/selection"
)

// RegistryConfig holds configuration for the session registry
type RegistryConfig struct {
	TTL             time.Duration
	JanitorInterval time.Duration
	EventRate       float64
	EventBurst      int
}

// Session is the selection of one browser session. Events of a session are
// applied one at a time.
type Session struct {
	ID string

	mu       sync.Mutex
	state    selection.State
	limiter  *rate.Limiter
	clock    clockwork.Clock
	lastSeen time.Time
}

// State returns a copy of the current state
func (s *Session) State() selection.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Allow reports whether the session may apply another event now
func (s *Session) Allow() bool {
	return s.limiter.AllowN(s.clock.Now(), 1)
}

// Apply runs ev through the controller. The state is only replaced when the
// controller accepts the event.
func (s *Session) Apply(c *Controller, ev selection.Event) (selection.State, selection.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	out, err := c.Apply(&next, ev)
	if err != nil {
		return s.state.Clone(), out, err
	}
	s.state = next
	return next.Clone(), out, nil
}

// Registry keeps the sessions of all connected browsers and evicts the
// ones that have been idle for longer than the TTL.
type Registry struct {
	sessions map[string]*Session
	initial  selection.State
	config   RegistryConfig
	clock    clockwork.Clock
	gauge    prometheus.Gauge
	logger   *slog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
	wg       sync.WaitGroup
}

// NewRegistry creates a new session registry. New sessions start from a
// copy of initial.
func NewRegistry(
	initial selection.State,
	config RegistryConfig,
	clock clockwork.Clock,
	gauge prometheus.Gauge,
	logger *slog.Logger,
) *Registry {
	ctx, cancel := context.WithCancel(context.Background())

	r := &Registry{
		sessions: make(map[string]*Session),
		initial:  initial.Clone(),
		config:   config,
		clock:    clock,
		gauge:    gauge,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}

	if config.JanitorInterval > 0 && config.TTL > 0 {
		r.wg.Add(1)
		go r.monitorSessions()
	}

	return r
}

// Get returns a live session and marks it as seen
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if ok {
		s.lastSeen = r.clock.Now()
	}
	return s, ok
}

// Resolve returns the session for id, creating a fresh one when id is
// unknown or expired. created is true for a new session.
func (r *Registry) Resolve(id string) (s *Session, created bool) {
	if s, ok := r.Get(id); ok {
		return s, false
	}
	return r.Create(), true
}

// Create starts a new session
func (r *Registry) Create() *Session {
	s := &Session{
		ID:       uuid.NewString(),
		state:    r.initial.Clone(),
		limiter:  rate.NewLimiter(rate.Limit(r.config.EventRate), r.config.EventBurst),
		clock:    r.clock,
		lastSeen: r.clock.Now(),
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	n := len(r.sessions)
	r.mu.Unlock()

	r.gauge.Set(float64(n))
	r.logger.Debug("session created", "session", s.ID)
	return s
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts idle sessions and returns how many were removed
func (r *Registry) Sweep() int {
	now := r.clock.Now()

	r.mu.Lock()
	removed := 0
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) > r.config.TTL {
			delete(r.sessions, id)
			removed++
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	r.gauge.Set(float64(n))
	if removed > 0 {
		r.logger.Debug("sessions expired", "removed", removed, "active", n)
	}
	return removed
}

// Stop stops the janitor
func (r *Registry) Stop(ctx context.Context) error {
	r.cancel()

	c := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(c)
	}()

	select {
	case <-c:
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

func (r *Registry) monitorSessions() {
	defer r.wg.Done()

	ticker := r.clock.NewTicker(r.config.JanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.Chan():
			r.Sweep()
		}
	}
}
