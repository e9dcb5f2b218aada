// internal/adapter/bus/bus.go

package bus

import (
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
)

// Handler receives the payload of a published message
type Handler func(data []byte)

// Subscription is an active subscription
type Subscription interface {
	Unsubscribe() error
}

// Bus fans messages out to every subscriber of a subject
type Bus interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, h Handler) (Subscription, error)
}

// ViewSubject is the subject carrying view changes of one session
func ViewSubject(prefix, sessionID string) string {
	return fmt.Sprintf("%s.session.%s.view", prefix, sessionID)
}

// NATS is a bus backed by a NATS connection, so sockets of one session
// attached to different replicas see the same changes.
type NATS struct {
	conn *nats.Conn
}

// NewNATS creates a new NATS bus
func NewNATS(conn *nats.Conn) *NATS {
	return &NATS{conn: conn}
}

// Publish sends data to subject
func (b *NATS) Publish(subject string, data []byte) error {
	if err := b.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

// Subscribe registers h for subject
func (b *NATS) Subscribe(subject string, h Handler) (Subscription, error) {
	sub, err := b.conn.Subscribe(subject, func(msg *nats.Msg) {
		h(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	return sub, nil
}

// Local is an in-process bus for single-replica deployments
type Local struct {
	mu   sync.RWMutex
	subs map[string]map[*localSub]struct{}
}

type localSub struct {
	bus     *Local
	subject string
	h       Handler
}

// NewLocal creates a new in-process bus
func NewLocal() *Local {
	return &Local{subs: make(map[string]map[*localSub]struct{})}
}

// Publish calls every handler of subject before returning
func (b *Local) Publish(subject string, data []byte) error {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[subject]))
	for s := range b.subs[subject] {
		handlers = append(handlers, s.h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(data)
	}
	return nil
}

// Subscribe registers h for subject
func (b *Local) Subscribe(subject string, h Handler) (Subscription, error) {
	s := &localSub{bus: b, subject: subject, h: h}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[subject] == nil {
		b.subs[subject] = make(map[*localSub]struct{})
	}
	b.subs[subject][s] = struct{}{}
	return s, nil
}

func (s *localSub) Unsubscribe() error {
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subs[s.subject], s)
	if len(b.subs[s.subject]) == 0 {
		delete(b.subs, s.subject)
	}
	return nil
}
