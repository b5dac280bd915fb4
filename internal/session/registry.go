// Package session tracks in-flight dialogue sessions keyed by call id.
package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/bargaj/collectcall/internal/domain"
)

var (
	// ErrNotFound is returned when no session exists for a call id.
	ErrNotFound = errors.New("session not found")
	// ErrExists is returned by Create when the call id is already tracked.
	// A retried call-started webhook must not silently reset a dialogue.
	ErrExists = errors.New("session already exists")
)

// entry pairs a session with its own mutex so turns for one call serialize
// without blocking unrelated calls.
type entry struct {
	mu   sync.Mutex
	sess *domain.CallSession
}

// Registry holds active call sessions. The registry RWMutex guards only the
// map; per-call state is guarded by the entry mutex.
type Registry struct {
	mu     sync.RWMutex
	active map[string]*entry
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{active: make(map[string]*entry)}
}

// Create registers a new session for callID. Returns ErrExists if the call
// is already tracked.
func (r *Registry) Create(callID string, borrower *domain.BorrowerRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.active[callID]; ok {
		return ErrExists
	}
	r.active[callID] = &entry{sess: domain.NewCallSession(callID, borrower)}
	slog.Info("Call session created", "call_id", callID, "phone", borrower.PhoneNumber)
	return nil
}

// Get returns a point-in-time copy of the session state for callID. The copy
// shares the borrower snapshot but not the answer map, so callers cannot
// mutate live state without going through Update.
func (r *Registry) Get(callID string) (*domain.CallSession, error) {
	e, err := r.lookup(callID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	cp := *e.sess
	cp.Answers = e.sess.AnswerSnapshot()
	cp.History = append([]domain.Turn(nil), e.sess.History...)
	return &cp, nil
}

// Update runs fn with the session for callID under that call's lock. A
// lookup after Update returns observes everything fn wrote. Concurrent or
// duplicated webhook deliveries for one call serialize here.
func (r *Registry) Update(callID string, fn func(s *domain.CallSession)) error {
	e, err := r.lookup(callID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.sess)
	return nil
}

// Retire drops the session for callID. Retiring an unknown id is a no-op so
// terminal paths can retire unconditionally.
func (r *Registry) Retire(callID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.active[callID]; ok {
		delete(r.active, callID)
		slog.Info("Call session retired", "call_id", callID)
	}
}

// Len returns the number of tracked sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.active)
}

// ReapIdle removes every session idle for longer than ttl and hands each
// removed session to onExpire (abandoned calls: hang-ups and lost webhooks).
func (r *Registry) ReapIdle(ttl time.Duration, onExpire func(callID string, s *domain.CallSession)) int {
	now := time.Now()

	r.mu.Lock()
	var expired []*entry
	for id, e := range r.active {
		e.mu.Lock()
		idle := e.sess.IdleFor(now)
		e.mu.Unlock()
		if idle > ttl {
			delete(r.active, id)
			expired = append(expired, e)
			slog.Info("Call session expired", "call_id", id, "idle", idle)
		}
	}
	r.mu.Unlock()

	for _, e := range expired {
		if onExpire != nil {
			onExpire(e.sess.CallID, e.sess)
		}
	}
	return len(expired)
}

func (r *Registry) lookup(callID string) (*entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.active[callID]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}
