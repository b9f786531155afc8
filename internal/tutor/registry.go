package tutor

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kinelab/biomech-tutor/internal/dataset"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// Registry owns all live sessions over one shared, read-only dataset.
// Lookups take the registry lock; everything after that serializes on the
// individual session, so sessions run independently.
type Registry struct {
	mu       sync.RWMutex
	ds       *dataset.Dataset
	sessions map[string]*Session
	ttl      time.Duration

	// Logf receives data-integrity reports from sessions.
	Logf func(format string, args ...any)
}

// NewRegistry creates a registry. Sessions idle longer than ttl are evicted
// by the sweeper; a zero ttl disables eviction.
func NewRegistry(ds *dataset.Dataset, ttl time.Duration) *Registry {
	return &Registry{
		ds:       ds,
		sessions: map[string]*Session{},
		ttl:      ttl,
		Logf:     log.Printf,
	}
}

// Create starts a fresh session with empty state.
func (r *Registry) Create() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.NewString()
	s := newSession(id, r.ds, rand.New(rand.NewSource(time.Now().UnixNano())), r.logf)
	r.sessions[id] = s
	return s
}

// Get resolves a session id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep evicts sessions idle past the TTL and reports how many were removed.
func (r *Registry) Sweep(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.sessions {
		if now.Sub(s.LastSeen()) > r.ttl {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// StartSweeper runs Sweep on the given interval until ctx is done.
func (r *Registry) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				if n := r.Sweep(now); n > 0 {
					r.logf("evicted %d idle sessions", n)
				}
			}
		}
	}()
}

func (r *Registry) logf(format string, args ...any) {
	if r.Logf != nil {
		r.Logf(format, args...)
	}
}
