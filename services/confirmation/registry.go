package confirmation

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Registry tracks live confirmation sessions by id. Sessions idle past
// their TTL are torn down by a background sweep, which closes the
// controller so an abandoned tab cannot leave a dictation session dangling.
type Registry struct {
	ttl    time.Duration
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*registryEntry
	stop     chan struct{}
	stopOnce sync.Once
}

type registryEntry struct {
	ctrl    *Controller
	expires time.Time
}

// NewRegistry builds a registry and starts its sweep loop.
func NewRegistry(ttl time.Duration, logger *zap.Logger) *Registry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		ttl:      ttl,
		logger:   logger,
		sessions: make(map[string]*registryEntry),
		stop:     make(chan struct{}),
	}
	go r.sweep()
	return r
}

// Add registers a controller and returns its session id.
func (r *Registry) Add(ctrl *Controller) string {
	id := uuid.New().String()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = &registryEntry{ctrl: ctrl, expires: time.Now().Add(r.ttl)}
	return id
}

// Get looks up a session and refreshes its TTL.
func (r *Registry) Get(id string) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	entry.expires = time.Now().Add(r.ttl)
	return entry.ctrl, nil
}

// Remove tears a session down.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		entry.ctrl.Close()
	}
}

// Shutdown stops the sweep loop and closes every remaining session.
func (r *Registry) Shutdown() {
	r.stopOnce.Do(func() { close(r.stop) })
	r.mu.Lock()
	entries := make([]*registryEntry, 0, len(r.sessions))
	for id, entry := range r.sessions {
		entries = append(entries, entry)
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	for _, entry := range entries {
		entry.ctrl.Close()
	}
}

func (r *Registry) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case now := <-ticker.C:
			r.expire(now)
		}
	}
}

// expire closes and drops every session idle past its deadline. Closing the
// controller stops any dictation still running, so an abandoned session
// cannot leave one dangling.
func (r *Registry) expire(now time.Time) {
	var expired []*registryEntry
	r.mu.Lock()
	for id, entry := range r.sessions {
		if now.After(entry.expires) {
			expired = append(expired, entry)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()
	for _, entry := range expired {
		entry.ctrl.Close()
	}
	if len(expired) > 0 {
		r.logger.Debug("expired confirmation sessions", zap.Int("count", len(expired)))
	}
}
