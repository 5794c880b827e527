package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// registry indexes live sessions by id. It only guards the map; each
// session carries its own mutex for state transitions.
type registry[T any] struct {
	mu    sync.Mutex
	items map[string]T
}

func (r *registry[T]) put(id string, v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.items == nil {
		r.items = make(map[string]T)
	}
	r.items[id] = v
}

func (r *registry[T]) get(id string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.items[id]
	return v, ok
}

func (r *registry[T]) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
}

func (r *registry[T]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// idleTimer is re-armed on activity. Callbacks from a superseded arm see a
// stale generation and must do nothing. Callers hold the session mutex.
type idleTimer struct {
	timer Timer
	gen   uint64
}

func (t *idleTimer) arm(c Clock, d time.Duration, fire func(gen uint64)) {
	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen
	t.timer = c.AfterFunc(d, func() { fire(gen) })
}

func (t *idleTimer) stop() {
	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
}

func (t *idleTimer) current(gen uint64) bool {
	return t.gen == gen
}

func newSessionID() string {
	return uuid.NewString()
}

// ActiveSessions reports live blackjack and duel sessions.
func (s *Service) ActiveSessions() (blackjack, duels int) {
	return s.blackjacks.len(), s.duels.len()
}
