package conversation

import (
	"context"
	"sync"
	"time"

	"bookline/models"
)

// SessionStore is the keyed, TTL'd storage for conversation context.
// Get never returns an expired entry, even before a sweep has run.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*models.ConversationContext, bool, error)
	Put(ctx context.Context, sessionID string, convCtx *models.ConversationContext) error
	Delete(ctx context.Context, sessionID string) error
}

// MemorySessionStore keeps sessions in process memory. Entries expire
// when their absolute age passes maxAge or their idle time passes
// idleAge, whichever triggers first. A background ticker sweeps expired
// entries; Get additionally re-checks expiry lazily so sweep timing
// never leaks a dead session.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.ConversationContext

	maxAge  time.Duration
	idleAge time.Duration
	clock   func() time.Time

	done chan struct{}
	once sync.Once
}

// NewMemorySessionStore builds a store and starts its sweep ticker.
// Close stops the ticker.
func NewMemorySessionStore(maxAge, idleAge, sweepEvery time.Duration) *MemorySessionStore {
	s := &MemorySessionStore{
		sessions: make(map[string]*models.ConversationContext),
		maxAge:   maxAge,
		idleAge:  idleAge,
		clock:    time.Now,
		done:     make(chan struct{}),
	}
	go s.sweepLoop(sweepEvery)
	return s
}

func (s *MemorySessionStore) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.done:
			return
		}
	}
}

func (s *MemorySessionStore) expired(convCtx *models.ConversationContext, now time.Time) bool {
	if now.Sub(convCtx.CreatedAt) > s.maxAge {
		return true
	}
	return now.Sub(convCtx.LastActivity) > s.idleAge
}

// Sweep removes every expired entry. Safe to call at any time.
func (s *MemorySessionStore) Sweep() {
	now := s.clock()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, convCtx := range s.sessions {
		if s.expired(convCtx, now) {
			delete(s.sessions, id)
		}
	}
}

func (s *MemorySessionStore) Get(ctx context.Context, sessionID string) (*models.ConversationContext, bool, error) {
	now := s.clock()

	s.mu.RLock()
	convCtx, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if s.expired(convCtx, now) {
		// Expired but not yet swept. Drop it opportunistically.
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		return nil, false, nil
	}

	copied := *convCtx
	return &copied, true, nil
}

func (s *MemorySessionStore) Put(ctx context.Context, sessionID string, convCtx *models.ConversationContext) error {
	copied := *convCtx
	s.mu.Lock()
	s.sessions[sessionID] = &copied
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// Close stops the background sweep.
func (s *MemorySessionStore) Close() {
	s.once.Do(func() { close(s.done) })
}
