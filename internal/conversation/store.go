package conversation

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultMaxSessions = 10000
	DefaultSessionTTL  = 2 * time.Hour
)

type Options struct {
	// MaxSessions bounds the number of live sessions; the least recently used
	// one is dropped first. Zero means unlimited.
	MaxSessions int

	// TTL drops sessions idle for longer than this. Zero disables expiry.
	TTL time.Duration

	// OnEvict is called with the key of every session leaving the store.
	OnEvict func(key string)
}

// Store maps session keys to their histories.
type Store struct {
	mu       sync.Mutex
	sessions *expirable.LRU[string, *History]
	// inUse pins histories with an ask in flight, so a session dropped by
	// the LRU or TTL meanwhile is still shared by later asks on its key.
	inUse map[string]*lease
}

type lease struct {
	history *History
	refs    int
}

func NewStore(opts Options) *Store {
	var onEvict func(string, *History)
	if opts.OnEvict != nil {
		onEvict = func(key string, _ *History) { opts.OnEvict(key) }
	}

	return &Store{
		sessions: expirable.NewLRU[string, *History](opts.MaxSessions, onEvict, opts.TTL),
		inUse:    make(map[string]*lease),
	}
}

// GetOrCreate returns the history for key, creating one that holds only the
// system prompt if the key is unseen. Every call counts as activity for the
// session.
func (s *Store) GetOrCreate(key, systemPrompt string) *History {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getOrCreateLocked(key, systemPrompt)
}

func (s *Store) getOrCreateLocked(key, systemPrompt string) *History {
	var h *History
	if l, ok := s.inUse[key]; ok {
		h = l.history
	} else if cached, ok := s.sessions.Get(key); ok {
		h = cached
	} else {
		h = newHistory(systemPrompt)
	}
	// Re-adding refreshes both LRU position and expiry.
	s.sessions.Add(key, h)
	return h
}

// Acquire is GetOrCreate for the length of an ask cycle: until the matching
// Release the history stays bound to key even if the LRU drops it.
func (s *Store) Acquire(key, systemPrompt string) *History {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.getOrCreateLocked(key, systemPrompt)
	if l, ok := s.inUse[key]; ok {
		l.refs++
	} else {
		s.inUse[key] = &lease{history: h, refs: 1}
	}
	return h
}

// Release ends an Acquire of h under key.
func (s *Store) Release(key string, h *History) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.inUse[key]
	if !ok || l.history != h {
		return
	}
	l.refs--
	if l.refs <= 0 {
		delete(s.inUse, key)
	}
}

// Peek returns the history for key without counting as activity.
func (s *Store) Peek(key string) (*History, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.inUse[key]; ok {
		return l.history, true
	}
	return s.sessions.Peek(key)
}

// Delete drops the session for key. It reports whether one existed.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, pinned := s.inUse[key]
	delete(s.inUse, key)
	return s.sessions.Remove(key) || pinned
}

func (s *Store) Len() int {
	return s.sessions.Len()
}
