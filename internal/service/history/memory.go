package history

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps history in process; used when Redis is not configured.
type MemoryStore struct {
	mu      sync.RWMutex
	limit   int
	entries map[string][]Entry
	now     func() time.Time
}

// NewMemoryStore keeps at most limit entries per user; limit <= 0 means unbounded.
func NewMemoryStore(limit int) *MemoryStore {
	return &MemoryStore{
		limit:   limit,
		entries: make(map[string][]Entry),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) AppendMessage(_ context.Context, userID, text string, fromUser bool) error {
	userID, err := requireUser(userID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list := append(s.entries[userID], Entry{Timestamp: s.now(), Message: text, FromUser: fromUser})
	if s.limit > 0 && len(list) > s.limit {
		list = append([]Entry(nil), list[len(list)-s.limit:]...)
	}
	s.entries[userID] = list
	return nil
}

func (s *MemoryStore) ListMessages(_ context.Context, userID string) ([]Entry, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Entry{}, s.entries[userID]...), nil
}
