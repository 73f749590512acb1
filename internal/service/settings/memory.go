package settings

import (
	"context"
	"sync"
)

// MemoryStore keeps settings in process.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, userID string) (Settings, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return Settings{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return apply(s.data[userID]), nil
}

func (s *MemoryStore) Set(_ context.Context, userID, key, value string) (Settings, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return Settings{}, err
	}
	canonical, err := Validate(key, value)
	if err != nil {
		return Settings{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.data[userID]
	if !ok {
		raw = make(map[string]string)
		s.data[userID] = raw
	}
	raw[key] = canonical
	return apply(raw), nil
}
