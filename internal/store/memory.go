package store

import (
	"context"
	"sync"

	"unifiedinbox/internal/models"
)

// MemoryStore keeps records in process memory, newest first
type MemoryStore struct {
	mu       sync.RWMutex
	messages []models.Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Prepend(ctx context.Context, msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, models.Message{})
	copy(s.messages[1:], s.messages)
	s.messages[0] = msg
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out, nil
}

func (s *MemoryStore) Len(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages), nil
}

func (s *MemoryStore) Close() error {
	return nil
}
