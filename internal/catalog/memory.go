package catalog

import (
	"context"
	"sync"

	"github.com/dkeye/Plaza/internal/domain"
)

// Memory is a threadsafe in-process catalog for tests and standalone runs.
type Memory struct {
	mu      sync.RWMutex
	spaces  map[domain.SpaceID]domain.Space
	avatars map[domain.UserID]string
}

func NewMemory() *Memory {
	return &Memory{
		spaces:  make(map[domain.SpaceID]domain.Space),
		avatars: make(map[domain.UserID]string),
	}
}

func (m *Memory) PutSpace(s domain.Space) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spaces[s.ID] = s
}

func (m *Memory) PutAvatar(id domain.UserID, avatar string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.avatars[id] = avatar
}

func (m *Memory) Space(_ context.Context, id domain.SpaceID) (*domain.Space, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.spaces[id]
	if !ok {
		return nil, domain.ErrSpaceNotFound
	}
	return &s, nil
}

func (m *Memory) AvatarOf(_ context.Context, id domain.UserID) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.avatars[id]
	if !ok {
		return "", domain.ErrProfileNotFound
	}
	return a, nil
}
