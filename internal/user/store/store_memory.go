package store

import (
	"context"
	"sync"

	"rngenius/internal/user/models"
	"rngenius/pkg/domain"
	"rngenius/pkg/platform/sentinel"
)

type MemoryStore struct {
	mu     sync.RWMutex
	users  map[domain.UserID]*models.User
	nextID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[domain.UserID]*models.User)}
}

func (s *MemoryStore) Add(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return sentinel.ErrConflict
		}
	}
	s.nextID++
	u.ID = domain.UserID(s.nextID)
	copied := *u
	s.users[u.ID] = &copied
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return sentinel.ErrNotFound
	}
	copied := *u
	s.users[u.ID] = &copied
	return nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id domain.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}
