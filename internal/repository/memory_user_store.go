package repository

import (
	"context"
	"sync"
	"time"

	"authsvc/internal/model"
)

// MemoryUserStore is an in-memory UserStore for development and tests.
// The single mutex makes the existence check and insert in Create one
// atomic step, mirroring the unique-index guarantee of the MySQL store.
type MemoryUserStore struct {
	mu     sync.Mutex
	byID   map[uint64]model.User
	ids    map[string]uint64 // email (exact) -> id
	nextID uint64
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byID: make(map[uint64]model.User),
		ids:  make(map[string]uint64),
	}
}

var _ UserStore = (*MemoryUserStore)(nil)

func (s *MemoryUserStore) Create(ctx context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[u.Email]; exists {
		return model.User{}, ErrEmailExists
	}
	s.nextID++
	u.ID = s.nextID
	u.CreatedAt = time.Now().UTC()
	s.byID[u.ID] = u
	s.ids[u.Email] = u.ID
	return u, nil
}

func (s *MemoryUserStore) FindByEmail(ctx context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.ids[email]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return s.byID[id], nil
}

func (s *MemoryUserStore) FindByID(ctx context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

// Len reports the number of stored records.
func (s *MemoryUserStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}
