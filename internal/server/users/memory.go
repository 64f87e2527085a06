package users

import (
	"context"
	"fmt"
	"sync"

	"github.com/mpetrenko/shiftnotes/internal/common"
)

// MemoryRepository is a map-backed user store for dev mode and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*User // keyed by username
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*User)}
}

func (r *MemoryRepository) Create(ctx context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Username]; exists {
		return nil, fmt.Errorf("%w: username already taken", common.ErrorValidation)
	}

	cp := *user
	r.users[user.Username] = &cp
	return user, nil
}

func (r *MemoryRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *user
	return &cp, nil
}
