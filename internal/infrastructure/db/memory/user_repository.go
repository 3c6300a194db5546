// Package memory provides in-process repositories used by the default
// development backend and by tests.
package memory

import (
	"context"
	"sync"

	"github.com/99minutos/rental-system/internal/core/domain"
)

// UserRepository keeps accounts in a map keyed by email.
type UserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]domain.User
	nextID  int64
}

func NewUserRepository() *UserRepository {
	return &UserRepository{byEmail: make(map[string]domain.User)}
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	stored := *user
	stored.ID = r.nextID
	r.byEmail[stored.Email] = stored
	return &stored, nil
}
