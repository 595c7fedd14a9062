package repository

import (
	"context"
	"sync"

	"github.com/AlibekovAA/rhythmix/backend/internal/user/domain"
)

type MemoryRepository struct {
	mu      sync.RWMutex
	users   []domain.User
	byEmail map[string]int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byEmail: make(map[string]int)}
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byEmail[email]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	return r.users[idx], nil
}

func (r *MemoryRepository) Insert(ctx context.Context, user domain.User) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return domain.User{}, ErrEmailAlreadyExists
	}

	r.byEmail[user.Email] = len(r.users)
	r.users = append(r.users, user)
	return user, nil
}

// ListAll returns a copy taken under the read lock, in insertion order.
func (r *MemoryRepository) ListAll(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, len(r.users))
	copy(out, r.users)
	return out, nil
}
