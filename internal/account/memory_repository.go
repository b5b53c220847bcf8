package account

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]User
}

// NewMemoryRepository builds an in-memory user store for development mode and
// tests. It enforces the same email uniqueness the database index does.
func NewMemoryRepository() Repository {
	return &memoryRepository{nextID: 1, users: make(map[int64]User)}
}

func (r *memoryRepository) Create(_ context.Context, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return User{}, ErrDuplicateEmail
		}
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return user, nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (r *memoryRepository) FindByID(_ context.Context, id int64) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (r *memoryRepository) FindAdmin(_ context.Context) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.IsAdmin {
			return user, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (r *memoryRepository) MarkVerified(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.IsVerified = true
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return nil
}

func (r *memoryRepository) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return nil
}
