package repo

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryUserRepository keeps users in process memory. It backs local
// development (DATABASE_URL=memory) and tests.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	nextID int
	users  map[int]memoryUser
}

type memoryUser struct {
	Profile
	password string
}

func NewMemoryUserDB() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[int]memoryUser)}
}

func (r *MemoryUserRepository) CreateUser(_ context.Context, login, email, password string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Login == login || u.Email == email {
			return 0, fmt.Errorf("repo: user %q already exists", login)
		}
	}
	r.nextID++
	r.users[r.nextID] = memoryUser{
		Profile: Profile{
			ID:         r.nextID,
			Login:      login,
			Email:      email,
			FlowUnit:   "l/s",
			HeightUnit: "m",
			CreatedAt:  time.Now(),
		},
		password: password,
	}
	return r.nextID, nil
}

func (r *MemoryUserRepository) GetByLogin(_ context.Context, login string) (int, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, u := range r.users {
		if u.Login == login {
			return id, u.password, nil
		}
	}
	return 0, "", nil
}

func (r *MemoryUserRepository) GetProfileByID(_ context.Context, id int) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return u.Profile, nil
}

func (r *MemoryUserRepository) UpdatePreferences(_ context.Context, id int, flowUnit, heightUnit string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.FlowUnit = flowUnit
	u.HeightUnit = heightUnit
	r.users[id] = u
	return nil
}
