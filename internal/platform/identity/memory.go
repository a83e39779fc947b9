package identity

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryProvider is an in-memory Provider for tests and development. Tokens
// are opaque strings; password checks are plain equality.
type MemoryProvider struct {
	mu        sync.RWMutex
	users     map[string]*User
	passwords map[string]string
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		users:     make(map[string]*User),
		passwords: make(map[string]string),
	}
}

// Seed registers a user directly, bypassing sign-up. Returns the created
// user so tests can reference its ID.
func (p *MemoryProvider) Seed(email, password, fullName string, role Role) *User {
	p.mu.Lock()
	defer p.mu.Unlock()

	u := &User{
		ID:        uuid.New().String(),
		Email:     email,
		Metadata:  Metadata{FullName: fullName, Role: role},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	p.users[u.ID] = u
	p.passwords[email] = password
	return u
}

func (p *MemoryProvider) SignIn(_ context.Context, email, password string) (*SignInResult, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	stored, ok := p.passwords[email]
	if !ok || stored != password {
		return nil, ErrInvalidCredentials
	}
	for _, u := range p.users {
		if u.Email == email {
			copied := *u
			return &SignInResult{
				AccessToken: uuid.New().String(),
				TokenType:   "bearer",
				ExpiresIn:   3600,
				User:        copied,
			}, nil
		}
	}
	return nil, ErrInvalidCredentials
}

func (p *MemoryProvider) SignUp(_ context.Context, email, password, fullName string) (*User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.passwords[email]; exists {
		return nil, fmt.Errorf("email already registered")
	}

	u := &User{
		ID:        uuid.New().String(),
		Email:     email,
		Metadata:  Metadata{FullName: fullName, Role: RolePending},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	p.users[u.ID] = u
	p.passwords[email] = password

	copied := *u
	return &copied, nil
}

func (p *MemoryProvider) SignOut(_ context.Context, _ string) error {
	return nil
}

func (p *MemoryProvider) AdminListUsers(_ context.Context) ([]*User, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	users := make([]*User, 0, len(p.users))
	for _, u := range p.users {
		copied := *u
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (p *MemoryProvider) AdminUpdateUserRole(_ context.Context, userID string, role Role) (*User, error) {
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	u, ok := p.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	u.Metadata.Role = role
	u.UpdatedAt = time.Now().UTC()

	copied := *u
	return &copied, nil
}
