package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/partygames/waitlist/internal/auth"
	"github.com/partygames/waitlist/internal/model"
)

// Memory keeps subscribers and users in process memory.
// State is lost on restart.
type Memory struct {
	mu sync.RWMutex

	subscribers map[string]*model.Subscriber // by id
	byEmail     map[string]string            // email -> id
	order       []string                     // ids in insertion order

	users      map[string]*model.User
	byUsername map[string]string

	hasher *auth.Hasher
	now    func() time.Time
	newID  func() string
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithClock overrides the time source used for SubscribedAt.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// WithIDGenerator overrides the id source.
func WithIDGenerator(newID func() string) MemoryOption {
	return func(m *Memory) { m.newID = newID }
}

// WithHasher overrides the password hasher used for users.
func WithHasher(h *auth.Hasher) MemoryOption {
	return func(m *Memory) { m.hasher = h }
}

// NewMemory creates an empty in-memory store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		subscribers: make(map[string]*model.Subscriber),
		byEmail:     make(map[string]string),
		users:       make(map[string]*model.User),
		byUsername:  make(map[string]string),
		hasher:      auth.NewHasher(auth.DefaultParams),
		now:         func() time.Time { return time.Now().UTC() },
		newID:       func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FindByEmail implements SubscriberStore.
func (m *Memory) FindByEmail(_ context.Context, email string) (*model.Subscriber, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[email]
	if !ok {
		return nil, ErrSubscriberNotFound
	}

	s := *m.subscribers[id]
	return &s, nil
}

// Create implements SubscriberStore.
func (m *Memory) Create(_ context.Context, email string) (*model.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byEmail[email]; ok {
		return nil, ErrEmailExists
	}

	id := m.newID()
	if _, ok := m.subscribers[id]; ok {
		return nil, fmt.Errorf("generated subscriber id %q collides with an existing record", id)
	}

	s := &model.Subscriber{
		ID:           id,
		Email:        email,
		SubscribedAt: m.now(),
	}

	m.subscribers[id] = s
	m.byEmail[email] = id
	m.order = append(m.order, id)

	out := *s
	return &out, nil
}

// List implements SubscriberStore.
func (m *Memory) List(_ context.Context) ([]*model.Subscriber, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*model.Subscriber, 0, len(m.order))
	for _, id := range m.order {
		s := *m.subscribers[id]
		out = append(out, &s)
	}
	return out, nil
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error {
	return nil
}

// CreateUser implements UserStore.
func (m *Memory) CreateUser(_ context.Context, username, password string) (*model.User, error) {
	hash, err := m.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byUsername[username]; ok {
		return nil, ErrUsernameExists
	}

	u := &model.User{
		ID:           m.newID(),
		Username:     username,
		PasswordHash: hash,
	}
	m.users[u.ID] = u
	m.byUsername[username] = u.ID

	out := *u
	return &out, nil
}

// GetUser implements UserStore.
func (m *Memory) GetUser(_ context.Context, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := *u
	return &out, nil
}

// GetUserByUsername implements UserStore.
func (m *Memory) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byUsername[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := *m.users[id]
	return &out, nil
}
