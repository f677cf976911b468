package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/rollcall-app/rollcall/database"
)

// MockStore is an in-memory implementation of database.Store for testing.
// It enforces phone uniqueness the same way the unique index does.
type MockStore struct {
	mu    sync.RWMutex
	users map[bson.ObjectID]*database.User

	// Error simulation
	CreateUserError     error
	GetUserByIDError    error
	GetUserByPhoneError error
	UpdateUserError     error
	DeleteUserError     error
	ListUsersError      error
}

// NewMockStore creates a new MockStore instance.
func NewMockStore() *MockStore {
	return &MockStore{
		users: make(map[bson.ObjectID]*database.User),
	}
}

func (m *MockStore) CreateUser(_ context.Context, user *database.User) error {
	if m.CreateUserError != nil {
		return m.CreateUserError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Phone == user.Phone {
			return database.ErrDuplicatePhone
		}
	}

	now := time.Now().UTC()
	user.ID = bson.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now

	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *MockStore) GetUserByID(_ context.Context, id bson.ObjectID) (*database.User, error) {
	if m.GetUserByIDError != nil {
		return nil, m.GetUserByIDError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (m *MockStore) GetUserByPhone(_ context.Context, phone string) (*database.User, error) {
	if m.GetUserByPhoneError != nil {
		return nil, m.GetUserByPhoneError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Phone == phone {
			clone := *user
			return &clone, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *MockStore) UpdateUser(_ context.Context, id bson.ObjectID, update database.UserUpdate) error {
	if m.UpdateUserError != nil {
		return m.UpdateUserError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return database.ErrNotFound
	}

	if update.Phone != nil {
		for uid, u := range m.users {
			if uid != id && u.Phone == *update.Phone {
				return database.ErrDuplicatePhone
			}
		}
		user.Phone = *update.Phone
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.PasswordHash != nil {
		user.PasswordHash = *update.PasswordHash
	}
	if update.Avatar != nil {
		avatar := *update.Avatar
		user.Avatar = &avatar
	}
	user.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockStore) DeleteUser(_ context.Context, id bson.ObjectID) error {
	if m.DeleteUserError != nil {
		return m.DeleteUserError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *MockStore) ListUsers(_ context.Context) ([]database.User, error) {
	if m.ListUsersError != nil {
		return nil, m.ListUsersError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]database.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}
