// file: internal/database/mock_store.go
// version: 2.0.0
// guid: b2c3d4e5-f6a7-8b9c-0d1e-2f3a4b5c6d7e

package database

// MockStore is a simple mock implementation for testing services
type MockStore struct {
	CloseFunc          func() error
	CreateUserFunc     func(user *User) (*User, error)
	GetUserByEmailFunc func(email string) (*User, error)
	GetUserByIDFunc    func(id int64) (*User, error)
	ListUsersFunc      func() ([]User, error)
	CountUsersFunc     func() (int, error)
}

var _ Store = (*MockStore)(nil)

func (m *MockStore) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

func (m *MockStore) CreateUser(user *User) (*User, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(user)
	}
	created := *user
	created.ID = 1
	return &created, nil
}

func (m *MockStore) GetUserByEmail(email string) (*User, error) {
	if m.GetUserByEmailFunc != nil {
		return m.GetUserByEmailFunc(email)
	}
	return nil, nil
}

func (m *MockStore) GetUserByID(id int64) (*User, error) {
	if m.GetUserByIDFunc != nil {
		return m.GetUserByIDFunc(id)
	}
	return nil, nil
}

func (m *MockStore) ListUsers() ([]User, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc()
	}
	return []User{}, nil
}

func (m *MockStore) CountUsers() (int, error) {
	if m.CountUsersFunc != nil {
		return m.CountUsersFunc()
	}
	return 0, nil
}
