package service_test

import (
	"context"

	userdomain "github.com/AlibekovAA/rhythmix/backend/internal/user/domain"
	userrepo "github.com/AlibekovAA/rhythmix/backend/internal/user/repository"
)

type mockUserRepo struct {
	findByEmailFunc func(ctx context.Context, email string) (userdomain.User, error)
	insertFunc      func(ctx context.Context, user userdomain.User) (userdomain.User, error)
	listAllFunc     func(ctx context.Context) ([]userdomain.User, error)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (userdomain.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *mockUserRepo) Insert(ctx context.Context, user userdomain.User) (userdomain.User, error) {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, user)
	}
	return user, nil
}

func (m *mockUserRepo) ListAll(ctx context.Context) ([]userdomain.User, error) {
	if m.listAllFunc != nil {
		return m.listAllFunc(ctx)
	}
	return nil, nil
}

type mockHasher struct {
	hashFunc    func(password string) (string, error)
	compareFunc func(hash, password string) error
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hashed:" + password, nil
}

func (m *mockHasher) Compare(hash, password string) error {
	if m.compareFunc != nil {
		return m.compareFunc(hash, password)
	}
	return nil
}

type mockIDGenerator struct {
	newIDFunc func() (string, error)
}

func (m *mockIDGenerator) NewID() (string, error) {
	if m.newIDFunc != nil {
		return m.newIDFunc()
	}
	return "generated-id", nil
}
