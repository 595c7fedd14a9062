package repository

import (
	"context"
	"errors"

	"github.com/AlibekovAA/rhythmix/backend/internal/user/domain"
)

// Repository is the credential store. Insert is an atomic compare-and-insert
// keyed by the normalized email: it fails with ErrEmailAlreadyExists instead
// of overwriting.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	Insert(ctx context.Context, user domain.User) (domain.User, error)
	ListAll(ctx context.Context) ([]domain.User, error)
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)
