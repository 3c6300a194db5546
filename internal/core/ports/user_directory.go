package ports

import (
	"context"

	"github.com/99minutos/rental-system/internal/core/domain"
)

// NewUser carries the registration data supplied by a client.
type NewUser struct {
	Name     string
	Email    string
	Password string
	Role     string // defaults to domain.RoleCustomer
}

// UserDirectory is the identity capability a session authenticates against.
type UserDirectory interface {
	// FindByCredentials returns domain.ErrInvalidCredentials when the email is
	// unknown or the password does not match.
	FindByCredentials(ctx context.Context, email, password string) (*domain.User, error)
	// Create registers a new account; domain.ErrUserExists if the email is taken.
	Create(ctx context.Context, in NewUser) (*domain.User, error)
}
