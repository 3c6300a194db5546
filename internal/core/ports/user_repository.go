package ports

import (
	"context"

	"github.com/99minutos/rental-system/internal/core/domain"
)

// UserRepository defines persistence for user accounts. Implementations store
// the password hash only and must be safe for concurrent use.
type UserRepository interface {
	// FindByEmail returns domain.ErrUserNotFound when no account matches.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create assigns the ID and returns domain.ErrUserExists when the email is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
