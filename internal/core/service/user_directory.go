package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/rental-system/internal/core/domain"
	"github.com/99minutos/rental-system/internal/core/ports"
)

// UserDirectory implements ports.UserDirectory on top of a UserRepository.
// Passwords are stored as bcrypt hashes and compared byte for byte.
type UserDirectory struct {
	repo ports.UserRepository
	cost int
	now  func() time.Time
}

// NewUserDirectory returns a directory hashing with the given bcrypt cost.
// Costs outside bcrypt's range fall back to bcrypt.DefaultCost.
func NewUserDirectory(repo ports.UserRepository, cost int) *UserDirectory {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &UserDirectory{repo: repo, cost: cost, now: time.Now}
}

func (d *UserDirectory) Create(ctx context.Context, in ports.NewUser) (*domain.User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	role := in.Role
	if role == "" {
		role = domain.RoleCustomer
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), d.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := d.repo.Create(ctx, &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    d.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (d *UserDirectory) FindByCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := d.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}
