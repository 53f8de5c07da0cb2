package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/domain"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/repository"
)

// ErrPhoneTaken is returned when registering with a phone number that is
// already in use.
var ErrPhoneTaken = errors.New("phone number already registered")

// UserService handles registration and user lookups. Registration also
// provisions the user's zero-balance wallet.
type UserService struct {
	users repository.UserRepository
	now   func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users, now: time.Now}
}

// Register creates a user and their wallet.
func (s *UserService) Register(ctx context.Context, name, phone string) (*domain.User, error) {
	if name == "" || phone == "" {
		return nil, ErrInvalidUserID
	}

	if existing, err := s.users.GetByPhone(ctx, phone); err == nil && existing != nil {
		return nil, ErrPhoneTaken
	}

	user := &domain.User{
		ID:        uuid.New().String(),
		Name:      name,
		Phone:     phone,
		CreatedAt: s.now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Get retrieves a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, ErrInvalidUserID
	}
	return s.users.GetByID(ctx, id)
}

// GetAll retrieves all users.
func (s *UserService) GetAll(ctx context.Context) ([]*domain.User, error) {
	return s.users.GetAll(ctx)
}
