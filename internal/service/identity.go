package service

import (
	"context"
	"fmt"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/repository"
)

// Identity confirms that a user exists and may act. Credential management
// lives outside this service.
type Identity interface {
	Verify(ctx context.Context, userID string) error
}

// RepoIdentity verifies users against the user repository.
type RepoIdentity struct {
	users repository.UserRepository
}

// NewRepoIdentity creates an Identity backed by the user repository.
func NewRepoIdentity(users repository.UserRepository) *RepoIdentity {
	return &RepoIdentity{users: users}
}

// Verify returns an error wrapping repository.ErrNotFound when the user
// does not exist.
func (i *RepoIdentity) Verify(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrInvalidUserID
	}
	if _, err := i.users.GetByID(ctx, userID); err != nil {
		return fmt.Errorf("verify user %s: %w", userID, err)
	}
	return nil
}
