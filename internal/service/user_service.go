package service

import (
	"context"
	"fmt"

	"album-service/internal/config"
	"album-service/internal/models"
)

type UserService struct {
	users UserStore
	admin models.Identity
}

func NewUserService(users UserStore, cfg *config.AuthConfig) *UserService {
	return &UserService{
		users: users,
		admin: AdminIdentity(cfg),
	}
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return users, nil
}

// Me returns the caller's profile. The admin is answered from config because
// it never exists in the user store.
func (s *UserService) Me(ctx context.Context, identity models.Identity) (*models.User, error) {
	if identity.IsAdmin() {
		return &models.User{
			UserID: s.admin.UserID,
			Email:  s.admin.Email,
			Name:   s.admin.Name,
		}, nil
	}

	user, err := s.users.FindByID(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	if user == nil {
		return nil, newError(ErrNotFound, "User not found")
	}
	return user, nil
}
