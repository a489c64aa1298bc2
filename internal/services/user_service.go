package services

import (
	"context"
	"errors"

	"auction-house/internal/models"
	"auction-house/internal/repository"

	"gorm.io/gorm"
)

// UserService handles user-related business logic
type UserService struct {
	repo *repository.Repository
	xp   *XPService
}

// NewUserService creates a new UserService
func NewUserService(repo *repository.Repository, xp *XPService) *UserService {
	return &UserService{repo: repo, xp: xp}
}

// UserProfile is a user record joined with the progression total
type UserProfile struct {
	User     *models.User `json:"user"`
	XPPoints int64        `json:"xp_points"`
}

// GetProfile retrieves a user together with their progression total
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*UserProfile, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	points, err := s.xp.UserTotal(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserProfile{User: user, XPPoints: points}, nil
}
