package services

import (
	"context"
	"errors"
	"fmt"

	"auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/internal/utils"

	"github.com/mr-tron/base58"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuthService handles authentication business logic
type AuthService struct {
	repo *repository.Repository
}

// NewAuthService creates a new AuthService
func NewAuthService(repo *repository.Repository) *AuthService {
	return &AuthService{repo: repo}
}

// ValidWalletAddress reports whether an identity is a resolvable wallet
// address: base58, decoding to a 32-byte public key.
func ValidWalletAddress(address string) bool {
	raw, err := base58.Decode(address)
	if err != nil {
		return false
	}
	return len(raw) == 32
}

// ProcessWalletLogin finds or creates a user by wallet address
func (s *AuthService) ProcessWalletLogin(ctx context.Context, walletAddress string) (*models.User, error) {
	if !ValidWalletAddress(walletAddress) {
		return nil, fmt.Errorf("invalid wallet address: %s", walletAddress)
	}

	user, err := s.repo.GetUserByWallet(ctx, walletAddress)
	if err == nil {
		log.Infof("User logged in: wallet=%s (ID: %d)", walletAddress, user.ID)
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	// New user, create account
	nickname, err := utils.GenerateNickname()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nickname: %w", err)
	}

	newUser := &models.User{
		WalletAddress: walletAddress,
		Nickname:      nickname,
	}
	if err := s.repo.CreateUser(ctx, newUser); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Infof("New user created: wallet=%s (ID: %d)", walletAddress, newUser.ID)
	return newUser, nil
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
