package repository

import (
	"context"

	"auction-house/internal/models"

	"gorm.io/gorm"
)

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByWallet retrieves a user by wallet address
func (r *Repository) GetUserByWallet(ctx context.Context, walletAddress string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("wallet_address = ?", walletAddress).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser creates a new user record
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// IncrementAuctionsHosted bumps a user's hosted-auction counter
func (r *Repository) IncrementAuctionsHosted(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("auctions_hosted", gorm.Expr("auctions_hosted + 1")).Error
}

// IncrementAuctionsWon bumps a user's won-auction counter
func (r *Repository) IncrementAuctionsWon(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("auctions_won", gorm.Expr("auctions_won + 1")).Error
}

// UpdateUserRating persists a recomputed rolling rating
func (r *Repository) UpdateUserRating(ctx context.Context, userID uint, average float64, count int) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"rating_average": average,
			"rating_count":   count,
		}).Error
}
