package repository

import (
	"context"
	"time"

	"auction-house/internal/models"

	"github.com/google/uuid"
)

// CreatePendingDelivery creates the post-settlement delivery record
func (r *Repository) CreatePendingDelivery(ctx context.Context, delivery *models.PendingDelivery) error {
	return r.db.WithContext(ctx).Create(delivery).Error
}

// GetDeliveryByAuction retrieves the delivery record for an auction
func (r *Repository) GetDeliveryByAuction(ctx context.Context, auctionID uuid.UUID) (*models.PendingDelivery, error) {
	var delivery models.PendingDelivery
	err := r.db.WithContext(ctx).Where("auction_id = ?", auctionID).First(&delivery).Error
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

// MarkDelivered flips the delivered flag exactly once. Returns rows affected
// so a repeated call is detectable as a conflict rather than a silent success.
func (r *Repository) MarkDelivered(ctx context.Context, deliveryID uuid.UUID) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.PendingDelivery{}).
		Where("id = ? AND delivered = ?", deliveryID, false).
		Updates(map[string]interface{}{
			"delivered":    true,
			"delivered_at": now,
		})
	return result.RowsAffected, result.Error
}

// CreateReview records the winner's one-time review
func (r *Repository) CreateReview(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

// GetReviewByAuction retrieves the review for an auction, if any
func (r *Repository) GetReviewByAuction(ctx context.Context, auctionID uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).Where("auction_id = ?", auctionID).First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// GetRevieweeRating recomputes sum and count over all reviews for a reviewee
func (r *Repository) GetRevieweeRating(ctx context.Context, revieweeID uint) (sum int64, count int64, err error) {
	type agg struct {
		Sum   *int64
		Count int64
	}
	var result agg
	err = r.db.WithContext(ctx).Model(&models.Review{}).
		Select("SUM(rating) AS sum, COUNT(*) AS count").
		Where("reviewee_id = ?", revieweeID).
		Scan(&result).Error
	if err != nil {
		return 0, 0, err
	}
	if result.Sum != nil {
		sum = *result.Sum
	}
	return sum, result.Count, nil
}
