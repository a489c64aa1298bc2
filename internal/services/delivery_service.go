package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"auction-house/internal/models"
	"auction-house/internal/repository"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DeliveryService drives the two-party post-settlement workflow:
// the host confirms delivery, then the winner may leave exactly one review,
// which feeds the host's rolling reputation score.
type DeliveryService struct {
	repo          *repository.Repository
	xp            *XPService
	notifications *NotificationService
}

func NewDeliveryService(repo *repository.Repository, xp *XPService, notifications *NotificationService) *DeliveryService {
	return &DeliveryService{repo: repo, xp: xp, notifications: notifications}
}

// MarkDelivered confirms delivery for an auction. Only the matching host may
// call it, and only once: repeats reject with ErrAlreadyDelivered.
func (s *DeliveryService) MarkDelivered(ctx context.Context, auctionID uuid.UUID, hostID uint) (*models.PendingDelivery, error) {
	delivery, err := s.repo.GetDeliveryByAuction(ctx, auctionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeliveryNotFound
		}
		return nil, fmt.Errorf("failed to load delivery: %w", err)
	}

	if delivery.HostID != hostID {
		return nil, ErrUnauthorized
	}
	if delivery.Delivered {
		return nil, ErrAlreadyDelivered
	}

	rows, err := s.repo.MarkDelivered(ctx, delivery.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark delivered: %w", err)
	}
	if rows == 0 {
		return nil, ErrAlreadyDelivered
	}

	log.Infof("[Delivery] auction %s marked delivered by host %d", auctionID, hostID)

	go func() {
		nctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		winner, err := s.repo.GetUserByID(nctx, delivery.WinnerID)
		if err != nil {
			log.Warnf("[Delivery] cannot notify winner %d: %v", delivery.WinnerID, err)
			return
		}
		s.notifications.Dispatch(
			winner.WalletAddress,
			"Delivery confirmed",
			"The host confirmed delivery. You can now leave a review.",
			fmt.Sprintf("/auctions/%s/review", auctionID),
		)
	}()

	return s.repo.GetDeliveryByAuction(ctx, auctionID)
}

// SubmitReview records the winner's one-time review of the host and
// recomputes the host's rolling average rating.
func (s *DeliveryService) SubmitReview(
	ctx context.Context,
	auctionID uuid.UUID,
	winnerID uint,
	rating int,
	comment *string,
) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	auction, err := s.repo.GetAuctionByID(ctx, auctionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, fmt.Errorf("failed to load auction: %w", err)
	}
	if auction.Status != models.AuctionStatusEnded {
		return nil, ErrNotDelivered
	}

	delivery, err := s.repo.GetDeliveryByAuction(ctx, auctionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeliveryNotFound
		}
		return nil, fmt.Errorf("failed to load delivery: %w", err)
	}

	if delivery.WinnerID != winnerID {
		return nil, ErrUnauthorized
	}
	if !delivery.Delivered {
		return nil, ErrNotDelivered
	}

	if _, err := s.repo.GetReviewByAuction(ctx, auctionID); err == nil {
		return nil, ErrAlreadyReviewed
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}

	review := &models.Review{
		ID:         uuid.New(),
		AuctionID:  auctionID,
		ReviewerID: winnerID,
		RevieweeID: delivery.HostID,
		Rating:     rating,
		Comment:    comment,
	}
	if err := s.repo.CreateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	// Recompute the host's rolling average over all their reviews
	sum, count, err := s.repo.GetRevieweeRating(ctx, delivery.HostID)
	if err != nil {
		log.Warnf("[Delivery] failed to recompute rating for host %d: %v", delivery.HostID, err)
	} else if count > 0 {
		average := math.Round(float64(sum)/float64(count)*100) / 100
		if err := s.repo.UpdateUserRating(ctx, delivery.HostID, average, int(count)); err != nil {
			log.Warnf("[Delivery] failed to persist rating for host %d: %v", delivery.HostID, err)
		}
	}

	s.xp.AwardDetached(winnerID, ReviewPoints(), models.XPActionReview, review.ID.String())

	log.Infof("[Delivery] auction %s reviewed by winner %d: rating %d for host %d",
		auctionID, winnerID, rating, delivery.HostID)

	return review, nil
}
