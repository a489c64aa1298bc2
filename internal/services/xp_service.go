package services

import (
	"context"
	"fmt"
	"time"

	"auction-house/internal/models"
	"auction-house/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Base points per qualifying action. Bid and win points additionally scale
// with the USD value involved.
const (
	xpBaseWin    int64 = 50
	xpBaseReview int64 = 10
	xpBaseCreate int64 = 25
)

// XPService is the progression ledger: it awards points for qualifying
// actions and feeds the leaderboard. Awards are idempotent per
// (user, action, reference) so a retried dispatch cannot double-credit.
type XPService struct {
	repo *repository.Repository
}

func NewXPService(repo *repository.Repository) *XPService {
	return &XPService{repo: repo}
}

// Award records a progression award. Duplicate keys are a silent no-op.
func (s *XPService) Award(ctx context.Context, userID uint, points int64, action models.XPAction, referenceID string) error {
	if points <= 0 {
		points = 1
	}

	award := &models.XPAward{
		ID:          uuid.New(),
		UserID:      userID,
		Action:      action,
		ReferenceID: referenceID,
		Points:      points,
	}

	if err := s.repo.InsertXPAward(ctx, award); err != nil {
		return fmt.Errorf("failed to record xp award: %w", err)
	}
	return nil
}

// AwardDetached runs Award in a detached goroutine and logs failure with
// enough context to replay the grant manually.
func (s *XPService) AwardDetached(userID uint, points int64, action models.XPAction, referenceID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.Award(ctx, userID, points, action, referenceID); err != nil {
			log.Warnf("[XP] award failed: user=%d points=%d action=%s ref=%s: %v",
				userID, points, action, referenceID, err)
		}
	}()
}

// BidPoints scales the bid award with the normalized USD value. An
// unresolved value still earns the minimum.
func BidPoints(usdValue *decimal.Decimal) int64 {
	if usdValue == nil {
		return 1
	}
	return usdValue.IntPart()
}

// WinPoints scales the win award with the winning USD value
func WinPoints(usdValue *decimal.Decimal) int64 {
	if usdValue == nil {
		return xpBaseWin
	}
	return xpBaseWin + usdValue.IntPart()
}

// ReviewPoints is the flat award for submitting a review
func ReviewPoints() int64 {
	return xpBaseReview
}

// CreatePoints is the flat award for hosting an auction
func CreatePoints() int64 {
	return xpBaseCreate
}

// Leaderboard returns the top users by total points
func (s *XPService) Leaderboard(ctx context.Context, limit int) ([]*models.XPRankEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.GetXPLeaderboard(ctx, limit)
}

// UserTotal returns one user's total points
func (s *XPService) UserTotal(ctx context.Context, userID uint) (int64, error) {
	return s.repo.GetUserXPTotal(ctx, userID)
}
