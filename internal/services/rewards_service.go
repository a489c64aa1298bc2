package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-house/internal/models"
	"auction-house/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Reward tiers by weekly rank. Ranks beyond the table are not eligible.
var rewardTiers = map[int]int64{
	1: 100,
	2: 50,
	3: 25,
}

const (
	rewardTierFloorRank   = 10 // ranks 4..10 share the floor reward
	rewardTierFloorAmount = 10
)

// RewardsService aggregates qualifying bid value into calendar-week buckets
// and runs the ranked claim workflow.
type RewardsService struct {
	repo          *repository.Repository
	notifications *NotificationService
}

func NewRewardsService(repo *repository.Repository, notifications *NotificationService) *RewardsService {
	return &RewardsService{repo: repo, notifications: notifications}
}

// WeekStart returns the Monday 00:00 UTC boundary of t's calendar week.
// Pure and deterministic so every caller agrees on the bucket key.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -daysSinceMonday)
}

// WeekEnd returns the exclusive end of the week starting at weekStart
func WeekEnd(weekStart time.Time) time.Time {
	return weekStart.AddDate(0, 0, 7)
}

// RecordQualifyingBid upserts the bidder's current-week entry
func (s *RewardsService) RecordQualifyingBid(ctx context.Context, userID uint, usdValue decimal.Decimal, at time.Time) error {
	weekStart := WeekStart(at)
	if err := s.repo.UpsertWeeklyEntry(ctx, userID, weekStart, WeekEnd(weekStart), usdValue); err != nil {
		return fmt.Errorf("failed to upsert weekly entry: %w", err)
	}
	return nil
}

// RecordQualifyingBidDetached runs RecordQualifyingBid without blocking the
// caller; failure is logged with replay context only.
func (s *RewardsService) RecordQualifyingBidDetached(userID uint, usdValue decimal.Decimal, at time.Time) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.RecordQualifyingBid(ctx, userID, usdValue, at); err != nil {
			log.Warnf("[Rewards] accrual failed: user=%d usd=%s at=%s: %v",
				userID, usdValue, at.Format(time.RFC3339), err)
		}
	}()
}

// Claim finalizes a user's weekly entry: computes the ranked reward and flips
// the claimed flag in a single one-time transition.
func (s *RewardsService) Claim(ctx context.Context, entryID uuid.UUID, userID uint) (decimal.Decimal, error) {
	entry, err := s.repo.GetWeeklyEntryByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrEntryNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to load entry: %w", err)
	}

	if entry.UserID != userID {
		return decimal.Zero, ErrNotOwner
	}
	if entry.Claimed {
		return decimal.Zero, ErrAlreadyClaimed
	}
	if time.Now().Before(entry.WeekEnd) {
		return decimal.Zero, ErrWeekNotEnded
	}

	reward, err := s.rewardFor(ctx, entry)
	if err != nil {
		return decimal.Zero, err
	}

	rows, err := s.repo.FinalizeClaim(ctx, entryID, reward)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to finalize claim: %w", err)
	}
	if rows == 0 {
		// Lost a race against a concurrent claim of the same entry
		return decimal.Zero, ErrAlreadyClaimed
	}

	log.Infof("[Rewards] entry %s claimed by user %d for %s", entryID, userID, reward)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		user, err := s.repo.GetUserByID(ctx, userID)
		if err != nil {
			log.Warnf("[Rewards] cannot notify claimant %d: %v", userID, err)
			return
		}
		s.notifications.Dispatch(
			user.WalletAddress,
			"Weekly reward claimed",
			fmt.Sprintf("Your reward of %s has been credited", reward),
			"/rewards",
		)
	}()

	return reward, nil
}

// rewardFor computes the entry's reward from its rank within the week
func (s *RewardsService) rewardFor(ctx context.Context, entry *models.WeeklyLeaderboardEntry) (decimal.Decimal, error) {
	if entry.RewardValue != nil {
		return *entry.RewardValue, nil
	}

	entries, err := s.repo.GetEntriesForWeek(ctx, entry.WeekStart)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to rank week: %w", err)
	}

	rank := 0
	for i, e := range entries {
		if e.ID == entry.ID {
			rank = i + 1
			break
		}
	}
	if rank == 0 {
		return decimal.Zero, ErrEntryNotFound
	}

	if amount, ok := rewardTiers[rank]; ok {
		return decimal.NewFromInt(amount), nil
	}
	if rank <= rewardTierFloorRank {
		return decimal.NewFromInt(rewardTierFloorAmount), nil
	}
	return decimal.Zero, ErrNotEligible
}

// WeeklyLeaderboard returns the ranked entries of one week
func (s *RewardsService) WeeklyLeaderboard(ctx context.Context, weekOf time.Time, limit int) ([]*models.WeeklyRankEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.GetWeeklyRanks(ctx, WeekStart(weekOf), limit)
}

// EntriesForUser returns the caller's own weekly entries, newest week first
func (s *RewardsService) EntriesForUser(ctx context.Context, userID uint) ([]*models.WeeklyLeaderboardEntry, error) {
	return s.repo.GetWeeklyEntriesForUser(ctx, userID)
}
