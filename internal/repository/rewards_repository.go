package repository

import (
	"context"
	"time"

	"auction-house/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertWeeklyEntry records one qualifying bid in the user's current-week
// bucket: create with count=1/sum=value, or increment atomically on conflict.
func (r *Repository) UpsertWeeklyEntry(
	ctx context.Context,
	userID uint,
	weekStart, weekEnd time.Time,
	usdValue decimal.Decimal,
) error {
	entry := models.WeeklyLeaderboardEntry{
		ID:        uuid.New(),
		UserID:    userID,
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
		TotalUSD:  usdValue,
		BidCount:  1,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "week_start"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_usd":  gorm.Expr("weekly_leaderboard_entries.total_usd + ?", usdValue),
			"bid_count":  gorm.Expr("weekly_leaderboard_entries.bid_count + 1"),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&entry).Error
}

// GetWeeklyEntryByID retrieves one leaderboard entry
func (r *Repository) GetWeeklyEntryByID(ctx context.Context, entryID uuid.UUID) (*models.WeeklyLeaderboardEntry, error) {
	var entry models.WeeklyLeaderboardEntry
	err := r.db.WithContext(ctx).Where("id = ?", entryID).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetEntriesForWeek retrieves all entries of one week ordered by cumulative
// value descending; ties resolve to the earlier-created entry.
func (r *Repository) GetEntriesForWeek(ctx context.Context, weekStart time.Time) ([]*models.WeeklyLeaderboardEntry, error) {
	var entries []*models.WeeklyLeaderboardEntry
	err := r.db.WithContext(ctx).
		Where("week_start = ?", weekStart).
		Order("total_usd DESC").
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// FinalizeClaim marks an entry claimed with its reward in one conditional
// update. Returns the number of rows changed so the caller can detect a lost
// race against a concurrent claim.
func (r *Repository) FinalizeClaim(
	ctx context.Context,
	entryID uuid.UUID,
	reward decimal.Decimal,
) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.WeeklyLeaderboardEntry{}).
		Where("id = ? AND claimed = ?", entryID, false).
		Updates(map[string]interface{}{
			"claimed":      true,
			"reward_value": reward,
			"claimed_at":   now,
		})
	return result.RowsAffected, result.Error
}

// GetWeeklyRanks returns the ranked leaderboard view of one week
func (r *Repository) GetWeeklyRanks(ctx context.Context, weekStart time.Time, limit int) ([]*models.WeeklyRankEntry, error) {
	var rows []*models.WeeklyRankEntry
	err := r.db.WithContext(ctx).Model(&models.WeeklyLeaderboardEntry{}).
		Select("weekly_leaderboard_entries.user_id, users.nickname, weekly_leaderboard_entries.total_usd, weekly_leaderboard_entries.bid_count").
		Joins("JOIN users ON users.id = weekly_leaderboard_entries.user_id").
		Where("weekly_leaderboard_entries.week_start = ?", weekStart).
		Order("weekly_leaderboard_entries.total_usd DESC").
		Order("weekly_leaderboard_entries.created_at ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for i, row := range rows {
		row.Rank = i + 1
	}
	return rows, nil
}

// GetWeeklyEntriesForUser returns a user's weekly entries, newest week first
func (r *Repository) GetWeeklyEntriesForUser(ctx context.Context, userID uint) ([]*models.WeeklyLeaderboardEntry, error) {
	var entries []*models.WeeklyLeaderboardEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("week_start DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// InsertXPAward records a progression award. A duplicate (user, action,
// reference) key is silently ignored so retried dispatches cannot
// double-credit.
func (r *Repository) InsertXPAward(ctx context.Context, award *models.XPAward) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "action"}, {Name: "reference_id"}},
		DoNothing: true,
	}).Create(award).Error
}

// GetXPLeaderboard returns total points per user, highest first
func (r *Repository) GetXPLeaderboard(ctx context.Context, limit int) ([]*models.XPRankEntry, error) {
	var rows []*models.XPRankEntry
	err := r.db.WithContext(ctx).Model(&models.XPAward{}).
		Select("xp_awards.user_id, users.nickname, SUM(xp_awards.points) AS points").
		Joins("JOIN users ON users.id = xp_awards.user_id").
		Group("xp_awards.user_id, users.nickname").
		Order("points DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for i, row := range rows {
		row.Rank = i + 1
	}
	return rows, nil
}

// GetUserXPTotal returns a user's total progression points
func (r *Repository) GetUserXPTotal(ctx context.Context, userID uint) (int64, error) {
	var total *int64
	err := r.db.WithContext(ctx).Model(&models.XPAward{}).
		Select("SUM(points)").
		Where("user_id = ?", userID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
