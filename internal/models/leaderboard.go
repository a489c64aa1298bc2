package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WeeklyLeaderboardEntry accumulates a user's qualifying bid volume inside one
// calendar week. Created on the first qualifying bid of the week, incremented
// on every subsequent one, and finalized once via the claim flow.
type WeeklyLeaderboardEntry struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uint             `gorm:"not null;uniqueIndex:idx_user_week" json:"user_id"`
	WeekStart   time.Time        `gorm:"not null;uniqueIndex:idx_user_week;index" json:"week_start"`
	WeekEnd     time.Time        `gorm:"not null" json:"week_end"`
	TotalUSD    decimal.Decimal  `gorm:"type:decimal(30,10);not null;default:0" json:"total_usd"`
	BidCount    int              `gorm:"not null;default:0" json:"bid_count"`
	Claimed     bool             `gorm:"not null;default:false" json:"claimed"`
	RewardValue *decimal.Decimal `gorm:"type:decimal(30,10)" json:"reward_value"`
	ClaimedAt   *time.Time       `json:"claimed_at"`
	CreatedAt   time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (WeeklyLeaderboardEntry) TableName() string {
	return "weekly_leaderboard_entries"
}

// ClaimResponse is returned by the claim endpoint
type ClaimResponse struct {
	EntryID      uuid.UUID       `json:"entry_id"`
	RewardAmount decimal.Decimal `json:"reward_amount"`
}

// WeeklyRankEntry is one row of the weekly leaderboard view
type WeeklyRankEntry struct {
	Rank     int             `json:"rank"`
	UserID   uint            `json:"user_id"`
	Nickname string          `json:"nickname"`
	TotalUSD decimal.Decimal `json:"total_usd"`
	BidCount int             `json:"bid_count"`
}
