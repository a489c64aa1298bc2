package models

import (
	"time"

	"github.com/google/uuid"
)

type XPAction string

const (
	XPActionBid    XPAction = "BID"
	XPActionWin    XPAction = "WIN"
	XPActionReview XPAction = "REVIEW"
	XPActionCreate XPAction = "CREATE"
)

// XPAward is one progression-point grant. The (user, action, reference)
// unique key makes a retried dispatch a no-op instead of a double credit.
type XPAward struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_award_once;index" json:"user_id"`
	Action      XPAction  `gorm:"size:20;not null;uniqueIndex:idx_award_once" json:"action"`
	ReferenceID string    `gorm:"size:64;not null;uniqueIndex:idx_award_once" json:"reference_id"`
	Points      int64     `gorm:"not null" json:"points"`
	CreatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (XPAward) TableName() string {
	return "xp_awards"
}

// XPRankEntry is one row of the progression leaderboard
type XPRankEntry struct {
	Rank     int    `json:"rank"`
	UserID   uint   `json:"user_id"`
	Nickname string `json:"nickname"`
	Points   int64  `json:"points"`
}
