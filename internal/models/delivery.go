package models

import (
	"time"

	"github.com/google/uuid"
)

// PendingDelivery gates the post-settlement workflow: the host confirms
// delivery, which unlocks the winner's review. Exactly one exists per settled
// auction that produced a winner.
type PendingDelivery struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AuctionID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"auction_id"`
	HostID      uint       `gorm:"not null;index" json:"host_id"`
	WinnerID    uint       `gorm:"not null;index" json:"winner_id"`
	Delivered   bool       `gorm:"not null;default:false" json:"delivered"`
	DeliveredAt *time.Time `json:"delivered_at"`
	CreatedAt   time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (PendingDelivery) TableName() string {
	return "pending_deliveries"
}

// Review is the winner's one-time rating of the host for an auction
type Review struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AuctionID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"auction_id"`
	ReviewerID uint      `gorm:"not null;index" json:"reviewer_id"`
	RevieweeID uint      `gorm:"not null;index" json:"reviewee_id"`
	Rating     int       `gorm:"not null" json:"rating"`
	Comment    *string   `gorm:"size:2000" json:"comment,omitempty"`
	CreatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Review) TableName() string {
	return "reviews"
}

// SubmitReviewRequest is the winner's review submission
type SubmitReviewRequest struct {
	Rating  int     `json:"rating" binding:"required"`
	Comment *string `json:"comment"`
}
