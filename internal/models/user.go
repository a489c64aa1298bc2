package models

import (
	"time"
)

// User represents a user in the system. Users are created lazily the first
// time an identity is observed, including during settlement reconciliation
// when the chain reports a bidder the system has never seen.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	WalletAddress  string    `gorm:"uniqueIndex;not null" json:"wallet_address"`
	Nickname       string    `gorm:"uniqueIndex;not null" json:"nickname"`
	XUsername      *string   `gorm:"uniqueIndex" json:"x_username,omitempty"`
	XAvatarURL     *string   `json:"x_avatar_url,omitempty"`
	AuctionsHosted int       `gorm:"default:0" json:"auctions_hosted"`
	AuctionsWon    int       `gorm:"default:0" json:"auctions_won"`
	RatingAverage  float64   `gorm:"type:decimal(3,2);default:0" json:"rating_average"`
	RatingCount    int       `gorm:"default:0" json:"rating_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
