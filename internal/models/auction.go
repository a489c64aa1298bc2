package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AuctionStatus string

const (
	AuctionStatusOngoing AuctionStatus = "ONGOING"
	AuctionStatusEnded   AuctionStatus = "ENDED"
)

type BidOrigin string

const (
	BidOriginUser  BidOrigin = "USER"
	BidOriginAgent BidOrigin = "AGENT"
)

// Auction represents a timed auction backed by an on-chain auction account.
// While ONGOING the bid set only grows and its maximum only increases; once
// ENDED the bid set and winner are immutable.
type Auction struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ChainAuctionID int64           `gorm:"uniqueIndex;not null" json:"chain_auction_id"`
	HostID         uint            `gorm:"not null;index" json:"host_id"`
	Title          string          `gorm:"size:255;not null" json:"title"`
	Description    *string         `gorm:"size:2000" json:"description,omitempty"`
	CurrencySymbol string          `gorm:"size:20;not null" json:"currency_symbol"`
	TokenAddress   string          `gorm:"size:64;not null" json:"token_address"`
	MinimumBid     decimal.Decimal `gorm:"type:decimal(30,10);not null" json:"minimum_bid"`
	StartAt        time.Time       `gorm:"not null" json:"start_at"`
	EndAt          time.Time       `gorm:"not null;index" json:"end_at"`
	Status         AuctionStatus   `gorm:"size:20;not null;default:ONGOING;index" json:"status"`
	WinnerID       *uint           `gorm:"index" json:"winner_id"`
	WinningBidID   *uuid.UUID      `gorm:"type:uuid" json:"winning_bid_id"`
	NoBids         bool            `gorm:"default:false" json:"no_bids"`
	CreatedAt      time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Auction) TableName() string {
	return "auctions"
}

// Bid is an immutable entry in an auction's ledger. USDValue is nil when the
// price oracle was unavailable at placement time.
type Bid struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	AuctionID uuid.UUID        `gorm:"type:uuid;not null;index" json:"auction_id"`
	BidderID  uint             `gorm:"not null;index" json:"bidder_id"`
	Amount    decimal.Decimal  `gorm:"type:decimal(30,10);not null" json:"amount"`
	USDValue  *decimal.Decimal `gorm:"type:decimal(30,10)" json:"usd_value"`
	Origin    BidOrigin        `gorm:"size:20;not null;default:USER" json:"origin"`
	CreatedAt time.Time        `gorm:"default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

func (Bid) TableName() string {
	return "bids"
}

// CreateAuctionRequest represents a host's request to open an auction
type CreateAuctionRequest struct {
	ChainAuctionID int64   `json:"chain_auction_id" binding:"required"`
	Title          string  `json:"title" binding:"required"`
	Description    *string `json:"description"`
	CurrencySymbol string  `json:"currency_symbol" binding:"required"`
	TokenAddress   string  `json:"token_address" binding:"required"`
	MinimumBid     string  `json:"minimum_bid" binding:"required"`
	DurationHours  int     `json:"duration_hours" binding:"required,gt=0"`
}

// PlaceBidRequest represents a bid submission
type PlaceBidRequest struct {
	Amount string `json:"amount" binding:"required"`
	Origin string `json:"origin"` // "USER" (default) or "AGENT"
}

// PlaceBidResponse echoes the accepted bid and the resulting highest amount
type PlaceBidResponse struct {
	Bid            *Bid            `json:"bid"`
	CurrentHighest decimal.Decimal `json:"current_highest"`
}

// SettleRequest carries an explicit authoritative bidder list. When omitted
// the server fetches the list from the chain itself.
type SettleRequest struct {
	Bidders []AuthoritativeBidder `json:"bidders"`
}

// AuthoritativeBidder is one entry of the external ledger's bidder list
type AuthoritativeBidder struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
	Amount        string `json:"amount" binding:"required"`
}

// SettlementResult reports the outcome of a settlement
type SettlementResult struct {
	AuctionID uuid.UUID        `json:"auction_id"`
	WinnerID  *uint            `json:"winner_id"`
	NoBids    bool             `json:"no_bids"`
	WinAmount *decimal.Decimal `json:"win_amount,omitempty"`
}
