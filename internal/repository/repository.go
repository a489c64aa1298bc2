package repository

import (
	"context"

	"auction-house/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Transaction runs fn inside a single database transaction. The repository
// passed to fn is scoped to that transaction.
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// DB exposes the underlying handle for read-only aggregate queries
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// CreateAuction creates a new auction
func (r *Repository) CreateAuction(ctx context.Context, auction *models.Auction) error {
	return r.db.WithContext(ctx).Create(auction).Error
}

// GetAuctionByID retrieves an auction by ID
func (r *Repository) GetAuctionByID(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error) {
	var auction models.Auction
	err := r.db.WithContext(ctx).Where("id = ?", auctionID).First(&auction).Error
	if err != nil {
		return nil, err
	}
	return &auction, nil
}

// GetAuctionByChainID retrieves an auction by its on-chain auction id
func (r *Repository) GetAuctionByChainID(ctx context.Context, chainAuctionID int64) (*models.Auction, error) {
	var auction models.Auction
	err := r.db.WithContext(ctx).Where("chain_auction_id = ?", chainAuctionID).First(&auction).Error
	if err != nil {
		return nil, err
	}
	return &auction, nil
}

// UpdateAuction persists auction field changes
func (r *Repository) UpdateAuction(ctx context.Context, auction *models.Auction) error {
	return r.db.WithContext(ctx).Save(auction).Error
}

// ListAuctions retrieves auctions, optionally filtered by status
func (r *Repository) ListAuctions(ctx context.Context, status models.AuctionStatus, limit, offset int) ([]*models.Auction, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Auction{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var auctions []*models.Auction
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&auctions).Error
	if err != nil {
		return nil, 0, err
	}

	return auctions, total, nil
}

// GetExpiredOngoingAuctions retrieves ongoing auctions whose end date has passed
func (r *Repository) GetExpiredOngoingAuctions(ctx context.Context, limit int) ([]*models.Auction, error) {
	var auctions []*models.Auction
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_at < CURRENT_TIMESTAMP", models.AuctionStatusOngoing).
		Order("end_at ASC").
		Limit(limit).
		Find(&auctions).Error
	if err != nil {
		return nil, err
	}
	return auctions, nil
}

// CreateBid appends a bid to an auction's ledger
func (r *Repository) CreateBid(ctx context.Context, bid *models.Bid) error {
	return r.db.WithContext(ctx).Create(bid).Error
}

// GetBidsByAuction retrieves all bids for an auction in chronological order
func (r *Repository) GetBidsByAuction(ctx context.Context, auctionID uuid.UUID) ([]*models.Bid, error) {
	var bids []*models.Bid
	err := r.db.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Order("created_at ASC").
		Find(&bids).Error
	if err != nil {
		return nil, err
	}
	return bids, nil
}

// GetHighestBid returns the current highest bid for an auction, or
// gorm.ErrRecordNotFound when the ledger is empty. Ties on amount resolve to
// the earliest bid.
func (r *Repository) GetHighestBid(ctx context.Context, auctionID uuid.UUID) (*models.Bid, error) {
	var bid models.Bid
	err := r.db.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Order("amount DESC").
		Order("created_at ASC").
		First(&bid).Error
	if err != nil {
		return nil, err
	}
	return &bid, nil
}

// DeleteBidsForAuction removes every locally recorded bid for an auction.
// Only settlement reconciliation may call this, inside its transaction.
func (r *Repository) DeleteBidsForAuction(ctx context.Context, auctionID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Delete(&models.Bid{}).Error
}
