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

// AuctionService covers the host flow: opening auctions and browsing them
type AuctionService struct {
	repo *repository.Repository
	xp   *XPService
}

func NewAuctionService(repo *repository.Repository, xp *XPService) *AuctionService {
	return &AuctionService{repo: repo, xp: xp}
}

// CreateAuction opens a new auction for a host
func (s *AuctionService) CreateAuction(ctx context.Context, hostID uint, req *models.CreateAuctionRequest) (*models.Auction, error) {
	minimumBid, err := decimal.NewFromString(req.MinimumBid)
	if err != nil || minimumBid.IsNegative() {
		return nil, ErrInvalidAmount
	}

	now := time.Now()
	auction := &models.Auction{
		ID:             uuid.New(),
		ChainAuctionID: req.ChainAuctionID,
		HostID:         hostID,
		Title:          req.Title,
		Description:    req.Description,
		CurrencySymbol: req.CurrencySymbol,
		TokenAddress:   req.TokenAddress,
		MinimumBid:     minimumBid,
		StartAt:        now,
		EndAt:          now.Add(time.Duration(req.DurationHours) * time.Hour),
		Status:         models.AuctionStatusOngoing,
	}

	if err := s.repo.CreateAuction(ctx, auction); err != nil {
		return nil, fmt.Errorf("failed to create auction: %w", err)
	}

	// Side effects must never fail the creation itself
	if err := s.repo.IncrementAuctionsHosted(ctx, hostID); err != nil {
		log.Warnf("[Auctions] failed to bump hosted counter for user %d: %v", hostID, err)
	}
	s.xp.AwardDetached(hostID, CreatePoints(), models.XPActionCreate, auction.ID.String())

	log.Infof("[Auctions] auction %s opened by host %d (chain id %d, min %s %s)",
		auction.ID, hostID, auction.ChainAuctionID, minimumBid, auction.CurrencySymbol)

	return auction, nil
}

// GetAuctionByChainID resolves an on-chain auction id to the local record
func (s *AuctionService) GetAuctionByChainID(ctx context.Context, chainAuctionID int64) (*models.Auction, error) {
	auction, err := s.repo.GetAuctionByChainID(ctx, chainAuctionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, err
	}
	return auction, nil
}

// GetAuction retrieves one auction with its bid ledger
func (s *AuctionService) GetAuction(ctx context.Context, auctionID uuid.UUID) (*models.Auction, []*models.Bid, error) {
	auction, err := s.repo.GetAuctionByID(ctx, auctionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrAuctionNotFound
		}
		return nil, nil, err
	}

	bids, err := s.repo.GetBidsByAuction(ctx, auctionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load bids: %w", err)
	}

	return auction, bids, nil
}

// ListAuctions retrieves auctions filtered by status
func (s *AuctionService) ListAuctions(ctx context.Context, status models.AuctionStatus, limit, offset int) ([]*models.Auction, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListAuctions(ctx, status, limit, offset)
}

// CurrentHighest returns the auction's highest bid amount, or the zero value
// when the ledger is empty.
func (s *AuctionService) CurrentHighest(ctx context.Context, auctionID uuid.UUID) (decimal.Decimal, error) {
	bid, err := s.repo.GetHighestBid(ctx, auctionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return bid.Amount, nil
}
