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

// qualifyingBidUSD is the normalized value a bid must reach to count toward
// the weekly rewards leaderboard.
var qualifyingBidUSD = decimal.NewFromInt(10)

// BidService validates and commits bids against the live highest-bid
// invariant. Acceptance is serialized per auction: the highest-bid check and
// the ledger append happen under the auction's mutex, so two concurrent bids
// can never both pass the check against the same stale highest.
type BidService struct {
	repo          *repository.Repository
	prices        PriceNormalizer
	rewards       *RewardsService
	xp            *XPService
	notifications *NotificationService
	locks         *AuctionLocks
}

func NewBidService(
	repo *repository.Repository,
	prices PriceNormalizer,
	rewards *RewardsService,
	xp *XPService,
	notifications *NotificationService,
	locks *AuctionLocks,
) *BidService {
	return &BidService{
		repo:          repo,
		prices:        prices,
		rewards:       rewards,
		xp:            xp,
		notifications: notifications,
		locks:         locks,
	}
}

// PlaceBid validates a bid in order (closed, below minimum, not highest) and
// appends it to the ledger. The first failed check wins. Side effects such as
// the outbid notification, progression award and weekly rewards accrual are
// detached and can never fail the placement.
func (s *BidService) PlaceBid(
	ctx context.Context,
	auctionID uuid.UUID,
	bidderID uint,
	amount decimal.Decimal,
	origin models.BidOrigin,
) (*models.PlaceBidResponse, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if origin != models.BidOriginAgent {
		origin = models.BidOriginUser
	}

	mu := s.locks.Get(auctionID)
	mu.Lock()
	defer mu.Unlock()

	auction, err := s.repo.GetAuctionByID(ctx, auctionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, fmt.Errorf("failed to load auction: %w", err)
	}

	if auction.Status != models.AuctionStatusOngoing || time.Now().After(auction.EndAt) {
		return nil, ErrAuctionClosed
	}

	if amount.LessThan(auction.MinimumBid) {
		return nil, fmt.Errorf("%w: minimum is %s", ErrBelowMinimum, auction.MinimumBid)
	}

	// The highest bid is re-read from the live ledger inside the critical
	// section, never a value cached before it.
	var previous *models.Bid
	previous, err = s.repo.GetHighestBid(ctx, auctionID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to read current highest bid: %w", err)
		}
		previous = nil
	}

	if previous != nil && amount.LessThanOrEqual(previous.Amount) {
		return nil, fmt.Errorf("%w: current highest is %s", ErrNotHighBid, previous.Amount)
	}

	// Best-effort normalization: an unavailable oracle leaves USDValue nil
	var usdValue *decimal.Decimal
	if value, ok := s.prices.USDValue(ctx, amount, auction.TokenAddress); ok {
		usdValue = &value
	}

	bid := &models.Bid{
		ID:        uuid.New(),
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    amount,
		USDValue:  usdValue,
		Origin:    origin,
		CreatedAt: time.Now(),
	}

	if err := s.repo.CreateBid(ctx, bid); err != nil {
		return nil, fmt.Errorf("failed to record bid: %w", err)
	}

	log.Infof("[Bids] auction %s: bid %s by user %d accepted (usd=%v)",
		auctionID, amount, bidderID, usdValue)

	s.dispatchSideEffects(auction, bid, previous)

	return &models.PlaceBidResponse{Bid: bid, CurrentHighest: amount}, nil
}

// dispatchSideEffects fires the non-blocking follow-ups of an accepted bid
func (s *BidService) dispatchSideEffects(auction *models.Auction, bid *models.Bid, previous *models.Bid) {
	// Outbid notification to the previously-highest bidder
	if previous != nil && previous.BidderID != bid.BidderID {
		outbid := previous.BidderID
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			user, err := s.repo.GetUserByID(ctx, outbid)
			if err != nil {
				log.Warnf("[Bids] cannot notify outbid user %d: %v", outbid, err)
				return
			}
			s.notifications.Dispatch(
				user.WalletAddress,
				"You have been outbid",
				fmt.Sprintf("A bid of %s %s now leads %q", bid.Amount, auction.CurrencySymbol, auction.Title),
				fmt.Sprintf("/auctions/%s", auction.ID),
			)
		}()
	}

	// Hosts bidding on their own auction earn nothing
	if bid.BidderID == auction.HostID {
		return
	}

	s.xp.AwardDetached(bid.BidderID, BidPoints(bid.USDValue), models.XPActionBid, bid.ID.String())

	if bid.USDValue != nil && bid.USDValue.GreaterThanOrEqual(qualifyingBidUSD) {
		s.rewards.RecordQualifyingBidDetached(bid.BidderID, *bid.USDValue, bid.CreatedAt)
	}
}
