package jobs

import (
	"context"
	"time"

	"auction-house/internal/blockchain"
	"auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/internal/services"

	log "github.com/sirupsen/logrus"
)

// BidderSource reads the authoritative bidder list for a chain auction
type BidderSource interface {
	GetBidders(ctx context.Context, chainAuctionID int64) ([]blockchain.ChainBid, error)
}

// AuctionCloser settles expired auctions under the trusted worker identity.
// It is the automated counterpart of the host-initiated settle endpoint.
type AuctionCloser struct {
	settlement *services.SettlementService
	repo       *repository.Repository
	bidders    BidderSource
	interval   time.Duration
	stopChan   chan struct{}
}

// NewAuctionCloser creates a new auction closer job
func NewAuctionCloser(
	settlement *services.SettlementService,
	repo *repository.Repository,
	bidders BidderSource,
	interval time.Duration,
) *AuctionCloser {
	return &AuctionCloser{
		settlement: settlement,
		repo:       repo,
		bidders:    bidders,
		interval:   interval,
		stopChan:   make(chan struct{}),
	}
}

// Start begins the settlement loop
func (ac *AuctionCloser) Start() {
	log.Infof("[AuctionCloser] Starting auction closer job (interval: %v)", ac.interval)

	ticker := time.NewTicker(ac.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ac.settleExpiredAuctions()
		case <-ac.stopChan:
			log.Info("[AuctionCloser] Stopping auction closer job")
			return
		}
	}
}

// Stop stops the settlement loop
func (ac *AuctionCloser) Stop() {
	close(ac.stopChan)
}

// settleExpiredAuctions finds ongoing auctions past their end date and
// settles each one from the chain's bidder list.
func (ac *AuctionCloser) settleExpiredAuctions() {
	ctx := context.Background()

	auctions, err := ac.repo.GetExpiredOngoingAuctions(ctx, 100)
	if err != nil {
		log.Warnf("[AuctionCloser] Error fetching expired auctions: %v", err)
		return
	}

	if len(auctions) == 0 {
		return
	}

	log.Infof("[AuctionCloser] Settling %d expired auctions", len(auctions))

	for _, auction := range auctions {
		chainBids, err := ac.bidders.GetBidders(ctx, auction.ChainAuctionID)
		if err != nil {
			log.Warnf("[AuctionCloser] Error fetching bidders for auction %s (chain id %d): %v",
				auction.ID, auction.ChainAuctionID, err)
			continue
		}

		authoritative := make([]models.AuthoritativeBidder, len(chainBids))
		for i, b := range chainBids {
			authoritative[i] = models.AuthoritativeBidder{
				WalletAddress: b.WalletAddress,
				Amount:        b.Amount.String(),
			}
		}

		result, err := ac.settlement.Settle(ctx, auction.ID, services.SettleCaller{IsWorker: true}, authoritative)
		if err != nil {
			log.Warnf("[AuctionCloser] Error settling auction %s: %v", auction.ID, err)
			continue
		}

		if result.NoBids {
			log.Infof("[AuctionCloser] Auction %s settled with no bids", auction.ID)
		} else {
			log.Infof("[AuctionCloser] Auction %s settled, winner user %d", auction.ID, *result.WinnerID)
		}
	}
}
