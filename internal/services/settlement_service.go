package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DistributionTrigger fires the out-of-band downstream settlement process
// (fee distribution) on the chain. Implemented by blockchain.AuctionLedger.
type DistributionTrigger interface {
	TriggerDistribution(ctx context.Context, chainAuctionID int64) (string, error)
}

// SettleCaller is the pre-verified identity invoking a settlement
type SettleCaller struct {
	UserID   uint
	IsWorker bool
}

// SettlementService closes an auction: it reconciles the authoritative
// external bidder list against internal state, selects the winner and drives
// the downstream effects. Reconciliation and the status flip form one
// transaction; everything after the commit is best-effort.
type SettlementService struct {
	repo          *repository.Repository
	prices        PriceNormalizer
	xp            *XPService
	notifications *NotificationService
	distribution  DistributionTrigger
	locks         *AuctionLocks
}

func NewSettlementService(
	repo *repository.Repository,
	prices PriceNormalizer,
	xp *XPService,
	notifications *NotificationService,
	distribution DistributionTrigger,
	locks *AuctionLocks,
) *SettlementService {
	return &SettlementService{
		repo:          repo,
		prices:        prices,
		xp:            xp,
		notifications: notifications,
		distribution:  distribution,
		locks:         locks,
	}
}

// reconciledBid is one authoritative bid after user resolution and
// normalization, before winner selection.
type reconciledBid struct {
	userID   uint
	wallet   string
	amount   decimal.Decimal
	usdValue *decimal.Decimal
}

// Settle closes the auction using the external ledger's bidder list as ground
// truth. A second call on an ended auction rejects with ErrAlreadySettled and
// mutates nothing.
func (s *SettlementService) Settle(
	ctx context.Context,
	auctionID uuid.UUID,
	caller SettleCaller,
	bidders []models.AuthoritativeBidder,
) (*models.SettlementResult, error) {
	// Settlement shares the bid-placement mutex: once it begins, no further
	// bid on this auction can commit.
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

	if !caller.IsWorker && caller.UserID != auction.HostID {
		return nil, ErrUnauthorized
	}

	if auction.Status != models.AuctionStatusOngoing {
		return nil, ErrAlreadySettled
	}

	// Parse the authoritative amounts up front so a malformed list fails
	// before anything is touched.
	amounts := make([]decimal.Decimal, len(bidders))
	for i, b := range bidders {
		amount, err := decimal.NewFromString(b.Amount)
		if err != nil || !amount.IsPositive() {
			return nil, fmt.Errorf("%w: bad amount %q for %s", ErrInvalidAmount, b.Amount, b.WalletAddress)
		}
		amounts[i] = amount
	}

	// One oracle lookup per distinct token: all bids share the auction token,
	// so the cache collapses this to a single query.
	reconciled := make([]reconciledBid, len(bidders))
	for i, b := range bidders {
		rb := reconciledBid{wallet: b.WalletAddress, amount: amounts[i]}
		if value, ok := s.prices.USDValue(ctx, amounts[i], auction.TokenAddress); ok {
			rb.usdValue = &value
		}
		reconciled[i] = rb
	}

	now := time.Now()
	var winnerBid *models.Bid
	var winnerIdx int

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		// The external list is authoritative over whatever was recorded
		// locally, including bids placed out-of-band against the chain.
		if err := tx.DeleteBidsForAuction(ctx, auctionID); err != nil {
			return fmt.Errorf("failed to clear local bid set: %w", err)
		}

		for i := range reconciled {
			userID, err := s.resolveBidder(ctx, tx, reconciled[i].wallet)
			if err != nil {
				return err
			}
			reconciled[i].userID = userID
		}

		winnerIdx = selectWinner(reconciled)

		bids := make([]*models.Bid, len(reconciled))
		for i, rb := range reconciled {
			bids[i] = &models.Bid{
				ID:        uuid.New(),
				AuctionID: auctionID,
				BidderID:  rb.userID,
				Amount:    rb.amount,
				USDValue:  rb.usdValue,
				Origin:    models.BidOriginUser,
				// List order is the authoritative chronology
				CreatedAt: now.Add(time.Duration(i) * time.Millisecond),
			}
			if err := tx.CreateBid(ctx, bids[i]); err != nil {
				return fmt.Errorf("failed to record reconciled bid: %w", err)
			}
		}

		auction.Status = models.AuctionStatusEnded
		auction.EndAt = now
		if winnerIdx >= 0 {
			winnerBid = bids[winnerIdx]
			auction.WinnerID = &winnerBid.BidderID
			auction.WinningBidID = &winnerBid.ID
			auction.NoBids = false
		} else {
			auction.WinnerID = nil
			auction.WinningBidID = nil
			auction.NoBids = true
		}

		if err := tx.UpdateAuction(ctx, auction); err != nil {
			return fmt.Errorf("failed to end auction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &models.SettlementResult{
		AuctionID: auctionID,
		WinnerID:  auction.WinnerID,
		NoBids:    auction.NoBids,
	}
	if winnerBid != nil {
		result.WinAmount = &winnerBid.Amount
		log.Infof("[Settlement] auction %s settled: winner user %d with %s", auctionID, winnerBid.BidderID, winnerBid.Amount)
		s.applyWinnerEffects(auction, winnerBid)
	} else {
		log.Infof("[Settlement] auction %s settled with no bids", auctionID)
	}

	s.triggerDistributionDetached(auction.ChainAuctionID)

	return result, nil
}

// resolveBidder maps an authoritative bidder identity to a User, creating one
// when the identity is a resolvable wallet address. An unresolvable identity
// fails the whole settlement.
func (s *SettlementService) resolveBidder(ctx context.Context, tx *repository.Repository, wallet string) (uint, error) {
	user, err := tx.GetUserByWallet(ctx, wallet)
	if err == nil {
		return user.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("failed to look up bidder %s: %w", wallet, err)
	}

	if !ValidWalletAddress(wallet) {
		return 0, fmt.Errorf("%w: %s", ErrUnresolvedBidder, wallet)
	}

	nickname, err := utils.GenerateNickname()
	if err != nil {
		return 0, fmt.Errorf("failed to generate nickname for bidder %s: %w", wallet, err)
	}
	newUser := &models.User{WalletAddress: wallet, Nickname: nickname}
	if err := tx.CreateUser(ctx, newUser); err != nil {
		return 0, fmt.Errorf("failed to create user for bidder %s: %w", wallet, err)
	}

	log.Infof("[Settlement] created user %d for previously unknown bidder %s", newUser.ID, wallet)
	return newUser.ID, nil
}

// selectWinner returns the index of the winning bid, or -1 for an empty set.
// Normalized USD values are the primary criterion; a bid with an unresolved
// value never outranks a resolved one. Raw amounts decide only when no bid
// resolved. Ties go to the earliest (lowest-index) bid.
func selectWinner(bids []reconciledBid) int {
	if len(bids) == 0 {
		return -1
	}

	anyResolved := false
	for _, b := range bids {
		if b.usdValue != nil {
			anyResolved = true
			break
		}
	}

	winner := -1
	for i, b := range bids {
		if anyResolved && b.usdValue == nil {
			continue
		}
		if winner == -1 {
			winner = i
			continue
		}
		if anyResolved {
			if b.usdValue.GreaterThan(*bids[winner].usdValue) {
				winner = i
			}
		} else {
			if b.amount.GreaterThan(bids[winner].amount) {
				winner = i
			}
		}
	}
	return winner
}

// applyWinnerEffects runs the post-commit follow-ups of a resolved winner.
// These are best-effort: a failure is logged and never reverts the settlement.
func (s *SettlementService) applyWinnerEffects(auction *models.Auction, winnerBid *models.Bid) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	winnerID := winnerBid.BidderID

	if err := s.repo.IncrementAuctionsWon(ctx, winnerID); err != nil {
		log.Warnf("[Settlement] failed to bump win counter for user %d (auction %s): %v", winnerID, auction.ID, err)
	}

	s.xp.AwardDetached(winnerID, WinPoints(winnerBid.USDValue), models.XPActionWin, auction.ID.String())

	delivery := &models.PendingDelivery{
		ID:        uuid.New(),
		AuctionID: auction.ID,
		HostID:    auction.HostID,
		WinnerID:  winnerID,
	}
	if err := s.repo.CreatePendingDelivery(ctx, delivery); err != nil {
		log.Warnf("[Settlement] failed to create pending delivery for auction %s (host=%d winner=%d): %v",
			auction.ID, auction.HostID, winnerID, err)
	}

	go func() {
		nctx, ncancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer ncancel()

		winner, err := s.repo.GetUserByID(nctx, winnerID)
		if err == nil {
			s.notifications.Dispatch(
				winner.WalletAddress,
				"You won the auction",
				fmt.Sprintf("Your bid of %s %s won %q", winnerBid.Amount, auction.CurrencySymbol, auction.Title),
				fmt.Sprintf("/auctions/%s", auction.ID),
			)
		} else {
			log.Warnf("[Settlement] cannot notify winner %d: %v", winnerID, err)
		}

		host, err := s.repo.GetUserByID(nctx, auction.HostID)
		if err == nil {
			s.notifications.Dispatch(
				host.WalletAddress,
				"Your auction has ended",
				fmt.Sprintf("%q sold for %s %s", auction.Title, winnerBid.Amount, auction.CurrencySymbol),
				fmt.Sprintf("/auctions/%s", auction.ID),
			)
		} else {
			log.Warnf("[Settlement] cannot notify host %d: %v", auction.HostID, err)
		}
	}()
}

// triggerDistributionDetached fires the downstream fee distribution without
// blocking settlement; its failure never rolls anything back.
func (s *SettlementService) triggerDistributionDetached(chainAuctionID int64) {
	if s.distribution == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := s.distribution.TriggerDistribution(ctx, chainAuctionID); err != nil {
			log.Warnf("[Settlement] distribution trigger failed for chain auction %d: %v", chainAuctionID, err)
		}
	}()
}
