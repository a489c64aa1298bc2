package services

import (
	"context"
	"testing"
	"time"

	"auction-house/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Valid 32-byte base58 addresses for bidders the system has never seen
const (
	unknownWalletA = "So11111111111111111111111111111111111111112"
	unknownWalletB = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	knownWallet    = "Vote111111111111111111111111111111111111111"
)

func TestSettleReconcilesAuthoritativeList(t *testing.T) {
	repo := setupTestDB(t)
	locks := NewAuctionLocks()
	bids := newTestBidService(repo, fixedPrices(1))
	settlement := newTestSettlementService(repo, fixedPrices(1), locks)

	host := createTestUser(t, repo, "settle-host-1")
	known := createTestUser(t, repo, knownWallet)
	auction := createTestAuction(t, repo, host.ID, 1, time.Now().Add(time.Hour))

	// A local bid that the authoritative list will not contain
	local := createTestUser(t, repo, "settle-local-1")
	_, err := bids.PlaceBid(context.Background(), auction.ID, local.ID, decimal.NewFromInt(999), models.BidOriginUser)
	require.NoError(t, err)

	authoritative := []models.AuthoritativeBidder{
		{WalletAddress: knownWallet, Amount: "40"},
		{WalletAddress: unknownWalletA, Amount: "75"},
	}

	result, err := settlement.Settle(context.Background(), auction.ID, SettleCaller{UserID: host.ID}, authoritative)
	require.NoError(t, err)

	require.NotNil(t, result.WinnerID)
	require.NotNil(t, result.WinAmount)
	assert.True(t, result.WinAmount.Equal(decimal.NewFromInt(75)))
	assert.False(t, result.NoBids)

	// The winner is the previously unknown bidder, created during reconciliation
	winner, err := repo.GetUserByID(context.Background(), *result.WinnerID)
	require.NoError(t, err)
	assert.Equal(t, unknownWalletA, winner.WalletAddress)
	assert.NotEqual(t, known.ID, winner.ID)

	// The local bid set was replaced wholesale
	ledger, err := repo.GetBidsByAuction(context.Background(), auction.ID)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	assert.True(t, ledger[0].Amount.Equal(decimal.NewFromInt(40)))
	assert.True(t, ledger[1].Amount.Equal(decimal.NewFromInt(75)))

	ended, err := repo.GetAuctionByID(context.Background(), auction.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionStatusEnded, ended.Status)
	assert.Equal(t, *result.WinnerID, *ended.WinnerID)

	// The delivery workflow opens as part of the winner effects
	delivery, err := repo.GetDeliveryByAuction(context.Background(), auction.ID)
	require.NoError(t, err)
	assert.Equal(t, host.ID, delivery.HostID)
	assert.Equal(t, winner.ID, delivery.WinnerID)
	assert.False(t, delivery.Delivered)
}

func TestSettleTwiceRejectsSecondCall(t *testing.T) {
	repo := setupTestDB(t)
	settlement := newTestSettlementService(repo, fixedPrices(1), NewAuctionLocks())

	host := createTestUser(t, repo, "settle-host-2")
	auction := createTestAuction(t, repo, host.ID, 1, time.Now().Add(-time.Minute))

	authoritative := []models.AuthoritativeBidder{{WalletAddress: unknownWalletA, Amount: "10"}}

	first, err := settlement.Settle(context.Background(), auction.ID, SettleCaller{UserID: host.ID}, authoritative)
	require.NoError(t, err)

	// Even with a different list, the second call must change nothing
	_, err = settlement.Settle(context.Background(), auction.ID, SettleCaller{UserID: host.ID},
		[]models.AuthoritativeBidder{{WalletAddress: unknownWalletB, Amount: "5000"}})
	assert.ErrorIs(t, err, ErrAlreadySettled)

	ended, err := repo.GetAuctionByID(context.Background(), auction.ID)
	require.NoError(t, err)
	assert.Equal(t, *first.WinnerID, *ended.WinnerID)

	ledger, err := repo.GetBidsByAuction(context.Background(), auction.ID)
	require.NoError(t, err)
	assert.Len(t, ledger, 1)
}

func TestSettleEmptyListEndsWithNoBids(t *testing.T) {
	repo := setupTestDB(t)
	settlement := newTestSettlementService(repo, fixedPrices(1), NewAuctionLocks())

	host := createTestUser(t, repo, "settle-host-3")
	auction := createTestAuction(t, repo, host.ID, 1, time.Now().Add(-time.Minute))

	result, err := settlement.Settle(context.Background(), auction.ID, SettleCaller{UserID: host.ID}, nil)
	require.NoError(t, err)

	assert.True(t, result.NoBids)
	assert.Nil(t, result.WinnerID)
	assert.Nil(t, result.WinAmount)

	ended, err := repo.GetAuctionByID(context.Background(), auction.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionStatusEnded, ended.Status)
	assert.True(t, ended.NoBids)

	_, err = repo.GetDeliveryByAuction(context.Background(), auction.ID)
	assert.Error(t, err)
}

func TestSettleUnresolvedBidderRollsBack(t *testing.T) {
	repo := setupTestDB(t)
	locks := NewAuctionLocks()
	bids := newTestBidService(repo, fixedPrices(1))
	settlement := newTestSettlementService(repo, fixedPrices(1), locks)

	host := createTestUser(t, repo, "settle-host-4")
	local := createTestUser(t, repo, "settle-local-4")
	auction := createTestAuction(t, repo, host.ID, 1, time.Now().Add(time.Hour))

	_, err := bids.PlaceBid(context.Background(), auction.ID, local.ID, decimal.NewFromInt(12), models.BidOriginUser)
	require.NoError(t, err)

	authoritative := []models.AuthoritativeBidder{
		{WalletAddress: unknownWalletA, Amount: "50"},
		{WalletAddress: "not-a-wallet", Amount: "60"},
	}

	_, err = settlement.Settle(context.Background(), auction.ID, SettleCaller{UserID: host.ID}, authoritative)
	assert.ErrorIs(t, err, ErrUnresolvedBidder)

	// Nothing moved: auction still open, local ledger intact
	current, err := repo.GetAuctionByID(context.Background(), auction.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionStatusOngoing, current.Status)

	ledger, err := repo.GetBidsByAuction(context.Background(), auction.ID)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, local.ID, ledger[0].BidderID)
}

func TestSettleMalformedAmountFailsBeforeMutation(t *testing.T) {
	repo := setupTestDB(t)
	settlement := newTestSettlementService(repo, fixedPrices(1), NewAuctionLocks())

	host := createTestUser(t, repo, "settle-host-5")
	auction := createTestAuction(t, repo, host.ID, 1, time.Now().Add(-time.Minute))

	_, err := settlement.Settle(context.Background(), auction.ID, SettleCaller{UserID: host.ID},
		[]models.AuthoritativeBidder{{WalletAddress: unknownWalletA, Amount: "not-a-number"}})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	current, err := repo.GetAuctionByID(context.Background(), auction.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionStatusOngoing, current.Status)
}

func TestSettleOnlyHostOrWorker(t *testing.T) {
	repo := setupTestDB(t)
	settlement := newTestSettlementService(repo, fixedPrices(1), NewAuctionLocks())

	host := createTestUser(t, repo, "settle-host-6")
	stranger := createTestUser(t, repo, "settle-stranger-6")
	auction := createTestAuction(t, repo, host.ID, 1, time.Now().Add(-time.Minute))

	_, err := settlement.Settle(context.Background(), auction.ID, SettleCaller{UserID: stranger.ID}, nil)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = settlement.Settle(context.Background(), auction.ID, SettleCaller{IsWorker: true}, nil)
	assert.NoError(t, err)
}

func TestSettleResolvedValueOutranksLargerRawAmount(t *testing.T) {
	repo := setupTestDB(t)

	// The oracle fails for the 100-token bid but resolves the 5-token one
	prices := fixedPrices(3)
	prices.failAmounts = map[string]bool{"100": true}
	settlement := newTestSettlementService(repo, prices, NewAuctionLocks())

	host := createTestUser(t, repo, "settle-host-7")
	auction := createTestAuction(t, repo, host.ID, 1, time.Now().Add(-time.Minute))

	result, err := settlement.Settle(context.Background(), auction.ID, SettleCaller{UserID: host.ID},
		[]models.AuthoritativeBidder{
			{WalletAddress: unknownWalletA, Amount: "100"},
			{WalletAddress: unknownWalletB, Amount: "5"},
		})
	require.NoError(t, err)

	require.NotNil(t, result.WinnerID)
	winner, err := repo.GetUserByID(context.Background(), *result.WinnerID)
	require.NoError(t, err)
	assert.Equal(t, unknownWalletB, winner.WalletAddress)
}

func TestSelectWinner(t *testing.T) {
	usd := func(v int64) *decimal.Decimal {
		d := decimal.NewFromInt(v)
		return &d
	}
	amt := func(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

	tests := []struct {
		name string
		bids []reconciledBid
		want int
	}{
		{"empty", nil, -1},
		{
			"highest usd wins",
			[]reconciledBid{
				{amount: amt(10), usdValue: usd(10)},
				{amount: amt(3), usdValue: usd(30)},
			},
			1,
		},
		{
			"unresolved never outranks resolved",
			[]reconciledBid{
				{amount: amt(1000), usdValue: nil},
				{amount: amt(2), usdValue: usd(2)},
			},
			1,
		},
		{
			"raw fallback when nothing resolved",
			[]reconciledBid{
				{amount: amt(7), usdValue: nil},
				{amount: amt(9), usdValue: nil},
				{amount: amt(8), usdValue: nil},
			},
			1,
		},
		{
			"usd tie goes to the earlier bid",
			[]reconciledBid{
				{amount: amt(5), usdValue: usd(50)},
				{amount: amt(6), usdValue: usd(50)},
			},
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, selectWinner(tt.bids))
		})
	}
}
