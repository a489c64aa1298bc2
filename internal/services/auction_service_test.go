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

func TestCreateAuction(t *testing.T) {
	repo := setupTestDB(t)
	svc := NewAuctionService(repo, NewXPService(repo))

	host := createTestUser(t, repo, "create-host-1")

	auction, err := svc.CreateAuction(context.Background(), host.ID, &models.CreateAuctionRequest{
		ChainAuctionID: 42,
		Title:          "Signed jersey",
		CurrencySymbol: "BONK",
		TokenAddress:   "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA",
		MinimumBid:     "2.5",
		DurationHours:  24,
	})
	require.NoError(t, err)

	assert.Equal(t, models.AuctionStatusOngoing, auction.Status)
	assert.Equal(t, host.ID, auction.HostID)
	assert.True(t, auction.MinimumBid.Equal(decimal.NewFromFloat(2.5)))
	assert.True(t, auction.EndAt.After(auction.StartAt))

	updated, err := repo.GetUserByID(context.Background(), host.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.AuctionsHosted)
}

func TestCreateAuctionRejectsBadMinimum(t *testing.T) {
	repo := setupTestDB(t)
	svc := NewAuctionService(repo, NewXPService(repo))
	host := createTestUser(t, repo, "create-host-2")

	req := &models.CreateAuctionRequest{
		ChainAuctionID: 43,
		Title:          "Bad minimum",
		CurrencySymbol: "BONK",
		TokenAddress:   "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA",
		MinimumBid:     "banana",
		DurationHours:  1,
	}
	_, err := svc.CreateAuction(context.Background(), host.ID, req)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	req.MinimumBid = "-1"
	_, err = svc.CreateAuction(context.Background(), host.ID, req)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestListAuctionsFiltersByStatus(t *testing.T) {
	repo := setupTestDB(t)
	svc := NewAuctionService(repo, NewXPService(repo))
	settlement := newTestSettlementService(repo, fixedPrices(1), NewAuctionLocks())

	host := createTestUser(t, repo, "list-host-1")
	open := createTestAuction(t, repo, host.ID, 1, time.Now().Add(time.Hour))
	closed := createTestAuction(t, repo, host.ID, 1, time.Now().Add(-time.Minute))

	_, err := settlement.Settle(context.Background(), closed.ID, SettleCaller{UserID: host.ID}, nil)
	require.NoError(t, err)

	ongoing, total, err := svc.ListAuctions(context.Background(), models.AuctionStatusOngoing, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, ongoing, 1)
	assert.Equal(t, open.ID, ongoing[0].ID)

	all, total, err := svc.ListAuctions(context.Background(), "", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)
}

func TestCurrentHighestEmptyLedger(t *testing.T) {
	repo := setupTestDB(t)
	svc := NewAuctionService(repo, NewXPService(repo))

	host := createTestUser(t, repo, "highest-host-1")
	auction := createTestAuction(t, repo, host.ID, 1, time.Now().Add(time.Hour))

	highest, err := svc.CurrentHighest(context.Background(), auction.ID)
	require.NoError(t, err)
	assert.True(t, highest.IsZero())
}
