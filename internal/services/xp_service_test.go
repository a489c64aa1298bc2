package services

import (
	"context"
	"testing"

	"auction-house/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwardIsIdempotentPerReference(t *testing.T) {
	repo := setupTestDB(t)
	svc := NewXPService(repo)

	user := createTestUser(t, repo, "xp-user-1")

	require.NoError(t, svc.Award(context.Background(), user.ID, 25, models.XPActionBid, "ref-1"))
	// A retried dispatch of the same grant must not double-credit
	require.NoError(t, svc.Award(context.Background(), user.ID, 25, models.XPActionBid, "ref-1"))
	// A different reference is a separate grant
	require.NoError(t, svc.Award(context.Background(), user.ID, 10, models.XPActionBid, "ref-2"))

	total, err := svc.UserTotal(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(35), total)
}

func TestAwardFloorsNonPositivePoints(t *testing.T) {
	repo := setupTestDB(t)
	svc := NewXPService(repo)

	user := createTestUser(t, repo, "xp-user-2")
	require.NoError(t, svc.Award(context.Background(), user.ID, 0, models.XPActionReview, "ref-zero"))

	total, err := svc.UserTotal(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestPointScaling(t *testing.T) {
	usd := decimal.NewFromFloat(37.9)

	assert.Equal(t, int64(37), BidPoints(&usd))
	assert.Equal(t, int64(1), BidPoints(nil))
	assert.Equal(t, int64(87), WinPoints(&usd))
	assert.Equal(t, int64(50), WinPoints(nil))
	assert.Equal(t, int64(10), ReviewPoints())
	assert.Equal(t, int64(25), CreatePoints())
}

func TestXPLeaderboardOrdersByTotal(t *testing.T) {
	repo := setupTestDB(t)
	svc := NewXPService(repo)

	low := createTestUser(t, repo, "xp-low")
	high := createTestUser(t, repo, "xp-high")

	require.NoError(t, svc.Award(context.Background(), low.ID, 5, models.XPActionBid, "a"))
	require.NoError(t, svc.Award(context.Background(), high.ID, 40, models.XPActionBid, "b"))
	require.NoError(t, svc.Award(context.Background(), high.ID, 60, models.XPActionWin, "c"))

	ranks, err := svc.Leaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, ranks, 2)
	assert.Equal(t, high.ID, ranks[0].UserID)
	assert.Equal(t, int64(100), ranks[0].Points)
	assert.Equal(t, 1, ranks[0].Rank)
	assert.Equal(t, low.ID, ranks[1].UserID)
}
