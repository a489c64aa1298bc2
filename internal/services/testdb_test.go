package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"auction-house/internal/models"
	"auction-house/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a per-test in-memory database. cache=shared keeps every
// pooled connection on the same database; the test name keys it so tests
// cannot see each other's rows.
func setupTestDB(t *testing.T) *repository.Repository {
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Auction{},
		&models.Bid{},
		&models.PendingDelivery{},
		&models.Review{},
		&models.WeeklyLeaderboardEntry{},
		&models.XPAward{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return repository.NewRepository(db)
}

// stubPrices is a deterministic PriceNormalizer: it multiplies by a fixed
// rate and can be told to fail, globally or for specific amounts.
type stubPrices struct {
	rate        decimal.Decimal
	down        bool
	failAmounts map[string]bool
}

func fixedPrices(rate int64) *stubPrices {
	return &stubPrices{rate: decimal.NewFromInt(rate)}
}

func (s *stubPrices) USDValue(_ context.Context, amount decimal.Decimal, _ string) (decimal.Decimal, bool) {
	if s.down || s.failAmounts[amount.String()] {
		return decimal.Zero, false
	}
	return amount.Mul(s.rate), true
}

func createTestUser(t *testing.T, repo *repository.Repository, wallet string) *models.User {
	user := &models.User{
		WalletAddress: wallet,
		Nickname:      "user-" + uuid.NewString()[:8],
	}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestAuction(t *testing.T, repo *repository.Repository, hostID uint, minimumBid int64, endAt time.Time) *models.Auction {
	auction := &models.Auction{
		ID:             uuid.New(),
		ChainAuctionID: time.Now().UnixNano(),
		HostID:         hostID,
		Title:          "Test auction",
		CurrencySymbol: "BONK",
		TokenAddress:   "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA",
		MinimumBid:     decimal.NewFromInt(minimumBid),
		StartAt:        time.Now().Add(-time.Hour),
		EndAt:          endAt,
		Status:         models.AuctionStatusOngoing,
	}
	if err := repo.CreateAuction(context.Background(), auction); err != nil {
		t.Fatalf("failed to create test auction: %v", err)
	}
	return auction
}

func newTestBidService(repo *repository.Repository, prices PriceNormalizer) *BidService {
	notifications := NewNotificationService("", "")
	xp := NewXPService(repo)
	rewards := NewRewardsService(repo, notifications)
	return NewBidService(repo, prices, rewards, xp, notifications, NewAuctionLocks())
}

func newTestSettlementService(repo *repository.Repository, prices PriceNormalizer, locks *AuctionLocks) *SettlementService {
	notifications := NewNotificationService("", "")
	xp := NewXPService(repo)
	return NewSettlementService(repo, prices, xp, notifications, nil, locks)
}
