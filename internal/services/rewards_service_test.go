package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekStart(t *testing.T) {
	// 2026-08-31 is a Monday
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"monday midnight stays", monday, monday},
		{"monday afternoon", monday.Add(15 * time.Hour), monday},
		{"wednesday", monday.AddDate(0, 0, 2), monday},
		{"sunday rolls back to monday", monday.AddDate(0, 0, 6).Add(23 * time.Hour), monday},
		{"next monday is a new week", monday.AddDate(0, 0, 7), monday.AddDate(0, 0, 7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekStart(tt.in))
		})
	}
}

func TestRecordQualifyingBidAccumulates(t *testing.T) {
	repo := setupTestDB(t)
	svc := NewRewardsService(repo, NewNotificationService("", ""))

	user := createTestUser(t, repo, "rewards-user-1")
	at := time.Now()

	require.NoError(t, svc.RecordQualifyingBid(context.Background(), user.ID, decimal.NewFromInt(20), at))
	require.NoError(t, svc.RecordQualifyingBid(context.Background(), user.ID, decimal.NewFromInt(35), at.Add(time.Hour)))

	entries, err := repo.GetWeeklyEntriesForUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].TotalUSD.Equal(decimal.NewFromInt(55)))
	assert.Equal(t, 2, entries[0].BidCount)
	assert.True(t, entries[0].WeekStart.UTC().Equal(WeekStart(at)))
}

func TestRecordQualifyingBidSeparatesWeeks(t *testing.T) {
	repo := setupTestDB(t)
	svc := NewRewardsService(repo, NewNotificationService("", ""))

	user := createTestUser(t, repo, "rewards-user-2")
	now := time.Now()

	require.NoError(t, svc.RecordQualifyingBid(context.Background(), user.ID, decimal.NewFromInt(10), now))
	require.NoError(t, svc.RecordQualifyingBid(context.Background(), user.ID, decimal.NewFromInt(10), now.AddDate(0, 0, -7)))

	entries, err := repo.GetWeeklyEntriesForUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestClaimRewardTiers(t *testing.T) {
	repo := setupTestDB(t)
	svc := NewRewardsService(repo, NewNotificationService("", ""))

	// Two weeks back, so the week has ended and claims are allowed
	at := time.Now().AddDate(0, 0, -14)

	type seeded struct {
		userID  uint
		entryID uuid.UUID
	}
	ranked := make([]seeded, 11)

	for i := 0; i < 11; i++ {
		user := createTestUser(t, repo, fmt.Sprintf("tier-user-%d", i))
		// Rank i+1 gets total 1100-100*i, strictly descending
		total := decimal.NewFromInt(int64(1100 - 100*i))
		require.NoError(t, svc.RecordQualifyingBid(context.Background(), user.ID, total, at))

		entries, err := repo.GetWeeklyEntriesForUser(context.Background(), user.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		ranked[i] = seeded{userID: user.ID, entryID: entries[0].ID}
	}

	claim := func(rank int) (decimal.Decimal, error) {
		s := ranked[rank-1]
		return svc.Claim(context.Background(), s.entryID, s.userID)
	}

	reward, err := claim(1)
	require.NoError(t, err)
	assert.True(t, reward.Equal(decimal.NewFromInt(100)))

	reward, err = claim(2)
	require.NoError(t, err)
	assert.True(t, reward.Equal(decimal.NewFromInt(50)))

	reward, err = claim(3)
	require.NoError(t, err)
	assert.True(t, reward.Equal(decimal.NewFromInt(25)))

	reward, err = claim(4)
	require.NoError(t, err)
	assert.True(t, reward.Equal(decimal.NewFromInt(10)))

	reward, err = claim(10)
	require.NoError(t, err)
	assert.True(t, reward.Equal(decimal.NewFromInt(10)))

	_, err = claim(11)
	assert.ErrorIs(t, err, ErrNotEligible)
}

func TestClaimGuards(t *testing.T) {
	repo := setupTestDB(t)
	svc := NewRewardsService(repo, NewNotificationService("", ""))

	owner := createTestUser(t, repo, "claim-owner")
	stranger := createTestUser(t, repo, "claim-stranger")

	// An entry in the still-running current week
	require.NoError(t, svc.RecordQualifyingBid(context.Background(), owner.ID, decimal.NewFromInt(500), time.Now()))
	entries, err := repo.GetWeeklyEntriesForUser(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	currentEntry := entries[0].ID

	_, err = svc.Claim(context.Background(), uuid.New(), owner.ID)
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, err = svc.Claim(context.Background(), currentEntry, stranger.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.Claim(context.Background(), currentEntry, owner.ID)
	assert.ErrorIs(t, err, ErrWeekNotEnded)

	// A finished week claims once, then conflicts
	past := time.Now().AddDate(0, 0, -14)
	require.NoError(t, svc.RecordQualifyingBid(context.Background(), owner.ID, decimal.NewFromInt(500), past))
	entries, err = repo.GetWeeklyEntriesForUser(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var pastEntry uuid.UUID
	for _, e := range entries {
		if e.ID != currentEntry {
			pastEntry = e.ID
		}
	}

	reward, err := svc.Claim(context.Background(), pastEntry, owner.ID)
	require.NoError(t, err)
	assert.True(t, reward.Equal(decimal.NewFromInt(100)))

	_, err = svc.Claim(context.Background(), pastEntry, owner.ID)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)

	entry, err := repo.GetWeeklyEntryByID(context.Background(), pastEntry)
	require.NoError(t, err)
	assert.True(t, entry.Claimed)
	require.NotNil(t, entry.RewardValue)
	assert.True(t, entry.RewardValue.Equal(decimal.NewFromInt(100)))
	assert.NotNil(t, entry.ClaimedAt)
}

func TestWeeklyLeaderboardRanksByTotal(t *testing.T) {
	repo := setupTestDB(t)
	svc := NewRewardsService(repo, NewNotificationService("", ""))

	at := time.Now()
	low := createTestUser(t, repo, "board-low")
	high := createTestUser(t, repo, "board-high")

	require.NoError(t, svc.RecordQualifyingBid(context.Background(), low.ID, decimal.NewFromInt(10), at))
	require.NoError(t, svc.RecordQualifyingBid(context.Background(), high.ID, decimal.NewFromInt(90), at))

	ranks, err := svc.WeeklyLeaderboard(context.Background(), at, 10)
	require.NoError(t, err)
	require.Len(t, ranks, 2)
	assert.Equal(t, 1, ranks[0].Rank)
	assert.Equal(t, high.ID, ranks[0].UserID)
	assert.Equal(t, low.ID, ranks[1].UserID)
}
