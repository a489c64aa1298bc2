package handlers

import (
	"net/http"
	"strconv"
	"time"

	"auction-house/internal/auth"
	"auction-house/internal/models"
	"auction-house/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RewardsHandler struct {
	rewards *services.RewardsService
	xp      *services.XPService
}

func NewRewardsHandler(rewards *services.RewardsService, xp *services.XPService) *RewardsHandler {
	return &RewardsHandler{rewards: rewards, xp: xp}
}

// GetMyEntries returns the caller's weekly leaderboard entries
// GET /api/rewards/entries
func (h *RewardsHandler) GetMyEntries(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	entries, err := h.rewards.EntriesForUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// Claim finalizes one weekly entry for the caller
// POST /api/rewards/entries/:id/claim
func (h *RewardsHandler) Claim(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}

	reward, err := h.rewards.Claim(c.Request.Context(), entryID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ClaimResponse{
		EntryID:      entryID,
		RewardAmount: reward,
	})
}

// WeeklyLeaderboard returns the ranked weekly leaderboard. The week defaults
// to the current one; ?week=RFC3339 selects another.
// GET /api/leaderboard/weekly
func (h *RewardsHandler) WeeklyLeaderboard(c *gin.Context) {
	weekOf := time.Now()
	if weekStr := c.Query("week"); weekStr != "" {
		parsed, err := time.Parse(time.RFC3339, weekStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "week must be RFC3339"})
			return
		}
		weekOf = parsed
	}

	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	ranks, err := h.rewards.WeeklyLeaderboard(c.Request.Context(), weekOf, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"week_start":  services.WeekStart(weekOf),
		"leaderboard": ranks,
	})
}

// XPLeaderboard returns the progression-point leaderboard
// GET /api/leaderboard/xp
func (h *RewardsHandler) XPLeaderboard(c *gin.Context) {
	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	ranks, err := h.xp.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": ranks})
}
