package handlers

import (
	"net/http"

	"auction-house/internal/auth"
	"auction-house/internal/models"
	"auction-house/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DeliveryHandler struct {
	delivery *services.DeliveryService
}

func NewDeliveryHandler(delivery *services.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{delivery: delivery}
}

// MarkDelivered confirms delivery as the auction host
// POST /api/auctions/:id/delivered
func (h *DeliveryHandler) MarkDelivered(c *gin.Context) {
	hostID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid auction id"})
		return
	}

	delivery, err := h.delivery.MarkDelivered(c.Request.Context(), auctionID, hostID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, delivery)
}

// SubmitReview records the winner's review of the host
// POST /api/auctions/:id/review
func (h *DeliveryHandler) SubmitReview(c *gin.Context) {
	winnerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid auction id"})
		return
	}

	var req models.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.delivery.SubmitReview(c.Request.Context(), auctionID, winnerID, req.Rating, req.Comment)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}
