package handlers

import (
	"net/http"
	"strconv"

	"auction-house/internal/auth"
	"auction-house/internal/jobs"
	"auction-house/internal/models"
	"auction-house/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AuctionHandler struct {
	auctions   *services.AuctionService
	bids       *services.BidService
	settlement *services.SettlementService
	bidders    jobs.BidderSource
}

func NewAuctionHandler(
	auctions *services.AuctionService,
	bids *services.BidService,
	settlement *services.SettlementService,
	bidders jobs.BidderSource,
) *AuctionHandler {
	return &AuctionHandler{
		auctions:   auctions,
		bids:       bids,
		settlement: settlement,
		bidders:    bidders,
	}
}

// CreateAuction opens a new auction for the authenticated host
// POST /api/auctions
func (h *AuctionHandler) CreateAuction(c *gin.Context) {
	hostID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	auction, err := h.auctions.CreateAuction(c.Request.Context(), hostID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, auction)
}

// ListAuctions retrieves auctions, optionally filtered by status
// GET /api/auctions?status=ONGOING&limit=20&offset=0
func (h *AuctionHandler) ListAuctions(c *gin.Context) {
	limit, offset := parsePagination(c)

	var status models.AuctionStatus
	switch c.Query("status") {
	case "ONGOING":
		status = models.AuctionStatusOngoing
	case "ENDED":
		status = models.AuctionStatusEnded
	}

	auctions, total, err := h.auctions.ListAuctions(c.Request.Context(), status, limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"auctions": auctions,
		"total":    total,
	})
}

// GetAuction retrieves one auction with its bid ledger
// GET /api/auctions/:id
func (h *AuctionHandler) GetAuction(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid auction id"})
		return
	}

	auction, bids, err := h.auctions.GetAuction(c.Request.Context(), auctionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	highest, err := h.auctions.CurrentHighest(c.Request.Context(), auctionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"auction":         auction,
		"bids":            bids,
		"current_highest": highest,
	})
}

// GetAuctionByChainID resolves an on-chain auction id to the local record
// GET /api/auctions/chain/:chainId
func (h *AuctionHandler) GetAuctionByChainID(c *gin.Context) {
	chainID, err := strconv.ParseInt(c.Param("chainId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chain auction id"})
		return
	}

	auction, err := h.auctions.GetAuctionByChainID(c.Request.Context(), chainID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, auction)
}

// PlaceBid submits a bid on an auction
// POST /api/auctions/:id/bids
func (h *AuctionHandler) PlaceBid(c *gin.Context) {
	bidderID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid auction id"})
		return
	}

	var req models.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "InvalidAmount", "error": "amount is not a valid number"})
		return
	}

	response, err := h.bids.PlaceBid(c.Request.Context(), auctionID, bidderID, amount, models.BidOrigin(req.Origin))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Settle closes an auction as its host. The authoritative bidder list comes
// from the request body when provided, otherwise from the chain.
// POST /api/auctions/:id/settle
func (h *AuctionHandler) Settle(c *gin.Context) {
	hostID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	h.settle(c, services.SettleCaller{UserID: hostID})
}

// SettleAsWorker closes an auction under the trusted worker identity
// POST /worker/auctions/:id/settle
func (h *AuctionHandler) SettleAsWorker(c *gin.Context) {
	if !auth.IsWorker(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	h.settle(c, services.SettleCaller{IsWorker: true})
}

func (h *AuctionHandler) settle(c *gin.Context, caller services.SettleCaller) {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid auction id"})
		return
	}

	var req models.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bidders := req.Bidders
	if bidders == nil {
		auction, _, err := h.auctions.GetAuction(c.Request.Context(), auctionID)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		chainBids, err := h.bidders.GetBidders(c.Request.Context(), auction.ChainAuctionID)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch authoritative bidder list"})
			return
		}

		bidders = make([]models.AuthoritativeBidder, len(chainBids))
		for i, b := range chainBids {
			bidders[i] = models.AuthoritativeBidder{
				WalletAddress: b.WalletAddress,
				Amount:        b.Amount.String(),
			}
		}
	}

	result, err := h.settlement.Settle(c.Request.Context(), auctionID, caller, bidders)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// parsePagination reads limit/offset query parameters with sane bounds
func parsePagination(c *gin.Context) (limit, offset int) {
	limit = 20
	offset = 0

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	return limit, offset
}
