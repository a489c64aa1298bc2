package handlers

import (
	"errors"
	"net/http"

	"auction-house/internal/services"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// reasonCodes maps service rejections to the stable codes callers branch on.
// A rejected bid in particular must distinguish BelowMinimum from NotHighBid:
// the corrective action differs.
var reasonCodes = map[error]struct {
	status int
	code   string
}{
	services.ErrAuctionNotFound:  {http.StatusNotFound, "NotFound"},
	services.ErrUserNotFound:     {http.StatusNotFound, "NotFound"},
	services.ErrEntryNotFound:    {http.StatusNotFound, "NotFound"},
	services.ErrDeliveryNotFound: {http.StatusNotFound, "NotFound"},

	services.ErrInvalidAmount: {http.StatusBadRequest, "InvalidAmount"},
	services.ErrInvalidRating: {http.StatusBadRequest, "InvalidRating"},

	services.ErrAuctionClosed:    {http.StatusConflict, "AuctionClosed"},
	services.ErrBelowMinimum:     {http.StatusConflict, "BelowMinimum"},
	services.ErrNotHighBid:       {http.StatusConflict, "NotHighBid"},
	services.ErrAlreadySettled:   {http.StatusConflict, "AlreadySettled"},
	services.ErrAlreadyDelivered: {http.StatusConflict, "AlreadyDelivered"},
	services.ErrNotDelivered:     {http.StatusConflict, "NotDelivered"},
	services.ErrAlreadyReviewed:  {http.StatusConflict, "AlreadyReviewed"},
	services.ErrAlreadyClaimed:   {http.StatusConflict, "AlreadyClaimed"},
	services.ErrWeekNotEnded:     {http.StatusConflict, "WeekNotEnded"},
	services.ErrNotEligible:      {http.StatusConflict, "NotEligible"},

	services.ErrUnauthorized: {http.StatusForbidden, "Unauthorized"},
	services.ErrNotOwner:     {http.StatusForbidden, "NotOwner"},

	services.ErrUnresolvedBidder: {http.StatusUnprocessableEntity, "UnresolvedBidder"},
}

// respondServiceError writes a service error as a reason-coded response.
// Unrecognized errors are internal and not leaked to the caller.
func respondServiceError(c *gin.Context, err error) {
	for sentinel, mapping := range reasonCodes {
		if errors.Is(err, sentinel) {
			c.JSON(mapping.status, gin.H{
				"code":  mapping.code,
				"error": err.Error(),
			})
			return
		}
	}

	log.Errorf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
