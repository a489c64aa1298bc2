package services

import "errors"

// Caller-visible rejection reasons. Handlers translate these into HTTP reason
// codes; anything else surfacing from a service is an internal error.
var (
	// not-found
	ErrAuctionNotFound  = errors.New("auction not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrEntryNotFound    = errors.New("leaderboard entry not found")
	ErrDeliveryNotFound = errors.New("no pending delivery for auction")

	// validation
	ErrInvalidAmount = errors.New("invalid bid amount")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// conflict
	ErrAuctionClosed    = errors.New("auction is closed")
	ErrBelowMinimum     = errors.New("bid is below the minimum bid")
	ErrNotHighBid       = errors.New("bid does not exceed the current highest bid")
	ErrAlreadySettled   = errors.New("auction already settled")
	ErrAlreadyDelivered = errors.New("delivery already confirmed")
	ErrNotDelivered     = errors.New("delivery not confirmed yet")
	ErrAlreadyReviewed  = errors.New("auction already reviewed")
	ErrAlreadyClaimed   = errors.New("reward already claimed")
	ErrWeekNotEnded     = errors.New("week has not ended yet")
	ErrNotEligible      = errors.New("rank is not eligible for a reward")

	// authorization
	ErrUnauthorized = errors.New("caller is not allowed to perform this action")
	ErrNotOwner     = errors.New("entry does not belong to the caller")

	// settlement
	ErrUnresolvedBidder = errors.New("authoritative bidder could not be resolved to a user")
)
