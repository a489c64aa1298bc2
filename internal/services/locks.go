package services

import (
	"sync"

	"github.com/google/uuid"
)

// AuctionLocks serializes bid acceptance and settlement per auction. Bid
// placement and settlement on the same auction must never interleave; auctions
// are independent units of concurrency, so there is one mutex per auction id
// and no cross-auction locking.
type AuctionLocks struct {
	locks sync.Map // uuid.UUID -> *sync.Mutex
}

func NewAuctionLocks() *AuctionLocks {
	return &AuctionLocks{}
}

// Get returns the mutex for one auction, creating it on first use
func (a *AuctionLocks) Get(auctionID uuid.UUID) *sync.Mutex {
	v, _ := a.locks.LoadOrStore(auctionID, &sync.Mutex{})
	return v.(*sync.Mutex)
}
