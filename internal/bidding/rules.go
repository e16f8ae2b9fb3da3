// Package bidding contains the pure rules for the bid workflow: the minimum
// valid amount, the leading bid, and whether an actor may place or accept a
// bid. Nothing here touches the database; callers pass in the listing and its
// current bids and map violations to typed errors.
package bidding

import (
	"github.com/catireiro/backend/internal/model"
	"github.com/catireiro/backend/internal/money"
)

// LeadingBid returns the bid with the highest amount, the earliest one on a
// tie. Nil when there are no bids. The leading bid is informational; the
// seller may accept any pending bid.
func LeadingBid(bids []model.Bid) *model.Bid {
	var lead *model.Bid
	for i := range bids {
		b := &bids[i]
		if lead == nil || b.Amount > lead.Amount ||
			(b.Amount == lead.Amount && b.CreatedAt.Before(lead.CreatedAt)) {
			lead = b
		}
	}
	return lead
}

// MinimumValidBid is the floor a new bid must meet: the listing's minimum
// price, or one centavo above the leading bid once any bid exists.
func MinimumValidBid(listing *model.Listing, bids []model.Bid) money.Money {
	lead := LeadingBid(bids)
	if lead == nil {
		return listing.MinimumPrice
	}
	return listing.MinimumPrice.Max(lead.Amount + money.SmallestUnit)
}

// CanSubmitBid reports whether the actor may bid on the listing. Sellers
// cannot bid on their own listings and finalized listings take no more bids.
// An expired listing awaiting the seller's choice still accepts bids.
func CanSubmitBid(listing *model.Listing, actorUID string) bool {
	if actorUID == listing.SellerUID {
		return false
	}
	return listing.Status != model.ListingStatusFinalized
}

// CanAcceptBid reports whether the actor may accept the bid. Only the seller
// may accept, only a pending bid of their own listing, and only while the
// listing is not yet finalized. The seller does not have to wait for the
// deadline.
func CanAcceptBid(listing *model.Listing, bid *model.Bid, actorUID string) bool {
	if actorUID != listing.SellerUID {
		return false
	}
	if bid.ListingID != listing.ID {
		return false
	}
	if bid.Status != model.BidStatusPending {
		return false
	}
	return listing.Status != model.ListingStatusFinalized
}
