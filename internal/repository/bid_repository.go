package repository

import (
	"context"
	"errors"

	"github.com/catireiro/backend/internal/bidding"
	"github.com/catireiro/backend/internal/model"
	"github.com/catireiro/backend/internal/money"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrBelowFloor is returned when a bid lost the race against a concurrent
// higher bid: it cleared the floor the caller saw but not the one re-checked
// under lock.
var ErrBelowFloor = errors.New("bid below current floor")

// ErrListingClosed is returned when the listing was finalized between the
// caller's read and the insert.
var ErrListingClosed = errors.New("listing no longer accepts bids")

type BidRepository interface {
	// CreateChecked inserts the bid after re-validating the floor against the
	// listing row locked for update. Returns the authoritative floor at
	// commit time so callers can surface it on rejection.
	CreateChecked(ctx context.Context, bid *model.Bid) (money.Money, error)
	FindByID(ctx context.Context, id string) (*model.Bid, error)
	ListByListing(ctx context.Context, listingID string) ([]model.Bid, error)
	ListByBuyer(ctx context.Context, buyerUID string) ([]model.Bid, error)
	// Accept marks the bid accepted and the listing finalized in one
	// transaction. Both updates are guarded; if either matches no row the
	// whole transaction rolls back with ErrNoRowsAffected.
	Accept(ctx context.Context, listingID, bidID string) error
	SetDB(db *gorm.DB)
}

type bidRepository struct {
	db *gorm.DB
}

func NewBidRepository(db *gorm.DB) BidRepository {
	return &bidRepository{db: db}
}

func (r *bidRepository) CreateChecked(ctx context.Context, bid *model.Bid) (money.Money, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var floor money.Money
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var listing model.Listing
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&listing, "id = ?", bid.ListingID).Error; err != nil {
			return err
		}
		if listing.Status == model.ListingStatusFinalized {
			return ErrListingClosed
		}
		var bids []model.Bid
		if err := tx.
			Where("listing_id = ?", bid.ListingID).
			Find(&bids).Error; err != nil {
			return err
		}
		floor = bidding.MinimumValidBid(&listing, bids)
		if bid.Amount < floor {
			return ErrBelowFloor
		}
		return tx.Create(bid).Error
	})
	return floor, err
}

func (r *bidRepository) FindByID(ctx context.Context, id string) (*model.Bid, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var bid model.Bid
	if err := r.db.WithContext(ctx).First(&bid, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &bid, nil
}

func (r *bidRepository) ListByListing(ctx context.Context, listingID string) ([]model.Bid, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var bids []model.Bid
	if err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("amount_cents DESC, created_at ASC").
		Find(&bids).Error; err != nil {
		return nil, err
	}
	return bids, nil
}

func (r *bidRepository) ListByBuyer(ctx context.Context, buyerUID string) ([]model.Bid, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var bids []model.Bid
	if err := r.db.WithContext(ctx).
		Where("buyer_uid = ?", buyerUID).
		Order("created_at DESC").
		Find(&bids).Error; err != nil {
		return nil, err
	}
	return bids, nil
}

func (r *bidRepository) Accept(ctx context.Context, listingID, bidID string) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Bid{}).
			Where("id = ? AND listing_id = ? AND status = ?", bidID, listingID, model.BidStatusPending).
			Update("status", model.BidStatusAccepted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNoRowsAffected
		}
		res = tx.Model(&model.Listing{}).
			Where("id = ? AND status <> ?", listingID, model.ListingStatusFinalized).
			Update("status", model.ListingStatusFinalized)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNoRowsAffected
		}
		return nil
	})
}

func (r *bidRepository) SetDB(db *gorm.DB) {
	r.db = db
}
