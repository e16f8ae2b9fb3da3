package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/catireiro/backend/internal/bidding"
	"github.com/catireiro/backend/internal/model"
	"github.com/catireiro/backend/internal/money"
	"github.com/catireiro/backend/internal/notifier"
	"github.com/catireiro/backend/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxNoteLen = 500

var ErrNoteTooLong = fmt.Errorf("note exceeds %d characters", maxNoteLen)

// AcceptResult is what the seller gets back from a successful acceptance:
// the finalized listing, the accepted bid and the WhatsApp handoff.
type AcceptResult struct {
	Listing *model.Listing
	Bid     *model.Bid
	Handoff Handoff
}

type BidService interface {
	Place(ctx context.Context, listingID, buyerUID string, amount money.Money, note string) (*model.Bid, error)
	ListByListing(ctx context.Context, listingID string) ([]model.Bid, error)
	ListByBuyer(ctx context.Context, buyerUID string) ([]model.Bid, error)
	Accept(ctx context.Context, listingID, bidID, actorUID string) (*AcceptResult, error)
}

type bidService struct {
	bidRepo     repository.BidRepository
	listingRepo repository.ListingRepository
	profileRepo repository.ProfileRepository
	hub         notifier.Notifier
	logger      *zap.Logger
	countryCode string
	now         func() time.Time
}

func NewBidService(
	bidRepo repository.BidRepository,
	listingRepo repository.ListingRepository,
	profileRepo repository.ProfileRepository,
	hub notifier.Notifier,
	logger *zap.Logger,
	countryCode string,
) BidService {
	return &bidService{
		bidRepo:     bidRepo,
		listingRepo: listingRepo,
		profileRepo: profileRepo,
		hub:         hub,
		logger:      logger,
		countryCode: countryCode,
		now:         time.Now,
	}
}

func (s *bidService) Place(ctx context.Context, listingID, buyerUID string, amount money.Money, note string) (*model.Bid, error) {
	if buyerUID == "" {
		return nil, ErrForbidden
	}
	note = strings.TrimSpace(note)
	if utf8.RuneCountInString(note) > maxNoteLen {
		return nil, ErrNoteTooLong
	}

	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	listing.Status = listing.EffectiveStatus(s.now())

	if !bidding.CanSubmitBid(listing, buyerUID) {
		if buyerUID == listing.SellerUID {
			return nil, fmt.Errorf("%w: sellers cannot bid on their own listing", ErrForbidden)
		}
		return nil, fmt.Errorf("%w: listing is finalized", ErrInvalidState)
	}

	// Advisory pre-check against the snapshot the buyer saw. The repository
	// re-validates under a row lock; a concurrent higher bid still rejects.
	bids, err := s.bidRepo.ListByListing(ctx, listingID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if floor := bidding.MinimumValidBid(listing, bids); amount < floor {
		return nil, fmt.Errorf("%w: minimum is %s", ErrInvalidAmount, floor)
	}

	bid := &model.Bid{
		ID:        uuid.NewString(),
		ListingID: listingID,
		BuyerUID:  buyerUID,
		Amount:    amount,
		Note:      note,
		Status:    model.BidStatusPending,
	}
	floor, err := s.bidRepo.CreateChecked(ctx, bid)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBelowFloor):
			return nil, fmt.Errorf("%w: minimum is %s", ErrInvalidAmount, floor)
		case errors.Is(err, repository.ErrListingClosed):
			return nil, fmt.Errorf("%w: listing is finalized", ErrInvalidState)
		default:
			return nil, mapRepoErr(err)
		}
	}

	s.logger.Info("bid placed",
		zap.String("listing_id", listingID),
		zap.String("bid_id", bid.ID),
		zap.Int64("amount_cents", int64(amount)))
	s.publishSnapshot(ctx, listingID)
	return bid, nil
}

func (s *bidService) ListByListing(ctx context.Context, listingID string) ([]model.Bid, error) {
	bids, err := s.bidRepo.ListByListing(ctx, listingID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return bids, nil
}

func (s *bidService) ListByBuyer(ctx context.Context, buyerUID string) ([]model.Bid, error) {
	bids, err := s.bidRepo.ListByBuyer(ctx, buyerUID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return bids, nil
}

func (s *bidService) Accept(ctx context.Context, listingID, bidID, actorUID string) (*AcceptResult, error) {
	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	listing.Status = listing.EffectiveStatus(s.now())

	bid, err := s.bidRepo.FindByID(ctx, bidID)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	if !bidding.CanAcceptBid(listing, bid, actorUID) {
		if actorUID != listing.SellerUID {
			return nil, fmt.Errorf("%w: only the seller can accept a bid", ErrForbidden)
		}
		return nil, fmt.Errorf("%w: bid cannot be accepted", ErrInvalidState)
	}

	if err := s.bidRepo.Accept(ctx, listingID, bidID); err != nil {
		if errors.Is(err, repository.ErrNoRowsAffected) {
			// Another acceptance landed first; nothing was mutated.
			return nil, fmt.Errorf("%w: bid cannot be accepted", ErrInvalidState)
		}
		return nil, mapRepoErr(err)
	}
	listing.Status = model.ListingStatusFinalized
	bid.Status = model.BidStatusAccepted

	buyer, err := s.profileRepo.FindByUID(ctx, bid.BuyerUID)
	if err != nil {
		// The deal is already finalized; hand off with what we have.
		s.logger.Warn("buyer profile lookup failed",
			zap.String("buyer_uid", bid.BuyerUID), zap.Error(err))
		buyer = &model.Profile{UserUID: bid.BuyerUID}
	}

	s.logger.Info("bid accepted",
		zap.String("listing_id", listingID),
		zap.String("bid_id", bidID),
		zap.Int64("amount_cents", int64(bid.Amount)))
	s.publishSnapshot(ctx, listingID)

	return &AcceptResult{
		Listing: listing,
		Bid:     bid,
		Handoff: BuildHandoff(s.countryCode, buyer, listing.Title),
	}, nil
}

// publishSnapshot pushes the authoritative post-mutation bid list to every
// observer of the listing. Best effort; a failed re-query only skips the push.
func (s *bidService) publishSnapshot(ctx context.Context, listingID string) {
	bids, err := s.bidRepo.ListByListing(ctx, listingID)
	if err != nil {
		s.logger.Warn("bid snapshot re-query failed",
			zap.String("listing_id", listingID), zap.Error(err))
		return
	}
	s.hub.Publish(listingID, bids)
}
