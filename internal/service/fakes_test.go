package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/catireiro/backend/internal/bidding"
	"github.com/catireiro/backend/internal/model"
	"github.com/catireiro/backend/internal/money"
	"github.com/catireiro/backend/internal/repository"
)

var errStoreDown = errors.New("store down")

// In-memory repository fakes. They mirror the store-side guarantees the gorm
// implementations rely on: guarded status updates and the locked floor
// re-check on bid insert.

type fakeListingRepo struct {
	listings map[string]*model.Listing
	failing  bool

	statusUpdates []model.ListingStatus
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{listings: make(map[string]*model.Listing)}
}

func (r *fakeListingRepo) Create(_ context.Context, listing *model.Listing) error {
	if r.failing {
		return errStoreDown
	}
	cp := *listing
	r.listings[listing.ID] = &cp
	return nil
}

func (r *fakeListingRepo) FindByID(_ context.Context, id string) (*model.Listing, error) {
	if r.failing {
		return nil, errStoreDown
	}
	l, ok := r.listings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *fakeListingRepo) List(_ context.Context, category model.Category, limit, offset int) ([]model.Listing, int64, error) {
	if r.failing {
		return nil, 0, errStoreDown
	}
	var out []model.Listing
	for _, l := range r.listings {
		if category == "" || l.Category == category {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (r *fakeListingRepo) ListBySeller(_ context.Context, sellerUID string) ([]model.Listing, error) {
	if r.failing {
		return nil, errStoreDown
	}
	var out []model.Listing
	for _, l := range r.listings {
		if l.SellerUID == sellerUID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeListingRepo) Update(_ context.Context, listing *model.Listing) error {
	if r.failing {
		return errStoreDown
	}
	if _, ok := r.listings[listing.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *listing
	r.listings[listing.ID] = &cp
	return nil
}

func (r *fakeListingRepo) UpdateStatus(_ context.Context, id string, from, to model.ListingStatus) error {
	if r.failing {
		return errStoreDown
	}
	l, ok := r.listings[id]
	if !ok || l.Status != from {
		return repository.ErrNoRowsAffected
	}
	l.Status = to
	r.statusUpdates = append(r.statusUpdates, to)
	return nil
}

func (r *fakeListingRepo) SetDB(*gorm.DB) {}

type fakeBidRepo struct {
	listings *fakeListingRepo
	bids     map[string]*model.Bid
	failing  bool
}

func newFakeBidRepo(listings *fakeListingRepo) *fakeBidRepo {
	return &fakeBidRepo{listings: listings, bids: make(map[string]*model.Bid)}
}

func (r *fakeBidRepo) CreateChecked(_ context.Context, bid *model.Bid) (money.Money, error) {
	if r.failing {
		return 0, errStoreDown
	}
	listing, ok := r.listings.listings[bid.ListingID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	if listing.Status == model.ListingStatusFinalized {
		return 0, repository.ErrListingClosed
	}
	existing, _ := r.ListByListing(context.Background(), bid.ListingID)
	floor := bidding.MinimumValidBid(listing, existing)
	if bid.Amount < floor {
		return floor, repository.ErrBelowFloor
	}
	if bid.CreatedAt.IsZero() {
		bid.CreatedAt = time.Now()
	}
	cp := *bid
	r.bids[bid.ID] = &cp
	return floor, nil
}

func (r *fakeBidRepo) FindByID(_ context.Context, id string) (*model.Bid, error) {
	if r.failing {
		return nil, errStoreDown
	}
	b, ok := r.bids[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBidRepo) ListByListing(_ context.Context, listingID string) ([]model.Bid, error) {
	if r.failing {
		return nil, errStoreDown
	}
	var out []model.Bid
	for _, b := range r.bids {
		if b.ListingID == listingID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeBidRepo) ListByBuyer(_ context.Context, buyerUID string) ([]model.Bid, error) {
	if r.failing {
		return nil, errStoreDown
	}
	var out []model.Bid
	for _, b := range r.bids {
		if b.BuyerUID == buyerUID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBidRepo) Accept(_ context.Context, listingID, bidID string) error {
	if r.failing {
		return errStoreDown
	}
	b, ok := r.bids[bidID]
	if !ok || b.ListingID != listingID || b.Status != model.BidStatusPending {
		return repository.ErrNoRowsAffected
	}
	l, ok := r.listings.listings[listingID]
	if !ok || l.Status == model.ListingStatusFinalized {
		return repository.ErrNoRowsAffected
	}
	b.Status = model.BidStatusAccepted
	l.Status = model.ListingStatusFinalized
	return nil
}

func (r *fakeBidRepo) SetDB(*gorm.DB) {}

type fakeProfileRepo struct {
	profiles map[string]*model.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*model.Profile)}
}

func (r *fakeProfileRepo) FindByUID(_ context.Context, userUID string) (*model.Profile, error) {
	p, ok := r.profiles[userUID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) Upsert(_ context.Context, profile *model.Profile) error {
	cp := *profile
	r.profiles[profile.UserUID] = &cp
	return nil
}

func (r *fakeProfileRepo) SetDB(*gorm.DB) {}
