package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/catireiro/backend/internal/model"
	"github.com/catireiro/backend/internal/money"
	"github.com/catireiro/backend/internal/notifier"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type bidFixture struct {
	listings *fakeListingRepo
	bids     *fakeBidRepo
	profiles *fakeProfileRepo
	hub      *notifier.Hub
	svc      *bidService
}

func newBidFixture(t *testing.T) *bidFixture {
	t.Helper()
	listings := newFakeListingRepo()
	bids := newFakeBidRepo(listings)
	profiles := newFakeProfileRepo()
	hub := notifier.NewHub()
	svc := NewBidService(bids, listings, profiles, hub, zaptest.NewLogger(t), "55").(*bidService)
	svc.now = func() time.Time { return testNow }
	return &bidFixture{listings: listings, bids: bids, profiles: profiles, hub: hub, svc: svc}
}

func (f *bidFixture) addListing(minPrice float64, deadlineOffset time.Duration) *model.Listing {
	l := &model.Listing{
		ID:           "listing-1",
		SellerUID:    "seller-1",
		Title:        "iPhone 15 Pro Max",
		Category:     model.CategoryPhones,
		MinimumPrice: money.FromFloat(minPrice),
		DurationDays: 7,
		Deadline:     testNow.Add(deadlineOffset),
		Status:       model.ListingStatusActive,
	}
	f.listings.listings[l.ID] = l
	return l
}

func (f *bidFixture) place(t *testing.T, buyer string, amount float64, offset time.Duration) *model.Bid {
	t.Helper()
	bid, err := f.svc.Place(context.Background(), "listing-1", buyer, money.FromFloat(amount), "")
	require.NoError(t, err)
	f.bids.bids[bid.ID].CreatedAt = testNow.Add(offset)
	return bid
}

func TestPlaceFirstBidAtMinimumPrice(t *testing.T) {
	f := newBidFixture(t)
	f.addListing(1000, 24*time.Hour)

	bid, err := f.svc.Place(context.Background(), "listing-1", "buyer-1", money.FromFloat(1000), "posso buscar hoje")
	require.NoError(t, err)
	assert.Equal(t, model.BidStatusPending, bid.Status)
	assert.Equal(t, money.FromFloat(1000), bid.Amount)
	assert.NotEmpty(t, bid.ID)
}

func TestPlaceBelowMinimumPrice(t *testing.T) {
	f := newBidFixture(t)
	f.addListing(1000, 24*time.Hour)

	_, err := f.svc.Place(context.Background(), "listing-1", "buyer-1", money.FromFloat(999.99), "")
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestPlaceBelowRaisedFloor(t *testing.T) {
	f := newBidFixture(t)
	f.addListing(500, 24*time.Hour)
	f.place(t, "buyer-1", 700, 0)
	f.place(t, "buyer-2", 900, time.Minute)

	// Floor is now 900.01; 899.99 is rejected, 900.01 clears it.
	_, err := f.svc.Place(context.Background(), "listing-1", "buyer-3", money.FromFloat(899.99), "")
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = f.svc.Place(context.Background(), "listing-1", "buyer-3", money.FromFloat(900.01), "")
	require.NoError(t, err)
}

func TestPlaceBySellerForbidden(t *testing.T) {
	f := newBidFixture(t)
	f.addListing(1000, 24*time.Hour)

	_, err := f.svc.Place(context.Background(), "listing-1", "seller-1", money.FromFloat(1500), "")
	require.ErrorIs(t, err, ErrForbidden)
}

func TestPlaceAfterDeadlineStillAllowed(t *testing.T) {
	f := newBidFixture(t)
	f.addListing(1000, -time.Hour)

	_, err := f.svc.Place(context.Background(), "listing-1", "buyer-1", money.FromFloat(1000), "")
	require.NoError(t, err)
}

func TestPlaceOnFinalizedListing(t *testing.T) {
	f := newBidFixture(t)
	l := f.addListing(1000, 24*time.Hour)
	l.Status = model.ListingStatusFinalized

	_, err := f.svc.Place(context.Background(), "listing-1", "buyer-1", money.FromFloat(1500), "")
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestPlaceNoteLength(t *testing.T) {
	// The limit is 500 characters, not bytes; accented notes are routine.
	tests := []struct {
		name    string
		note    string
		wantErr bool
	}{
		{"ascii at limit", strings.Repeat("a", 500), false},
		{"ascii over limit", strings.Repeat("a", 501), true},
		{"accented within limit", strings.Repeat("á", 400), false},
		{"accented at limit", strings.Repeat("á", 500), false},
		{"accented over limit", strings.Repeat("á", 501), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBidFixture(t)
			f.addListing(1000, 24*time.Hour)

			_, err := f.svc.Place(context.Background(), "listing-1", "buyer-1", money.FromFloat(1000), tt.note)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNoteTooLong)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestPlaceUnknownListing(t *testing.T) {
	f := newBidFixture(t)

	_, err := f.svc.Place(context.Background(), "missing", "buyer-1", money.FromFloat(1000), "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPlaceStoreDownIsTransient(t *testing.T) {
	f := newBidFixture(t)
	f.addListing(1000, 24*time.Hour)
	f.bids.failing = true

	_, err := f.svc.Place(context.Background(), "listing-1", "buyer-1", money.FromFloat(1000), "")
	require.ErrorIs(t, err, ErrTransient)
}

func TestPlacePublishesFullSnapshot(t *testing.T) {
	f := newBidFixture(t)
	f.addListing(1000, 24*time.Hour)

	var snapshots [][]model.Bid
	f.hub.Subscribe("listing-1", func(bids []model.Bid) { snapshots = append(snapshots, bids) })

	f.place(t, "buyer-1", 1000, 0)
	f.place(t, "buyer-2", 1100, time.Minute)

	require.Len(t, snapshots, 2)
	assert.Len(t, snapshots[0], 1)
	assert.Len(t, snapshots[1], 2)
	// Ordered amount desc.
	assert.Equal(t, money.FromFloat(1100), snapshots[1][0].Amount)
}

func TestAcceptAnyPendingBid(t *testing.T) {
	f := newBidFixture(t)
	f.addListing(500, 24*time.Hour)
	f.profiles.profiles["buyer-2"] = &model.Profile{
		UserUID:  "buyer-2",
		FullName: "Carlos Lima",
		WhatsApp: "(34) 99888-7766",
		City:     "Uberlândia, MG",
	}
	f.place(t, "buyer-1", 700, 0)
	low := f.place(t, "buyer-2", 900, time.Minute)
	f.place(t, "buyer-3", 901, 2*time.Minute)

	// The seller picks a bid that is not the leading one.
	res, err := f.svc.Accept(context.Background(), "listing-1", low.ID, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, model.ListingStatusFinalized, res.Listing.Status)
	assert.Equal(t, model.BidStatusAccepted, res.Bid.Status)
	assert.Equal(t, "Carlos Lima", res.Handoff.BuyerName)
	assert.Contains(t, res.Handoff.WhatsAppURL, "phone=5534998887766")
	assert.Contains(t, res.Handoff.Message, "iPhone 15 Pro Max")

	// Exactly one accepted bid remains.
	bids, err := f.svc.ListByListing(context.Background(), "listing-1")
	require.NoError(t, err)
	accepted := 0
	for _, b := range bids {
		if b.Status == model.BidStatusAccepted {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted)
}

func TestSecondAcceptFails(t *testing.T) {
	f := newBidFixture(t)
	f.addListing(500, 24*time.Hour)
	first := f.place(t, "buyer-1", 700, 0)
	second := f.place(t, "buyer-2", 900, time.Minute)

	_, err := f.svc.Accept(context.Background(), "listing-1", first.ID, "seller-1")
	require.NoError(t, err)

	_, err = f.svc.Accept(context.Background(), "listing-1", second.ID, "seller-1")
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestAcceptByNonSellerForbidden(t *testing.T) {
	f := newBidFixture(t)
	f.addListing(500, 24*time.Hour)
	bid := f.place(t, "buyer-1", 700, 0)

	_, err := f.svc.Accept(context.Background(), "listing-1", bid.ID, "buyer-1")
	require.ErrorIs(t, err, ErrForbidden)
}

func TestAcceptAfterDeadline(t *testing.T) {
	f := newBidFixture(t)
	f.addListing(500, time.Hour)
	bid := f.place(t, "buyer-1", 700, 0)

	f.svc.now = func() time.Time { return testNow.Add(2 * time.Hour) }
	res, err := f.svc.Accept(context.Background(), "listing-1", bid.ID, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, model.ListingStatusFinalized, res.Listing.Status)
}

func TestAcceptWithMissingProfileStillFinalizes(t *testing.T) {
	f := newBidFixture(t)
	f.addListing(500, 24*time.Hour)
	bid := f.place(t, "buyer-1", 700, 0)

	res, err := f.svc.Accept(context.Background(), "listing-1", bid.ID, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, "Comprador", res.Handoff.BuyerName)
	assert.Contains(t, res.Handoff.WhatsAppURL, "phone=55&")
}

func TestAcceptOnFinalizedListingMutatesNothing(t *testing.T) {
	f := newBidFixture(t)
	f.addListing(500, 24*time.Hour)
	bid := f.place(t, "buyer-1", 700, 0)

	f.listings.listings["listing-1"].Status = model.ListingStatusFinalized

	_, err := f.svc.Accept(context.Background(), "listing-1", bid.ID, "seller-1")
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, model.BidStatusPending, f.bids.bids[bid.ID].Status)
}
