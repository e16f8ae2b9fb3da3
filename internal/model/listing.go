package model

import (
	"time"

	"github.com/catireiro/backend/internal/money"
)

type ListingStatus string

const (
	ListingStatusActive         ListingStatus = "active"
	ListingStatusAwaitingChoice ListingStatus = "awaiting_choice"
	ListingStatusFinalized      ListingStatus = "finalized"
)

type Category string

const (
	CategoryPhones      Category = "phones"
	CategoryCars        Category = "cars"
	CategoryTrucks      Category = "trucks"
	CategoryMotorcycles Category = "motorcycles"
	CategoryOther       Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryPhones, CategoryCars, CategoryTrucks, CategoryMotorcycles, CategoryOther:
		return true
	}
	return false
}

type Listing struct {
	ID            string        `gorm:"primaryKey;size:36"`
	SellerUID     string        `gorm:"column:seller_uid;size:128;index;not null"`
	Title         string        `gorm:"size:120;not null"`
	Description   string        `gorm:"type:text"`
	Category      Category      `gorm:"size:32;index;not null"`
	UrgencyReason string        `gorm:"column:urgency_reason;size:255"`
	MinimumPrice  money.Money   `gorm:"column:minimum_price_cents;not null"`
	DurationDays  int           `gorm:"column:duration_days;not null"`
	Deadline      time.Time     `gorm:"column:deadline;not null"` // set once at creation, never updated
	Status        ListingStatus `gorm:"size:32;index;not null"`
	CreatedAt     time.Time     `gorm:"autoCreateTime"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime"`
}

func (Listing) TableName() string {
	return "listings"
}

// Expired reports whether the deadline has passed at the given instant.
func (l *Listing) Expired(now time.Time) bool {
	return !now.Before(l.Deadline)
}

// EffectiveStatus derives awaiting_choice for an expired active listing.
// The store has no scheduler, so the transition is computed on read.
func (l *Listing) EffectiveStatus(now time.Time) ListingStatus {
	if l.Status == ListingStatusActive && l.Expired(now) {
		return ListingStatusAwaitingChoice
	}
	return l.Status
}
