package model

import (
	"time"

	"github.com/catireiro/backend/internal/money"
)

type BidStatus string

const (
	BidStatusPending  BidStatus = "pending"
	BidStatusAccepted BidStatus = "accepted"
)

type Bid struct {
	ID        string      `gorm:"primaryKey;size:36"`
	ListingID string      `gorm:"column:listing_id;size:36;index;not null"`
	BuyerUID  string      `gorm:"column:buyer_uid;size:128;index;not null"`
	Amount    money.Money `gorm:"column:amount_cents;not null"`
	Note      string      `gorm:"size:500"` // shown to the listing's seller only
	Status    BidStatus   `gorm:"size:32;not null"`
	CreatedAt time.Time   `gorm:"autoCreateTime"`
}

func (Bid) TableName() string {
	return "bids"
}
