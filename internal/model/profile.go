package model

import "time"

// Profile holds public account data. The bidding core only reads it, mainly
// for the WhatsApp handoff after an accepted bid.
type Profile struct {
	UserUID    string    `gorm:"column:user_uid;primaryKey;size:128"`
	FullName   string    `gorm:"column:full_name;size:120;not null"`
	WhatsApp   string    `gorm:"column:whatsapp;size:32;not null"`
	City       string    `gorm:"size:120"`
	Reputation float64   `gorm:"column:reputation;default:5"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (Profile) TableName() string {
	return "profiles"
}
