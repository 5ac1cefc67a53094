package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TrackedPayment is the durable per-campaign reference to the donation
// currently being followed. At most one row exists per campaign.
type TrackedPayment struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	DeletedAt       gorm.DeletedAt    `gorm:"index" json:"-"`
	CampaignID      string            `gorm:"uniqueIndex;not null" json:"campaign_id"`
	DonationID      string            `gorm:"index;not null" json:"donation_id"`
	Status          string            `gorm:"default:PENDING" json:"status"`
	Tracking        bool              `json:"tracking"`
	TransactionCode *string           `json:"transaction_code,omitempty"`
	CheckedAt       *time.Time        `json:"checked_at,omitempty"`
	LastPayload     datatypes.JSONMap `json:"last_payload,omitempty"`
}
