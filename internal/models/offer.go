// internal/models/offer.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Offer is keyed by UUID so offer links cannot be enumerated the way
// sequential auction ids can.
type Offer struct {
	ID         uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	AuctionID  uint        `json:"auction_id" gorm:"not null;index"`
	BuyerID    uint        `json:"buyer_id" gorm:"not null;index"`
	Amount     float64     `json:"amount" gorm:"type:decimal(10,2);not null"`
	Message    string      `json:"message,omitempty" gorm:"type:text"`
	Status     OfferStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	ExpiresAt  *time.Time  `json:"expires_at,omitempty"`
	AcceptedAt *time.Time  `json:"accepted_at,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`

	// Relationships
	Auction Auction `json:"auction,omitempty" gorm:"foreignKey:AuctionID"`
	Buyer   User    `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
}

func (o *Offer) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
