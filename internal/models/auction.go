// internal/models/auction.go
package models

import (
	"time"

	"github.com/lib/pq"
)

type Auction struct {
	BaseModel
	OwnerID       uint             `json:"owner_id" gorm:"not null;index"`
	Title         string           `json:"title" gorm:"size:100;not null"`
	Description   string           `json:"description" gorm:"type:text;not null"`
	ImageURL      string           `json:"image_url" gorm:"size:500"` // legacy single-image support
	Images        pq.StringArray   `json:"images" gorm:"type:text[]"`
	StartingPrice float64          `json:"starting_price" gorm:"type:decimal(10,2);not null"`
	CurrentPrice  float64          `json:"current_price" gorm:"type:decimal(10,2)"`
	ReservePrice  *float64         `json:"reserve_price,omitempty" gorm:"type:decimal(10,2)"`
	Category      AuctionCategory  `json:"category" gorm:"type:varchar(20);default:'miniatures';index"`
	CategoryGroup string           `json:"category_group" gorm:"size:100;index"`
	Condition     AuctionCondition `json:"condition" gorm:"type:varchar(20);default:'good'"`
	Era           string           `json:"era" gorm:"size:100;index"`
	Scale         string           `json:"scale" gorm:"size:50;index"`
	Tags          pq.StringArray   `json:"tags" gorm:"type:text[]"`
	SaleType      SaleType         `json:"sale_type" gorm:"type:varchar(10);default:'auction';index"`
	Status        AuctionStatus    `json:"status" gorm:"type:varchar(20);default:'active';index"`
	EndTime       *time.Time       `json:"end_time,omitempty"`

	// Direct-sale only
	MinOffer        *float64 `json:"min_offer,omitempty" gorm:"type:decimal(10,2)"`
	OfferExpiryDays *int     `json:"offer_expiry_days,omitempty"`

	// Relationships
	Owner  User    `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Bids   []Bid   `json:"bids,omitempty" gorm:"foreignKey:AuctionID"`
	Offers []Offer `json:"offers,omitempty" gorm:"foreignKey:AuctionID"`
}

type Bid struct {
	BaseModel
	AuctionID    uint    `json:"auction_id" gorm:"not null;index"`
	BidderID     uint    `json:"bidder_id" gorm:"not null;index"`
	Amount       float64 `json:"amount" gorm:"type:decimal(10,2);not null"`
	IsWinningBid bool    `json:"is_winning_bid" gorm:"default:false;index"`

	// Relationships
	Auction Auction `json:"auction,omitempty" gorm:"foreignKey:AuctionID"`
	Bidder  User    `json:"bidder,omitempty" gorm:"foreignKey:BidderID"`
}
