// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type AuctionStatus string

const (
	AuctionStatusActive    AuctionStatus = "active"
	AuctionStatusEnded     AuctionStatus = "ended"
	AuctionStatusCancelled AuctionStatus = "cancelled"
	AuctionStatusSold      AuctionStatus = "sold"
)

// Terminal reports whether the status admits no further transitions.
func (s AuctionStatus) Terminal() bool {
	return s == AuctionStatusEnded || s == AuctionStatusCancelled || s == AuctionStatusSold
}

func AuctionStatuses() []AuctionStatus {
	return []AuctionStatus{
		AuctionStatusActive,
		AuctionStatusEnded,
		AuctionStatusCancelled,
		AuctionStatusSold,
	}
}

type SaleType string

const (
	SaleTypeAuction SaleType = "auction"
	SaleTypeDirect  SaleType = "direct"
)

type AuctionCategory string

const (
	AuctionCategoryMiniatures  AuctionCategory = "miniatures"
	AuctionCategoryBooks       AuctionCategory = "books"
	AuctionCategoryTerrain     AuctionCategory = "terrain"
	AuctionCategoryPaints      AuctionCategory = "paints"
	AuctionCategoryAccessories AuctionCategory = "accessories"
)

func AuctionCategories() []AuctionCategory {
	return []AuctionCategory{
		AuctionCategoryMiniatures,
		AuctionCategoryBooks,
		AuctionCategoryTerrain,
		AuctionCategoryPaints,
		AuctionCategoryAccessories,
	}
}

type AuctionCondition string

const (
	AuctionConditionMint      AuctionCondition = "mint"
	AuctionConditionExcellent AuctionCondition = "excellent"
	AuctionConditionGood      AuctionCondition = "good"
	AuctionConditionFair      AuctionCondition = "fair"
	AuctionConditionPoor      AuctionCondition = "poor"
)

func AuctionConditions() []AuctionCondition {
	return []AuctionCondition{
		AuctionConditionMint,
		AuctionConditionExcellent,
		AuctionConditionGood,
		AuctionConditionFair,
		AuctionConditionPoor,
	}
}

type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "pending"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusRejected OfferStatus = "rejected"
	OfferStatusExpired  OfferStatus = "expired"
)

type NotificationType string

const (
	NotificationTypeBidPlaced     NotificationType = "bid_placed"
	NotificationTypeBidOutbid     NotificationType = "bid_outbid"
	NotificationTypeOfferReceived NotificationType = "offer_received"
	NotificationTypeOfferAccepted NotificationType = "offer_accepted"
	NotificationTypeOfferRejected NotificationType = "offer_rejected"
	NotificationTypeOfferExpired  NotificationType = "offer_expired"
	NotificationTypeAuctionWon    NotificationType = "auction_won"
	NotificationTypeAuctionEnded  NotificationType = "auction_ended"
	NotificationTypeGeneral       NotificationType = "general"
)
