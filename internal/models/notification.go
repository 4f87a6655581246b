// internal/models/notification.go
package models

import (
	"github.com/google/uuid"
)

type Notification struct {
	BaseModel
	RecipientID uint             `json:"recipient_id" gorm:"not null;index"`
	SenderID    *uint            `json:"sender_id,omitempty"`
	Type        NotificationType `json:"type" gorm:"type:varchar(30);default:'general';index"`
	Title       string           `json:"title" gorm:"size:255;not null"`
	Message     string           `json:"message" gorm:"type:text;not null"`
	AuctionID   *uint            `json:"auction_id,omitempty" gorm:"index"`
	OfferID     *uuid.UUID       `json:"offer_id,omitempty" gorm:"type:uuid"`
	IsRead      bool             `json:"is_read" gorm:"default:false;index"`
	Metadata    JSONB            `json:"metadata,omitempty" gorm:"type:jsonb"`

	// Relationships
	Recipient User `json:"recipient,omitempty" gorm:"foreignKey:RecipientID"`
}
