// internal/models/user.go
package models

import (
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Email        string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `json:"-" gorm:"size:255;not null"`
	Username     string `json:"username" gorm:"uniqueIndex;size:50"`
	FirstName    string `json:"first_name" gorm:"size:100"`
	LastName     string `json:"last_name" gorm:"size:100"`
	Phone        string `json:"phone" gorm:"size:30"`
	Preferences  JSONB  `json:"preferences" gorm:"type:jsonb"`

	// Relationships
	Addresses []UserAddress `json:"addresses,omitempty" gorm:"foreignKey:UserID"`
	Auctions  []Auction     `json:"auctions,omitempty" gorm:"foreignKey:OwnerID"`
	Bids      []Bid         `json:"bids,omitempty" gorm:"foreignKey:BidderID"`
}

type UserAddress struct {
	BaseModel
	UserID     uint   `json:"user_id" gorm:"not null;index"`
	Label      string `json:"label" gorm:"size:50"`
	Street     string `json:"street" gorm:"size:255;not null"`
	City       string `json:"city" gorm:"size:100;not null"`
	PostalCode string `json:"postal_code" gorm:"size:20;not null"`
	Country    string `json:"country" gorm:"size:100;not null"`
	IsDefault  bool   `json:"is_default" gorm:"default:false"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// DisplayName is what notification messages call the user.
func (u *User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}
