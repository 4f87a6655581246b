// internal/services/testhelpers_test.go
package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/scalemarket/scalemarket-backend/internal/config"
	"github.com/scalemarket/scalemarket-backend/internal/models"
	"github.com/scalemarket/scalemarket-backend/internal/utils"
)

var testDBSeq int64

// newTestDB opens a fresh in-memory database per call. Each database gets a
// unique name so suites running in the same process never share state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := fmt.Sprintf("file:scalemarket_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.UserAddress{},
		&models.Auction{},
		&models.Bid{},
		&models.Offer{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
		Marketplace: config.MarketplaceConfig{
			AllowSelfBidding: true,
			SweepInterval:    60,
			MaxImageSizeMB:   10,
			MaxImagesPerItem: 10,
		},
	}
}

func createTestUser(t *testing.T, db *gorm.DB, email, username string) *models.User {
	t.Helper()

	user := &models.User{
		Email:    email,
		Username: username,
	}
	if err := user.SetPassword("Passw0rd123"); err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

func createTestAuction(t *testing.T, db *gorm.DB, ownerID uint, mutate func(*models.Auction)) *models.Auction {
	t.Helper()

	endTime := time.Now().Add(48 * time.Hour)
	auction := &models.Auction{
		OwnerID:       ownerID,
		Title:         "Panther Ausf. G 1:35",
		Description:   "Built and weathered, full interior",
		StartingPrice: 50,
		CurrentPrice:  50,
		Category:      models.AuctionCategoryMiniatures,
		Condition:     models.AuctionConditionGood,
		SaleType:      models.SaleTypeAuction,
		Status:        models.AuctionStatusActive,
		EndTime:       &endTime,
	}
	if mutate != nil {
		mutate(auction)
	}
	if err := db.Create(auction).Error; err != nil {
		t.Fatalf("failed to create test auction: %v", err)
	}

	return auction
}

func createDirectSale(t *testing.T, db *gorm.DB, ownerID uint, startingPrice float64, minOffer *float64, expiryDays *int) *models.Auction {
	t.Helper()

	return createTestAuction(t, db, ownerID, func(a *models.Auction) {
		a.SaleType = models.SaleTypeDirect
		a.StartingPrice = startingPrice
		a.CurrentPrice = startingPrice
		a.MinOffer = minOffer
		a.OfferExpiryDays = expiryDays
		a.EndTime = nil
	})
}

func countNotifications(t *testing.T, db *gorm.DB, recipientID uint, notifType models.NotificationType) int64 {
	t.Helper()

	var count int64
	err := db.Model(&models.Notification{}).
		Where("recipient_id = ? AND type = ?", recipientID, notifType).
		Count(&count).Error
	if err != nil {
		t.Fatalf("failed to count notifications: %v", err)
	}

	return count
}

func testPagination() utils.PaginationParams {
	return utils.PaginationParams{Page: 1, Limit: 20}
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }
