// internal/services/offer_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/scalemarket/scalemarket-backend/internal/models"
)

type OfferServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *OfferService
	seller  *models.User
	alice   *models.User
	bob     *models.User
}

func (suite *OfferServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.service = NewOfferService(suite.db, NewNotificationService(suite.db))
	suite.seller = createTestUser(suite.T(), suite.db, "seller@example.com", "seller")
	suite.alice = createTestUser(suite.T(), suite.db, "alice@example.com", "alice")
	suite.bob = createTestUser(suite.T(), suite.db, "bob@example.com", "bob")
}

// A direct sale asking 150 with a 50 minimum and one-day expiry exercises
// the whole validation chain.
func (suite *OfferServiceTestSuite) TestCreateOfferValidationChain() {
	sale := createDirectSale(suite.T(), suite.db, suite.seller.ID, 150, floatPtr(50), intPtr(1))

	_, err := suite.service.CreateOffer(sale.ID, suite.alice.ID, &CreateOfferRequest{Amount: 40})
	suite.ErrorIs(err, ErrBelowMinOffer)

	_, err = suite.service.CreateOffer(sale.ID, suite.alice.ID, &CreateOfferRequest{Amount: 200})
	suite.ErrorIs(err, ErrOfferTooHigh)

	// Matching the asking price exactly is still not an offer.
	_, err = suite.service.CreateOffer(sale.ID, suite.alice.ID, &CreateOfferRequest{Amount: 150})
	suite.ErrorIs(err, ErrOfferTooHigh)

	offer, err := suite.service.CreateOffer(sale.ID, suite.alice.ID, &CreateOfferRequest{Amount: 100})
	suite.NoError(err)
	suite.Equal(models.OfferStatusPending, offer.Status)
	suite.NotNil(offer.ExpiresAt)
	suite.WithinDuration(time.Now().Add(24*time.Hour), *offer.ExpiresAt, time.Minute)

	// One pending offer per buyer per auction.
	_, err = suite.service.CreateOffer(sale.ID, suite.alice.ID, &CreateOfferRequest{Amount: 120})
	suite.ErrorIs(err, ErrDuplicatePending)

	suite.Equal(int64(1), countNotifications(suite.T(), suite.db, suite.seller.ID, models.NotificationTypeOfferReceived))
}

func (suite *OfferServiceTestSuite) TestCreateOfferWrongSaleType() {
	auction := createTestAuction(suite.T(), suite.db, suite.seller.ID, nil)

	_, err := suite.service.CreateOffer(auction.ID, suite.alice.ID, &CreateOfferRequest{Amount: 30})
	suite.ErrorIs(err, ErrWrongSaleType)
}

func (suite *OfferServiceTestSuite) TestCreateOfferOnOwnSale() {
	sale := createDirectSale(suite.T(), suite.db, suite.seller.ID, 150, nil, nil)

	_, err := suite.service.CreateOffer(sale.ID, suite.seller.ID, &CreateOfferRequest{Amount: 100})
	suite.ErrorIs(err, ErrForbidden)
}

func (suite *OfferServiceTestSuite) TestCreateOfferOnInactiveSale() {
	sale := createDirectSale(suite.T(), suite.db, suite.seller.ID, 150, nil, nil)
	suite.NoError(suite.db.Model(sale).Update("status", models.AuctionStatusCancelled).Error)

	_, err := suite.service.CreateOffer(sale.ID, suite.alice.ID, &CreateOfferRequest{Amount: 100})
	suite.ErrorIs(err, ErrInvalidState)
}

func (suite *OfferServiceTestSuite) TestCreateOfferWithoutExpiry() {
	sale := createDirectSale(suite.T(), suite.db, suite.seller.ID, 150, nil, nil)

	offer, err := suite.service.CreateOffer(sale.ID, suite.alice.ID, &CreateOfferRequest{Amount: 100})
	suite.NoError(err)
	suite.Nil(offer.ExpiresAt)
}

func (suite *OfferServiceTestSuite) TestAcceptOffer() {
	sale := createDirectSale(suite.T(), suite.db, suite.seller.ID, 150, nil, nil)

	winning, err := suite.service.CreateOffer(sale.ID, suite.alice.ID, &CreateOfferRequest{Amount: 100})
	suite.NoError(err)
	losing, err := suite.service.CreateOffer(sale.ID, suite.bob.ID, &CreateOfferRequest{Amount: 90})
	suite.NoError(err)

	accepted, err := suite.service.RespondToOffer(winning.ID, suite.seller.ID, "accept")
	suite.NoError(err)
	suite.Equal(models.OfferStatusAccepted, accepted.Status)
	suite.NotNil(accepted.AcceptedAt)

	// The sale closes and every competing pending offer is rejected.
	var auction models.Auction
	suite.NoError(suite.db.First(&auction, sale.ID).Error)
	suite.Equal(models.AuctionStatusSold, auction.Status)

	rejected, err := suite.service.GetOffer(losing.ID)
	suite.NoError(err)
	suite.Equal(models.OfferStatusRejected, rejected.Status)

	suite.Equal(int64(1), countNotifications(suite.T(), suite.db, suite.alice.ID, models.NotificationTypeOfferAccepted))
}

func (suite *OfferServiceTestSuite) TestRejectOffer() {
	sale := createDirectSale(suite.T(), suite.db, suite.seller.ID, 150, nil, nil)

	offer, err := suite.service.CreateOffer(sale.ID, suite.alice.ID, &CreateOfferRequest{Amount: 100})
	suite.NoError(err)

	rejected, err := suite.service.RespondToOffer(offer.ID, suite.seller.ID, "reject")
	suite.NoError(err)
	suite.Equal(models.OfferStatusRejected, rejected.Status)

	// The sale stays open after a rejection.
	var auction models.Auction
	suite.NoError(suite.db.First(&auction, sale.ID).Error)
	suite.Equal(models.AuctionStatusActive, auction.Status)

	// A settled offer cannot be answered again.
	_, err = suite.service.RespondToOffer(offer.ID, suite.seller.ID, "accept")
	suite.ErrorIs(err, ErrInvalidState)

	suite.Equal(int64(1), countNotifications(suite.T(), suite.db, suite.alice.ID, models.NotificationTypeOfferRejected))
}

// A reject holding a stale pending snapshot must not overwrite an offer a
// racing accept already settled.
func (suite *OfferServiceTestSuite) TestRejectStaleSnapshotAfterAccept() {
	sale := createDirectSale(suite.T(), suite.db, suite.seller.ID, 150, nil, nil)

	offer, err := suite.service.CreateOffer(sale.ID, suite.alice.ID, &CreateOfferRequest{Amount: 100})
	suite.NoError(err)

	stale, err := suite.service.GetOffer(offer.ID)
	suite.NoError(err)

	// The accept commits while the reject still holds the pending snapshot.
	_, err = suite.service.RespondToOffer(offer.ID, suite.seller.ID, "accept")
	suite.NoError(err)

	err = suite.service.rejectOffer(stale)
	suite.ErrorIs(err, ErrInvalidState)

	settled, err := suite.service.GetOffer(offer.ID)
	suite.NoError(err)
	suite.Equal(models.OfferStatusAccepted, settled.Status)

	var auction models.Auction
	suite.NoError(suite.db.First(&auction, sale.ID).Error)
	suite.Equal(models.AuctionStatusSold, auction.Status)
}

func (suite *OfferServiceTestSuite) TestRespondForbidden() {
	sale := createDirectSale(suite.T(), suite.db, suite.seller.ID, 150, nil, nil)

	offer, err := suite.service.CreateOffer(sale.ID, suite.alice.ID, &CreateOfferRequest{Amount: 100})
	suite.NoError(err)

	_, err = suite.service.RespondToOffer(offer.ID, suite.bob.ID, "accept")
	suite.ErrorIs(err, ErrForbidden)
}

func (suite *OfferServiceTestSuite) TestExpireOffers() {
	sale := createDirectSale(suite.T(), suite.db, suite.seller.ID, 150, nil, intPtr(1))

	offer, err := suite.service.CreateOffer(sale.ID, suite.alice.ID, &CreateOfferRequest{Amount: 100})
	suite.NoError(err)

	past := time.Now().Add(-time.Hour)
	suite.NoError(suite.db.Model(&models.Offer{}).
		Where("id = ?", offer.ID).
		Update("expires_at", past).Error)

	count, err := suite.service.ExpireOffers(time.Now())
	suite.NoError(err)
	suite.Equal(int64(1), count)

	expired, err := suite.service.GetOffer(offer.ID)
	suite.NoError(err)
	suite.Equal(models.OfferStatusExpired, expired.Status)

	suite.Equal(int64(1), countNotifications(suite.T(), suite.db, suite.alice.ID, models.NotificationTypeOfferExpired))

	// Idempotent: a second run claims nothing.
	count, err = suite.service.ExpireOffers(time.Now())
	suite.NoError(err)
	suite.Zero(count)
}

func (suite *OfferServiceTestSuite) TestGetAuctionOffersOwnerOnly() {
	sale := createDirectSale(suite.T(), suite.db, suite.seller.ID, 150, nil, nil)

	_, err := suite.service.CreateOffer(sale.ID, suite.alice.ID, &CreateOfferRequest{Amount: 100})
	suite.NoError(err)

	_, err = suite.service.GetAuctionOffers(sale.ID, suite.alice.ID)
	suite.ErrorIs(err, ErrForbidden)

	offers, err := suite.service.GetAuctionOffers(sale.ID, suite.seller.ID)
	suite.NoError(err)
	suite.Len(offers, 1)
}

func (suite *OfferServiceTestSuite) TestGetUserOffers() {
	first := createDirectSale(suite.T(), suite.db, suite.seller.ID, 150, nil, nil)
	second := createDirectSale(suite.T(), suite.db, suite.seller.ID, 80, nil, nil)

	_, err := suite.service.CreateOffer(first.ID, suite.alice.ID, &CreateOfferRequest{Amount: 100})
	suite.NoError(err)
	_, err = suite.service.CreateOffer(second.ID, suite.alice.ID, &CreateOfferRequest{Amount: 60})
	suite.NoError(err)
	_, err = suite.service.CreateOffer(first.ID, suite.bob.ID, &CreateOfferRequest{Amount: 110})
	suite.NoError(err)

	offers, total, err := suite.service.GetUserOffers(suite.alice.ID, testPagination())
	suite.NoError(err)
	suite.Equal(int64(2), total)
	suite.Len(offers, 2)
}

// An expiry candidate the seller settles before the sweep claims it must
// stay out of the expired set.
func (suite *OfferServiceTestSuite) TestExpireSkipsSettledCandidate() {
	sale := createDirectSale(suite.T(), suite.db, suite.seller.ID, 150, nil, nil)

	surviving, err := suite.service.CreateOffer(sale.ID, suite.alice.ID, &CreateOfferRequest{Amount: 100})
	suite.NoError(err)
	settled, err := suite.service.CreateOffer(sale.ID, suite.bob.ID, &CreateOfferRequest{Amount: 90})
	suite.NoError(err)

	// Both were picked as candidates, then the seller rejected one.
	_, err = suite.service.RespondToOffer(settled.ID, suite.seller.ID, "reject")
	suite.NoError(err)

	count, rows, err := suite.service.expireByID([]uuid.UUID{surviving.ID, settled.ID})
	suite.NoError(err)
	suite.Equal(int64(1), count)
	suite.Len(rows, 1)
	suite.Equal(surviving.ID, rows[0].ID)

	reloaded, err := suite.service.GetOffer(settled.ID)
	suite.NoError(err)
	suite.Equal(models.OfferStatusRejected, reloaded.Status)
}

func TestOfferServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OfferServiceTestSuite))
}
