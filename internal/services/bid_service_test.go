// internal/services/bid_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/scalemarket/scalemarket-backend/internal/models"
)

type BidServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *BidService
	seller  *models.User
	alice   *models.User
	bob     *models.User
}

func (suite *BidServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.service = NewBidService(suite.db, newTestConfig(), NewNotificationService(suite.db))
	suite.seller = createTestUser(suite.T(), suite.db, "seller@example.com", "seller")
	suite.alice = createTestUser(suite.T(), suite.db, "alice@example.com", "alice")
	suite.bob = createTestUser(suite.T(), suite.db, "bob@example.com", "bob")
}

func (suite *BidServiceTestSuite) TestPlaceBidRaisesPrice() {
	auction := createTestAuction(suite.T(), suite.db, suite.seller.ID, nil)

	bid, err := suite.service.PlaceBid(auction.ID, suite.alice.ID, 60)
	suite.NoError(err)
	suite.True(bid.IsWinningBid)
	suite.Equal(60.0, bid.Amount)

	var reloaded models.Auction
	suite.NoError(suite.db.First(&reloaded, auction.ID).Error)
	suite.Equal(60.0, reloaded.CurrentPrice)

	suite.Equal(int64(1), countNotifications(suite.T(), suite.db, suite.seller.ID, models.NotificationTypeBidPlaced))
}

func (suite *BidServiceTestSuite) TestPlaceBidKeepsSingleWinner() {
	auction := createTestAuction(suite.T(), suite.db, suite.seller.ID, nil)

	first, err := suite.service.PlaceBid(auction.ID, suite.alice.ID, 60)
	suite.NoError(err)

	second, err := suite.service.PlaceBid(auction.ID, suite.bob.ID, 70)
	suite.NoError(err)
	suite.True(second.IsWinningBid)

	var winners int64
	suite.NoError(suite.db.Model(&models.Bid{}).
		Where("auction_id = ? AND is_winning_bid = ?", auction.ID, true).
		Count(&winners).Error)
	suite.Equal(int64(1), winners)

	var previous models.Bid
	suite.NoError(suite.db.First(&previous, first.ID).Error)
	suite.False(previous.IsWinningBid)

	// Alice lost the lead and hears about it.
	suite.Equal(int64(1), countNotifications(suite.T(), suite.db, suite.alice.ID, models.NotificationTypeBidOutbid))
}

func (suite *BidServiceTestSuite) TestPlaceBidEqualToCurrentPrice() {
	auction := createTestAuction(suite.T(), suite.db, suite.seller.ID, nil)

	_, err := suite.service.PlaceBid(auction.ID, suite.alice.ID, auction.CurrentPrice)
	suite.ErrorIs(err, ErrBidTooLow)
}

func (suite *BidServiceTestSuite) TestPlaceBidBelowReserve() {
	auction := createTestAuction(suite.T(), suite.db, suite.seller.ID, func(a *models.Auction) {
		a.ReservePrice = floatPtr(100)
	})

	_, err := suite.service.PlaceBid(auction.ID, suite.alice.ID, 80)
	suite.ErrorIs(err, ErrBelowReserve)

	// Meeting the reserve goes through.
	bid, err := suite.service.PlaceBid(auction.ID, suite.alice.ID, 100)
	suite.NoError(err)
	suite.True(bid.IsWinningBid)
}

func (suite *BidServiceTestSuite) TestPlaceBidOnEndedAuction() {
	auction := createTestAuction(suite.T(), suite.db, suite.seller.ID, func(a *models.Auction) {
		a.Status = models.AuctionStatusEnded
	})

	_, err := suite.service.PlaceBid(auction.ID, suite.alice.ID, 60)
	suite.ErrorIs(err, ErrInvalidState)
}

func (suite *BidServiceTestSuite) TestPlaceBidAfterEndTime() {
	past := time.Now().Add(-time.Minute)
	auction := createTestAuction(suite.T(), suite.db, suite.seller.ID, func(a *models.Auction) {
		a.EndTime = &past
	})

	_, err := suite.service.PlaceBid(auction.ID, suite.alice.ID, 60)
	suite.ErrorIs(err, ErrExpired)
}

func (suite *BidServiceTestSuite) TestPlaceBidAuctionNotFound() {
	_, err := suite.service.PlaceBid(9999, suite.alice.ID, 60)
	suite.ErrorIs(err, ErrAuctionNotFound)
}

func (suite *BidServiceTestSuite) TestSelfBiddingGuard() {
	auction := createTestAuction(suite.T(), suite.db, suite.seller.ID, nil)

	// Allowed with the default configuration.
	_, err := suite.service.PlaceBid(auction.ID, suite.seller.ID, 60)
	suite.NoError(err)

	cfg := newTestConfig()
	cfg.Marketplace.AllowSelfBidding = false
	strict := NewBidService(suite.db, cfg, NewNotificationService(suite.db))

	_, err = strict.PlaceBid(auction.ID, suite.seller.ID, 70)
	suite.ErrorIs(err, ErrForbidden)
}

func (suite *BidServiceTestSuite) TestWithdrawBid() {
	auction := createTestAuction(suite.T(), suite.db, suite.seller.ID, nil)

	first, err := suite.service.PlaceBid(auction.ID, suite.alice.ID, 60)
	suite.NoError(err)
	_, err = suite.service.PlaceBid(auction.ID, suite.bob.ID, 70)
	suite.NoError(err)

	// Only the bid's owner may withdraw it.
	suite.ErrorIs(suite.service.WithdrawBid(first.ID, suite.bob.ID), ErrForbidden)

	suite.NoError(suite.service.WithdrawBid(first.ID, suite.alice.ID))

	_, err = suite.service.GetBid(first.ID)
	suite.ErrorIs(err, ErrBidNotFound)
}

func (suite *BidServiceTestSuite) TestWithdrawWinningBid() {
	auction := createTestAuction(suite.T(), suite.db, suite.seller.ID, nil)

	bid, err := suite.service.PlaceBid(auction.ID, suite.alice.ID, 60)
	suite.NoError(err)

	suite.ErrorIs(suite.service.WithdrawBid(bid.ID, suite.alice.ID), ErrWinningBid)
}

func (suite *BidServiceTestSuite) TestGetUserBids() {
	auction := createTestAuction(suite.T(), suite.db, suite.seller.ID, nil)
	other := createTestAuction(suite.T(), suite.db, suite.seller.ID, nil)

	_, err := suite.service.PlaceBid(auction.ID, suite.alice.ID, 60)
	suite.NoError(err)
	_, err = suite.service.PlaceBid(other.ID, suite.alice.ID, 55)
	suite.NoError(err)
	_, err = suite.service.PlaceBid(auction.ID, suite.bob.ID, 70)
	suite.NoError(err)

	bids, total, err := suite.service.GetUserBids(suite.alice.ID, testPagination())
	suite.NoError(err)
	suite.Equal(int64(2), total)
	suite.Len(bids, 2)
}

// A bid validated against a stale snapshot must fail re-validation once a
// competing bid has raised the price, and must not lower it.
func (suite *BidServiceTestSuite) TestRecordBidStaleSnapshot() {
	auction := createTestAuction(suite.T(), suite.db, suite.seller.ID, nil)

	stale := &models.Bid{
		AuctionID:    auction.ID,
		BidderID:     suite.alice.ID,
		Amount:       60,
		IsWinningBid: true,
	}

	// A competing session commits €70 between validation and commit.
	_, err := suite.service.PlaceBid(auction.ID, suite.bob.ID, 70)
	suite.NoError(err)

	err = suite.service.recordBid(stale)
	suite.ErrorIs(err, ErrBidTooLow)

	var reloaded models.Auction
	suite.NoError(suite.db.First(&reloaded, auction.ID).Error)
	suite.Equal(70.0, reloaded.CurrentPrice)

	var bids int64
	suite.NoError(suite.db.Model(&models.Bid{}).
		Where("auction_id = ? AND bidder_id = ?", auction.ID, suite.alice.ID).
		Count(&bids).Error)
	suite.Zero(bids)
}

func TestBidServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BidServiceTestSuite))
}
