// internal/services/bid_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/scalemarket/scalemarket-backend/internal/config"
	"github.com/scalemarket/scalemarket-backend/internal/models"
	"github.com/scalemarket/scalemarket-backend/internal/utils"
)

type BidService struct {
	db                  *gorm.DB
	cfg                 *config.Config
	notificationService *NotificationService
}

type PlaceBidRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

func NewBidService(db *gorm.DB, cfg *config.Config, notificationService *NotificationService) *BidService {
	return &BidService{
		db:                  db,
		cfg:                 cfg,
		notificationService: notificationService,
	}
}

// PlaceBid validates and records a bid, promoting it to the winning bid and
// raising the auction's current price in one transaction. The price raise is
// a conditional update, so of two near-simultaneous bids only one can claim
// the price and the loser fails BidTooLow on re-validation.
func (s *BidService) PlaceBid(auctionID, bidderID uint, amount float64) (*models.Bid, error) {
	var auction models.Auction
	if err := s.db.Preload("Owner").First(&auction, auctionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if auction.Status != models.AuctionStatusActive {
		return nil, fmt.Errorf("%w: auction is %s", ErrInvalidState, auction.Status)
	}

	if auction.EndTime != nil && auction.EndTime.Before(time.Now()) {
		return nil, ErrExpired
	}

	if amount <= auction.CurrentPrice {
		return nil, fmt.Errorf("%w: current price is €%.2f", ErrBidTooLow, auction.CurrentPrice)
	}

	if auction.ReservePrice != nil && amount < *auction.ReservePrice {
		return nil, fmt.Errorf("%w: reserve price is €%.2f", ErrBelowReserve, *auction.ReservePrice)
	}

	if !s.cfg.Marketplace.AllowSelfBidding && auction.OwnerID == bidderID {
		return nil, fmt.Errorf("%w: cannot bid on your own auction", ErrForbidden)
	}

	var bidder models.User
	if err := s.db.First(&bidder, bidderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Everyone holding a bid before this one gets an outbid notice.
	var outbidIDs []uint
	if err := s.db.Model(&models.Bid{}).
		Where("auction_id = ? AND bidder_id <> ?", auctionID, bidderID).
		Distinct("bidder_id").
		Pluck("bidder_id", &outbidIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to load previous bidders: %w", err)
	}

	bid := &models.Bid{
		AuctionID:    auctionID,
		BidderID:     bidderID,
		Amount:       amount,
		IsWinningBid: true,
	}

	if err := s.recordBid(bid); err != nil {
		return nil, err
	}

	s.notificationService.NotifyBidPlaced(&auction, bid, bidder.DisplayName())
	for _, outbidID := range outbidIDs {
		s.notificationService.NotifyBidOutbid(outbidID, &auction, amount)
	}

	s.db.Preload("Bidder").First(bid, bid.ID)

	return bid, nil
}

// recordBid commits the bid together with the conditional price raise. The
// price guard re-checks the row against the bid amount, so a bid validated
// against a stale snapshot fails BidTooLow instead of lowering the price.
func (s *BidService) recordBid(bid *models.Bid) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Auction{}).
			Where("id = ? AND status = ? AND current_price < ?",
				bid.AuctionID, models.AuctionStatusActive, bid.Amount).
			Update("current_price", bid.Amount)
		if result.Error != nil {
			return fmt.Errorf("failed to update current price: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			// A competing bid or transition won the race.
			return fmt.Errorf("%w: auction price changed", ErrBidTooLow)
		}

		if err := tx.Model(&models.Bid{}).
			Where("auction_id = ? AND is_winning_bid = ?", bid.AuctionID, true).
			Update("is_winning_bid", false).Error; err != nil {
			return fmt.Errorf("failed to clear previous winning bid: %w", err)
		}

		if err := tx.Create(bid).Error; err != nil {
			return fmt.Errorf("failed to create bid: %w", err)
		}

		return nil
	})
}

func (s *BidService) GetBid(id uint) (*models.Bid, error) {
	var bid models.Bid
	if err := s.db.Preload("Bidder").Preload("Auction").First(&bid, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBidNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &bid, nil
}

// WithdrawBid removes a bid the bidder no longer stands behind. The winning
// bid backs the auction's current price and cannot be withdrawn.
func (s *BidService) WithdrawBid(id, actorID uint) error {
	bid, err := s.GetBid(id)
	if err != nil {
		return err
	}

	if bid.BidderID != actorID {
		return fmt.Errorf("%w: you can only withdraw your own bids", ErrForbidden)
	}

	if bid.IsWinningBid {
		return ErrWinningBid
	}

	if err := s.db.Delete(&models.Bid{}, id).Error; err != nil {
		return fmt.Errorf("failed to withdraw bid: %w", err)
	}

	return nil
}

func (s *BidService) GetUserBids(userID uint, params utils.PaginationParams) ([]models.Bid, int64, error) {
	query := s.db.Model(&models.Bid{}).Where("bidder_id = ?", userID).Preload("Auction")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bids: %w", err)
	}

	var bids []models.Bid
	if err := utils.ApplyPagination(query.Order("created_at DESC"), params).
		Find(&bids).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch bids: %w", err)
	}

	return bids, total, nil
}
