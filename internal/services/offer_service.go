// internal/services/offer_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scalemarket/scalemarket-backend/internal/models"
	"github.com/scalemarket/scalemarket-backend/internal/utils"
)

type OfferService struct {
	db                  *gorm.DB
	notificationService *NotificationService
}

type CreateOfferRequest struct {
	Amount  float64 `json:"amount" validate:"required,gt=0"`
	Message string  `json:"message,omitempty" validate:"omitempty,max=1000"`
}

type RespondOfferRequest struct {
	Response string `json:"response" validate:"required,oneof=accept reject"`
}

func NewOfferService(db *gorm.DB, notificationService *NotificationService) *OfferService {
	return &OfferService{
		db:                  db,
		notificationService: notificationService,
	}
}

func (s *OfferService) CreateOffer(auctionID, buyerID uint, req *CreateOfferRequest) (*models.Offer, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var auction models.Auction
	if err := s.db.Preload("Owner").First(&auction, auctionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if auction.SaleType != models.SaleTypeDirect {
		return nil, ErrWrongSaleType
	}

	if auction.Status != models.AuctionStatusActive {
		return nil, fmt.Errorf("%w: auction is %s", ErrInvalidState, auction.Status)
	}

	if auction.OwnerID == buyerID {
		return nil, fmt.Errorf("%w: cannot make offers on your own auction", ErrForbidden)
	}

	if auction.MinOffer != nil && req.Amount < *auction.MinOffer {
		return nil, fmt.Errorf("%w: offer must be at least €%.2f", ErrBelowMinOffer, *auction.MinOffer)
	}

	// Offers negotiate below the asking price; paying it outright is a sale,
	// not an offer.
	if req.Amount >= auction.StartingPrice {
		return nil, ErrOfferTooHigh
	}

	var pendingCount int64
	err := s.db.Model(&models.Offer{}).
		Where("auction_id = ? AND buyer_id = ? AND status = ?", auctionID, buyerID, models.OfferStatusPending).
		Count(&pendingCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check pending offers: %w", err)
	}
	if pendingCount > 0 {
		return nil, ErrDuplicatePending
	}

	var buyer models.User
	if err := s.db.First(&buyer, buyerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var expiresAt *time.Time
	if auction.OfferExpiryDays != nil {
		t := time.Now().Add(time.Duration(*auction.OfferExpiryDays) * 24 * time.Hour)
		expiresAt = &t
	}

	offer := &models.Offer{
		AuctionID: auctionID,
		BuyerID:   buyerID,
		Amount:    req.Amount,
		Message:   req.Message,
		Status:    models.OfferStatusPending,
		ExpiresAt: expiresAt,
	}

	if err := s.db.Create(offer).Error; err != nil {
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}

	s.notificationService.NotifyOfferReceived(&auction, offer, buyer.DisplayName())

	s.db.Preload("Buyer").Preload("Auction").First(offer, "id = ?", offer.ID)

	return offer, nil
}

func (s *OfferService) GetOffer(id uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	err := s.db.Preload("Auction").Preload("Auction.Owner").Preload("Buyer").
		First(&offer, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &offer, nil
}

// RespondToOffer settles a pending offer. Accepting marks the auction sold
// and bulk-rejects every other pending offer on it; both writes and the
// offer's own transition commit in one transaction.
func (s *OfferService) RespondToOffer(id uuid.UUID, sellerID uint, response string) (*models.Offer, error) {
	offer, err := s.GetOffer(id)
	if err != nil {
		return nil, err
	}

	if offer.Auction.OwnerID != sellerID {
		return nil, fmt.Errorf("%w: only the auction owner can respond to offers", ErrForbidden)
	}

	if offer.Status != models.OfferStatusPending {
		return nil, fmt.Errorf("%w: offer is %s", ErrInvalidState, offer.Status)
	}

	if response == "accept" {
		if err := s.acceptOffer(offer); err != nil {
			return nil, err
		}
		s.notificationService.NotifyOfferAccepted(&offer.Auction, offer)
	} else {
		if err := s.rejectOffer(offer); err != nil {
			return nil, err
		}
		s.notificationService.NotifyOfferRejected(&offer.Auction, offer)
	}

	return s.GetOffer(id)
}

// acceptOffer marks the auction sold, the offer accepted and every competing
// pending offer rejected in one transaction. The conditional auction update
// guards the whole batch against a concurrent transition.
func (s *OfferService) acceptOffer(offer *models.Offer) error {
	now := time.Now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Auction{}).
			Where("id = ? AND status = ?", offer.AuctionID, models.AuctionStatusActive).
			Update("status", models.AuctionStatusSold)
		if result.Error != nil {
			return fmt.Errorf("failed to mark auction sold: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			// The auction was closed, cancelled or sold since the offer
			// was loaded.
			return fmt.Errorf("%w: auction is no longer active", ErrInvalidState)
		}

		if err := tx.Model(&models.Offer{}).
			Where("id = ?", offer.ID).
			Updates(map[string]interface{}{
				"status":      models.OfferStatusAccepted,
				"accepted_at": now,
			}).Error; err != nil {
			return fmt.Errorf("failed to accept offer: %w", err)
		}

		if err := tx.Model(&models.Offer{}).
			Where("auction_id = ? AND status = ? AND id <> ?",
				offer.AuctionID, models.OfferStatusPending, offer.ID).
			Update("status", models.OfferStatusRejected).Error; err != nil {
			return fmt.Errorf("failed to reject competing offers: %w", err)
		}

		return nil
	})
}

// rejectOffer transitions a pending offer to rejected. The status guard keeps
// a reject that raced an accept from overwriting the settled state.
func (s *OfferService) rejectOffer(offer *models.Offer) error {
	result := s.db.Model(&models.Offer{}).
		Where("id = ? AND status = ?", offer.ID, models.OfferStatusPending).
		Update("status", models.OfferStatusRejected)
	if result.Error != nil {
		return fmt.Errorf("failed to reject offer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// The offer was settled since it was loaded.
		return fmt.Errorf("%w: offer is no longer pending", ErrInvalidState)
	}
	return nil
}

// ExpireOffers moves every pending offer past its expiry to EXPIRED with a
// single set-based update. Re-running is a no-op once the matching rows are
// gone.
func (s *OfferService) ExpireOffers(now time.Time) (int64, error) {
	var candidateIDs []uuid.UUID
	err := s.db.Model(&models.Offer{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", models.OfferStatusPending, now).
		Pluck("id", &candidateIDs).Error
	if err != nil {
		return 0, fmt.Errorf("failed to load expiring offers: %w", err)
	}
	if len(candidateIDs) == 0 {
		return 0, nil
	}

	expired, rows, err := s.expireByID(candidateIDs)
	if err != nil {
		return expired, err
	}

	for i := range rows {
		s.notificationService.NotifyOfferExpired(&rows[i].Auction, &rows[i])
	}

	return expired, nil
}

// expireByID flips the candidate offers still pending to EXPIRED and reloads
// the ones this call claimed, so an offer settled in the meantime is not
// reported expired.
func (s *OfferService) expireByID(candidateIDs []uuid.UUID) (int64, []models.Offer, error) {
	result := s.db.Model(&models.Offer{}).
		Where("id IN ? AND status = ?", candidateIDs, models.OfferStatusPending).
		Update("status", models.OfferStatusExpired)
	if result.Error != nil {
		return 0, nil, fmt.Errorf("failed to expire offers: %w", result.Error)
	}

	var rows []models.Offer
	if err := s.db.Preload("Auction").
		Where("id IN ? AND status = ?", candidateIDs, models.OfferStatusExpired).
		Find(&rows).Error; err != nil {
		return result.RowsAffected, nil, fmt.Errorf("failed to reload expired offers: %w", err)
	}

	return result.RowsAffected, rows, nil
}

func (s *OfferService) GetUserOffers(userID uint, params utils.PaginationParams) ([]models.Offer, int64, error) {
	query := s.db.Model(&models.Offer{}).Where("buyer_id = ?", userID).Preload("Auction")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count offers: %w", err)
	}

	var offers []models.Offer
	if err := utils.ApplyPagination(query.Order("created_at DESC"), params).
		Find(&offers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch offers: %w", err)
	}

	return offers, total, nil
}

// GetAuctionOffers lists offers received on an auction; only its owner may
// see them.
func (s *OfferService) GetAuctionOffers(auctionID, actorID uint) ([]models.Offer, error) {
	var auction models.Auction
	if err := s.db.First(&auction, auctionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if auction.OwnerID != actorID {
		return nil, fmt.Errorf("%w: you can only view offers on your own auctions", ErrForbidden)
	}

	var offers []models.Offer
	err := s.db.Preload("Buyer").
		Where("auction_id = ?", auctionID).
		Order("created_at DESC").
		Find(&offers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch offers: %w", err)
	}

	return offers, nil
}
