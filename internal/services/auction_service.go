// internal/services/auction_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/scalemarket/scalemarket-backend/internal/models"
	"github.com/scalemarket/scalemarket-backend/internal/utils"
)

type AuctionService struct {
	db                  *gorm.DB
	notificationService *NotificationService
}

type CreateAuctionRequest struct {
	Title           string                  `json:"title" validate:"required,min=3,max=100"`
	Description     string                  `json:"description" validate:"required,max=1000"`
	StartingPrice   float64                 `json:"starting_price" validate:"required,gt=0"`
	ReservePrice    *float64                `json:"reserve_price,omitempty" validate:"omitempty,gt=0"`
	Category        models.AuctionCategory  `json:"category,omitempty"`
	Condition       models.AuctionCondition `json:"condition,omitempty"`
	CategoryGroup   string                  `json:"category_group,omitempty"`
	Era             string                  `json:"era,omitempty"`
	Scale           string                  `json:"scale,omitempty"`
	Tags            []string                `json:"tags,omitempty"`
	ImageURL        string                  `json:"image_url,omitempty"`
	Images          []string                `json:"images,omitempty"`
	SaleType        models.SaleType         `json:"sale_type,omitempty"`
	EndTime         *time.Time              `json:"end_time,omitempty"`
	MinOffer        *float64                `json:"min_offer,omitempty" validate:"omitempty,gt=0"`
	OfferExpiryDays *int                    `json:"offer_expiry_days,omitempty" validate:"omitempty,min=1"`
}

type UpdateAuctionRequest struct {
	Title         string                  `json:"title,omitempty" validate:"omitempty,min=3,max=100"`
	Description   string                  `json:"description,omitempty" validate:"omitempty,max=1000"`
	ReservePrice  *float64                `json:"reserve_price,omitempty" validate:"omitempty,gt=0"`
	Category      models.AuctionCategory  `json:"category,omitempty"`
	Condition     models.AuctionCondition `json:"condition,omitempty"`
	CategoryGroup string                  `json:"category_group,omitempty"`
	Era           string                  `json:"era,omitempty"`
	Scale         string                  `json:"scale,omitempty"`
	Tags          []string                `json:"tags,omitempty"`
	ImageURL      string                  `json:"image_url,omitempty"`
	Images        []string                `json:"images,omitempty"`
	EndTime       *time.Time              `json:"end_time,omitempty"`
	MinOffer      *float64                `json:"min_offer,omitempty" validate:"omitempty,gt=0"`
}

type AuctionSearchParams struct {
	utils.PaginationParams
	Category      *models.AuctionCategory
	CategoryGroup string
	Scale         string
	Era           string
	Condition     *models.AuctionCondition
	Status        *models.AuctionStatus
	SaleType      *models.SaleType
	PriceMin      *float64
	PriceMax      *float64
	ShowOwn       bool
}

func NewAuctionService(db *gorm.DB, notificationService *NotificationService) *AuctionService {
	return &AuctionService{
		db:                  db,
		notificationService: notificationService,
	}
}

func (s *AuctionService) CreateAuction(ownerID uint, req *CreateAuctionRequest) (*models.Auction, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	saleType := req.SaleType
	if saleType == "" {
		saleType = models.SaleTypeAuction
	}

	if saleType == models.SaleTypeAuction && req.EndTime == nil {
		return nil, fmt.Errorf("%w: end time is required for auctions", ErrValidation)
	}

	auction := &models.Auction{
		OwnerID:         ownerID,
		Title:           req.Title,
		Description:     req.Description,
		ImageURL:        req.ImageURL,
		Images:          pq.StringArray(req.Images),
		StartingPrice:   req.StartingPrice,
		CurrentPrice:    req.StartingPrice,
		ReservePrice:    req.ReservePrice,
		Category:        req.Category,
		CategoryGroup:   req.CategoryGroup,
		Condition:       req.Condition,
		Era:             req.Era,
		Scale:           req.Scale,
		Tags:            pq.StringArray(req.Tags),
		SaleType:        saleType,
		Status:          models.AuctionStatusActive,
		EndTime:         req.EndTime,
		MinOffer:        req.MinOffer,
		OfferExpiryDays: req.OfferExpiryDays,
	}

	if auction.Category == "" {
		auction.Category = models.AuctionCategoryMiniatures
	}
	if auction.Condition == "" {
		auction.Condition = models.AuctionConditionGood
	}
	if saleType == models.SaleTypeDirect {
		// Direct sales have no fixed end; offer expiry drives their lifecycle.
		auction.EndTime = nil
	}

	if err := s.db.Create(auction).Error; err != nil {
		return nil, fmt.Errorf("failed to create auction: %w", err)
	}

	s.db.Preload("Owner").First(auction, auction.ID)

	return auction, nil
}

func (s *AuctionService) GetAuction(id uint) (*models.Auction, error) {
	var auction models.Auction
	err := s.db.Preload("Owner").
		Preload("Bids", func(db *gorm.DB) *gorm.DB {
			return db.Order("amount DESC").Order("created_at ASC")
		}).
		Preload("Bids.Bidder").
		First(&auction, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &auction, nil
}

func (s *AuctionService) UpdateAuction(id, actorID uint, req *UpdateAuctionRequest) (*models.Auction, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	auction, err := s.GetAuction(id)
	if err != nil {
		return nil, err
	}

	if auction.OwnerID != actorID {
		return nil, fmt.Errorf("%w: you can only update your own auctions", ErrForbidden)
	}

	if auction.Status != models.AuctionStatusActive {
		return nil, fmt.Errorf("%w: cannot update %s auctions", ErrInvalidState, auction.Status)
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.ReservePrice != nil {
		updates["reserve_price"] = *req.ReservePrice
	}
	if req.Category != "" {
		updates["category"] = req.Category
	}
	if req.Condition != "" {
		updates["condition"] = req.Condition
	}
	if req.CategoryGroup != "" {
		updates["category_group"] = req.CategoryGroup
	}
	if req.Era != "" {
		updates["era"] = req.Era
	}
	if req.Scale != "" {
		updates["scale"] = req.Scale
	}
	if req.Tags != nil {
		updates["tags"] = pq.StringArray(req.Tags)
	}
	if req.ImageURL != "" {
		updates["image_url"] = req.ImageURL
	}
	if req.Images != nil {
		updates["images"] = pq.StringArray(req.Images)
	}
	if req.EndTime != nil && auction.SaleType == models.SaleTypeAuction {
		updates["end_time"] = *req.EndTime
	}
	if req.MinOffer != nil && auction.SaleType == models.SaleTypeDirect {
		updates["min_offer"] = *req.MinOffer
	}

	if len(updates) > 0 {
		if err := s.db.Model(auction).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update auction: %w", err)
		}
	}

	return s.GetAuction(id)
}

func (s *AuctionService) DeleteAuction(id, actorID uint) error {
	auction, err := s.GetAuction(id)
	if err != nil {
		return err
	}

	if auction.OwnerID != actorID {
		return fmt.Errorf("%w: you can only delete your own auctions", ErrForbidden)
	}

	var bidCount int64
	if err := s.db.Model(&models.Bid{}).Where("auction_id = ?", id).Count(&bidCount).Error; err != nil {
		return fmt.Errorf("failed to check bids: %w", err)
	}
	if bidCount > 0 {
		return ErrHasBids
	}

	if err := s.db.Delete(auction).Error; err != nil {
		return fmt.Errorf("failed to delete auction: %w", err)
	}

	return nil
}

func (s *AuctionService) EndAuction(id, actorID uint) (*models.Auction, error) {
	return s.transition(id, actorID, models.AuctionStatusEnded)
}

func (s *AuctionService) CancelAuction(id, actorID uint) (*models.Auction, error) {
	return s.transition(id, actorID, models.AuctionStatusCancelled)
}

func (s *AuctionService) MarkSold(id, actorID uint) (*models.Auction, error) {
	return s.transition(id, actorID, models.AuctionStatusSold)
}

// transition moves an active auction to a terminal status on behalf of its
// owner. The conditional update re-checks the current status so a racing
// sweep or accept cannot be overwritten.
func (s *AuctionService) transition(id, actorID uint, target models.AuctionStatus) (*models.Auction, error) {
	auction, err := s.GetAuction(id)
	if err != nil {
		return nil, err
	}

	if auction.OwnerID != actorID {
		return nil, fmt.Errorf("%w: only the owner can change auction status", ErrForbidden)
	}

	if auction.Status.Terminal() {
		return nil, fmt.Errorf("%w: auction is already %s", ErrInvalidState, auction.Status)
	}

	result := s.db.Model(&models.Auction{}).
		Where("id = ? AND status = ?", id, models.AuctionStatusActive).
		Update("status", target)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update auction status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: auction is no longer active", ErrInvalidState)
	}

	return s.GetAuction(id)
}

func (s *AuctionService) SearchAuctions(params AuctionSearchParams, actorID *uint) ([]models.Auction, int64, error) {
	if params.ShowOwn && actorID == nil {
		return nil, 0, ErrAuthRequired
	}

	query := s.db.Model(&models.Auction{}).Preload("Owner")

	if params.ShowOwn {
		query = query.Where("owner_id = ?", *actorID)
	}
	if params.Category != nil {
		query = query.Where("category = ?", *params.Category)
	}
	if params.CategoryGroup != "" {
		query = query.Where("category_group = ?", params.CategoryGroup)
	}
	if params.Scale != "" {
		query = query.Where("scale = ?", params.Scale)
	}
	if params.Era != "" {
		query = query.Where("era = ?", params.Era)
	}
	if params.Condition != nil {
		query = query.Where("condition = ?", *params.Condition)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.SaleType != nil {
		query = query.Where("sale_type = ?", *params.SaleType)
	}
	if params.PriceMin != nil {
		query = query.Where("current_price >= ?", *params.PriceMin)
	}
	if params.PriceMax != nil {
		query = query.Where("current_price <= ?", *params.PriceMax)
	}
	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count auctions: %w", err)
	}

	query = utils.ApplySort(query, params.PaginationParams)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var auctions []models.Auction
	if err := query.Find(&auctions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch auctions: %w", err)
	}

	return auctions, total, nil
}

// SweepExpired closes every active auction whose end time has passed. The
// status flip is a single set-based update, so it cannot lose against a
// concurrent owner transition or bid; notifications go out afterwards for
// the rows the update actually claimed.
func (s *AuctionService) SweepExpired(now time.Time) (int64, error) {
	var candidateIDs []uint
	err := s.db.Model(&models.Auction{}).
		Where("status = ? AND end_time IS NOT NULL AND end_time <= ?", models.AuctionStatusActive, now).
		Pluck("id", &candidateIDs).Error
	if err != nil {
		return 0, fmt.Errorf("failed to load expired auctions: %w", err)
	}
	if len(candidateIDs) == 0 {
		return 0, nil
	}

	closed, ended, err := s.closeExpired(candidateIDs)
	if err != nil {
		return closed, err
	}

	for i := range ended {
		auction := &ended[i]
		s.notificationService.NotifyAuctionEnded(auction)

		winner, err := s.GetWinningBid(auction.ID)
		if err != nil {
			logrus.WithError(err).WithField("auction_id", auction.ID).
				Error("Failed to load winning bid for ended auction")
			continue
		}
		if winner != nil {
			s.notificationService.NotifyAuctionWon(winner.BidderID, auction, winner.Amount)
		}
	}

	return closed, nil
}

// closeExpired flips the candidate rows still active to ENDED and reloads
// the ones this call claimed. A candidate a concurrent cancel or accept got
// to first stays out of the returned set.
func (s *AuctionService) closeExpired(candidateIDs []uint) (int64, []models.Auction, error) {
	result := s.db.Model(&models.Auction{}).
		Where("id IN ? AND status = ?", candidateIDs, models.AuctionStatusActive).
		Update("status", models.AuctionStatusEnded)
	if result.Error != nil {
		return 0, nil, fmt.Errorf("failed to close expired auctions: %w", result.Error)
	}

	var ended []models.Auction
	if err := s.db.
		Where("id IN ? AND status = ?", candidateIDs, models.AuctionStatusEnded).
		Find(&ended).Error; err != nil {
		return result.RowsAffected, nil, fmt.Errorf("failed to reload ended auctions: %w", err)
	}

	return result.RowsAffected, ended, nil
}

func (s *AuctionService) GetWinningBid(auctionID uint) (*models.Bid, error) {
	var bid models.Bid
	err := s.db.Preload("Bidder").
		Where("auction_id = ? AND is_winning_bid = ?", auctionID, true).
		First(&bid).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &bid, nil
}

// GetAuctionBids returns the auction's bids ranked for display: highest
// amount first, earliest bid winning ties.
func (s *AuctionService) GetAuctionBids(auctionID uint) ([]models.Bid, error) {
	if _, err := s.GetAuction(auctionID); err != nil {
		return nil, err
	}

	var bids []models.Bid
	err := s.db.Preload("Bidder").
		Where("auction_id = ?", auctionID).
		Order("amount DESC").Order("created_at ASC").
		Find(&bids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bids: %w", err)
	}

	return bids, nil
}
