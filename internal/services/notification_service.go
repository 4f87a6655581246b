// internal/services/notification_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/scalemarket/scalemarket-backend/internal/models"
	"github.com/scalemarket/scalemarket-backend/internal/utils"
)

// NotificationService records in-app notifications for marketplace events.
// All Notify* helpers are best-effort: a failed insert is logged and never
// propagated, so a notification failure cannot undo a lifecycle transition.
type NotificationService struct {
	db *gorm.DB
}

type CreateNotificationRequest struct {
	RecipientID uint                    `json:"recipient_id" validate:"required"`
	SenderID    *uint                   `json:"sender_id,omitempty"`
	Type        models.NotificationType `json:"type" validate:"required"`
	Title       string                  `json:"title" validate:"required"`
	Message     string                  `json:"message" validate:"required"`
	AuctionID   *uint                   `json:"auction_id,omitempty"`
	OfferID     *uuid.UUID              `json:"offer_id,omitempty"`
	Metadata    map[string]interface{}  `json:"metadata,omitempty"`
}

type NotificationListResult struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unread_count"`
	Total         int64                 `json:"total"`
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

func (s *NotificationService) Create(req *CreateNotificationRequest) (*models.Notification, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	notification := &models.Notification{
		RecipientID: req.RecipientID,
		SenderID:    req.SenderID,
		Type:        req.Type,
		Title:       req.Title,
		Message:     req.Message,
		AuctionID:   req.AuctionID,
		OfferID:     req.OfferID,
		Metadata:    models.JSONB(req.Metadata),
	}

	if err := s.db.Create(notification).Error; err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	return notification, nil
}

func (s *NotificationService) GetUserNotifications(userID uint, params utils.PaginationParams, unreadOnly bool) (*NotificationListResult, error) {
	query := s.db.Model(&models.Notification{}).Where("recipient_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	var notifications []models.Notification
	if err := utils.ApplyPagination(query.Order("created_at DESC"), params).
		Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	unreadCount, err := s.GetUnreadCount(userID)
	if err != nil {
		return nil, err
	}

	return &NotificationListResult{
		Notifications: notifications,
		UnreadCount:   unreadCount,
		Total:         total,
	}, nil
}

func (s *NotificationService) GetUnreadCount(userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (s *NotificationService) MarkAsRead(notificationID, userID uint) error {
	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification as read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(userID uint) error {
	err := s.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return nil
}

func (s *NotificationService) Delete(notificationID, userID uint) error {
	result := s.db.Where("id = ? AND recipient_id = ?", notificationID, userID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// Event helpers. Each swallows its error after logging.

func (s *NotificationService) NotifyBidPlaced(auction *models.Auction, bid *models.Bid, bidderName string) {
	s.fireAndForget("bid_placed", &CreateNotificationRequest{
		RecipientID: auction.OwnerID,
		SenderID:    &bid.BidderID,
		Type:        models.NotificationTypeBidPlaced,
		Title:       "New Bid Received",
		Message:     fmt.Sprintf("%s placed a bid of €%.2f on %q", bidderName, bid.Amount, auction.Title),
		AuctionID:   &auction.ID,
		Metadata: map[string]interface{}{
			"bid_amount":  bid.Amount,
			"bidder_name": bidderName,
		},
	})
}

func (s *NotificationService) NotifyBidOutbid(recipientID uint, auction *models.Auction, newAmount float64) {
	s.fireAndForget("bid_outbid", &CreateNotificationRequest{
		RecipientID: recipientID,
		Type:        models.NotificationTypeBidOutbid,
		Title:       "You Have Been Outbid",
		Message:     fmt.Sprintf("Someone outbid you on %q", auction.Title),
		AuctionID:   &auction.ID,
		Metadata: map[string]interface{}{
			"bid_amount": newAmount,
		},
	})
}

func (s *NotificationService) NotifyOfferReceived(auction *models.Auction, offer *models.Offer, buyerName string) {
	s.fireAndForget("offer_received", &CreateNotificationRequest{
		RecipientID: auction.OwnerID,
		SenderID:    &offer.BuyerID,
		Type:        models.NotificationTypeOfferReceived,
		Title:       "New Offer Received",
		Message:     fmt.Sprintf("%s made an offer of €%.2f on %q", buyerName, offer.Amount, auction.Title),
		AuctionID:   &auction.ID,
		OfferID:     &offer.ID,
		Metadata: map[string]interface{}{
			"offer_amount": offer.Amount,
			"buyer_name":   buyerName,
		},
	})
}

func (s *NotificationService) NotifyOfferAccepted(auction *models.Auction, offer *models.Offer) {
	s.fireAndForget("offer_accepted", &CreateNotificationRequest{
		RecipientID: offer.BuyerID,
		SenderID:    &auction.OwnerID,
		Type:        models.NotificationTypeOfferAccepted,
		Title:       "Offer Accepted!",
		Message:     fmt.Sprintf("Your offer of €%.2f on %q was accepted!", offer.Amount, auction.Title),
		AuctionID:   &auction.ID,
		OfferID:     &offer.ID,
		Metadata: map[string]interface{}{
			"offer_amount": offer.Amount,
		},
	})
}

func (s *NotificationService) NotifyOfferRejected(auction *models.Auction, offer *models.Offer) {
	s.fireAndForget("offer_rejected", &CreateNotificationRequest{
		RecipientID: offer.BuyerID,
		SenderID:    &auction.OwnerID,
		Type:        models.NotificationTypeOfferRejected,
		Title:       "Offer Rejected",
		Message:     fmt.Sprintf("Your offer of €%.2f on %q was not accepted.", offer.Amount, auction.Title),
		AuctionID:   &auction.ID,
		OfferID:     &offer.ID,
	})
}

func (s *NotificationService) NotifyOfferExpired(auction *models.Auction, offer *models.Offer) {
	s.fireAndForget("offer_expired", &CreateNotificationRequest{
		RecipientID: offer.BuyerID,
		Type:        models.NotificationTypeOfferExpired,
		Title:       "Offer Expired",
		Message:     fmt.Sprintf("Your offer of €%.2f on %q has expired.", offer.Amount, auction.Title),
		AuctionID:   &auction.ID,
		OfferID:     &offer.ID,
	})
}

func (s *NotificationService) NotifyAuctionWon(winnerID uint, auction *models.Auction, finalPrice float64) {
	s.fireAndForget("auction_won", &CreateNotificationRequest{
		RecipientID: winnerID,
		Type:        models.NotificationTypeAuctionWon,
		Title:       "Congratulations! You Won!",
		Message:     fmt.Sprintf("You won the auction %q for €%.2f", auction.Title, finalPrice),
		AuctionID:   &auction.ID,
		Metadata: map[string]interface{}{
			"final_price": finalPrice,
		},
	})
}

func (s *NotificationService) NotifyAuctionEnded(auction *models.Auction) {
	s.fireAndForget("auction_ended", &CreateNotificationRequest{
		RecipientID: auction.OwnerID,
		Type:        models.NotificationTypeAuctionEnded,
		Title:       "Auction Ended",
		Message:     fmt.Sprintf("Your auction %q has ended", auction.Title),
		AuctionID:   &auction.ID,
	})
}

func (s *NotificationService) fireAndForget(event string, req *CreateNotificationRequest) {
	if _, err := s.Create(req); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"event":     event,
			"recipient": req.RecipientID,
		}).Error("Failed to record notification")
	}
}
