// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scalemarket/scalemarket-backend/internal/services"
	"github.com/scalemarket/scalemarket-backend/internal/utils"
)

// handleServiceError translates the reason-coded service errors into HTTP
// responses. Anything unrecognized is a 500 and gets a generic body so
// internals never leak to clients.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAuctionNotFound):
		utils.NotFoundResponse(c, "Auction")
	case errors.Is(err, services.ErrBidNotFound):
		utils.NotFoundResponse(c, "Bid")
	case errors.Is(err, services.ErrOfferNotFound):
		utils.NotFoundResponse(c, "Offer")
	case errors.Is(err, services.ErrUserNotFound):
		utils.NotFoundResponse(c, "User")
	case errors.Is(err, services.ErrNotificationNotFound):
		utils.NotFoundResponse(c, "Notification")
	case errors.Is(err, services.ErrAddressNotFound):
		utils.NotFoundResponse(c, "Address")

	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, "")
	case errors.Is(err, services.ErrAuthRequired), errors.Is(err, services.ErrBadCredential):
		utils.UnauthorizedResponse(c, err.Error())

	case errors.Is(err, services.ErrInvalidState):
		utils.ErrorResponse(c, http.StatusConflict, "INVALID_STATE", err.Error(), nil)
	case errors.Is(err, services.ErrExpired):
		utils.ErrorResponse(c, http.StatusConflict, "EXPIRED", err.Error(), nil)
	case errors.Is(err, services.ErrHasBids):
		utils.ErrorResponse(c, http.StatusConflict, "HAS_BIDS", err.Error(), nil)
	case errors.Is(err, services.ErrWinningBid):
		utils.ErrorResponse(c, http.StatusConflict, "WINNING_BID", err.Error(), nil)
	case errors.Is(err, services.ErrWrongSaleType):
		utils.ErrorResponse(c, http.StatusConflict, "WRONG_SALE_TYPE", err.Error(), nil)
	case errors.Is(err, services.ErrDuplicatePending):
		utils.ErrorResponse(c, http.StatusConflict, "DUPLICATE_PENDING_OFFER", err.Error(), nil)
	case errors.Is(err, services.ErrEmailTaken), errors.Is(err, services.ErrUsernameTaken):
		utils.ConflictResponse(c, err.Error())

	case errors.Is(err, services.ErrValidation):
		utils.ErrorResponse(c, http.StatusUnprocessableEntity, "VALIDATION_FAILED", err.Error(), nil)
	case errors.Is(err, services.ErrBidTooLow):
		utils.ErrorResponse(c, http.StatusUnprocessableEntity, "BID_TOO_LOW", err.Error(), nil)
	case errors.Is(err, services.ErrBelowReserve):
		utils.ErrorResponse(c, http.StatusUnprocessableEntity, "BELOW_RESERVE", err.Error(), nil)
	case errors.Is(err, services.ErrBelowMinOffer):
		utils.ErrorResponse(c, http.StatusUnprocessableEntity, "BELOW_MIN_OFFER", err.Error(), nil)
	case errors.Is(err, services.ErrOfferTooHigh):
		utils.ErrorResponse(c, http.StatusUnprocessableEntity, "OFFER_TOO_HIGH", err.Error(), nil)

	default:
		utils.InternalErrorResponse(c, "")
	}
}
