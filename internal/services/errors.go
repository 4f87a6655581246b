// internal/services/errors.go
package services

import "errors"

// Reason-coded errors surfaced by the lifecycle services. Handlers map
// these to HTTP statuses with errors.Is.
var (
	ErrAuctionNotFound      = errors.New("auction not found")
	ErrBidNotFound          = errors.New("bid not found")
	ErrOfferNotFound        = errors.New("offer not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrAddressNotFound      = errors.New("address not found")

	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrAuthRequired = errors.New("authentication required")
	ErrInvalidState = errors.New("operation not allowed in current state")
	ErrExpired      = errors.New("auction has ended")

	ErrHasBids          = errors.New("auction has existing bids")
	ErrBidTooLow        = errors.New("bid must be higher than the current price")
	ErrBelowReserve     = errors.New("bid is below the reserve price")
	ErrWinningBid       = errors.New("cannot withdraw the winning bid")
	ErrWrongSaleType    = errors.New("offers can only be made on direct sales")
	ErrBelowMinOffer    = errors.New("offer is below the minimum offer")
	ErrOfferTooHigh     = errors.New("offer must be less than the starting price")
	ErrDuplicatePending = errors.New("a pending offer already exists for this auction")

	ErrEmailTaken    = errors.New("user with this email already exists")
	ErrUsernameTaken = errors.New("username already taken")
	ErrBadCredential = errors.New("invalid credentials")
)
