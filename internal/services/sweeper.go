// internal/services/sweeper.go
package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Sweeper periodically finalizes expired auctions and offers. Both sweeps
// are conditional set-based updates, so overlapping runs are harmless.
type Sweeper struct {
	auctionService *AuctionService
	offerService   *OfferService
	interval       time.Duration
}

func NewSweeper(auctionService *AuctionService, offerService *OfferService, interval time.Duration) *Sweeper {
	return &Sweeper{
		auctionService: auctionService,
		offerService:   offerService,
		interval:       interval,
	}
}

// Start runs the sweep loop until ctx is cancelled. It runs one sweep
// immediately so restarts don't leave expired rows pending for a full tick.
func (s *Sweeper) Start(ctx context.Context) {
	logrus.WithField("interval", s.interval.String()).Info("Sweeper started")

	s.sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Sweeper stopped")
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	now := time.Now()

	expired, err := s.offerService.ExpireOffers(now)
	if err != nil {
		logrus.WithError(err).Error("Offer expiry sweep failed")
	} else if expired > 0 {
		logrus.WithField("count", expired).Info("Expired pending offers")
	}

	ended, err := s.auctionService.SweepExpired(now)
	if err != nil {
		logrus.WithError(err).Error("Auction end sweep failed")
	} else if ended > 0 {
		logrus.WithField("count", ended).Info("Ended expired auctions")
	}
}
