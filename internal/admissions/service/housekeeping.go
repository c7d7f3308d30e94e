package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/scl-platform/ssobridge/internal/admissions/store"
)

// HousekeepingService periodically sweeps expired SSO tokens to bound store
// growth. Sweeping is not needed for correctness - the verifier's TTL window
// already rejects expired rows - so the sweep can run on any schedule.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	TokenTTL time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a sweeper. Interval defaults to 10 minutes,
// TTL to DefaultTokenTTL.
func NewHousekeepingService(
	st store.Store,
	logger *slog.Logger,
	interval time.Duration,
	tokenTTL time.Duration,
) *HousekeepingService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}

	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		TokenTTL: tokenTTL,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop. Non-blocking; call Stop to shut
// down gracefully.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping started", "interval", s.Interval, "token_ttl", s.TokenTTL)
}

// Stop shuts the sweeper down, blocking until any in-progress sweep finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

// Sweep deletes tokens older than the TTL. Exported for tests and manual runs.
func (s *HousekeepingService) Sweep(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-s.TokenTTL)
	return s.Store.Tokens().DeleteTokensIssuedBefore(ctx, cutoff)
}

func (s *HousekeepingService) sweep() {
	n, err := s.Sweep(context.Background())
	if err != nil {
		s.Logger.Error("token sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.Logger.Info("swept expired sso tokens", "deleted", n)
	}
}
