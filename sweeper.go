package accounts

import (
	"context"
	"time"
)

const defaultDormancyMonths = 6

// Sweeper periodically flags accounts that have not logged in for the
// dormancy threshold. It runs independently of request traffic, holds no
// lock against concurrent mutations, and covers all qualifying rows each
// pass.
type Sweeper struct {
	accounts Accounts
	interval time.Duration
	months   int
	logger   Logger
	now      func() time.Time
}

// SweeperOption customizes sweeper construction.
type SweeperOption func(*Sweeper)

// WithSweepInterval overrides the pass interval (default 24h).
func WithSweepInterval(interval time.Duration) SweeperOption {
	return func(s *Sweeper) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithDormancyMonths overrides the inactivity threshold (default 6 months).
func WithDormancyMonths(months int) SweeperOption {
	return func(s *Sweeper) {
		if months > 0 {
			s.months = months
		}
	}
}

// WithSweeperClock injects a custom clock (useful for tests).
func WithSweeperClock(clock func() time.Time) SweeperOption {
	return func(s *Sweeper) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithSweeperLogger overrides the default logger.
func WithSweeperLogger(logger Logger) SweeperOption {
	return func(s *Sweeper) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSweeper builds a sweeper over the accounts repository.
func NewSweeper(accounts Accounts, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		accounts: accounts,
		interval: 24 * time.Hour,
		months:   defaultDormancyMonths,
		logger:   defLogger{},
		now:      time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// Run sweeps on every tick until the context is cancelled. Failures are
// logged and retried on the next pass; the sweep never takes the service
// down.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("dormancy sweep failed", "error", err)
			}
		}
	}
}

// SweepOnce marks every account whose last login predates the threshold as
// dormant and returns how many rows changed.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	cutoff := s.now().AddDate(0, -s.months, 0)

	flagged, err := s.accounts.MarkDormantBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if flagged > 0 {
		s.logger.Info("dormancy sweep flagged accounts", "count", flagged)
	}

	return flagged, nil
}
