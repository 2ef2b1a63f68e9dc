package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dtroode/reelscore-server/internal/logger"
	"github.com/dtroode/reelscore-server/internal/model"
)

// UnverifiedUserTTL is how long an account may stay unverified before the
// sweep removes it.
const UnverifiedUserTTL = 24 * time.Hour

// sweepTimeout bounds a single scheduled run.
const sweepTimeout = time.Minute

// Housekeeping periodically deletes expired sessions and abandoned
// registrations.
type Housekeeping struct {
	users  model.UserStore
	tokens model.RefreshTokenStore
	logger *logger.Logger
	now    func() time.Time
	cron   *cron.Cron
}

func NewHousekeeping(users model.UserStore, tokens model.RefreshTokenStore, logger *logger.Logger) *Housekeeping {
	return &Housekeeping{
		users:  users,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
}

// SweepExpiredSessions deletes every refresh token row past its expiry.
func (h *Housekeeping) SweepExpiredSessions(ctx context.Context) (int64, error) {
	n, err := h.tokens.DeleteExpired(ctx, h.now())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired sessions: %w", err)
	}
	h.logger.Info("Housekeeping: expired sessions deleted", "count", n)
	return n, nil
}

// SweepUnverifiedUsers deletes users that did not verify their email within
// UnverifiedUserTTL of signing up.
func (h *Housekeeping) SweepUnverifiedUsers(ctx context.Context) (int64, error) {
	n, err := h.users.DeleteUnverifiedBefore(ctx, h.now().Add(-UnverifiedUserTTL))
	if err != nil {
		return 0, fmt.Errorf("failed to sweep unverified users: %w", err)
	}
	h.logger.Info("Housekeeping: unverified users deleted", "count", n)
	return n, nil
}

// Run performs both sweeps. A failing sweep does not stop the other.
func (h *Housekeeping) Run(ctx context.Context) {
	if _, err := h.SweepExpiredSessions(ctx); err != nil {
		h.logger.Error("Housekeeping: sweep failed", "error", err.Error())
	}
	if _, err := h.SweepUnverifiedUsers(ctx); err != nil {
		h.logger.Error("Housekeeping: sweep failed", "error", err.Error())
	}
}

// Start schedules Run on the given cron spec.
func (h *Housekeeping) Start(schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		h.Run(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid housekeeping schedule %q: %w", schedule, err)
	}

	h.cron = c
	c.Start()
	h.logger.Info("Housekeeping: scheduled", "schedule", schedule)
	return nil
}

// Stop prevents new runs and waits for a running one to finish or ctx to end.
func (h *Housekeeping) Stop(ctx context.Context) {
	if h.cron == nil {
		return
	}
	select {
	case <-h.cron.Stop().Done():
	case <-ctx.Done():
	}
	h.cron = nil
}
