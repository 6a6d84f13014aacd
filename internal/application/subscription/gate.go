// Package subscription decides whether a newly saved credential may be
// active, granting the one-time trial when the seller is eligible.
package subscription

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sellerstats/backend/internal/domain/subscription"
	"github.com/sellerstats/backend/internal/infrastructure/config"
)

// GateConfig contains configuration for Gate
type GateConfig struct {
	TrialPlan     subscription.Plan
	TrialDuration time.Duration
}

// DefaultGateConfig returns the default trial settings
func DefaultGateConfig() GateConfig {
	return GateConfig{
		TrialPlan:     subscription.PlanTrial,
		TrialDuration: 7 * 24 * time.Hour,
	}
}

// GateConfigFrom maps the subscription config section onto GateConfig
func GateConfigFrom(cfg config.SubscriptionConfig) GateConfig {
	gc := DefaultGateConfig()
	if cfg.TrialPlan != "" {
		gc.TrialPlan = subscription.Plan(cfg.TrialPlan)
	}
	if cfg.TrialDuration > 0 {
		gc.TrialDuration = cfg.TrialDuration
	}
	return gc
}

// Gate evaluates the activation policy over a subscription ledger
type Gate struct {
	config GateConfig
	now    func() time.Time
	logger *zap.Logger
}

// NewGate creates a new Gate
func NewGate(cfg GateConfig, logger *zap.Logger) *Gate {
	return &Gate{
		config: cfg,
		now:    time.Now,
		logger: logger.Named("subscription_gate"),
	}
}

// WithClock replaces the time source; used by tests
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// DecideActivation returns the first matching outcome: an active
// subscription gives ActivationActive; an unused trial is granted and gives
// ActivationTrialActivated; anything else gives ActivationInactive.
//
// The ledger must belong to the caller's unit of work so the granted trial
// and the credential write commit or roll back together.
func (g *Gate) DecideActivation(ctx context.Context, ledger subscription.Ledger, userID int64) (subscription.Activation, error) {
	now := g.now()

	active, err := ledger.HasActiveSubscription(ctx, userID, now)
	if err != nil {
		return subscription.ActivationInactive, fmt.Errorf("check active subscription: %w", err)
	}
	if active {
		return subscription.ActivationActive, nil
	}

	eligible, err := ledger.IsTrialEligible(ctx, userID)
	if err != nil {
		return subscription.ActivationInactive, fmt.Errorf("check trial eligibility: %w", err)
	}
	if !eligible {
		return subscription.ActivationInactive, nil
	}

	trial, err := subscription.NewTrial(userID, g.config.TrialPlan, now, g.config.TrialDuration)
	if err != nil {
		return subscription.ActivationInactive, err
	}
	if err := ledger.GrantTrial(ctx, trial); err != nil {
		return subscription.ActivationInactive, fmt.Errorf("grant trial: %w", err)
	}

	g.logger.Info("Trial granted",
		zap.Int64("user_id", userID),
		zap.String("plan", string(trial.Plan)),
		zap.Time("active_until", *trial.ActiveUntil),
	)
	return subscription.ActivationTrialActivated, nil
}
