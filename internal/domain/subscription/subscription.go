package subscription

import (
	"context"
	"errors"
	"time"
)

// Plan identifies a subscription plan
type Plan string

// PlanTrial is the free plan granted once per user
const PlanTrial Plan = "trial"

var (
	ErrInvalidUserID   = errors.New("subscription: invalid user ID")
	ErrInvalidDuration = errors.New("subscription: duration must be positive")
)

// Subscription is the per-user subscription state. This core consults it but
// does not own billing; rows are written only when a trial is granted.
type Subscription struct {
	ID          int64
	UserID      int64
	Plan        Plan
	TrialUsed   bool
	ActiveUntil *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTrial creates the trial subscription granted at now
func NewTrial(userID int64, plan Plan, now time.Time, duration time.Duration) (*Subscription, error) {
	if userID <= 0 {
		return nil, ErrInvalidUserID
	}
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}
	until := now.Add(duration)
	return &Subscription{
		UserID:      userID,
		Plan:        plan,
		TrialUsed:   true,
		ActiveUntil: &until,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Activation is the outcome of the subscription gate
type Activation string

const (
	// ActivationActive means an active subscription already exists
	ActivationActive Activation = "active"
	// ActivationTrialActivated means a trial was granted just now
	ActivationTrialActivated Activation = "trial_activated"
	// ActivationInactive means the credential must be saved inactive
	ActivationInactive Activation = "inactive"
)

// CredentialActive reports the active flag a credential saved under this
// decision must carry
func (a Activation) CredentialActive() bool {
	return a == ActivationActive || a == ActivationTrialActivated
}

// String returns the string representation of Activation
func (a Activation) String() string {
	return string(a)
}

// Ledger is the subscription store consulted by the gate
type Ledger interface {
	// HasActiveSubscription reports whether any subscription of the user is
	// active at now
	HasActiveSubscription(ctx context.Context, userID int64, now time.Time) (bool, error)
	// IsTrialEligible reports whether the user has never used a trial
	IsTrialEligible(ctx context.Context, userID int64) (bool, error)
	// GrantTrial records the trial subscription and marks the trial used
	GrantTrial(ctx context.Context, sub *Subscription) error
}
