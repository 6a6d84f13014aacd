package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sellerstats/backend/internal/domain/subscription"
	"github.com/sellerstats/backend/internal/infrastructure/persistence/models"
)

// GormSubscriptionLedger implements subscription.Ledger using GORM
type GormSubscriptionLedger struct {
	db *gorm.DB
}

// NewGormSubscriptionLedger creates a new GormSubscriptionLedger
func NewGormSubscriptionLedger(db *gorm.DB) *GormSubscriptionLedger {
	return &GormSubscriptionLedger{db: db}
}

// HasActiveSubscription reports whether the user's subscription runs past now
func (r *GormSubscriptionLedger) HasActiveSubscription(ctx context.Context, userID int64, now time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SubscriptionModel{}).
		Where("user_id = ? AND active_until IS NOT NULL AND active_until > ?", userID, now).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsTrialEligible reports whether the user has never used a trial
func (r *GormSubscriptionLedger) IsTrialEligible(ctx context.Context, userID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SubscriptionModel{}).
		Where("user_id = ? AND trial_used = ?", userID, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}

// GrantTrial writes the trial onto the user's single subscription row
func (r *GormSubscriptionLedger) GrantTrial(ctx context.Context, sub *subscription.Subscription) error {
	model := models.SubscriptionModelFromDomain(sub)
	model.ID = 0

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"plan", "trial_used", "active_until", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		return err
	}
	sub.ID = model.ID
	return nil
}

// Ensure GormSubscriptionLedger implements subscription.Ledger
var _ subscription.Ledger = (*GormSubscriptionLedger)(nil)
