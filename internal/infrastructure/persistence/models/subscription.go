package models

import (
	"time"

	"github.com/sellerstats/backend/internal/domain/subscription"
)

// SubscriptionModel is the persistence model for the per-user subscription
type SubscriptionModel struct {
	BaseModel
	UserID      int64  `gorm:"not null;uniqueIndex:uq_subscriptions_user"`
	Plan        string `gorm:"type:varchar(32);not null"`
	TrialUsed   bool   `gorm:"not null"`
	ActiveUntil *time.Time
}

// TableName returns the table name for GORM
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

// SubscriptionModelFromDomain creates a new persistence model from a domain Subscription
func SubscriptionModelFromDomain(s *subscription.Subscription) *SubscriptionModel {
	return &SubscriptionModel{
		BaseModel:   BaseModel{ID: s.ID, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt},
		UserID:      s.UserID,
		Plan:        string(s.Plan),
		TrialUsed:   s.TrialUsed,
		ActiveUntil: s.ActiveUntil,
	}
}
