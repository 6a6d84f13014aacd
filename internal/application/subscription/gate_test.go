package subscription

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sellerstats/backend/internal/domain/subscription"
	"github.com/sellerstats/backend/internal/infrastructure/config"
	"github.com/sellerstats/backend/internal/testutil"
)

var fixedNow = time.Date(2025, 5, 18, 12, 0, 0, 0, time.UTC)

func newTestGate() *Gate {
	return NewGate(DefaultGateConfig(), zap.NewNop()).WithClock(func() time.Time { return fixedNow })
}

func TestGate_ActiveSubscription(t *testing.T) {
	ledger := new(testutil.SubscriptionLedger)
	ledger.On("HasActiveSubscription", mock.Anything, int64(1), fixedNow).Return(true, nil)

	got, err := newTestGate().DecideActivation(context.Background(), ledger, 1)
	require.NoError(t, err)
	assert.Equal(t, subscription.ActivationActive, got)
	ledger.AssertNotCalled(t, "IsTrialEligible", mock.Anything, mock.Anything)
	ledger.AssertNotCalled(t, "GrantTrial", mock.Anything, mock.Anything)
}

func TestGate_GrantsTrialOnce(t *testing.T) {
	ledger := new(testutil.SubscriptionLedger)
	ledger.On("HasActiveSubscription", mock.Anything, int64(1), fixedNow).Return(false, nil)
	ledger.On("IsTrialEligible", mock.Anything, int64(1)).Return(true, nil)
	ledger.On("GrantTrial", mock.Anything, mock.MatchedBy(func(s *subscription.Subscription) bool {
		return s.UserID == 1 &&
			s.Plan == subscription.PlanTrial &&
			s.TrialUsed &&
			s.ActiveUntil != nil &&
			s.ActiveUntil.Equal(fixedNow.Add(7*24*time.Hour))
	})).Return(nil).Once()

	got, err := newTestGate().DecideActivation(context.Background(), ledger, 1)
	require.NoError(t, err)
	assert.Equal(t, subscription.ActivationTrialActivated, got)
	assert.True(t, got.CredentialActive())
	ledger.AssertExpectations(t)
}

func TestGate_TrialAlreadyUsed(t *testing.T) {
	ledger := new(testutil.SubscriptionLedger)
	ledger.On("HasActiveSubscription", mock.Anything, int64(1), fixedNow).Return(false, nil)
	ledger.On("IsTrialEligible", mock.Anything, int64(1)).Return(false, nil)

	got, err := newTestGate().DecideActivation(context.Background(), ledger, 1)
	require.NoError(t, err)
	assert.Equal(t, subscription.ActivationInactive, got)
	assert.False(t, got.CredentialActive())
	ledger.AssertNotCalled(t, "GrantTrial", mock.Anything, mock.Anything)
}

func TestGate_LedgerErrors(t *testing.T) {
	boom := errors.New("connection reset")

	t.Run("active check", func(t *testing.T) {
		ledger := new(testutil.SubscriptionLedger)
		ledger.On("HasActiveSubscription", mock.Anything, int64(1), fixedNow).Return(false, boom)

		got, err := newTestGate().DecideActivation(context.Background(), ledger, 1)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, subscription.ActivationInactive, got)
	})

	t.Run("grant", func(t *testing.T) {
		ledger := new(testutil.SubscriptionLedger)
		ledger.On("HasActiveSubscription", mock.Anything, int64(1), fixedNow).Return(false, nil)
		ledger.On("IsTrialEligible", mock.Anything, int64(1)).Return(true, nil)
		ledger.On("GrantTrial", mock.Anything, mock.Anything).Return(boom)

		got, err := newTestGate().DecideActivation(context.Background(), ledger, 1)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, subscription.ActivationInactive, got)
	})
}

func TestGateConfigFrom(t *testing.T) {
	gc := GateConfigFrom(config.SubscriptionConfig{})
	assert.Equal(t, DefaultGateConfig(), gc)

	gc = GateConfigFrom(config.SubscriptionConfig{TrialPlan: "promo", TrialDuration: 72 * time.Hour})
	assert.Equal(t, subscription.Plan("promo"), gc.TrialPlan)
	assert.Equal(t, 72*time.Hour, gc.TrialDuration)
}
