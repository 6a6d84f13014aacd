// Package testutil provides testify mocks of the domain ports and an
// in-memory unit of work for application-layer tests.
package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sellerstats/backend/internal/domain/credential"
	"github.com/sellerstats/backend/internal/domain/identity"
	"github.com/sellerstats/backend/internal/domain/marketplace"
	"github.com/sellerstats/backend/internal/domain/subscription"
	"github.com/sellerstats/backend/internal/domain/task"
)

// ---------------------------------------------------------------------------
// Credentials
// ---------------------------------------------------------------------------

// CredentialRepository mocks credential.Repository
type CredentialRepository struct {
	mock.Mock
}

func (m *CredentialRepository) Upsert(ctx context.Context, c *credential.Credential) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *CredentialRepository) FindActiveByUser(ctx context.Context, userID int64) (*credential.Credential, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credential.Credential), args.Error(1)
}

func (m *CredentialRepository) FindByTitle(ctx context.Context, userID int64, title string) (*credential.Credential, error) {
	args := m.Called(ctx, userID, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credential.Credential), args.Error(1)
}

func (m *CredentialRepository) DeactivateAllForUser(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *CredentialRepository) DeactivateOthers(ctx context.Context, userID int64, keepTitle string) (int64, error) {
	args := m.Called(ctx, userID, keepTitle)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CredentialRepository) DeleteAllForUser(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CredentialRepository) ListSyncTargets(ctx context.Context) ([]credential.SyncTarget, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]credential.SyncTarget), args.Error(1)
}

// Cipher mocks credential.Cipher
type Cipher struct {
	mock.Mock
}

func (m *Cipher) Encrypt(plaintext []byte) (string, error) {
	args := m.Called(plaintext)
	return args.String(0), args.Error(1)
}

func (m *Cipher) Decrypt(ciphertext string) ([]byte, error) {
	args := m.Called(ciphertext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// ---------------------------------------------------------------------------
// Subscriptions
// ---------------------------------------------------------------------------

// SubscriptionLedger mocks subscription.Ledger
type SubscriptionLedger struct {
	mock.Mock
}

func (m *SubscriptionLedger) HasActiveSubscription(ctx context.Context, userID int64, now time.Time) (bool, error) {
	args := m.Called(ctx, userID, now)
	return args.Bool(0), args.Error(1)
}

func (m *SubscriptionLedger) IsTrialEligible(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *SubscriptionLedger) GrantTrial(ctx context.Context, sub *subscription.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

// ---------------------------------------------------------------------------
// Identity
// ---------------------------------------------------------------------------

// UserRepository mocks identity.UserRepository
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) FindByID(ctx context.Context, id int64) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *UserRepository) FindByExternalID(ctx context.Context, externalID int64) (*identity.User, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *UserRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// DelegateRepository mocks identity.DelegateRepository
type DelegateRepository struct {
	mock.Mock
}

func (m *DelegateRepository) Save(ctx context.Context, d *identity.Delegate) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *DelegateRepository) FindByInviteToken(ctx context.Context, token string) (*identity.Delegate, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Delegate), args.Error(1)
}

func (m *DelegateRepository) ListByOwner(ctx context.Context, ownerUserID int64) ([]identity.Delegate, error) {
	args := m.Called(ctx, ownerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Delegate), args.Error(1)
}

func (m *DelegateRepository) DeleteAllForOwner(ctx context.Context, ownerUserID int64) (int64, error) {
	args := m.Called(ctx, ownerUserID)
	return args.Get(0).(int64), args.Error(1)
}

// ---------------------------------------------------------------------------
// Task status
// ---------------------------------------------------------------------------

// TaskStatusRepository mocks task.Repository
type TaskStatusRepository struct {
	mock.Mock
}

func (m *TaskStatusRepository) Find(ctx context.Context, userID int64, name task.Name) (*task.TaskStatus, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.TaskStatus), args.Error(1)
}

func (m *TaskStatusRepository) Save(ctx context.Context, s *task.TaskStatus) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *TaskStatusRepository) DeleteAllForUser(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// ---------------------------------------------------------------------------
// Marketplace records
// ---------------------------------------------------------------------------

// OrderRepository mocks marketplace.OrderRepository
type OrderRepository struct {
	mock.Mock
}

func (m *OrderRepository) InsertIfAbsent(ctx context.Context, in *marketplace.OrderInput) (*marketplace.Order, bool, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*marketplace.Order), args.Bool(1), args.Error(2)
}

func (m *OrderRepository) SumOrders(ctx context.Context, f marketplace.OrderFilter) (marketplace.Totals, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(marketplace.Totals), args.Error(1)
}

// SaleRepository mocks marketplace.SaleRepository
type SaleRepository struct {
	mock.Mock
}

func (m *SaleRepository) InsertIgnoringConflicts(ctx context.Context, sales []marketplace.SaleInput, batchSize int) (int64, error) {
	args := m.Called(ctx, sales, batchSize)
	return args.Get(0).(int64), args.Error(1)
}

// StockRepository mocks marketplace.StockRepository
type StockRepository struct {
	mock.Mock
}

func (m *StockRepository) UpsertBatch(ctx context.Context, rows []marketplace.StockInput) (int64, error) {
	args := m.Called(ctx, rows)
	return args.Get(0).(int64), args.Error(1)
}

func (m *StockRepository) GroupedByWarehouse(ctx context.Context, userID, nmID int64) ([]marketplace.WarehouseQuantity, error) {
	args := m.Called(ctx, userID, nmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketplace.WarehouseQuantity), args.Error(1)
}

// MarketplaceClient mocks marketplace.Client
type MarketplaceClient struct {
	mock.Mock
}

func (m *MarketplaceClient) Ping(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MarketplaceClient) FetchOrders(ctx context.Context, token string, since time.Time) ([]marketplace.OrderInput, error) {
	args := m.Called(ctx, token, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketplace.OrderInput), args.Error(1)
}

func (m *MarketplaceClient) FetchSales(ctx context.Context, token string, since time.Time) ([]marketplace.SaleInput, error) {
	args := m.Called(ctx, token, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketplace.SaleInput), args.Error(1)
}

func (m *MarketplaceClient) FetchStocks(ctx context.Context, token string, since time.Time) ([]marketplace.StockInput, error) {
	args := m.Called(ctx, token, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketplace.StockInput), args.Error(1)
}

var (
	_ credential.Repository       = (*CredentialRepository)(nil)
	_ credential.Cipher           = (*Cipher)(nil)
	_ subscription.Ledger         = (*SubscriptionLedger)(nil)
	_ identity.UserRepository     = (*UserRepository)(nil)
	_ identity.DelegateRepository = (*DelegateRepository)(nil)
	_ task.Repository             = (*TaskStatusRepository)(nil)
	_ marketplace.OrderRepository = (*OrderRepository)(nil)
	_ marketplace.SaleRepository  = (*SaleRepository)(nil)
	_ marketplace.StockRepository = (*StockRepository)(nil)
	_ marketplace.Client          = (*MarketplaceClient)(nil)
)
