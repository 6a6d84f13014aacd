package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/sellerstats/backend/internal/application/unitofwork"
	"github.com/sellerstats/backend/internal/domain/credential"
	"github.com/sellerstats/backend/internal/domain/identity"
	"github.com/sellerstats/backend/internal/domain/marketplace"
	"github.com/sellerstats/backend/internal/domain/subscription"
	"github.com/sellerstats/backend/internal/domain/task"
)

// GormUnitOfWorkFactory begins units of work as GORM transactions
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGormUnitOfWorkFactory creates a new GormUnitOfWorkFactory
func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Begin opens a transaction bound to ctx
func (f *GormUnitOfWorkFactory) Begin(ctx context.Context) (unitofwork.Scope, error) {
	tx := f.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}
	return &gormScope{gormRepositories: gormRepositories{tx: tx}}, nil
}

// gormScope is an open transaction. Once finished, further Commit and
// Rollback calls do nothing.
type gormScope struct {
	gormRepositories
	finished bool
}

// Commit commits the transaction
func (s *gormScope) Commit() error {
	if s.finished {
		return nil
	}
	s.finished = true
	return s.tx.Commit().Error
}

// Rollback rolls the transaction back
func (s *gormScope) Rollback() error {
	if s.finished {
		return nil
	}
	s.finished = true
	return s.tx.Rollback().Error
}

// gormRepositories provides access to all repositories within a transaction
type gormRepositories struct {
	tx *gorm.DB
}

// Credentials returns the credential repository scoped to the transaction
func (r *gormRepositories) Credentials() credential.Repository {
	return NewGormCredentialRepository(r.tx)
}

// Subscriptions returns the subscription ledger scoped to the transaction
func (r *gormRepositories) Subscriptions() subscription.Ledger {
	return NewGormSubscriptionLedger(r.tx)
}

// Users returns the user repository scoped to the transaction
func (r *gormRepositories) Users() identity.UserRepository {
	return NewGormUserRepository(r.tx)
}

// Delegates returns the delegate repository scoped to the transaction
func (r *gormRepositories) Delegates() identity.DelegateRepository {
	return NewGormDelegateRepository(r.tx)
}

// TaskStatuses returns the task status repository scoped to the transaction
func (r *gormRepositories) TaskStatuses() task.Repository {
	return NewGormTaskStatusRepository(r.tx)
}

// Orders returns the order repository scoped to the transaction
func (r *gormRepositories) Orders() marketplace.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// Sales returns the sale repository scoped to the transaction
func (r *gormRepositories) Sales() marketplace.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

// Stocks returns the stock repository scoped to the transaction
func (r *gormRepositories) Stocks() marketplace.StockRepository {
	return NewGormStockRepository(r.tx)
}

var (
	_ unitofwork.Factory = (*GormUnitOfWorkFactory)(nil)
	_ unitofwork.Scope   = (*gormScope)(nil)
)
