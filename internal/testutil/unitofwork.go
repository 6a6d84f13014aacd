package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/sellerstats/backend/internal/application/unitofwork"
	"github.com/sellerstats/backend/internal/domain/credential"
	"github.com/sellerstats/backend/internal/domain/identity"
	"github.com/sellerstats/backend/internal/domain/marketplace"
	"github.com/sellerstats/backend/internal/domain/subscription"
	"github.com/sellerstats/backend/internal/domain/task"
)

// UnitOfWork is a unitofwork.Factory whose scopes all hand out the same
// mock repositories. It counts begins, commits and rollbacks.
type UnitOfWork struct {
	Credentials   *CredentialRepository
	Subscriptions *SubscriptionLedger
	Users         *UserRepository
	Delegates     *DelegateRepository
	TaskStatuses  *TaskStatusRepository
	Orders        *OrderRepository
	Sales         *SaleRepository
	Stocks        *StockRepository

	// BeginErr and CommitErr, when set, are returned by Begin and Commit
	BeginErr  error
	CommitErr error

	mu         sync.Mutex
	begun      int
	committed  int
	rolledBack int
}

// NewUnitOfWork creates a UnitOfWork with fresh mocks
func NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{
		Credentials:   new(CredentialRepository),
		Subscriptions: new(SubscriptionLedger),
		Users:         new(UserRepository),
		Delegates:     new(DelegateRepository),
		TaskStatuses:  new(TaskStatusRepository),
		Orders:        new(OrderRepository),
		Sales:         new(SaleRepository),
		Stocks:        new(StockRepository),
	}
}

// Begin opens a scope
func (u *UnitOfWork) Begin(ctx context.Context) (unitofwork.Scope, error) {
	if u.BeginErr != nil {
		return nil, u.BeginErr
	}
	u.mu.Lock()
	u.begun++
	u.mu.Unlock()
	return &scope{uow: u}, nil
}

// Counts returns how many scopes were begun, committed and rolled back
func (u *UnitOfWork) Counts() (begun, committed, rolledBack int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.begun, u.committed, u.rolledBack
}

// AssertExpectations asserts the expectations of every mock repository
func (u *UnitOfWork) AssertExpectations(t mock.TestingT) {
	u.Credentials.AssertExpectations(t)
	u.Subscriptions.AssertExpectations(t)
	u.Users.AssertExpectations(t)
	u.Delegates.AssertExpectations(t)
	u.TaskStatuses.AssertExpectations(t)
	u.Orders.AssertExpectations(t)
	u.Sales.AssertExpectations(t)
	u.Stocks.AssertExpectations(t)
}

type scope struct {
	uow      *UnitOfWork
	finished bool
}

func (s *scope) Credentials() credential.Repository     { return s.uow.Credentials }
func (s *scope) Subscriptions() subscription.Ledger     { return s.uow.Subscriptions }
func (s *scope) Users() identity.UserRepository         { return s.uow.Users }
func (s *scope) Delegates() identity.DelegateRepository { return s.uow.Delegates }
func (s *scope) TaskStatuses() task.Repository          { return s.uow.TaskStatuses }
func (s *scope) Orders() marketplace.OrderRepository    { return s.uow.Orders }
func (s *scope) Sales() marketplace.SaleRepository      { return s.uow.Sales }
func (s *scope) Stocks() marketplace.StockRepository    { return s.uow.Stocks }

func (s *scope) Commit() error {
	if s.finished {
		return nil
	}
	s.finished = true
	if s.uow.CommitErr != nil {
		return s.uow.CommitErr
	}
	s.uow.mu.Lock()
	s.uow.committed++
	s.uow.mu.Unlock()
	return nil
}

func (s *scope) Rollback() error {
	if s.finished {
		return nil
	}
	s.finished = true
	s.uow.mu.Lock()
	s.uow.rolledBack++
	s.uow.mu.Unlock()
	return nil
}

var _ unitofwork.Factory = (*UnitOfWork)(nil)
