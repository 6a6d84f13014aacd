// Package unitofwork defines the transaction-bound scope one task runs in.
// Begin, commit and rollback are owned by the caller; repositories handed
// out by a scope all share its transaction.
package unitofwork

import (
	"context"
	"fmt"

	"github.com/sellerstats/backend/internal/domain/credential"
	"github.com/sellerstats/backend/internal/domain/identity"
	"github.com/sellerstats/backend/internal/domain/marketplace"
	"github.com/sellerstats/backend/internal/domain/subscription"
	"github.com/sellerstats/backend/internal/domain/task"
)

// Repositories provides access to every repository bound to one transaction
type Repositories interface {
	Credentials() credential.Repository
	Subscriptions() subscription.Ledger
	Users() identity.UserRepository
	Delegates() identity.DelegateRepository
	TaskStatuses() task.Repository
	Orders() marketplace.OrderRepository
	Sales() marketplace.SaleRepository
	Stocks() marketplace.StockRepository
}

// Scope is an open unit of work. Commit after Rollback, or a second
// Rollback, is a no-op.
type Scope interface {
	Repositories
	Commit() error
	Rollback() error
}

// Factory begins units of work
type Factory interface {
	Begin(ctx context.Context) (Scope, error)
}

// Run executes fn inside a new unit of work. The scope is committed when fn
// returns nil and rolled back when fn returns an error or panics.
func Run(ctx context.Context, factory Factory, fn func(Repositories) error) (err error) {
	scope, err := factory.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = scope.Rollback()
			panic(p)
		}
	}()

	if err := fn(scope); err != nil {
		if rbErr := scope.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := scope.Commit(); err != nil {
		return fmt.Errorf("commit unit of work: %w", err)
	}
	return nil
}
