package identity

import "context"

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id int64) (*User, error)

	// FindByExternalID finds a user by external chat id
	FindByExternalID(ctx context.Context, externalID int64) (*User, error)

	// ExistsByID checks whether the user exists
	ExistsByID(ctx context.Context, id int64) (bool, error)
}

// DelegateRepository defines the interface for delegate link persistence
type DelegateRepository interface {
	// Save creates or updates the delegate
	Save(ctx context.Context, d *Delegate) error

	// FindByInviteToken finds a pending delegate by invite token
	FindByInviteToken(ctx context.Context, token string) (*Delegate, error)

	// ListByOwner returns every delegate of the owner
	ListByOwner(ctx context.Context, ownerUserID int64) ([]Delegate, error)

	// DeleteAllForOwner removes every delegate of the owner
	DeleteAllForOwner(ctx context.Context, ownerUserID int64) (int64, error)
}
