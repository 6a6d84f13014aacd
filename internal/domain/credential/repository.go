package credential

import "context"

// Repository defines the persistence operations for credentials
type Repository interface {
	// Upsert inserts the credential or, when (user_id, title) already exists,
	// overwrites its ciphertext and active flag in place. It is a single
	// statement so concurrent calls for one key never create duplicates.
	Upsert(ctx context.Context, c *Credential) error

	// FindActiveByUser returns the most recently updated active credential.
	// Returns shared.ErrNotFound when the user has none.
	FindActiveByUser(ctx context.Context, userID int64) (*Credential, error)

	// FindByTitle returns the active credential with the given title.
	// Returns shared.ErrNotFound when absent.
	FindByTitle(ctx context.Context, userID int64, title string) (*Credential, error)

	// DeactivateAllForUser clears the active flag of every active credential
	// of the user and reports whether any row changed
	DeactivateAllForUser(ctx context.Context, userID int64) (bool, error)

	// DeactivateOthers clears the active flag of every credential of the user
	// except the one with keepTitle
	DeactivateOthers(ctx context.Context, userID int64, keepTitle string) (int64, error)

	// DeleteAllForUser removes every credential of the user
	DeleteAllForUser(ctx context.Context, userID int64) (int64, error)

	// ListSyncTargets returns the active credentials of active users
	ListSyncTargets(ctx context.Context) ([]SyncTarget, error)
}

// Cipher seals and opens credential plaintext with an authenticated scheme
type Cipher interface {
	// Encrypt returns an opaque, versioned ciphertext
	Encrypt(plaintext []byte) (string, error)
	// Decrypt returns the plaintext or an error wrapping ErrDecryption
	Decrypt(ciphertext string) ([]byte, error)
}
