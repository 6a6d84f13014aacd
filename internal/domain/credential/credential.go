package credential

import (
	"errors"
	"strings"
	"time"
)

// DefaultTitle is the title used when the seller does not name the key
const DefaultTitle = "API Key"

// MinKeyLength is the shortest raw key accepted as a marketplace token
const MinKeyLength = 31

var (
	ErrInvalidUserID    = errors.New("credential: invalid user ID")
	ErrEmptyTitle       = errors.New("credential: title cannot be empty")
	ErrTitleTooLong     = errors.New("credential: title cannot exceed 100 characters")
	ErrEmptyCiphertext  = errors.New("credential: ciphertext cannot be empty")
	ErrInvalidKeyFormat = errors.New("credential: key does not look like a marketplace token")

	// ErrDecryption is returned when a ciphertext is corrupted, truncated,
	// tampered with or sealed under an unknown key. It is never swallowed.
	ErrDecryption = errors.New("credential: decryption failed")
)

// Credential is an encrypted external-API key plus its activation flag
type Credential struct {
	ID         int64
	UserID     int64
	Title      string
	Ciphertext string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewCredential creates a credential ready to be upserted
func NewCredential(userID int64, title, ciphertext string, active bool) (*Credential, error) {
	if userID <= 0 {
		return nil, ErrInvalidUserID
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if len(title) > 100 {
		return nil, ErrTitleTooLong
	}
	if ciphertext == "" {
		return nil, ErrEmptyCiphertext
	}

	now := time.Now()
	return &Credential{
		UserID:     userID,
		Title:      title,
		Ciphertext: ciphertext,
		IsActive:   active,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// ValidateKeyFormat performs the cheap offline check of a raw marketplace key
func ValidateKeyFormat(raw string) error {
	if len(strings.TrimSpace(raw)) < MinKeyLength {
		return ErrInvalidKeyFormat
	}
	return nil
}

// SyncTarget is an active credential of an active user, as consumed by the
// sync pass. Ciphertext is still sealed.
type SyncTarget struct {
	CredentialID int64
	UserID       int64
	ExternalID   int64
	Title        string
	Ciphertext   string
}
