package identity

import (
	"strings"
	"time"

	"github.com/sellerstats/backend/internal/domain/shared"
)

// DefaultLocale is the locale assigned to users who do not report one
const DefaultLocale = "ru"

// User is a seller account, identified externally by the chat id of the
// client that registered it
type User struct {
	ID         int64
	ExternalID int64
	Username   string
	Locale     string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewUser creates an active user for the given external id
func NewUser(externalID int64, username, locale string) (*User, error) {
	if externalID == 0 {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "External ID cannot be zero")
	}
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if len(username) > 64 {
		return nil, shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 64 characters")
	}
	locale = strings.ToLower(strings.TrimSpace(locale))
	if locale == "" {
		locale = DefaultLocale
	}

	now := time.Now()
	return &User{
		ExternalID: externalID,
		Username:   username,
		Locale:     locale,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Deactivate marks the user inactive; its credentials stop being synced
func (u *User) Deactivate() {
	u.IsActive = false
	u.UpdatedAt = time.Now()
}
