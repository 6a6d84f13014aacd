package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/sellerstats/backend/internal/domain/shared"
)

// Delegate links another chat member to an owner's account so the member
// receives the owner's notifications. A pending delegate carries an invite
// token until the member accepts.
type Delegate struct {
	ID               int64
	OwnerUserID      int64
	MemberExternalID int64
	Username         string
	InviteToken      string
	AcceptedAt       *time.Time
	CreatedAt        time.Time
}

// NewDelegateInvite creates a pending delegate with a fresh invite token
func NewDelegateInvite(ownerUserID int64) (*Delegate, error) {
	if ownerUserID <= 0 {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner user ID must be positive")
	}
	return &Delegate{
		OwnerUserID: ownerUserID,
		InviteToken: uuid.NewString(),
		CreatedAt:   time.Now(),
	}, nil
}

// Accept binds the delegate to the member who redeemed the invite
func (d *Delegate) Accept(memberExternalID int64, username string) error {
	if d.AcceptedAt != nil {
		return shared.NewDomainError("INVITE_ALREADY_USED", "Invite has already been accepted")
	}
	if memberExternalID == 0 {
		return shared.NewDomainError("INVALID_EXTERNAL_ID", "External ID cannot be zero")
	}
	now := time.Now()
	d.MemberExternalID = memberExternalID
	d.Username = username
	d.InviteToken = ""
	d.AcceptedAt = &now
	return nil
}

// IsPending reports whether the invite has not been accepted yet
func (d *Delegate) IsPending() bool {
	return d.AcceptedAt == nil
}
